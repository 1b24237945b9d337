// Package filterbank implements the streaming multirate pitch feature
// extractor. An Orchestrator owns the five-rail resampler bank, the 128
// per-pitch band-pass filters and the per-pitch frame/energy extractors,
// fans each input chunk out across rates and pitches, compensates the known
// resampler and filter latencies, and assembles aligned 128-entry pitch
// energy vectors at a nominal 10 Hz feature rate.
package filterbank
