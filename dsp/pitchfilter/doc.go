// Package pitchfilter implements the fixed array of 128 per-pitch band-pass
// IIR filters at the heart of the multirate filterbank. Each covered pitch
// owns a cascade of second-order sections bound to its canonical sample rate,
// with persistent delay-line state for streaming use and a precomputed group
// delay used for latency compensation.
package pitchfilter
