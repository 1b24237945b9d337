// Package stft implements a stateless windowed-FFT pitch feature extractor.
//
// It is the one-shot alternative to the streaming filterbank: the caller
// supplies the complete signal, frames are windowed at a fixed hop, each
// frame's real FFT magnitude (or power) spectrum is computed, and bins are
// folded into 128-entry pitch vectors through a static bin-to-pitch map.
// There is no cross-call state and no latency compensation.
package stft
