// Package resample implements the tuning-aware resampler bank feeding the
// multirate pitch filterbank: five mutually independent rails, each a
// streaming cascade of band-limited polyphase FIR stages converting the
// nominal input rate to one canonical rate. Every rail reports a constant,
// measurable latency and supports a terminal zero-padded drain that flushes
// samples trapped in its filter history.
package resample
