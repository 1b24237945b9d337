// Package rates defines the canonical sample-rate ladder of the multirate
// pitch filterbank and the fixed mapping from MIDI pitch numbers to the
// ladder. Every per-rate structure in this module is indexed by ladder
// position rather than by rate value.
package rates
