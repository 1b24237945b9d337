package pitchfilter

import "github.com/cwbudde/algo-chroma/dsp/rates"

// Array is the fixed bank of per-pitch band-pass filters. Pitches outside
// the covered musical range carry no coefficients and are skipped. Filters
// hold streaming delay-line state, so an Array instance must not be shared
// across concurrent Process calls for the same pitch.
type Array struct {
	filters [rates.NumPitches]*Cascade
	delays  [rates.NumPitches]int
}

// NewArray builds the filter array. Coefficients and group delays form a
// deterministic table generated once at construction; the design is fixed
// to the 440 Hz reference because tuning deviations are absorbed by the
// resampler bank upstream.
func NewArray() *Array {
	a := &Array{}

	for p := 0; p < rates.NumPitches; p++ {
		coeffs := designPitch(p)
		if coeffs == nil {
			continue
		}

		a.filters[p] = NewCascade(coeffs)
		a.delays[p] = groupDelaySamples(p)
	}

	return a
}

// Covered reports whether pitch p carries a filter.
func (a *Array) Covered(p int) bool {
	return p >= 0 && p < rates.NumPitches && a.filters[p] != nil
}

// GroupDelay returns the fixed group delay of pitch p's filter in samples
// at the pitch's canonical rate. Uncovered pitches report zero.
func (a *Array) GroupDelay(p int) int {
	if p < 0 || p >= rates.NumPitches {
		return 0
	}

	return a.delays[p]
}

// Process filters a chunk of samples at pitch p's canonical rate and returns
// the filtered block. The input slice is not modified; the filter's delay
// line advances, so successive calls continue the same stream. Uncovered
// pitches return nil.
func (a *Array) Process(p int, src []float64) []float64 {
	if !a.Covered(p) || len(src) == 0 {
		return nil
	}

	buf := make([]float64, len(src))
	copy(buf, src)
	a.filters[p].ProcessBlock(buf)

	return buf
}

// Reset clears every filter's delay line.
func (a *Array) Reset() {
	for _, f := range a.filters {
		if f != nil {
			f.Reset()
		}
	}
}
