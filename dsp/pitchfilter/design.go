package pitchfilter

import (
	"math"

	"github.com/cwbudde/algo-chroma/dsp/rates"
)

// sectionsPerFilter is the number of cascaded band-pass sections per pitch
// (overall filter order 8).
const sectionsPerFilter = 4

// qSemitone is the quality factor that places the -3 dB edges of one section
// half a semitone to either side of the center frequency:
// Q = 1 / (2^(1/24) - 2^(-1/24)).
var qSemitone = 1 / (math.Exp2(1.0/24) - math.Exp2(-1.0/24))

// bandpass designs one constant-skirt-gain band-pass section centered at
// freq (Hz) with quality factor q. Frequencies at or beyond Nyquist yield
// zero coefficients (an empty section).
func bandpass(freq, q, sampleRate float64) Coefficients {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return Coefficients{}
	}

	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	a0 := 1 + alpha

	return Coefficients{
		B0: (sw / 2) / a0,
		B1: 0,
		B2: (-sw / 2) / a0,
		A1: (-2 * cw) / a0,
		A2: (1 - alpha) / a0,
	}
}

// designPitch returns the section cascade for MIDI pitch p at its canonical
// rate, or nil when the pitch lies outside the covered range.
func designPitch(p int) []Coefficients {
	if !rates.Covered(p) {
		return nil
	}

	freq := rates.PitchFreq(p, rates.ReferenceHz)
	sampleRate := rates.Ladder[rates.ForPitch(p)]

	coeffs := make([]Coefficients, sectionsPerFilter)
	for i := range coeffs {
		coeffs[i] = bandpass(freq, qSemitone, sampleRate)
	}

	return coeffs
}

// groupDelaySamples returns the cascade's group delay at its center
// frequency, rounded to whole samples at the pitch's canonical rate. For a
// second-order band-pass section the center-frequency delay is 2Q/w0; the
// cascade delay is the per-section delay times the section count.
func groupDelaySamples(p int) int {
	if !rates.Covered(p) {
		return 0
	}

	freq := rates.PitchFreq(p, rates.ReferenceHz)
	sampleRate := rates.Ladder[rates.ForPitch(p)]
	w0 := 2 * math.Pi * freq / sampleRate

	return int(math.Round(sectionsPerFilter * 2 * qSemitone / w0))
}
