package rates

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedRate indicates a sample rate outside the canonical ladder.
var ErrUnsupportedRate = errors.New("rates: unsupported sample rate")

// ErrInvalidTuning indicates a non-positive or non-finite tuning frequency.
var ErrInvalidTuning = errors.New("rates: invalid tuning frequency")

const (
	// NumPitches is the fixed pitch-vector dimension (MIDI pitch numbers 0..127).
	NumPitches = 128
	// NumChroma is the fixed chroma-vector dimension (pitch classes 0..11).
	NumChroma = 12
	// NumRates is the number of canonical sample rates.
	NumRates = 5

	// ReferencePitch is the MIDI number of the tuning reference (A4).
	ReferencePitch = 69
	// ReferenceHz is the nominal tuning frequency of A4.
	ReferenceHz = 440.0

	// LowestCovered and HighestCovered bound the pitch range that carries
	// filter coefficients (the 88 piano keys). Pitches outside this range
	// still map to a canonical rate but are skipped by the filter array.
	LowestCovered  = 21
	HighestCovered = 108
)

// Ladder lists the canonical sample rates in ascending order. All per-rate
// structures are indexed by position in this array, never by rate value.
var Ladder = [NumRates]float64{441, 882, 4410, 22050, 44100}

// pitchRateBounds[i] is the first pitch assigned to Ladder[i+1]. Lower
// pitches resolve better at lower rates, so the assignment is monotonic.
var pitchRateBounds = [NumRates - 1]int{21, 60, 96, 120}

// Index returns the ladder position of a canonical rate.
func Index(rate float64) (int, error) {
	for i, r := range Ladder {
		if r == rate {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %g Hz", ErrUnsupportedRate, rate)
}

// ForPitch returns the ladder index of the canonical rate assigned to pitch p.
// The result is non-decreasing in p.
func ForPitch(p int) int {
	for i, bound := range pitchRateBounds {
		if p < bound {
			return i
		}
	}

	return NumRates - 1
}

// Covered reports whether pitch p carries filter coefficients.
func Covered(p int) bool {
	return p >= LowestCovered && p <= HighestCovered
}

// TuningRatio returns tuning/440 for a tuning reference frequency in Hz.
// Values far from 440 Hz are accepted unclamped.
func TuningRatio(tuningHz float64) (float64, error) {
	if tuningHz <= 0 || math.IsNaN(tuningHz) || math.IsInf(tuningHz, 0) {
		return 0, fmt.Errorf("%w: %g Hz", ErrInvalidTuning, tuningHz)
	}

	return tuningHz / ReferenceHz, nil
}

// PitchFreq returns the center frequency of MIDI pitch p in Hz for the
// given tuning reference.
func PitchFreq(p int, tuningHz float64) float64 {
	return tuningHz * math.Exp2(float64(p-ReferencePitch)/12)
}
