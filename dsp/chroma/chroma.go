package chroma

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-chroma/dsp/feature"
	"github.com/cwbudde/algo-chroma/dsp/rates"
)

// ErrPitchLength is returned when a vector does not hold exactly one entry
// per MIDI pitch.
var ErrPitchLength = errors.New("chroma: pitch vector must have 128 entries")

// Fold sums octave-equivalent pitch energies into a 12-entry chroma vector:
// chroma[c] = Σ pitch[p] for all p ≡ c (mod 12).
func Fold(pitch []float64) ([]float64, error) {
	if len(pitch) != rates.NumPitches {
		return nil, fmt.Errorf("%w: got %d", ErrPitchLength, len(pitch))
	}

	out := make([]float64, rates.NumChroma)
	for p, v := range pitch {
		out[p%rates.NumChroma] += v
	}

	return out, nil
}

// FoldBuffer folds every frame of a 128-pitch feature buffer, preserving the
// feature rate.
func FoldBuffer(buf *feature.Buffer) (*feature.Buffer, error) {
	if buf.Len() > 0 && buf.Size() != rates.NumPitches {
		return nil, fmt.Errorf("%w: buffer vectors have %d", ErrPitchLength, buf.Size())
	}

	vectors := make([][]float64, buf.Len())

	for i := range vectors {
		folded, err := Fold(buf.Vector(i))
		if err != nil {
			return nil, err
		}

		vectors[i] = folded
	}

	return feature.NewBuffer(vectors, buf.Rate())
}
