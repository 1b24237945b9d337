package feature

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormMode selects the normalization strategy.
type NormMode int

const (
	// NormMax divides every entry by the single largest value seen across
	// the entire buffer.
	NormMax NormMode = iota
	// NormL1 divides each vector by its l1 norm.
	NormL1
	// NormL2 divides each vector by its l2 (Euclidean) norm.
	NormL2
)

// DefaultNormThreshold is the norm below which a frame counts as silent.
const DefaultNormThreshold = 1e-3

// ErrInvalidNormalization indicates an unknown mode or a bad threshold.
var ErrInvalidNormalization = errors.New("feature: invalid normalization settings")

// Normalization scales vectors to unit magnitude. Near-silent frames are an
// expected condition, not an error: a vector whose lᵖ norm falls below the
// threshold is replaced wholesale by the uniform unit vector instead of
// being divided by a near-zero value.
type Normalization struct {
	mode      NormMode
	threshold float64
}

// NewNormalization creates a normalization step. The threshold only applies
// to the lᵖ modes and must be positive.
func NewNormalization(mode NormMode, threshold float64) (*Normalization, error) {
	switch mode {
	case NormMax, NormL1, NormL2:
	default:
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidNormalization, mode)
	}

	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: threshold %g", ErrInvalidNormalization, threshold)
	}

	return &Normalization{mode: mode, threshold: threshold}, nil
}

// Apply returns a new, normalized buffer.
func (n *Normalization) Apply(buf *Buffer) (*Buffer, error) {
	out := buf.Clone()
	if out.Len() == 0 || out.Size() == 0 {
		return out, nil
	}

	if n.mode == NormMax {
		peak := 0.0
		for _, v := range out.vectors {
			if m := floats.Max(v); m > peak {
				peak = m
			}
		}

		if peak > 0 {
			for _, v := range out.vectors {
				floats.Scale(1/peak, v)
			}
		}

		return out, nil
	}

	p := 1.0
	if n.mode == NormL2 {
		p = 2
	}

	for _, v := range out.vectors {
		normalizeVector(v, p, n.threshold)
	}

	return out, nil
}

// normalizeVector scales v to unit lᵖ norm, substituting the uniform unit
// vector when the norm falls below the threshold.
func normalizeVector(v []float64, p, threshold float64) {
	norm := floats.Norm(v, p)
	if norm >= threshold {
		floats.Scale(1/norm, v)

		return
	}

	unit := 1 / float64(len(v))
	if p == 2 {
		unit = 1 / math.Sqrt(float64(len(v)))
	}

	for i := range v {
		v[i] = unit
	}
}
