package feature

import (
	"errors"
	"fmt"
	"math"
)

// Default logarithmic compression settings.
const (
	DefaultCompressionFactor = 100.0
	DefaultCompressionTerm   = 1.0
)

// ErrInvalidCompression indicates compression settings that would produce a
// non-positive logarithm argument for valid (non-negative) inputs.
var ErrInvalidCompression = errors.New("feature: invalid compression settings")

// Compression applies y = log10(factor*x + term) to every entry. It is a
// pure function over the buffer and carries no state.
type Compression struct {
	factor float64
	term   float64
}

// NewCompression creates a compression step. factor must be positive and
// term must be at least 1 so non-negative energies map to non-negative
// outputs.
func NewCompression(factor, term float64) (*Compression, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("%w: factor %g", ErrInvalidCompression, factor)
	}

	if term < 1 || math.IsNaN(term) || math.IsInf(term, 0) {
		return nil, fmt.Errorf("%w: term %g", ErrInvalidCompression, term)
	}

	return &Compression{factor: factor, term: term}, nil
}

// Apply returns a new buffer with every entry compressed.
func (c *Compression) Apply(buf *Buffer) (*Buffer, error) {
	out := buf.Clone()

	for _, v := range out.vectors {
		for i, x := range v {
			v[i] = math.Log10(c.factor*x + c.term)
		}
	}

	return out, nil
}
