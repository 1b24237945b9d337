package feature

import (
	"errors"
	"fmt"
)

var (
	// ErrShape indicates vectors of differing lengths in one buffer.
	ErrShape = errors.New("feature: inconsistent vector shape")
	// ErrInvalidRate indicates a non-positive feature rate.
	ErrInvalidRate = errors.New("feature: invalid feature rate")
)

// Buffer is an ordered sequence of same-shaped feature vectors together with
// the rate, in frames per second, at which they were produced. It is the
// unit of exchange between extraction paths and chain steps.
type Buffer struct {
	vectors [][]float64
	size    int
	rate    float64
}

// NewBuffer wraps a frame-major vector sequence. All vectors must share one
// length; an empty sequence is a valid (zero-frame) buffer.
func NewBuffer(vectors [][]float64, rate float64) (*Buffer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRate, rate)
	}

	size := 0
	if len(vectors) > 0 {
		size = len(vectors[0])
	}

	for i, v := range vectors {
		if len(v) != size {
			return nil, fmt.Errorf("%w: frame %d has %d entries, want %d", ErrShape, i, len(v), size)
		}
	}

	return &Buffer{vectors: vectors, size: size, rate: rate}, nil
}

// Len returns the number of frames.
func (b *Buffer) Len() int { return len(b.vectors) }

// Size returns the per-frame vector length.
func (b *Buffer) Size() int { return b.size }

// Rate returns the feature rate in frames per second.
func (b *Buffer) Rate() float64 { return b.rate }

// Vector returns the i-th frame. The returned slice is not a copy.
func (b *Buffer) Vector(i int) []float64 { return b.vectors[i] }

// Vectors returns the underlying frame-major storage. Not a copy.
func (b *Buffer) Vectors() [][]float64 { return b.vectors }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	vectors := make([][]float64, len(b.vectors))
	for i, v := range b.vectors {
		vectors[i] = append([]float64(nil), v...)
	}

	return &Buffer{vectors: vectors, size: b.size, rate: b.rate}
}
