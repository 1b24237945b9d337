package feature

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantization indicates mismatched or non-ascending step
// configuration.
var ErrInvalidQuantization = errors.New("feature: invalid quantization settings")

// Quantization maps each value to the sum of the weights of every step
// threshold it meets or exceeds. With non-negative weights the mapping is
// monotonically non-decreasing in the input value.
type Quantization struct {
	steps   []float64
	weights []float64
}

// NewQuantization creates a quantization step from ascending thresholds and
// matching non-negative cumulative weights. Mismatched lengths are a
// configuration error.
func NewQuantization(steps, weights []float64) (*Quantization, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidQuantization)
	}

	if len(steps) != len(weights) {
		return nil, fmt.Errorf("%w: %d steps but %d weights",
			ErrInvalidQuantization, len(steps), len(weights))
	}

	for i := 1; i < len(steps); i++ {
		if steps[i] <= steps[i-1] {
			return nil, fmt.Errorf("%w: steps not ascending at %d", ErrInvalidQuantization, i)
		}
	}

	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight at %d", ErrInvalidQuantization, i)
		}
	}

	return &Quantization{
		steps:   append([]float64(nil), steps...),
		weights: append([]float64(nil), weights...),
	}, nil
}

// NewDefaultQuantization returns the standard five-level quantizer used for
// chord-recognition chroma features.
func NewDefaultQuantization() *Quantization {
	q, err := NewQuantization(
		[]float64{0.05, 0.1, 0.2, 0.4, 0.8},
		[]float64{0.2, 0.2, 0.2, 0.2, 0.2},
	)
	if err != nil {
		panic("feature: default quantization invalid: " + err.Error())
	}

	return q
}

// Quantize maps a single value.
func (q *Quantization) Quantize(x float64) float64 {
	var sum float64

	for i, step := range q.steps {
		if x < step {
			break
		}

		sum += q.weights[i]
	}

	return sum
}

// Apply returns a new buffer with every entry quantized.
func (q *Quantization) Apply(buf *Buffer) (*Buffer, error) {
	out := buf.Clone()

	for _, v := range out.vectors {
		for i, x := range v {
			v[i] = q.Quantize(x)
		}
	}

	return out, nil
}
