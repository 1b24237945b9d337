// Package window generates window coefficient sequences for spectral
// framing and FIR smoothing kernels.
package window

import "math"

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic   bool
	normalized bool
}

func defaultConfig() config {
	return config{}
}

// WithPeriodic selects the periodic form (FFT framing) instead of the
// symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// WithUnitSum scales the coefficients so they sum to one, which makes the
// window usable directly as a low-pass FIR smoothing kernel.
func WithUnitSum() Option {
	return func(c *config) {
		c.normalized = true
	}
}

// Generate returns window coefficients of the given length.
// It returns nil for non-positive lengths.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)

	denom := float64(length - 1)
	if cfg.periodic {
		denom = float64(length)
	}

	for i := range out {
		var phase float64
		if denom > 0 {
			phase = 2 * math.Pi * float64(i) / denom
		}

		switch t {
		case TypeHann:
			out[i] = 0.5 - 0.5*math.Cos(phase)
		case TypeHamming:
			out[i] = 0.54 - 0.46*math.Cos(phase)
		case TypeBlackman:
			out[i] = 0.42 - 0.5*math.Cos(phase) + 0.08*math.Cos(2*phase)
		default:
			out[i] = 1
		}
	}

	// Degenerate single-point symmetric windows collapse to unity.
	if length == 1 && !cfg.periodic {
		out[0] = 1
	}

	if cfg.normalized {
		var sum float64
		for _, v := range out {
			sum += v
		}

		if sum != 0 {
			inv := 1 / sum
			for i := range out {
				out[i] *= inv
			}
		}
	}

	return out
}

// Name returns a short identifier for a window type.
func Name(t Type) string {
	switch t {
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeBlackman:
		return "blackman"
	default:
		return "rectangular"
	}
}
