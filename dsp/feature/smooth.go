package feature

import (
	"errors"
	"fmt"

	"github.com/tphakala/simd/f64"

	"github.com/cwbudde/algo-chroma/dsp/window"
)

// ErrInvalidSmoothing indicates bad smoothing window or downsampling settings.
var ErrInvalidSmoothing = errors.New("feature: invalid smoothing settings")

// Smoothing low-pass filters each vector slot over time with a normalized
// Hann FIR kernel and decimates the result by an integer factor. The buffer
// is processed channel-major: one row per vector slot, one column per frame,
// each row zero-padded by windowSize-1 leading samples. Output vectors are
// re-normalized with the l2 threshold rule.
type Smoothing struct {
	windowSize int
	factor     int
	threshold  float64
	kernel     []float64
}

// NewSmoothing creates a smoothing step with the given Hann window length
// and integer downsampling factor.
func NewSmoothing(windowSize, downsampleFactor int, threshold float64) (*Smoothing, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w: window size %d", ErrInvalidSmoothing, windowSize)
	}

	if downsampleFactor < 1 {
		return nil, fmt.Errorf("%w: downsample factor %d", ErrInvalidSmoothing, downsampleFactor)
	}

	if threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold %g", ErrInvalidSmoothing, threshold)
	}

	return &Smoothing{
		windowSize: windowSize,
		factor:     downsampleFactor,
		threshold:  threshold,
		kernel:     window.Generate(window.TypeHann, windowSize, window.WithUnitSum()),
	}, nil
}

// Apply returns the smoothed, downsampled buffer. The output holds
// ceil(inputFrames/factor) frames at rate/factor.
func (s *Smoothing) Apply(buf *Buffer) (*Buffer, error) {
	n := buf.Len()
	channels := buf.Size()
	outRate := buf.Rate() / float64(s.factor)

	outFrames := (n + s.factor - 1) / s.factor

	vectors := make([][]float64, outFrames)
	for j := range vectors {
		vectors[j] = make([]float64, channels)
	}

	if n > 0 && channels > 0 {
		signal := make([]float64, s.windowSize-1+n)
		filtered := make([]float64, n)

		for ch := 0; ch < channels; ch++ {
			for t := 0; t < n; t++ {
				signal[s.windowSize-1+t] = buf.vectors[t][ch]
			}

			f64.ConvolveValid(filtered, signal, s.kernel)

			for j := 0; j < outFrames; j++ {
				vectors[j][ch] = filtered[j*s.factor]
			}
		}

		for _, v := range vectors {
			normalizeVector(v, 2, s.threshold)
		}
	}

	return &Buffer{vectors: vectors, size: channels, rate: outRate}, nil
}
