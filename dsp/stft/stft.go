package stft

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chroma/dsp/feature"
	"github.com/cwbudde/algo-chroma/dsp/rates"
	"github.com/cwbudde/algo-chroma/dsp/window"
)

// ErrInvalidConfig indicates bad sample rate, FFT size or hop settings.
var ErrInvalidConfig = errors.New("stft: invalid configuration")

type config struct {
	fftSize    int
	hop        int
	windowType window.Type
	zeroPhase  bool
	power      bool
}

func defaultConfig() config {
	return config{
		fftSize:    8192,
		hop:        0, // resolved to fftSize/2 when left unset
		windowType: window.TypeHann,
		zeroPhase:  false,
		power:      false,
	}
}

// Option customizes the extractor.
type Option func(*config)

// WithFFTSize sets the analysis frame and FFT length in samples.
func WithFFTSize(n int) Option {
	return func(c *config) { c.fftSize = n }
}

// WithHop sets the frame advance in samples. Defaults to half the FFT size.
func WithHop(hop int) Option {
	return func(c *config) { c.hop = hop }
}

// WithWindow selects the analysis window type.
func WithWindow(t window.Type) Option {
	return func(c *config) { c.windowType = t }
}

// WithZeroPhase centers the window around sample zero by circularly rotating
// each windowed frame by half the FFT size before transforming.
func WithZeroPhase(enabled bool) Option {
	return func(c *config) { c.zeroPhase = enabled }
}

// WithPower emits squared magnitudes instead of magnitudes.
func WithPower(enabled bool) Option {
	return func(c *config) { c.power = enabled }
}

// Extractor computes pitch feature vectors from a complete buffered signal.
// It holds no state across calls and may be reused for any number of inputs.
type Extractor struct {
	cfg        config
	sampleRate float64
	plan       *algofft.Plan[complex128]
	win        []float64
	binToPitch []int
	in         []complex128
	out        []complex128
}

// NewExtractor creates an extractor for signals at the given sample rate.
// The tuning frequency shifts the bin-to-pitch map so that a tone at the
// tuning frequency lands on MIDI pitch 69.
func NewExtractor(sampleRate, tuningHz float64, opts ...Option) (*Extractor, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.hop == 0 {
		cfg.hop = cfg.fftSize / 2
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, sampleRate)
	}

	if cfg.fftSize < 2 {
		return nil, fmt.Errorf("%w: fft size %d", ErrInvalidConfig, cfg.fftSize)
	}

	if cfg.hop < 1 {
		return nil, fmt.Errorf("%w: hop %d", ErrInvalidConfig, cfg.hop)
	}

	if _, err := rates.TuningRatio(tuningHz); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("stft: fft plan: %w", err)
	}

	return &Extractor{
		cfg:        cfg,
		sampleRate: sampleRate,
		plan:       plan,
		win:        window.Generate(cfg.windowType, cfg.fftSize),
		binToPitch: buildBinMap(cfg.fftSize, sampleRate, tuningHz),
		in:         make([]complex128, cfg.fftSize),
		out:        make([]complex128, cfg.fftSize),
	}, nil
}

// buildBinMap assigns each non-DC FFT bin below Nyquist to the nearest MIDI
// pitch, or -1 when the bin falls outside the pitch range.
func buildBinMap(fftSize int, sampleRate, tuningHz float64) []int {
	bins := fftSize/2 + 1
	m := make([]int, bins)
	m[0] = -1

	for k := 1; k < bins; k++ {
		freq := float64(k) * sampleRate / float64(fftSize)
		pitch := int(math.Round(float64(rates.ReferencePitch) + 12*math.Log2(freq/tuningHz)))

		if pitch < 0 || pitch >= rates.NumPitches {
			pitch = -1
		}

		m[k] = pitch
	}

	return m
}

// NumBins returns the number of spectrum bins per frame (fftSize/2 + 1).
func (e *Extractor) NumBins() int { return e.cfg.fftSize/2 + 1 }

// FrameRate returns the feature rate in frames per second.
func (e *Extractor) FrameRate() float64 { return e.sampleRate / float64(e.cfg.hop) }

// numFrames counts the full frames a signal of length n yields.
func (e *Extractor) numFrames(n int) int {
	if n < e.cfg.fftSize {
		return 0
	}

	return (n-e.cfg.fftSize)/e.cfg.hop + 1
}

// Bins computes one magnitude (or power) spectrum per frame. Each output
// vector has NumBins entries. Signals shorter than one frame yield no frames.
func (e *Extractor) Bins(samples []float64) ([][]float64, error) {
	frames := make([][]float64, 0, e.numFrames(len(samples)))

	for start := 0; start+e.cfg.fftSize <= len(samples); start += e.cfg.hop {
		bins, err := e.transform(samples[start : start+e.cfg.fftSize])
		if err != nil {
			return nil, err
		}

		frames = append(frames, bins)
	}

	return frames, nil
}

// Pitches folds each frame's bins into a 128-entry pitch vector and returns
// the frames as a feature buffer at the extractor's frame rate.
func (e *Extractor) Pitches(samples []float64) (*feature.Buffer, error) {
	bins, err := e.Bins(samples)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(bins))

	for i, frame := range bins {
		v := make([]float64, rates.NumPitches)

		for k, mag := range frame {
			if p := e.binToPitch[k]; p >= 0 {
				v[p] += mag
			}
		}

		vectors[i] = v
	}

	return feature.NewBuffer(vectors, e.FrameRate())
}

// transform windows one frame, optionally rotates it for zero-phase
// alignment, and returns the magnitude or power of the lower spectrum half.
func (e *Extractor) transform(frame []float64) ([]float64, error) {
	n := e.cfg.fftSize
	half := n / 2

	if e.cfg.zeroPhase {
		for i := 0; i < n; i++ {
			e.in[(i+half)%n] = complex(frame[i]*e.win[i], 0)
		}
	} else {
		for i := 0; i < n; i++ {
			e.in[i] = complex(frame[i]*e.win[i], 0)
		}
	}

	if err := e.plan.Forward(e.out, e.in); err != nil {
		return nil, fmt.Errorf("stft: forward fft: %w", err)
	}

	bins := e.NumBins()
	re := make([]float64, bins)
	im := make([]float64, bins)

	for k := 0; k < bins; k++ {
		re[k] = real(e.out[k])
		im[k] = imag(e.out[k])
	}

	out := make([]float64, bins)
	if e.cfg.power {
		vecmath.Power(out, re, im)
	} else {
		vecmath.Magnitude(out, re, im)
	}

	return out, nil
}
