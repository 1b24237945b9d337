package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-chroma/dsp/rates"
)

// Generator creates deterministic test signals at a fixed sample rate.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a signal generator for the given sample rate.
func NewGenerator(sampleRate float64, opts ...Option) (*Generator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("generator sample rate must be > 0: %f", sampleRate)
	}

	g := &Generator{
		sampleRate: sampleRate,
		seed:       1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// SampleRate returns the generator's sample rate.
func (g *Generator) SampleRate() float64 {
	return g.sampleRate
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Tone generates a sine wave at the center frequency of a MIDI pitch under
// the given tuning reference.
func (g *Generator) Tone(pitch int, tuningHz, amplitude float64, samples int) ([]float64, error) {
	if pitch < 0 || pitch >= rates.NumPitches {
		return nil, fmt.Errorf("tone pitch out of range: %d", pitch)
	}
	if _, err := rates.TuningRatio(tuningHz); err != nil {
		return nil, err
	}
	return g.Sine(rates.PitchFreq(pitch, tuningHz), amplitude, samples)
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}
