package resample

import (
	"math"
)

const (
	defaultTapsPerPhase = 32
	defaultCutoffScale  = 0.92
	defaultKaiserBeta   = 7.5
	defaultMaxDen       = 4096
)

type config struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
	maxDen       int
}

func defaultConfig() config {
	return config{
		tapsPerPhase: defaultTapsPerPhase,
		cutoffScale:  defaultCutoffScale,
		kaiserBeta:   defaultKaiserBeta,
		maxDen:       defaultMaxDen,
	}
}

// Option configures a Converter or Bank.
type Option func(*config)

// WithTapsPerPhase overrides the taps per polyphase branch.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tapsPerPhase = n
		}
	}
}

// WithCutoffScale overrides normalized cutoff scaling in range (0, 1].
func WithCutoffScale(v float64) Option {
	return func(cfg *config) {
		if v > 0 && v <= 1 {
			cfg.cutoffScale = v
		}
	}
}

// WithKaiserBeta overrides the Kaiser window beta parameter.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) {
		if beta > 0 {
			cfg.kaiserBeta = beta
		}
	}
}

// WithMaxDenominator caps denominator size for rate-ratio approximation.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

// Converter is one resampler rail: a streaming cascade of polyphase FIR
// stages converting a source rate to a target rate. Large decimation factors
// are decomposed into small-factor stages so every stage keeps a practical
// filter length. A Converter whose rates are equal passes samples through
// unchanged with zero latency; its output then aliases the input slice.
type Converter struct {
	stages []*stage
	up     int
	down   int

	latencyIn  int // constant latency in source-rate samples
	latencyOut int // the same latency expressed in target-rate samples
}

// NewConverter creates a rail converting inRate to outRate. The ratio is
// approximated rationally, so slightly detuned targets are supported.
func NewConverter(inRate, outRate float64, opts ...Option) (*Converter, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) ||
		math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	c := &Converter{up: up, down: down}
	if up == down {
		return c, nil
	}

	residual, factors := splitDecimation(down)

	type stageSpec struct{ up, down int }

	specs := make([]stageSpec, 0, len(factors)+1)
	if up > 1 || residual > 1 {
		specs = append(specs, stageSpec{up: up, down: residual})
	}

	for _, f := range factors {
		specs = append(specs, stageSpec{up: 1, down: f})
	}

	latency := 0.0
	rateScale := 1.0 // stage input rate relative to the converter input rate

	for _, spec := range specs {
		s, err := newStage(spec.up, spec.down, cfg)
		if err != nil {
			return nil, err
		}

		latency += s.latencyIn() / rateScale
		rateScale *= float64(spec.up) / float64(spec.down)

		c.stages = append(c.stages, s)
	}

	c.latencyIn = int(math.Round(latency))
	c.latencyOut = int(math.Round(latency * float64(up) / float64(down)))

	return c, nil
}

// splitDecimation factors small primes out of down for dedicated decimator
// stages, largest factors first. The residual (product of primes > 7, or 1)
// stays with the rational stage.
func splitDecimation(down int) (residual int, factors []int) {
	residual = down

	for _, p := range []int{7, 5, 3, 2} {
		for residual%p == 0 {
			factors = append(factors, p)
			residual /= p
		}
	}

	return residual, factors
}

// Ratio returns the reduced conversion ratio terms (target over source).
func (c *Converter) Ratio() (up, down int) {
	return c.up, c.down
}

// Latency returns the rail's constant latency in source-rate samples.
func (c *Converter) Latency() int {
	return c.latencyIn
}

// OutputLatency returns the rail's latency in target-rate samples; the
// first OutputLatency output samples of a fresh stream are transient.
func (c *Converter) OutputLatency() int {
	return c.latencyOut
}

// Process converts one contiguous input block. State persists across calls.
func (c *Converter) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	if len(c.stages) == 0 {
		return input
	}

	out := input
	for _, s := range c.stages {
		out = s.process(out)
	}

	return out
}

// Drain pushes the rail's own latency worth of zeros through the cascade,
// returning the samples still trapped in the filter history.
func (c *Converter) Drain() []float64 {
	if c.latencyIn == 0 {
		return nil
	}

	return c.Process(make([]float64, c.latencyIn))
}

// Reset restores the rail to its freshly constructed state.
func (c *Converter) Reset() {
	for _, s := range c.stages {
		s.reset()
	}
}
