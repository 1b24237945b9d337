package feature

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Step names accepted by the default registry.
const (
	StepCompression   = "compression"
	StepNormalization = "normalization"
	StepQuantization  = "quantization"
	StepSmoothing     = "smoothing"
)

// ErrUnknownStep is returned when a recipe references an unregistered step.
var ErrUnknownStep = errors.New("feature: unknown step")

// Step transforms one buffer into another. Steps are applied in recipe
// order; a step may change the frame count and feature rate but never the
// vector size.
type Step interface {
	Apply(buf *Buffer) (*Buffer, error)
}

// StepConfig describes one recipe entry: a registered step name plus its
// numeric, string and list parameters.
type StepConfig struct {
	Name string
	Num  map[string]float64
	Str  map[string]string
	List map[string][]float64
}

// GetNum safely extracts a numeric parameter, returning def if missing or
// invalid.
func (c StepConfig) GetNum(key string, def float64) float64 {
	if c.Num == nil {
		return def
	}

	v, ok := c.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetStr safely extracts a string parameter, returning def if missing.
func (c StepConfig) GetStr(key, def string) string {
	if c.Str == nil {
		return def
	}

	v, ok := c.Str[key]
	if !ok || v == "" {
		return def
	}

	return v
}

// GetList extracts a list parameter, or nil if missing.
func (c StepConfig) GetList(key string) []float64 {
	if c.List == nil {
		return nil
	}

	return c.List[key]
}

// Factory builds one Step from its configuration.
type Factory func(cfg StepConfig) (Step, error)

// Registry maps step names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given step name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("feature: empty step name")
	}

	if factory == nil {
		return errors.New("feature: nil factory")
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("feature: duplicate step %q", name)
	}

	r.factories[name] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("feature registry: " + err.Error())
	}
}

// Lookup returns the factory for the given step name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// DefaultRegistry returns a registry with the four standard steps.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(StepCompression, func(cfg StepConfig) (Step, error) {
		return NewCompression(
			cfg.GetNum("factor", DefaultCompressionFactor),
			cfg.GetNum("term", DefaultCompressionTerm),
		)
	})

	r.MustRegister(StepNormalization, func(cfg StepConfig) (Step, error) {
		mode, err := parseNormMode(cfg.GetStr("mode", "l2"))
		if err != nil {
			return nil, err
		}

		return NewNormalization(mode, cfg.GetNum("threshold", DefaultNormThreshold))
	})

	r.MustRegister(StepQuantization, func(cfg StepConfig) (Step, error) {
		steps := cfg.GetList("steps")
		weights := cfg.GetList("weights")

		if steps == nil && weights == nil {
			return NewDefaultQuantization(), nil
		}

		return NewQuantization(steps, weights)
	})

	r.MustRegister(StepSmoothing, func(cfg StepConfig) (Step, error) {
		return NewSmoothing(
			int(cfg.GetNum("window", 21)),
			int(cfg.GetNum("factor", 1)),
			cfg.GetNum("threshold", DefaultNormThreshold),
		)
	})

	return r
}

func parseNormMode(raw string) (NormMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "max":
		return NormMax, nil
	case "l1":
		return NormL1, nil
	case "l2":
		return NormL2, nil
	default:
		return 0, fmt.Errorf("%w: mode %q", ErrInvalidNormalization, raw)
	}
}

// Chain is an ordered pipeline of configured steps.
type Chain struct {
	steps []Step
}

// NewChain builds a chain from recipe entries against the given registry.
// Unknown step names and invalid parameters fail at build time.
func NewChain(registry *Registry, cfgs []StepConfig) (*Chain, error) {
	steps := make([]Step, 0, len(cfgs))

	for i, cfg := range cfgs {
		factory := registry.Lookup(cfg.Name)
		if factory == nil {
			return nil, fmt.Errorf("%w: %q (entry %d)", ErrUnknownStep, cfg.Name, i)
		}

		step, err := factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("feature: step %q (entry %d): %w", cfg.Name, i, err)
		}

		steps = append(steps, step)
	}

	return &Chain{steps: steps}, nil
}

// Len returns the number of configured steps.
func (c *Chain) Len() int { return len(c.steps) }

// Apply runs the buffer through every step in order.
func (c *Chain) Apply(buf *Buffer) (*Buffer, error) {
	out := buf

	for i, step := range c.steps {
		var err error

		out, err = step.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("feature: step %d: %w", i, err)
		}
	}

	return out, nil
}
