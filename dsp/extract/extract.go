package extract

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-chroma/dsp/chroma"
	"github.com/cwbudde/algo-chroma/dsp/feature"
	"github.com/cwbudde/algo-chroma/dsp/filterbank"
	"github.com/cwbudde/algo-chroma/dsp/stft"
	"github.com/cwbudde/algo-chroma/dsp/window"
)

// Method selects the extraction front end.
type Method string

const (
	// MethodFilterbank is the streaming multirate filterbank path.
	MethodFilterbank Method = "filterbank"
	// MethodSTFT is the one-shot windowed-FFT path.
	MethodSTFT Method = "stft"
)

var (
	// ErrInvalidRecipe indicates a malformed recipe.
	ErrInvalidRecipe = errors.New("extract: invalid recipe")
	// ErrNotStreaming is returned when Process or Finish is called on an
	// extractor whose method is the one-shot STFT path.
	ErrNotStreaming = errors.New("extract: method does not support streaming")
	// ErrFinished is returned when an extractor is used after Finish
	// without an intervening Reset.
	ErrFinished = errors.New("extract: stream finished, reset before reuse")
)

// STFTParams carries the windowed-FFT method's settings. Zero values fall
// back to the stft package defaults.
type STFTParams struct {
	FFTSize   int
	Hop       int
	ZeroPhase bool
	Power     bool
}

// Recipe describes one complete extraction: the method and its parameters,
// the ordered feature-chain steps, and whether to fold pitches into chroma.
// The recipe is built and owned by the caller.
type Recipe struct {
	Method     Method
	SampleRate float64
	TuningHz   float64
	STFT       STFTParams
	Steps      []feature.StepConfig
	FoldChroma bool
}

// withDefaults returns the recipe with the method and tuning defaults
// applied.
func (r Recipe) withDefaults() Recipe {
	if r.Method == "" {
		r.Method = MethodFilterbank
	}

	if r.TuningHz == 0 {
		r.TuningHz = 440
	}

	return r
}

// Validate checks the recipe's method, rates and method parameters. Chain
// step parameters are validated separately when the extractor is built.
func (r Recipe) Validate() error {
	r = r.withDefaults()

	switch r.Method {
	case MethodFilterbank, MethodSTFT:
	default:
		return fmt.Errorf("%w: method %q", ErrInvalidRecipe, r.Method)
	}

	if r.SampleRate <= 0 || math.IsNaN(r.SampleRate) || math.IsInf(r.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate %g", ErrInvalidRecipe, r.SampleRate)
	}

	if r.TuningHz <= 0 || math.IsNaN(r.TuningHz) || math.IsInf(r.TuningHz, 0) {
		return fmt.Errorf("%w: tuning %g Hz", ErrInvalidRecipe, r.TuningHz)
	}

	if r.Method == MethodSTFT {
		if r.STFT.FFTSize < 0 || r.STFT.Hop < 0 {
			return fmt.Errorf("%w: negative stft parameters", ErrInvalidRecipe)
		}
	}

	return nil
}

// Extractor runs one recipe. For the filterbank method it is a streaming
// instance: repeated Process calls push samples in, one Finish call drains
// the pipeline and applies the chain and the fold. For the STFT method only
// ExtractAll is available.
type Extractor struct {
	recipe Recipe
	chain  *feature.Chain

	orch     *filterbank.Orchestrator
	analyzer *stft.Extractor

	pending  [][]float64
	finished bool
}

// New builds an extractor for the recipe. Unknown chain steps and invalid
// step parameters fail here.
func New(recipe Recipe) (*Extractor, error) {
	recipe = recipe.withDefaults()

	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	chain, err := feature.NewChain(feature.DefaultRegistry(), recipe.Steps)
	if err != nil {
		return nil, err
	}

	e := &Extractor{recipe: recipe, chain: chain}

	switch recipe.Method {
	case MethodFilterbank:
		e.orch, err = filterbank.New(recipe.SampleRate, recipe.TuningHz)

	case MethodSTFT:
		opts := []stft.Option{
			stft.WithZeroPhase(recipe.STFT.ZeroPhase),
			stft.WithPower(recipe.STFT.Power),
			stft.WithWindow(window.TypeHann),
		}

		if recipe.STFT.FFTSize > 0 {
			opts = append(opts, stft.WithFFTSize(recipe.STFT.FFTSize))
		}

		if recipe.STFT.Hop > 0 {
			opts = append(opts, stft.WithHop(recipe.STFT.Hop))
		}

		e.analyzer, err = stft.NewExtractor(recipe.SampleRate, recipe.TuningHz, opts...)
	}

	if err != nil {
		return nil, err
	}

	return e, nil
}

// Recipe returns the recipe the extractor was built from, with defaults
// applied.
func (e *Extractor) Recipe() Recipe { return e.recipe }

// Process pushes one chunk of samples into the streaming pipeline and
// returns the raw pitch vectors completable so far. The chain and the chroma
// fold are deferred to Finish because several chain steps depend on the
// whole buffer.
func (e *Extractor) Process(chunk []float64) (*feature.Buffer, error) {
	if e.orch == nil {
		return nil, ErrNotStreaming
	}

	if e.finished {
		return nil, ErrFinished
	}

	buf, err := e.orch.Process(chunk)
	if err != nil {
		return nil, err
	}

	e.pending = append(e.pending, buf.Vectors()...)

	return buf, nil
}

// Finish drains the pipeline, applies the chain to the full pitch-vector
// sequence and folds it into chroma when the recipe asks for it. The
// extractor must be Reset before processing another stream.
func (e *Extractor) Finish() (*feature.Buffer, error) {
	if e.orch == nil {
		return nil, ErrNotStreaming
	}

	if e.finished {
		return nil, ErrFinished
	}

	e.finished = true

	tail, err := e.orch.Drain()
	if err != nil {
		return nil, err
	}

	vectors := append(e.pending, tail.Vectors()...)
	e.pending = nil

	buf, err := feature.NewBuffer(vectors, filterbank.FeatureRate)
	if err != nil {
		return nil, err
	}

	return e.finalize(buf)
}

// ExtractAll runs the complete signal through the recipe in one call. For
// the filterbank method the extractor must be fresh or Reset.
func (e *Extractor) ExtractAll(samples []float64) (*feature.Buffer, error) {
	if e.analyzer != nil {
		buf, err := e.analyzer.Pitches(samples)
		if err != nil {
			return nil, err
		}

		return e.finalize(buf)
	}

	if _, err := e.Process(samples); err != nil {
		return nil, err
	}

	return e.Finish()
}

// Reset restores a streaming extractor for a new stream. It is a no-op for
// the STFT method, which holds no cross-call state.
func (e *Extractor) Reset() {
	if e.orch != nil {
		e.orch.Reset()
	}

	e.pending = nil
	e.finished = false
}

// finalize applies the feature chain and the optional chroma fold.
func (e *Extractor) finalize(buf *feature.Buffer) (*feature.Buffer, error) {
	out, err := e.chain.Apply(buf)
	if err != nil {
		return nil, err
	}

	if e.recipe.FoldChroma {
		return chroma.FoldBuffer(out)
	}

	return out, nil
}
