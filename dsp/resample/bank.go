package resample

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chroma/dsp/rates"
	"github.com/cwbudde/algo-chroma/internal/parallel"
)

// Bank converts one input stream into five parallel streams at the canonical
// rates. The rails share no state and are evaluated in parallel within one
// call; like the rest of the streaming pipeline, a Bank instance expects
// callers to serialize Process/Drain calls.
//
// The tuning reference warps each rail's target rate by tuning/440, so a
// stream whose reference pitch deviates from A440 lands on the fixed
// 440-designed pitch filters downstream.
type Bank struct {
	rails [rates.NumRates]*Converter
}

// NewBank creates the five-rail bank for the given nominal input rate and
// tuning reference frequency.
func NewBank(inputRate, tuningHz float64, opts ...Option) (*Bank, error) {
	if inputRate <= 0 || math.IsNaN(inputRate) || math.IsInf(inputRate, 0) {
		return nil, fmt.Errorf("%w: input %g Hz", ErrInvalidRate, inputRate)
	}

	ratio, err := rates.TuningRatio(tuningHz)
	if err != nil {
		return nil, err
	}

	b := &Bank{}

	for i, canonical := range rates.Ladder {
		rail, err := NewConverter(inputRate, canonical*ratio, opts...)
		if err != nil {
			return nil, fmt.Errorf("rail %g Hz: %w", canonical, err)
		}

		b.rails[i] = rail
	}

	return b, nil
}

// Process converts one input chunk into five per-rate chunks, indexed by
// ladder position. Rails run in parallel; each writes only its own slot.
// A pass-through rail's output aliases the input slice.
func (b *Bank) Process(chunk []float64) [rates.NumRates][]float64 {
	var out [rates.NumRates][]float64

	parallel.For(rates.NumRates, func(i int) {
		out[i] = b.rails[i].Process(chunk)
	})

	return out
}

// Drain flushes every rail by feeding it its own latency worth of zeros and
// returns the recovered tails.
func (b *Bank) Drain() [rates.NumRates][]float64 {
	var out [rates.NumRates][]float64

	parallel.For(rates.NumRates, func(i int) {
		out[i] = b.rails[i].Drain()
	})

	return out
}

// Latency returns rail i's latency in source-rate samples.
func (b *Bank) Latency(i int) int {
	return b.rails[i].Latency()
}

// OutputLatency returns rail i's latency in canonical-rate samples.
func (b *Bank) OutputLatency(i int) int {
	return b.rails[i].OutputLatency()
}

// Reset restores every rail to its freshly constructed state.
func (b *Bank) Reset() {
	for _, r := range b.rails {
		r.Reset()
	}
}
