package filterbank

import (
	"errors"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/cwbudde/algo-chroma/dsp/feature"
	"github.com/cwbudde/algo-chroma/dsp/pitchfilter"
	"github.com/cwbudde/algo-chroma/dsp/rates"
	"github.com/cwbudde/algo-chroma/dsp/resample"
	"github.com/cwbudde/algo-chroma/internal/parallel"
)

// FeatureRate is the nominal output rate in pitch vectors per second.
const FeatureRate = 10.0

// Frame geometry reference, expressed at the 22050 Hz canonical rate:
// a 200 ms analysis window advanced by a 100 ms hop.
const (
	referenceRate = 22050.0
	baseFrameSize = 4410.0
	baseHop       = 2205.0
)

// ErrDrained is returned when Process or Drain is called after the stream
// has been drained; Reset restores the instance for a new stream.
var ErrDrained = errors.New("filterbank: stream drained, reset before reuse")

// pitchState carries one pitch's streaming extraction state: the filtered
// sample queue, the latency samples still to discard, the energies cut but
// not yet emitted, and the monotonic block index driving the hop sequence.
type pitchState struct {
	rateIdx    int
	scale      float64
	sizeRatio  float64
	size       int
	groupDelay int

	queue    []float64
	energies []float64
	pending  int
	block    int64
}

// hopAt returns the hop for block index b. The round-of-cumulative-position
// form keeps frame boundaries gap-free even when the ideal hop is fractional.
func (st *pitchState) hopAt(b int64) int {
	next := math.Round(baseHop * float64(b+1) * st.sizeRatio)
	cur := math.Round(baseHop * float64(b) * st.sizeRatio)

	return int(next - cur)
}

// push appends filtered samples, discarding any that still fall inside the
// pitch's latency-compensation window.
func (st *pitchState) push(samples []float64) {
	if st.pending > 0 {
		if st.pending >= len(samples) {
			st.pending -= len(samples)

			return
		}

		samples = samples[st.pending:]
		st.pending = 0
	}

	st.queue = append(st.queue, samples...)
}

// cut extracts every completable frame from the queue. A frame normally
// requires a full window of samples; in drain mode one hop suffices, so the
// stream's tail yields a final, possibly short, frame.
func (st *pitchState) cut(drain bool) {
	for {
		hop := st.hopAt(st.block)

		need := st.size
		if drain {
			need = hop
		}

		if need < 1 || len(st.queue) < need {
			return
		}

		window := st.queue
		if len(window) > st.size {
			window = window[:st.size]
		}

		st.energies = append(st.energies, f64.DotProduct(window, window)*st.scale)
		st.queue = st.queue[hop:]
		st.block++
	}
}

// Orchestrator is the streaming front of the filterbank path. It is built
// once per stream for a nominal input rate and tuning reference, advances
// its state across successive Process calls, is finalized by exactly one
// Drain, and must be Reset before reuse. Instances are single-call-at-a-time:
// callers serialize Process and Drain on one instance.
type Orchestrator struct {
	bank    *resample.Bank
	filters *pitchfilter.Array
	states  [rates.NumPitches]*pitchState
	covered []int
	drained bool
}

// New creates an orchestrator for a stream at the given nominal input rate
// and tuning reference frequency.
func New(inputRate, tuningHz float64, opts ...resample.Option) (*Orchestrator, error) {
	ratio, err := rates.TuningRatio(tuningHz)
	if err != nil {
		return nil, err
	}

	bank, err := resample.NewBank(inputRate, tuningHz, opts...)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		bank:    bank,
		filters: pitchfilter.NewArray(),
	}

	for p := 0; p < rates.NumPitches; p++ {
		if !o.filters.Covered(p) {
			continue
		}

		rateIdx := rates.ForPitch(p)
		rate := rates.Ladder[rateIdx]
		sizeRatio := ratio * rate / referenceRate
		delay := o.filters.GroupDelay(p)

		o.states[p] = &pitchState{
			rateIdx:    rateIdx,
			scale:      referenceRate / rate,
			sizeRatio:  sizeRatio,
			size:       int(math.Round(baseFrameSize * sizeRatio)),
			groupDelay: delay,
			pending:    delay + bank.OutputLatency(rateIdx),
		}

		o.covered = append(o.covered, p)
	}

	return o, nil
}

// Rate returns the nominal feature rate in vectors per second.
func (o *Orchestrator) Rate() float64 { return FeatureRate }

// Process pushes one chunk of input samples through the pipeline and returns
// every pitch vector completable so far. Vectors are aligned across pitches
// by the minimum available column count, so output trails the input by the
// slowest pitch's latency; Drain recovers the remainder.
func (o *Orchestrator) Process(chunk []float64) (*feature.Buffer, error) {
	if o.drained {
		return nil, ErrDrained
	}

	railOut := o.bank.Process(chunk)

	parallel.For(len(o.covered), func(i int) {
		p := o.covered[i]
		st := o.states[p]

		if filtered := o.filters.Process(p, railOut[st.rateIdx]); filtered != nil {
			st.push(filtered)
		}

		st.cut(false)
	})

	return o.emit(false)
}

// Drain terminates the stream: it flushes the resampler rails, pushes each
// pitch's group delay worth of zeros through its filter to recover the
// samples still trapped in the delay lines, cuts the remaining frames in
// short-frame mode, and emits every outstanding column. Pitches that come up
// short against the longest column count contribute implicit zeros.
func (o *Orchestrator) Drain() (*feature.Buffer, error) {
	if o.drained {
		return nil, ErrDrained
	}

	o.drained = true

	tails := o.bank.Drain()

	parallel.For(len(o.covered), func(i int) {
		p := o.covered[i]
		st := o.states[p]

		if filtered := o.filters.Process(p, tails[st.rateIdx]); filtered != nil {
			st.push(filtered)
		}

		if st.groupDelay > 0 {
			flush := o.filters.Process(p, make([]float64, st.groupDelay))
			if flush != nil {
				st.push(flush)
			}
		}

		st.cut(true)
	})

	return o.emit(true)
}

// Reset restores the orchestrator to its freshly constructed state so it can
// extract a new stream.
func (o *Orchestrator) Reset() {
	o.bank.Reset()
	o.filters.Reset()

	for _, p := range o.covered {
		st := o.states[p]
		st.queue = nil
		st.energies = nil
		st.pending = st.groupDelay + o.bank.OutputLatency(st.rateIdx)
		st.block = 0
	}

	o.drained = false
}

// emit assembles aligned pitch vector columns from the per-pitch energy
// queues: the minimum available count governs mid-stream, the maximum at
// drain, with zeros filling pitches that have no value for a column.
func (o *Orchestrator) emit(drain bool) (*feature.Buffer, error) {
	cols := 0

	if drain {
		for _, p := range o.covered {
			if n := len(o.states[p].energies); n > cols {
				cols = n
			}
		}
	} else if len(o.covered) > 0 {
		cols = math.MaxInt

		for _, p := range o.covered {
			if n := len(o.states[p].energies); n < cols {
				cols = n
			}
		}
	}

	vectors := make([][]float64, cols)
	for c := range vectors {
		vectors[c] = make([]float64, rates.NumPitches)
	}

	for _, p := range o.covered {
		st := o.states[p]

		n := len(st.energies)
		if n > cols {
			n = cols
		}

		for c := 0; c < n; c++ {
			vectors[c][p] = st.energies[c]
		}

		st.energies = st.energies[n:]
	}

	return feature.NewBuffer(vectors, FeatureRate)
}
