package resample

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down conversion ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// stage is one streaming polyphase rational FIR resampler. The prototype
// low-pass is a Kaiser-windowed sinc sized to the larger of the two ratio
// terms, so pure decimation stages get proportionally longer filters.
type stage struct {
	up   int
	down int

	phases     [][]float64
	maxPhaseLn int

	phase      int
	inputIndex int
	totalIn    int
	history    []float64
}

func newStage(up, down int, cfg config) (*stage, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	phases, maxPhaseLn, err := designStageFIR(up, down, cfg)
	if err != nil {
		return nil, err
	}

	return &stage{
		up:         up,
		down:       down,
		phases:     phases,
		maxPhaseLn: maxPhaseLn,
		history:    make([]float64, 0, maxPhaseLn-1),
	}, nil
}

// numTaps returns the prototype filter length on the upsampled grid.
func (s *stage) numTaps() int {
	n := 0
	for _, p := range s.phases {
		n += len(p)
	}

	return n
}

// latencyIn returns the stage group delay in stage-input samples.
func (s *stage) latencyIn() float64 {
	return float64(s.numTaps()-1) / (2 * float64(s.up))
}

// process converts one input block, preserving filter history across calls
// so successive blocks form one continuous stream.
func (s *stage) process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, 0, s.predictOutputLen(len(input)))

	work := make([]float64, len(s.history)+len(input))
	copy(work, s.history)
	copy(work[len(s.history):], input)

	baseIndex := s.totalIn - len(s.history)
	lastAvail := s.totalIn + len(input) - 1

	for s.inputIndex <= lastAvail {
		taps := s.phases[s.phase]

		var y float64

		for k, c := range taps {
			idx := s.inputIndex - k
			if idx < baseIndex || idx > lastAvail {
				continue
			}

			y += c * work[idx-baseIndex]
		}

		out = append(out, y)

		s.phase += s.down
		s.inputIndex += s.phase / s.up
		s.phase %= s.up
	}

	s.totalIn += len(input)

	keep := s.maxPhaseLn - 1
	if keep < 0 {
		keep = 0
	}

	if keep > len(work) {
		keep = len(work)
	}

	s.history = append(s.history[:0], work[len(work)-keep:]...)

	return out
}

// predictOutputLen returns the output sample count the next process call
// will produce for the given input length.
func (s *stage) predictOutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	lastAvail := s.totalIn + inputLen - 1
	i := s.inputIndex
	phase := s.phase

	count := 0
	for i <= lastAvail {
		count++
		phase += s.down
		i += phase / s.up
		phase %= s.up
	}

	return count
}

func (s *stage) reset() {
	s.phase = 0
	s.inputIndex = 0
	s.totalIn = 0
	s.history = s.history[:0]
}

// designStageFIR designs the Kaiser-windowed prototype and splits it into
// polyphase branches.
func designStageFIR(up, down int, cfg config) ([][]float64, int, error) {
	if cfg.tapsPerPhase <= 0 {
		return nil, 0, errors.New("resample: taps per phase must be > 0")
	}

	if cfg.cutoffScale <= 0 || cfg.cutoffScale > 1 {
		return nil, 0, errors.New("resample: cutoff scale must be in (0,1]")
	}

	span := up
	if down > span {
		span = down
	}

	nTaps := cfg.tapsPerPhase * span

	fc := (0.5 / float64(span)) * cfg.cutoffScale
	if fc <= 0 || fc >= 0.5 {
		return nil, 0, fmt.Errorf("resample: invalid cutoff %.6f", fc)
	}

	taps := make([]float64, nTaps)

	center := 0.5 * float64(nTaps-1)
	for n := range nTaps {
		t := float64(n) - center
		taps[n] = 2 * fc * sinc(2*fc*t) * kaiserWindow(n, nTaps, cfg.kaiserBeta)
	}

	var sum float64
	for _, v := range taps {
		sum += v
	}

	if sum == 0 {
		return nil, 0, errors.New("resample: designed zero-sum filter")
	}

	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}

	phases := make([][]float64, up)
	maxPhaseLn := 0

	for p := range up {
		phase := make([]float64, 0, (nTaps-p+up-1)/up)
		for i := p; i < nTaps; i += up {
			phase = append(phase, taps[i])
		}

		if len(phase) > maxPhaseLn {
			maxPhaseLn = len(phase)
		}

		phases[p] = phase
	}

	return phases, maxPhaseLn, nil
}

func approximateRatio(v float64, maxDen int) (num, den int) {
	if maxDen <= 0 {
		maxDen = defaultMaxDen
	}

	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	a0 := math.Floor(v)
	p0, q0 := 1.0, 0.0
	p1, q1 := a0, 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac == 0 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)
		p2 := a*p1 + p0

		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0 = p1, q1
		p1, q1 = p2, q2
	}

	num = int(math.Round(p1))

	den = int(math.Round(q1))
	if den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

func kaiserWindow(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1
	a := math.Sqrt(math.Max(0, 1-t*t))

	return i0(beta*a) / i0(beta)
}

// i0 is the zeroth-order modified Bessel function (power series).
func i0(x float64) float64 {
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
