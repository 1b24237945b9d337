package feature

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBuffer(t *testing.T, vectors [][]float64, rate float64) *Buffer {
	t.Helper()

	buf, err := NewBuffer(vectors, rate)
	require.NoError(t, err)

	return buf
}

func TestNewBufferValidation(t *testing.T) {
	_, err := NewBuffer([][]float64{{1, 2}, {3}}, 10)
	require.ErrorIs(t, err, ErrShape)

	_, err = NewBuffer([][]float64{{1, 2}}, 0)
	require.ErrorIs(t, err, ErrInvalidRate)

	buf, err := NewBuffer(nil, 10)
	require.NoError(t, err)
	require.Equal(t, 0, buf.Len())
}

func TestCompressionValues(t *testing.T) {
	c, err := NewCompression(100, 1)
	require.NoError(t, err)

	buf := mustBuffer(t, [][]float64{{0, 0.99, 9.99}}, 10)

	out, err := c.Apply(buf)
	require.NoError(t, err)

	require.InDelta(t, 0, out.Vector(0)[0], 1e-12)
	require.InDelta(t, 2, out.Vector(0)[1], 1e-12)
	require.InDelta(t, 3, out.Vector(0)[2], 1e-12)

	// The input buffer is untouched.
	require.Equal(t, 0.99, buf.Vector(0)[1])
}

func TestCompressionRejectsBadSettings(t *testing.T) {
	_, err := NewCompression(0, 1)
	require.ErrorIs(t, err, ErrInvalidCompression)

	_, err = NewCompression(100, 0.5)
	require.ErrorIs(t, err, ErrInvalidCompression)
}

func TestNormalizationIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, mode := range []NormMode{NormL1, NormL2} {
		n, err := NewNormalization(mode, DefaultNormThreshold)
		require.NoError(t, err)

		vec := make([]float64, 12)
		for i := range vec {
			vec[i] = rng.Float64()
		}

		once, err := n.Apply(mustBuffer(t, [][]float64{vec}, 10))
		require.NoError(t, err)

		twice, err := n.Apply(once)
		require.NoError(t, err)

		for i := range vec {
			require.InDelta(t, once.Vector(0)[i], twice.Vector(0)[i], 1e-12)
		}
	}
}

func TestNormalizationThresholdLaw(t *testing.T) {
	quiet := []float64{1e-9, 2e-9, 0, 5e-10}

	n, err := NewNormalization(NormL1, 1e-3)
	require.NoError(t, err)

	out, err := n.Apply(mustBuffer(t, [][]float64{quiet}, 10))
	require.NoError(t, err)

	for _, v := range out.Vector(0) {
		require.InDelta(t, 0.25, v, 1e-12)
	}

	n2, err := NewNormalization(NormL2, 1e-3)
	require.NoError(t, err)

	out, err = n2.Apply(mustBuffer(t, [][]float64{quiet}, 10))
	require.NoError(t, err)

	for _, v := range out.Vector(0) {
		require.InDelta(t, 0.5, v, 1e-12) // 1/sqrt(4)
	}
}

func TestNormalizationMaxMode(t *testing.T) {
	n, err := NewNormalization(NormMax, DefaultNormThreshold)
	require.NoError(t, err)

	buf := mustBuffer(t, [][]float64{{1, 2}, {4, 3}}, 10)

	out, err := n.Apply(buf)
	require.NoError(t, err)

	require.InDelta(t, 0.25, out.Vector(0)[0], 1e-12)
	require.InDelta(t, 1.0, out.Vector(1)[0], 1e-12)
	require.InDelta(t, 0.75, out.Vector(1)[1], 1e-12)
}

func TestQuantizationMapping(t *testing.T) {
	q, err := NewQuantization([]float64{1, 2, 3}, []float64{0.5, 0.25, 0.25})
	require.NoError(t, err)

	require.Equal(t, 0.0, q.Quantize(0.5))
	require.Equal(t, 0.5, q.Quantize(1))
	require.Equal(t, 0.75, q.Quantize(2.5))
	require.Equal(t, 1.0, q.Quantize(100))
}

func TestQuantizationMonotone(t *testing.T) {
	q := NewDefaultQuantization()

	prev := math.Inf(-1)
	for x := -1.0; x <= 2.0; x += 0.001 {
		y := q.Quantize(x)
		require.GreaterOrEqual(t, y, prev, "x=%v", x)
		prev = y
	}
}

func TestQuantizationRejectsBadConfig(t *testing.T) {
	_, err := NewQuantization([]float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, ErrInvalidQuantization)

	_, err = NewQuantization([]float64{2, 1}, []float64{1, 1})
	require.ErrorIs(t, err, ErrInvalidQuantization)

	_, err = NewQuantization(nil, nil)
	require.ErrorIs(t, err, ErrInvalidQuantization)

	_, err = NewQuantization([]float64{1, 2}, []float64{1, -1})
	require.ErrorIs(t, err, ErrInvalidQuantization)
}

func TestSmoothingFrameCountAndRate(t *testing.T) {
	cases := []struct {
		frames, factor, want int
	}{
		{10, 2, 5},
		{11, 2, 6},
		{10, 3, 4},
		{1, 4, 1},
		{0, 2, 0},
	}

	for _, tc := range cases {
		vectors := make([][]float64, tc.frames)
		for i := range vectors {
			vectors[i] = []float64{1, 0, 0}
		}

		s, err := NewSmoothing(5, tc.factor, DefaultNormThreshold)
		require.NoError(t, err)

		out, err := s.Apply(mustBuffer(t, vectors, 10))
		require.NoError(t, err)

		require.Equal(t, tc.want, out.Len(), "frames=%d factor=%d", tc.frames, tc.factor)
		require.InDelta(t, 10.0/float64(tc.factor), out.Rate(), 1e-12)
	}
}

func TestSmoothingOutputUnitNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	vectors := make([][]float64, 40)
	for i := range vectors {
		vectors[i] = make([]float64, 12)
		for j := range vectors[i] {
			vectors[i][j] = rng.Float64()
		}
	}

	s, err := NewSmoothing(11, 4, DefaultNormThreshold)
	require.NoError(t, err)

	out, err := s.Apply(mustBuffer(t, vectors, 10))
	require.NoError(t, err)

	for i := 0; i < out.Len(); i++ {
		var sum float64
		for _, v := range out.Vector(i) {
			sum += v * v
		}

		require.InDelta(t, 1.0, math.Sqrt(sum), 1e-9, "frame %d", i)
	}
}

func TestChainBuildAndApply(t *testing.T) {
	chain, err := NewChain(DefaultRegistry(), []StepConfig{
		{Name: StepCompression},
		{Name: StepNormalization, Str: map[string]string{"mode": "l2"}},
		{Name: StepSmoothing, Num: map[string]float64{"window": 5, "factor": 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, chain.Len())

	vectors := make([][]float64, 8)
	for i := range vectors {
		vectors[i] = []float64{1, 2, 3, 4}
	}

	out, err := chain.Apply(mustBuffer(t, vectors, 10))
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	require.InDelta(t, 5.0, out.Rate(), 1e-12)
}

func TestChainUnknownStep(t *testing.T) {
	_, err := NewChain(DefaultRegistry(), []StepConfig{{Name: "reverb"}})
	require.ErrorIs(t, err, ErrUnknownStep)
}

func TestChainInvalidParams(t *testing.T) {
	_, err := NewChain(DefaultRegistry(), []StepConfig{
		{Name: StepNormalization, Str: map[string]string{"mode": "l7"}},
	})
	require.ErrorIs(t, err, ErrInvalidNormalization)

	_, err = NewChain(DefaultRegistry(), []StepConfig{
		{Name: StepQuantization, List: map[string][]float64{
			"steps":   {1, 2},
			"weights": {1},
		}},
	})
	require.ErrorIs(t, err, ErrInvalidQuantization)
}

func TestEmptyChainIsIdentity(t *testing.T) {
	chain, err := NewChain(DefaultRegistry(), nil)
	require.NoError(t, err)

	buf := mustBuffer(t, [][]float64{{1, 2}}, 10)

	out, err := chain.Apply(buf)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}
