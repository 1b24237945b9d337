package pitchfilter

import (
	"math"
	"testing"
)

func benchInput(n int) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 4410)
	}

	return buf
}

func BenchmarkCascadeProcessBlock(b *testing.B) {
	c := NewCascade(designPitch(69))
	buf := benchInput(4096)

	b.ReportAllocs()
	b.SetBytes(int64(len(buf) * 8))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c.ProcessBlock(buf)
	}
}

func BenchmarkArrayProcess(b *testing.B) {
	a := NewArray()
	buf := benchInput(4410)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for p := 60; p < 96; p++ {
			_ = a.Process(p, buf)
		}
	}
}
