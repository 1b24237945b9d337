package resample

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chroma/dsp/rates"
)

func TestBankRailRatios(t *testing.T) {
	b, err := NewBank(44100, 440)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}

	chunk := make([]float64, 44100)

	out := b.Process(chunk)
	out2 := b.Drain()

	for i, canonical := range rates.Ladder {
		total := len(out[i]) + len(out2[i])

		want := int(canonical)
		if total < want-2 || total > want+b.OutputLatency(i)+2 {
			t.Fatalf("rail %g: %d samples for 1 s input, want about %d", canonical, total, want)
		}
	}
}

func TestBankPassthroughRail(t *testing.T) {
	b, err := NewBank(44100, 440)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}

	idx, err := rates.Index(44100)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	if b.OutputLatency(idx) != 0 || b.Latency(idx) != 0 {
		t.Fatal("input-rate rail should have zero latency")
	}
}

func TestBankSilence(t *testing.T) {
	b, err := NewBank(44100, 440)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}

	out := b.Process(make([]float64, 22050))

	for i := range out {
		for j, v := range out[i] {
			if v != 0 {
				t.Fatalf("rail %d sample %d: %v, want 0", i, j, v)
			}
		}
	}
}

func TestBankRejectsBadConfig(t *testing.T) {
	if _, err := NewBank(0, 440); err == nil {
		t.Fatal("expected error for zero input rate")
	}

	if _, err := NewBank(44100, 0); err == nil {
		t.Fatal("expected error for zero tuning")
	}

	if _, err := NewBank(44100, math.NaN()); err == nil {
		t.Fatal("expected error for NaN tuning")
	}
}

func TestBankTuningWarpsRates(t *testing.T) {
	b, err := NewBank(44100, 880) // an octave sharp: rails run twice as fast
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}

	idx, err := rates.Index(22050)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	out := b.Process(make([]float64, 44100))
	total := len(out[idx]) + len(b.rails[idx].Drain())

	// 22050 * 2 = 44100 samples per input second.
	if total < 44100-2 || total > 44100+b.OutputLatency(idx)+2 {
		t.Fatalf("warped rail produced %d samples, want about 44100", total)
	}
}

func TestBankReset(t *testing.T) {
	b, err := NewBank(44100, 440)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}

	in := make([]float64, 10000)
	for i := range in {
		in[i] = math.Sin(0.02 * float64(i))
	}

	first := b.Process(in)

	b.Reset()

	second := b.Process(in)
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("rail %d length differs after reset", i)
		}

		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("rail %d sample %d differs after reset", i, j)
			}
		}
	}
}
