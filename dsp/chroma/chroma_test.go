package chroma

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chroma/dsp/feature"
	"github.com/cwbudde/algo-chroma/dsp/rates"
)

func TestFoldSinglePitch(t *testing.T) {
	for _, p := range []int{0, 21, 60, 69, 108, 127} {
		pitch := make([]float64, rates.NumPitches)
		pitch[p] = 1

		out, err := Fold(pitch)
		if err != nil {
			t.Fatalf("Fold: %v", err)
		}

		if len(out) != rates.NumChroma {
			t.Fatalf("expected %d chroma entries, got %d", rates.NumChroma, len(out))
		}

		for c, v := range out {
			want := 0.0
			if c == p%rates.NumChroma {
				want = 1
			}

			if v != want {
				t.Errorf("pitch %d: chroma[%d] = %v, want %v", p, c, v, want)
			}
		}
	}
}

func TestFoldZeros(t *testing.T) {
	out, err := Fold(make([]float64, rates.NumPitches))
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}

	for c, v := range out {
		if v != 0 {
			t.Errorf("chroma[%d] = %v, want 0", c, v)
		}
	}
}

func TestFoldSumsOctaves(t *testing.T) {
	pitch := make([]float64, rates.NumPitches)
	pitch[57] = 0.25 // A3
	pitch[69] = 0.5  // A4
	pitch[81] = 0.25 // A5

	out, err := Fold(pitch)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}

	if math.Abs(out[9]-1) > 1e-12 {
		t.Errorf("chroma[9] = %v, want 1", out[9])
	}
}

func TestFoldRejectsWrongLength(t *testing.T) {
	if _, err := Fold(make([]float64, 12)); err == nil {
		t.Fatal("expected error for short vector")
	}
}

func TestFoldBuffer(t *testing.T) {
	vectors := make([][]float64, 3)
	for i := range vectors {
		vectors[i] = make([]float64, rates.NumPitches)
		vectors[i][60+i] = 1
	}

	buf, err := feature.NewBuffer(vectors, 10)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	out, err := FoldBuffer(buf)
	if err != nil {
		t.Fatalf("FoldBuffer: %v", err)
	}

	if out.Len() != 3 || out.Size() != rates.NumChroma {
		t.Fatalf("unexpected shape: %d frames of %d", out.Len(), out.Size())
	}

	if out.Rate() != buf.Rate() {
		t.Errorf("rate changed: %v -> %v", buf.Rate(), out.Rate())
	}

	for i := 0; i < 3; i++ {
		if out.Vector(i)[(60+i)%12] != 1 {
			t.Errorf("frame %d not folded at class %d", i, (60+i)%12)
		}
	}
}
