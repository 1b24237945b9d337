package rates

import (
	"errors"
	"math"
	"testing"
)

func TestLadderAscending(t *testing.T) {
	for i := 1; i < NumRates; i++ {
		if Ladder[i] <= Ladder[i-1] {
			t.Fatalf("ladder not ascending at %d: %g <= %g", i, Ladder[i], Ladder[i-1])
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for i, r := range Ladder {
		idx, err := Index(r)
		if err != nil {
			t.Fatalf("Index(%g): %v", r, err)
		}

		if idx != i {
			t.Fatalf("Index(%g)=%d, want %d", r, idx, i)
		}
	}
}

func TestIndexUnsupported(t *testing.T) {
	_, err := Index(48000)
	if !errors.Is(err, ErrUnsupportedRate) {
		t.Fatalf("expected ErrUnsupportedRate, got %v", err)
	}
}

func TestForPitchNonDecreasing(t *testing.T) {
	prev := ForPitch(0)
	for p := 1; p < NumPitches; p++ {
		idx := ForPitch(p)
		if idx < prev {
			t.Fatalf("rate index decreased at pitch %d: %d -> %d", p, prev, idx)
		}

		prev = idx
	}
}

func TestForPitchKnownAssignments(t *testing.T) {
	cases := []struct {
		pitch int
		rate  float64
	}{
		{0, 441},
		{20, 441},
		{21, 882},
		{59, 882},
		{60, 4410},
		{69, 4410},
		{95, 4410},
		{96, 22050},
		{119, 22050},
		{120, 44100},
		{127, 44100},
	}

	for _, tc := range cases {
		if got := Ladder[ForPitch(tc.pitch)]; got != tc.rate {
			t.Fatalf("pitch %d: rate %g, want %g", tc.pitch, got, tc.rate)
		}
	}
}

func TestCoveredRange(t *testing.T) {
	if Covered(LowestCovered - 1) {
		t.Fatal("pitch below coverage reported covered")
	}

	if !Covered(LowestCovered) || !Covered(HighestCovered) {
		t.Fatal("coverage bounds not covered")
	}

	if Covered(HighestCovered + 1) {
		t.Fatal("pitch above coverage reported covered")
	}

	count := 0
	for p := 0; p < NumPitches; p++ {
		if Covered(p) {
			count++
		}
	}

	if count != 88 {
		t.Fatalf("covered pitch count = %d, want 88", count)
	}
}

func TestTuningRatio(t *testing.T) {
	r, err := TuningRatio(440)
	if err != nil || r != 1 {
		t.Fatalf("TuningRatio(440) = %g, %v", r, err)
	}

	if _, err := TuningRatio(0); !errors.Is(err, ErrInvalidTuning) {
		t.Fatalf("expected ErrInvalidTuning, got %v", err)
	}

	if _, err := TuningRatio(math.NaN()); !errors.Is(err, ErrInvalidTuning) {
		t.Fatalf("expected ErrInvalidTuning for NaN, got %v", err)
	}
}

func TestPitchFreq(t *testing.T) {
	if f := PitchFreq(69, 440); math.Abs(f-440) > 1e-12 {
		t.Fatalf("A4 = %g, want 440", f)
	}

	if f := PitchFreq(57, 440); math.Abs(f-220) > 1e-9 {
		t.Fatalf("A3 = %g, want 220", f)
	}

	if f := PitchFreq(69, 443); math.Abs(f-443) > 1e-12 {
		t.Fatalf("A4@443 = %g, want 443", f)
	}
}
