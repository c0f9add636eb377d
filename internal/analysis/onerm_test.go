package analysis

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// TestEstimateBoundaries checks the formula-independent rules: one rep is
// already a max and zero reps estimate nothing.
func TestEstimateBoundaries(t *testing.T) {
	for _, f := range []Formula{Epley, Brzycki} {
		e := Estimator{Formula: f}
		for _, w := range []float64{0, 20, 102.5, 250} {
			if got := e.Estimate(w, 1); got != w {
				t.Errorf("%s Estimate(%v, 1) = %v, want %v", f, w, got, w)
			}
			if got := e.Estimate(w, 0); got != 0 {
				t.Errorf("%s Estimate(%v, 0) = %v, want 0", f, w, got)
			}
			if got := e.Estimate(w, -2); got != 0 {
				t.Errorf("%s Estimate(%v, -2) = %v, want 0", f, w, got)
			}
		}
	}
}

// TestEstimateEpley covers the canonical formula: 100 x 5 -> 116.67.
func TestEstimateEpley(t *testing.T) {
	e := Estimator{Formula: Epley}
	if got := e.Estimate(100, 5); !approx(got, 116.67) {
		t.Errorf("Estimate(100, 5) = %.2f, want 116.67", got)
	}
	if got := (Estimator{}).Estimate(100, 5); !approx(got, 116.67) {
		t.Errorf("zero Estimator should use Epley, got %.2f", got)
	}
}

// TestEstimateBrzycki covers the alternate formula and its high-rep fallback.
func TestEstimateBrzycki(t *testing.T) {
	e := Estimator{Formula: Brzycki}
	if got := e.Estimate(100, 5); !approx(got, 112.5) {
		t.Errorf("Estimate(100, 5) = %.2f, want 112.50", got)
	}
	if got := e.Estimate(10, 40); !approx(got, 10*(1+40.0/30)) {
		t.Errorf("Estimate(10, 40) = %.2f, want Epley fallback", got)
	}
	if got := e.Estimate(10, 37); math.IsInf(got, 0) {
		t.Error("Estimate(10, 37) diverged")
	}
}

// TestParseFormula verifies config values map to formulas.
func TestParseFormula(t *testing.T) {
	if f, err := ParseFormula(""); err != nil || f != Epley {
		t.Errorf("ParseFormula(\"\") = %v, %v", f, err)
	}
	if f, err := ParseFormula(" Brzycki "); err != nil || f != Brzycki {
		t.Errorf("ParseFormula(Brzycki) = %v, %v", f, err)
	}
	if _, err := ParseFormula("lombardi"); err == nil {
		t.Error("expected error for unknown formula")
	}
}

// TestRepMaxTable checks the fixed percentage rows.
func TestRepMaxTable(t *testing.T) {
	table := RepMaxTable(100)
	want := []RepMax{
		{1, 100, 100}, {3, 94, 94}, {5, 89, 89}, {8, 81, 81}, {10, 75, 75}, {12, 71, 71},
	}
	if len(table) != len(want) {
		t.Fatalf("len = %d, want %d", len(table), len(want))
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, table[i], want[i])
		}
	}
	if got := RepMaxTable(116.666)[2].Weight; got != 103.8 {
		t.Errorf("5 rep weight at 116.666 = %v, want 103.8", got)
	}
}
