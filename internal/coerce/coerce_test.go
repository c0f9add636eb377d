package coerce

import (
	"encoding/json"
	"math"
	"testing"
)

// TestFloatTotality verifies that Float never fails and falls back to 0 for
// anything that is not a finite number.
func TestFloatTotality(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{"nil", nil, 0},
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"text", "abc", 0},
		{"european decimal", "3,5", 3.5},
		{"dot decimal", "102.5", 102.5},
		{"padded", " 60 ", 60},
		{"int", 80, 80},
		{"int64", int64(12), 12},
		{"float", 72.5, 72.5},
		{"json number", json.Number("42.25"), 42.25},
		{"bytes", []byte("7,5"), 7.5},
		{"nan", math.NaN(), 0},
		{"inf string", "Inf", 0},
		{"bool", true, 1},
		{"map", map[string]int{"a": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Float(tt.raw); got != tt.want {
				t.Errorf("Float(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestIntDefaults verifies that Int returns the caller's default on bad input.
func TestIntDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		def  int
		want int
	}{
		{"nil default 1", nil, 1, 1},
		{"empty default 0", "", 0, 0},
		{"text", "abc", 1, 1},
		{"string int", "8", 0, 8},
		{"leading zero", "08", 0, 8},
		{"fraction truncates", "3,5", 0, 3},
		{"float cell", 12.0, 0, 12},
		{"huge", "1e20", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Int(tt.raw, tt.def); got != tt.want {
				t.Errorf("Int(%v, %d) = %d, want %d", tt.raw, tt.def, got, tt.want)
			}
		})
	}
}

// TestFieldHelpers covers the per-column rules applied at load time.
func TestFieldHelpers(t *testing.T) {
	if got := Weight("-5"); got != 0 {
		t.Errorf("Weight(-5) = %v, want 0", got)
	}
	if got := Reps(-3); got != 0 {
		t.Errorf("Reps(-3) = %d, want 0", got)
	}
	if got := Cycle(""); got != 1 {
		t.Errorf("Cycle(empty) = %d, want 1", got)
	}
	if got := Cycle("0"); got != 1 {
		t.Errorf("Cycle(0) = %d, want 1", got)
	}
	if got := Week(nil); got != 1 {
		t.Errorf("Week(nil) = %d, want 1", got)
	}
	if got := Week("10"); got != 0 {
		t.Errorf("Week(10) = %d, want 0", got)
	}
	if got := Week("0"); got != 0 {
		t.Errorf("Week(0) = %d, want 0", got)
	}
	if got := Week(14); got != 1 {
		t.Errorf("Week(14) = %d, want 1", got)
	}
	if got := SetIndex("x"); got != 1 {
		t.Errorf("SetIndex(x) = %d, want 1", got)
	}
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
	if got := Text(" Chest "); got != "Chest" {
		t.Errorf("Text = %q, want Chest", got)
	}
	if got := Text(3); got != "3" {
		t.Errorf("Text(3) = %q, want 3", got)
	}
}
