// Package coerce turns raw history cells into typed numbers.
//
// Spreadsheet-sourced data is messy: numbers arrive as strings, cells are
// empty, older rows miss whole columns. Every function here is total and
// falls back to a default instead of failing, so a bad cell never aborts a
// load.
package coerce

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Float parses raw as a float64, returning 0 on any failure.
// A European decimal comma is accepted ("102,5" -> 102.5).
func Float(raw any) float64 {
	f, ok := parse(raw)
	if !ok {
		return 0
	}
	return f
}

// Int parses raw as an int, returning def on any failure.
// Fractional values are truncated toward zero.
func Int(raw any, def int) int {
	f, ok := parse(raw)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

// Weight coerces a load in kg. Negative values clamp to 0.
func Weight(raw any) float64 {
	return math.Max(Float(raw), 0)
}

// Reps coerces a repetition count. Negative values clamp to 0.
func Reps(raw any) int {
	return max(Int(raw, 0), 0)
}

// Cycle coerces a cycle number, defaulting to 1.
func Cycle(raw any) int {
	c := Int(raw, 1)
	if c < 1 {
		return 1
	}
	return c
}

// Week coerces a stored week (0..10, where 10 is folded to 0), defaulting to 1.
func Week(raw any) int {
	w := Int(raw, 1)
	switch {
	case w == 10:
		return 0
	case w < 0 || w > 10:
		return 1
	}
	return w
}

// SetIndex coerces a set ordinal, defaulting to 1.
func SetIndex(raw any) int {
	i := Int(raw, 1)
	if i < 1 {
		return 1
	}
	return i
}

// Text renders raw as a trimmed string; nil becomes "".
func Text(raw any) string {
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(raw))
}

func parse(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		raw = strings.ReplaceAll(s, ",", ".")
	case []byte:
		return parse(string(v))
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
