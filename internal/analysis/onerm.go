// Package analysis derives strength feedback from the workout log: estimated
// one-rep maxes, set-by-set progression signals and aggregate records.
package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Formula selects the one-rep-max estimate. A process uses exactly one.
type Formula string

const (
	Epley   Formula = "epley"
	Brzycki Formula = "brzycki"
)

// ParseFormula maps a config value to a Formula. Empty means Epley.
func ParseFormula(s string) (Formula, error) {
	switch Formula(strings.ToLower(strings.TrimSpace(s))) {
	case "", Epley:
		return Epley, nil
	case Brzycki:
		return Brzycki, nil
	}
	return "", fmt.Errorf("unknown 1RM formula %q", s)
}

// Estimator converts a submaximal set into an estimated single-rep max.
type Estimator struct {
	Formula Formula
}

// Estimate returns the estimated 1RM for weight x reps.
// No reps means no estimate; a single rep is already a max.
func (e Estimator) Estimate(weight float64, reps int) float64 {
	switch {
	case reps <= 0:
		return 0
	case reps == 1:
		return weight
	}
	// Brzycki diverges at 37 reps; past that the linear estimate is the only sane one.
	if e.Formula == Brzycki && reps < 37 {
		return weight * 36 / float64(37-reps)
	}
	return weight * (1 + float64(reps)/30)
}

// RepMax is one row of the rep-max table.
type RepMax struct {
	Reps    int     `json:"reps"`
	Percent int     `json:"percent"`
	Weight  float64 `json:"weight"`
}

var repMaxPercents = []struct{ reps, pct int }{
	{1, 100}, {3, 94}, {5, 89}, {8, 81}, {10, 75}, {12, 71},
}

// RepMaxTable returns the working weight for common rep targets given a 1RM.
// Weights are rounded to 0.1 kg.
func RepMaxTable(oneRM float64) []RepMax {
	table := make([]RepMax, 0, len(repMaxPercents))
	for _, p := range repMaxPercents {
		table = append(table, RepMax{
			Reps:    p.reps,
			Percent: p.pct,
			Weight:  round1(oneRM * float64(p.pct) / 100),
		})
	}
	return table
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
