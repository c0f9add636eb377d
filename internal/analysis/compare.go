package analysis

import (
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// Signal classifies a set against the same set of the previous session.
type Signal string

const (
	Improved            Signal = "improved"
	ImprovedByIntensity Signal = "improved_by_intensity"
	Regressed           Signal = "regressed"
	Unchanged           Signal = "unchanged"
	NoBaseline          Signal = "no_baseline"
)

// Rule selects how a weight-for-reps trade is judged.
type Rule string

const (
	// RuleRaw compares weight first, then reps.
	RuleRaw Rule = "raw"
	// RuleIntensity is RuleRaw, except a lighter set whose estimated 1RM
	// went up counts as ImprovedByIntensity.
	RuleIntensity Rule = "intensity"
)

// ParseRule maps a config value to a Rule. Empty means RuleRaw.
func ParseRule(s string) (Rule, error) {
	switch Rule(strings.ToLower(strings.TrimSpace(s))) {
	case "", RuleRaw:
		return RuleRaw, nil
	case RuleIntensity:
		return RuleIntensity, nil
	}
	return "", fmt.Errorf("unknown comparison rule %q", s)
}

// Comparator classifies current sets against their baseline.
type Comparator struct {
	Rule      Rule
	Estimator Estimator
}

// SetComparison pairs a current set with its baseline and verdict.
type SetComparison struct {
	Set      models.WorkoutSet  `json:"set"`
	Baseline *models.WorkoutSet `json:"baseline,omitempty"`
	Signal   Signal             `json:"signal"`
}

// Compare classifies current against the baseline set with the same index.
// Unperformed sets on either side have nothing to compare.
func (c Comparator) Compare(current models.WorkoutSet, baseline []models.WorkoutSet) Signal {
	prev, ok := match(current, baseline)
	if !ok || !current.Performed() || !prev.Performed() {
		return NoBaseline
	}

	pw, pr := prev.Weight, prev.Reps
	cw, cr := current.Weight, current.Reps

	switch {
	case cw > pw || (cw == pw && cr > pr):
		return Improved
	case cw == pw && cr == pr:
		return Unchanged
	}

	if c.Rule == RuleIntensity && cw < pw && c.Estimator.Estimate(cw, cr) > c.Estimator.Estimate(pw, pr) {
		return ImprovedByIntensity
	}
	return Regressed
}

// CompareSession classifies every current set, in order.
func (c Comparator) CompareSession(current, baseline []models.WorkoutSet) []SetComparison {
	out := make([]SetComparison, 0, len(current))
	for _, s := range current {
		sc := SetComparison{Set: s, Signal: c.Compare(s, baseline)}
		if prev, ok := match(s, baseline); ok {
			sc.Baseline = &prev
		}
		out = append(out, sc)
	}
	return out
}

func match(current models.WorkoutSet, baseline []models.WorkoutSet) (models.WorkoutSet, bool) {
	for _, b := range baseline {
		if b.SetIndex == current.SetIndex {
			return b, true
		}
	}
	return models.WorkoutSet{}, false
}
