package tracker

import (
	"github.com/claude/liftlog/internal/analysis"
)

// Estimate is a 1RM estimate with its rep-max table.
type Estimate struct {
	Weight  float64           `json:"weight"`
	Reps    int               `json:"reps"`
	Formula analysis.Formula  `json:"formula"`
	OneRM   float64           `json:"estimated_1rm"`
	Table   []analysis.RepMax `json:"rep_max_table"`
}

func (t *Tracker) Summary() analysis.Summary {
	return t.aggregator.Summary(t.History())
}

func (t *Tracker) Podium(n int) []analysis.PodiumEntry {
	if n <= 0 {
		n = 3
	}
	return t.aggregator.Podium(t.History(), n)
}

func (t *Tracker) BestLifts() map[string]analysis.BestLift {
	return t.aggregator.BestLiftPerExercise(t.History())
}

// MuscleBalance rates each reference muscle group, falling back to the
// program's definitions for rows logged without a muscle group.
func (t *Tracker) MuscleBalance() map[string]float64 {
	p := t.Program()
	return t.aggregator.MuscleBalance(t.History(), t.refs, t.balanceCap, p.MuscleGroupOf)
}

func (t *Tracker) Progression(exercise string) []analysis.ProgressPoint {
	return t.aggregator.ProgressionSeries(t.History(), exercise)
}

func (t *Tracker) ExerciseRecord(exercise string) (analysis.Record, bool) {
	return t.aggregator.ExerciseRecord(t.History(), exercise)
}

func (t *Tracker) Exercises() []string {
	return t.History().Exercises()
}

// EstimateOneRepMax applies the configured formula to a single set.
func (t *Tracker) EstimateOneRepMax(weight float64, reps int) Estimate {
	oneRM := t.estimator.Estimate(weight, reps)
	return Estimate{
		Weight:  weight,
		Reps:    reps,
		Formula: t.estimator.Formula,
		OneRM:   oneRM,
		Table:   analysis.RepMaxTable(oneRM),
	}
}
