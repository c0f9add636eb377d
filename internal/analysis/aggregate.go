package analysis

import (
	"math"
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workoutlog"
)

// DefaultBalanceCap bounds a muscle-balance ratio so one outlier group does
// not flatten the radar chart.
const DefaultBalanceCap = 1.10

// Aggregator computes summary statistics over a full log.
type Aggregator struct {
	Estimator Estimator
}

// BestLift is the strongest recorded set of an exercise.
type BestLift struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"best_weight"`
	Reps     int     `json:"best_reps"`
	OneRM    float64 `json:"best_estimated_1rm"`
}

// PodiumEntry ranks an exercise by its best estimated 1RM.
type PodiumEntry struct {
	Rank     int     `json:"rank"`
	Exercise string  `json:"exercise"`
	OneRM    float64 `json:"best_estimated_1rm"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

// ProgressPoint is the heaviest weight of one period, for the progress chart.
type ProgressPoint struct {
	Cycle     int     `json:"cycle"`
	Week      int     `json:"week"`
	Label     string  `json:"label"`
	MaxWeight float64 `json:"max_weight"`
}

// Record is the heaviest set of an exercise by raw weight.
type Record struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	OneRM    float64 `json:"estimated_1rm"`
	Cycle    int     `json:"cycle"`
	Week     int     `json:"week"`
}

// Summary holds the headline numbers of the progress view.
type Summary struct {
	TotalVolume  float64 `json:"total_volume_kg"`
	CurrentCycle int     `json:"current_cycle"`
	MaxWeek      int     `json:"max_week"`
	TotalSets    int     `json:"total_sets"`
	Exercises    int     `json:"exercises"`
}

// TotalVolume sums weight x reps over performed sets. Bodyweight sets
// (weight 0) count as zero tonnage.
func (a Aggregator) TotalVolume(l workoutlog.Log) float64 {
	var total float64
	for _, s := range l.Rows() {
		if s.Performed() {
			total += s.Weight * float64(s.Reps)
		}
	}
	return total
}

// BestLiftPerExercise picks, per exercise, the set with the highest estimated
// 1RM; ties go to the heavier weight, then to more reps.
func (a Aggregator) BestLiftPerExercise(l workoutlog.Log) map[string]BestLift {
	best := map[string]BestLift{}
	for _, s := range l.Rows() {
		if !s.Performed() {
			continue
		}
		cand := BestLift{Exercise: s.Exercise, Weight: s.Weight, Reps: s.Reps, OneRM: a.Estimator.Estimate(s.Weight, s.Reps)}
		cur, ok := best[s.Exercise]
		if !ok || better(cand, cur) {
			best[s.Exercise] = cand
		}
	}
	return best
}

func better(a, b BestLift) bool {
	if a.OneRM != b.OneRM {
		return a.OneRM > b.OneRM
	}
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	return a.Reps > b.Reps
}

// Podium returns the top n exercises by best estimated 1RM, descending.
// Exercises that only have bodyweight sets (1RM 0) never place.
func (a Aggregator) Podium(l workoutlog.Log, n int) []PodiumEntry {
	lifts := a.BestLiftPerExercise(l)
	ranked := make([]BestLift, 0, len(lifts))
	for _, b := range lifts {
		if b.OneRM > 0 {
			ranked = append(ranked, b)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].OneRM != ranked[j].OneRM {
			return ranked[i].OneRM > ranked[j].OneRM
		}
		return ranked[i].Exercise < ranked[j].Exercise
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]PodiumEntry, 0, len(ranked))
	for i, b := range ranked {
		out = append(out, PodiumEntry{Rank: i + 1, Exercise: b.Exercise, OneRM: b.OneRM, Weight: b.Weight, Reps: b.Reps})
	}
	return out
}

// MuscleResolver looks up the muscle group of an exercise that was logged
// without one.
type MuscleResolver func(exercise string) string

// MuscleBalance computes, for each referenced muscle group, the best
// estimated 1RM in the group divided by the reference weight, capped at
// limit. Groups without data report 0. A non-positive limit uses
// DefaultBalanceCap.
func (a Aggregator) MuscleBalance(l workoutlog.Log, refs map[string]float64, limit float64, resolve MuscleResolver) map[string]float64 {
	if limit <= 0 {
		limit = DefaultBalanceCap
	}
	maxByGroup := map[string]float64{}
	for _, s := range l.Rows() {
		if !s.Performed() {
			continue
		}
		group := s.MuscleGroup
		if group == "" && resolve != nil {
			group = resolve(s.Exercise)
		}
		if group == "" {
			continue
		}
		maxByGroup[group] = math.Max(maxByGroup[group], a.Estimator.Estimate(s.Weight, s.Reps))
	}

	out := make(map[string]float64, len(refs))
	for group, ref := range refs {
		if ref <= 0 {
			out[group] = 0
			continue
		}
		out[group] = math.Min(maxByGroup[group]/ref, limit)
	}
	return out
}

// ProgressionSeries returns the heaviest performed weight per period for an
// exercise, in chronological order.
func (a Aggregator) ProgressionSeries(l workoutlog.Log, exercise string) []ProgressPoint {
	maxByPeriod := map[models.Period]float64{}
	for _, s := range l.Filter(workoutlog.Query{Exercise: exercise}) {
		if !s.Performed() {
			continue
		}
		p := s.Period()
		if w, ok := maxByPeriod[p]; !ok || s.Weight > w {
			maxByPeriod[p] = s.Weight
		}
	}

	periods := make([]models.Period, 0, len(maxByPeriod))
	for p := range maxByPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	out := make([]ProgressPoint, 0, len(periods))
	for _, p := range periods {
		out = append(out, ProgressPoint{Cycle: p.Cycle, Week: p.Week, Label: p.Label(), MaxWeight: maxByPeriod[p]})
	}
	return out
}

// ExerciseRecord returns the heaviest performed set of an exercise, ties
// broken by reps.
func (a Aggregator) ExerciseRecord(l workoutlog.Log, exercise string) (Record, bool) {
	var rec Record
	found := false
	for _, s := range l.Filter(workoutlog.Query{Exercise: exercise}) {
		if !s.Performed() {
			continue
		}
		if !found || s.Weight > rec.Weight || (s.Weight == rec.Weight && s.Reps > rec.Reps) {
			rec = Record{Exercise: exercise, Weight: s.Weight, Reps: s.Reps, Cycle: s.Cycle, Week: s.Week}
			found = true
		}
	}
	if found {
		rec.OneRM = a.Estimator.Estimate(rec.Weight, rec.Reps)
	}
	return rec, found
}

// Summary computes the headline numbers for the progress view.
func (a Aggregator) Summary(l workoutlog.Log) Summary {
	performed := 0
	for _, s := range l.Rows() {
		if s.Performed() {
			performed++
		}
	}
	return Summary{
		TotalVolume:  a.TotalVolume(l),
		CurrentCycle: l.CurrentCycle(),
		MaxWeek:      l.MaxWeek(),
		TotalSets:    performed,
		Exercises:    len(l.Exercises()),
	}
}
