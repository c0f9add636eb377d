// Package workoutlog holds the in-memory history table and the rules for
// merging newly entered sets into it.
package workoutlog

import (
	"slices"
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// Log is an immutable snapshot of every recorded set. Queries never modify
// it; Upsert and friends return a new Log.
type Log struct {
	rows []models.WorkoutSet
}

// New builds a Log from loaded rows. The slice is copied.
func New(rows []models.WorkoutSet) Log {
	return Log{rows: slices.Clone(rows)}
}

// Rows returns a copy of all rows in storage order.
func (l Log) Rows() []models.WorkoutSet {
	return slices.Clone(l.rows)
}

// Len returns the number of rows.
func (l Log) Len() int {
	return len(l.rows)
}

// Query selects rows by exact match. Zero-valued fields are wildcards,
// except Week which needs an explicit pointer because week 0 is valid.
type Query struct {
	Exercise string
	Session  string
	Cycle    int
	Week     *int
}

// WeekPtr is a helper for building queries on a specific week.
func WeekPtr(w int) *int { return &w }

func (q Query) match(s models.WorkoutSet) bool {
	if q.Exercise != "" && s.Exercise != q.Exercise {
		return false
	}
	if q.Session != "" && s.Session != q.Session {
		return false
	}
	if q.Cycle != 0 && s.Cycle != q.Cycle {
		return false
	}
	if q.Week != nil && s.Week != *q.Week {
		return false
	}
	return true
}

// Filter returns matching rows in storage order.
func (l Log) Filter(q Query) []models.WorkoutSet {
	var out []models.WorkoutSet
	for _, s := range l.rows {
		if q.match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Current returns the rows already logged under key, ordered by set index.
func (l Log) Current(key models.SessionKey) []models.WorkoutSet {
	var out []models.WorkoutSet
	for _, s := range l.rows {
		if key.Matches(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetIndex < out[j].SetIndex })
	return out
}

// HistoryBefore returns rows for the exercise and session strictly older
// than (cycle, week), most recent period first and by set index within a
// period.
func (l Log) HistoryBefore(exercise, session string, cycle, week int) []models.WorkoutSet {
	target := models.Period{Cycle: cycle, Week: week}
	var out []models.WorkoutSet
	for _, s := range l.rows {
		if s.Exercise == exercise && s.Session == session && s.Period().Before(target) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Period(), out[j].Period()
		if pi != pj {
			return pj.Before(pi)
		}
		return out[i].SetIndex < out[j].SetIndex
	})
	return out
}

// RecentPeriods returns up to n distinct periods before (cycle, week) that
// hold data for the exercise and session, most recent first.
func (l Log) RecentPeriods(exercise, session string, cycle, week, n int) []models.Period {
	var periods []models.Period
	for _, s := range l.HistoryBefore(exercise, session, cycle, week) {
		p := s.Period()
		if len(periods) > 0 && periods[len(periods)-1] == p {
			continue
		}
		if len(periods) == n {
			break
		}
		periods = append(periods, p)
	}
	return periods
}

// MostRecentPriorSession returns the latest period strictly before
// (cycle, week) with any recorded row for the exercise and session.
func (l Log) MostRecentPriorSession(exercise, session string, cycle, week int) (models.Period, bool) {
	periods := l.RecentPeriods(exercise, session, cycle, week, 1)
	if len(periods) == 0 {
		return models.Period{}, false
	}
	return periods[0], true
}

// Baseline returns the rows of the most recent prior period, the reference
// every current set is compared against. Nil when there is no history.
func (l Log) Baseline(exercise, session string, cycle, week int) []models.WorkoutSet {
	p, ok := l.MostRecentPriorSession(exercise, session, cycle, week)
	if !ok {
		return nil
	}
	return l.Current(models.SessionKey{Cycle: p.Cycle, Week: p.Week, Session: session, Exercise: exercise})
}

// Exercises returns the distinct exercise names, sorted.
func (l Log) Exercises() []string {
	seen := map[string]bool{}
	var names []string
	for _, s := range l.rows {
		if !seen[s.Exercise] {
			seen[s.Exercise] = true
			names = append(names, s.Exercise)
		}
	}
	sort.Strings(names)
	return names
}

// CurrentCycle returns the highest cycle logged, 1 for an empty log.
func (l Log) CurrentCycle() int {
	c := 1
	for _, s := range l.rows {
		c = max(c, s.Cycle)
	}
	return c
}

// MaxWeek returns the highest stored week number, 0 for an empty log.
func (l Log) MaxWeek() int {
	w := 0
	for _, s := range l.rows {
		w = max(w, s.Week)
	}
	return w
}
