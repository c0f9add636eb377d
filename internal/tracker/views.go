package tracker

import (
	"fmt"

	"github.com/claude/liftlog/internal/analysis"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/workoutlog"
)

// HistoryDepth is how many prior periods the session view shows per exercise.
const HistoryDepth = 2

// PeriodSets groups the rows of one exercise in one period.
type PeriodSets struct {
	Period models.Period       `json:"period"`
	Label  string              `json:"label"`
	Sets   []models.WorkoutSet `json:"sets"`
}

// ExerciseView is what the session screen renders for one planned exercise.
type ExerciseView struct {
	Key         models.SessionKey         `json:"key"`
	Definition  models.ExerciseDefinition `json:"definition"`
	Validated   bool                      `json:"validated"`
	Editing     bool                      `json:"editing"`
	Skipped     bool                      `json:"skipped"`
	Missed      bool                      `json:"missed"`
	Rows        []models.WorkoutSet       `json:"rows"`
	Comparisons []analysis.SetComparison  `json:"comparisons,omitempty"`
	History     []PeriodSets              `json:"history"`
}

// SessionView lists every exercise of a program session for one period.
type SessionView struct {
	Session   string         `json:"session"`
	Period    models.Period  `json:"period"`
	Label     string         `json:"label"`
	Exercises []ExerciseView `json:"exercises"`
}

// SessionView builds the per-exercise view of a program session. variants
// maps a base exercise name to the equipment variant to show; without an
// entry the variant already logged this period, then the last one used, is
// picked.
func (t *Tracker) SessionView(session string, period models.Period, variants map[string]string) (*SessionView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, ok := t.program.Session(session)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", session, program.ErrSessionNotFound)
	}

	view := &SessionView{Session: session, Period: period, Label: period.Label(), Exercises: []ExerciseView{}}
	for _, ex := range def.Exercises {
		name := resolveVariant(t.history, session, period, ex.Name, variants[ex.Name])
		key := models.SessionKey{Cycle: period.Cycle, Week: period.Week, Session: session, Exercise: name}
		view.Exercises = append(view.Exercises, t.exerciseView(key, ex))
	}
	return view, nil
}

func (t *Tracker) exerciseView(key models.SessionKey, def models.ExerciseDefinition) ExerciseView {
	current := t.history.Current(key)
	ev := ExerciseView{
		Key:        key,
		Definition: def,
		Editing:    t.editing[key],
		History:    recentHistory(t.history, key, HistoryDepth),
	}
	for _, s := range current {
		switch s.Note {
		case models.NoteSkipped:
			ev.Skipped = true
		case models.NoteMissed:
			ev.Missed = true
		}
	}
	ev.Validated = len(current) > 0 && !ev.Editing

	if ev.Validated {
		ev.Rows = current
		baseline := t.history.Baseline(key.Exercise, key.Session, key.Cycle, key.Week)
		ev.Comparisons = t.comparator.CompareSession(current, baseline)
	} else {
		ev.Rows = program.Template(key, def, current)
	}
	return ev
}

// resolveVariant picks the full exercise name for a planned base name.
func resolveVariant(l workoutlog.Log, session string, period models.Period, base, variant string) string {
	if variant != "" {
		return models.WithVariant(base, variant)
	}
	rows := l.Filter(workoutlog.Query{Session: session, Cycle: period.Cycle, Week: workoutlog.WeekPtr(period.Week)})
	for _, s := range rows {
		if models.BaseExercise(s.Exercise) == base {
			return s.Exercise
		}
	}

	latest, found := models.Period{}, false
	name := base
	for _, s := range l.Filter(workoutlog.Query{Session: session}) {
		if models.BaseExercise(s.Exercise) != base || !s.Period().Before(period) {
			continue
		}
		if !found || latest.Before(s.Period()) {
			latest, found, name = s.Period(), true, s.Exercise
		}
	}
	return name
}

func recentHistory(l workoutlog.Log, key models.SessionKey, n int) []PeriodSets {
	out := []PeriodSets{}
	for _, p := range l.RecentPeriods(key.Exercise, key.Session, key.Cycle, key.Week, n) {
		out = append(out, PeriodSets{
			Period: p,
			Label:  p.Label(),
			Sets:   l.Current(models.SessionKey{Cycle: p.Cycle, Week: p.Week, Session: key.Session, Exercise: key.Exercise}),
		})
	}
	return out
}

// RecentHistory returns the last n periods before key that hold data for
// its exercise and session.
func (t *Tracker) RecentHistory(key models.SessionKey, n int) []PeriodSets {
	if n <= 0 {
		n = HistoryDepth
	}
	return recentHistory(t.History(), key, n)
}

// Compare classifies the sets stored under key against the most recent
// prior session.
func (t *Tracker) Compare(key models.SessionKey) []analysis.SetComparison {
	l := t.History()
	return t.comparator.CompareSession(l.Current(key), l.Baseline(key.Exercise, key.Session, key.Cycle, key.Week))
}

// Filter returns the rows matching q.
func (t *Tracker) Filter(q workoutlog.Query) []models.WorkoutSet {
	return t.History().Filter(q)
}
