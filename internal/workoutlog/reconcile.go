package workoutlog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// ErrEmptyBatch is returned when a submitted batch holds no performed set and
// no sentinel. Callers must say what they mean with Skip or Clear.
var ErrEmptyBatch = errors.New("batch has no performed sets; use skip or clear")

// ErrWeekRange is returned for a key whose stored week is outside 0..9.
var ErrWeekRange = errors.New("week out of range")

// Upsert replaces every row stored under key with rows. Key fields of rows
// are overwritten from key, unperformed rows without a sentinel note are
// dropped, and a repeated set index keeps its last occurrence.
func Upsert(l Log, key models.SessionKey, rows []models.WorkoutSet) (Log, error) {
	if !models.ValidStoredWeek(key.Week) {
		return l, fmt.Errorf("week %d: %w", key.Week, ErrWeekRange)
	}
	batch := normalize(key, rows)
	if len(batch) == 0 {
		return l, ErrEmptyBatch
	}
	return replace(l, key, batch), nil
}

// Clear removes every row stored under key.
func Clear(l Log, key models.SessionKey) Log {
	return replace(l, key, nil)
}

// Skip replaces the key's rows with a single skip marker, which records the
// exercise as deliberately not done rather than never attempted.
func Skip(l Log, key models.SessionKey, muscleGroup, date string) Log {
	return replace(l, key, []models.WorkoutSet{sentinel(key, models.NoteSkipped, muscleGroup, date)})
}

// MissSession marks every listed exercise of a session as missed for the
// period. Each exercise key is replaced, so marking twice is harmless.
func MissSession(l Log, period models.Period, session string, exercises []models.ExerciseDefinition, date string) Log {
	for _, ex := range exercises {
		key := models.SessionKey{Cycle: period.Cycle, Week: period.Week, Session: session, Exercise: ex.Name}
		l = replace(l, key, []models.WorkoutSet{sentinel(key, models.NoteMissed, ex.MuscleGroup, date)})
	}
	return l
}

func replace(l Log, key models.SessionKey, batch []models.WorkoutSet) Log {
	out := make([]models.WorkoutSet, 0, len(l.rows)+len(batch))
	for _, s := range l.rows {
		if !key.Matches(s) {
			out = append(out, s)
		}
	}
	out = append(out, batch...)
	return Log{rows: out}
}

func normalize(key models.SessionKey, rows []models.WorkoutSet) []models.WorkoutSet {
	byIndex := map[int]models.WorkoutSet{}
	for _, r := range rows {
		if !r.Performed() && !models.IsSentinel(r.Note) {
			continue
		}
		r.Cycle, r.Week, r.Session, r.Exercise = key.Cycle, key.Week, key.Session, key.Exercise
		r.SetIndex = max(r.SetIndex, 1)
		r.Reps = max(r.Reps, 0)
		r.Weight = max(r.Weight, 0)
		byIndex[r.SetIndex] = r
	}
	batch := make([]models.WorkoutSet, 0, len(byIndex))
	for _, r := range byIndex {
		batch = append(batch, r)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].SetIndex < batch[j].SetIndex })
	return batch
}

func sentinel(key models.SessionKey, note, muscleGroup, date string) models.WorkoutSet {
	return models.WorkoutSet{
		Cycle:       key.Cycle,
		Week:        key.Week,
		Session:     key.Session,
		Exercise:    key.Exercise,
		SetIndex:    1,
		Note:        note,
		MuscleGroup: muscleGroup,
		Date:        date,
	}
}
