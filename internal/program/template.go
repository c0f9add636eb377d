package program

import "github.com/claude/liftlog/internal/models"

// Template builds the entry rows for one exercise: one row per planned set,
// pre-filled with whatever is already logged for those set indexes. Logged
// sets beyond the planned count are not shown.
func Template(key models.SessionKey, def models.ExerciseDefinition, current []models.WorkoutSet) []models.WorkoutSet {
	planned := def.PlannedSets
	if planned < MinPlannedSets {
		planned = models.DefaultPlannedSets
	}
	rows := make([]models.WorkoutSet, planned)
	for i := range rows {
		rows[i] = models.WorkoutSet{
			Cycle:       key.Cycle,
			Week:        key.Week,
			Session:     key.Session,
			Exercise:    key.Exercise,
			SetIndex:    i + 1,
			MuscleGroup: def.MuscleGroup,
		}
	}
	for _, s := range current {
		if s.SetIndex >= 1 && s.SetIndex <= planned {
			r := &rows[s.SetIndex-1]
			r.Reps, r.Weight, r.Note = s.Reps, s.Weight, s.Note
			if s.Date != "" {
				r.Date = s.Date
			}
		}
	}
	return rows
}
