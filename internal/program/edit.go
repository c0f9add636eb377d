package program

import (
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// Every edit returns a new program; the input is never modified.

// AddSession appends an empty session.
func AddSession(p models.Program, name string) (models.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return p, ErrEmptyName
	}
	if _, ok := p.Session(name); ok {
		return p, ErrSessionExists
	}
	out := p.Clone()
	out.Sessions = append(out.Sessions, models.ProgramSession{Name: name, Exercises: []models.ExerciseDefinition{}})
	return out, nil
}

// RemoveSession deletes a session. Logged history is kept.
func RemoveSession(p models.Program, name string) (models.Program, error) {
	i := indexOf(p, name)
	if i < 0 {
		return p, ErrSessionNotFound
	}
	out := p.Clone()
	out.Sessions = append(out.Sessions[:i], out.Sessions[i+1:]...)
	return out, nil
}

// MoveSession shifts a session by delta positions (-1 up, +1 down).
// Moving past either end leaves the order unchanged.
func MoveSession(p models.Program, name string, delta int) (models.Program, error) {
	i := indexOf(p, name)
	if i < 0 {
		return p, ErrSessionNotFound
	}
	j := i + delta
	out := p.Clone()
	if j < 0 || j >= len(out.Sessions) {
		return out, nil
	}
	out.Sessions[i], out.Sessions[j] = out.Sessions[j], out.Sessions[i]
	return out, nil
}

// AddExercise appends an exercise definition to a session.
func AddExercise(p models.Program, session string, def models.ExerciseDefinition) (models.Program, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return p, ErrEmptyName
	}
	i := indexOf(p, session)
	if i < 0 {
		return p, ErrSessionNotFound
	}
	if def.PlannedSets == 0 {
		def.PlannedSets = models.DefaultPlannedSets
	}
	def.PlannedSets = clampSets(def.PlannedSets)
	def.MuscleGroup = strings.TrimSpace(def.MuscleGroup)

	out := p.Clone()
	out.Sessions[i].Exercises = append(out.Sessions[i].Exercises, def)
	return out, nil
}

// ExerciseUpdate holds the editable fields of a definition; nil means keep.
type ExerciseUpdate struct {
	PlannedSets *int    `json:"sets,omitempty"`
	MuscleGroup *string `json:"muscle,omitempty"`
}

// UpdateExercise changes the planned set count or muscle group of an exercise.
func UpdateExercise(p models.Program, session string, index int, u ExerciseUpdate) (models.Program, error) {
	i, err := exerciseIndex(p, session, index)
	if err != nil {
		return p, err
	}
	out := p.Clone()
	def := &out.Sessions[i].Exercises[index]
	if u.PlannedSets != nil {
		def.PlannedSets = clampSets(*u.PlannedSets)
	}
	if u.MuscleGroup != nil {
		def.MuscleGroup = strings.TrimSpace(*u.MuscleGroup)
	}
	return out, nil
}

// MoveExercise shifts an exercise within its session by delta positions.
func MoveExercise(p models.Program, session string, index, delta int) (models.Program, error) {
	i, err := exerciseIndex(p, session, index)
	if err != nil {
		return p, err
	}
	out := p.Clone()
	ex := out.Sessions[i].Exercises
	j := index + delta
	if j < 0 || j >= len(ex) {
		return out, nil
	}
	ex[index], ex[j] = ex[j], ex[index]
	return out, nil
}

// RemoveExercise deletes an exercise from a session.
func RemoveExercise(p models.Program, session string, index int) (models.Program, error) {
	i, err := exerciseIndex(p, session, index)
	if err != nil {
		return p, err
	}
	out := p.Clone()
	ex := out.Sessions[i].Exercises
	out.Sessions[i].Exercises = append(ex[:index], ex[index+1:]...)
	return out, nil
}

func indexOf(p models.Program, name string) int {
	for i, s := range p.Sessions {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func exerciseIndex(p models.Program, session string, index int) (int, error) {
	i := indexOf(p, session)
	if i < 0 {
		return -1, ErrSessionNotFound
	}
	if index < 0 || index >= len(p.Sessions[i].Exercises) {
		return -1, ErrExerciseIndex
	}
	return i, nil
}
