package tracker

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
)

// editProgram applies fn to the current program and persists the result.
func (t *Tracker) editProgram(ctx context.Context, op string, fn func(models.Program) (models.Program, error)) (models.Program, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := fn(t.program)
	if err != nil {
		return models.Program{}, err
	}
	if err := t.store.SaveProgram(ctx, next); err != nil {
		t.storeFailed("save program")
		t.log.Error("saving program failed", "op", op, "error", err)
		return models.Program{}, err
	}
	t.metrics.CounterSaves.WithLabelValues("program").Inc()
	t.program = next
	t.log.Info("program updated", "op", op)
	return next.Clone(), nil
}

// AddSession appends an empty session named name.
func (t *Tracker) AddSession(ctx context.Context, name string) (models.Program, error) {
	return t.editProgram(ctx, "add session", func(p models.Program) (models.Program, error) {
		return program.AddSession(p, name)
	})
}

// RemoveSession deletes a session. Logged history is kept.
func (t *Tracker) RemoveSession(ctx context.Context, name string) (models.Program, error) {
	return t.editProgram(ctx, "remove session", func(p models.Program) (models.Program, error) {
		return program.RemoveSession(p, name)
	})
}

// MoveSession swaps a session with its neighbour delta positions away.
// Moving past either end is a no-op.
func (t *Tracker) MoveSession(ctx context.Context, name string, delta int) (models.Program, error) {
	return t.editProgram(ctx, "move session", func(p models.Program) (models.Program, error) {
		return program.MoveSession(p, name, delta)
	})
}

// AddExercise appends def to a session.
func (t *Tracker) AddExercise(ctx context.Context, session string, def models.ExerciseDefinition) (models.Program, error) {
	return t.editProgram(ctx, "add exercise", func(p models.Program) (models.Program, error) {
		return program.AddExercise(p, session, def)
	})
}

// UpdateExercise changes the planned sets or muscle group of the exercise
// at index.
func (t *Tracker) UpdateExercise(ctx context.Context, session string, index int, u program.ExerciseUpdate) (models.Program, error) {
	return t.editProgram(ctx, "update exercise", func(p models.Program) (models.Program, error) {
		return program.UpdateExercise(p, session, index, u)
	})
}

// MoveExercise shifts an exercise within its session by delta positions.
func (t *Tracker) MoveExercise(ctx context.Context, session string, index, delta int) (models.Program, error) {
	return t.editProgram(ctx, "move exercise", func(p models.Program) (models.Program, error) {
		return program.MoveExercise(p, session, index, delta)
	})
}

// RemoveExercise deletes the exercise at index from a session.
func (t *Tracker) RemoveExercise(ctx context.Context, session string, index int) (models.Program, error) {
	return t.editProgram(ctx, "remove exercise", func(p models.Program) (models.Program, error) {
		return program.RemoveExercise(p, session, index)
	})
}
