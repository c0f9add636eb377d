package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/claude/liftlog/internal/models"
)

// Memory keeps the history and program in process. Used by tests and
// dry-run imports.
type Memory struct {
	mu      sync.Mutex
	rows    []models.WorkoutSet
	program models.Program
	saves   int

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMemory returns a store seeded with rows and program.
func NewMemory(rows []models.WorkoutSet, p models.Program) *Memory {
	return &Memory{rows: slices.Clone(rows), program: p.Clone()}
}

// LoadHistory returns a copy of the stored rows.
func (m *Memory) LoadHistory(ctx context.Context) ([]models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, wrap("load history", m.FailWith)
	}
	return slices.Clone(m.rows), nil
}

// SaveHistory replaces the stored rows with a copy of rows.
func (m *Memory) SaveHistory(ctx context.Context, rows []models.WorkoutSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return wrap("save history", m.FailWith)
	}
	m.rows = slices.Clone(rows)
	m.saves++
	return nil
}

// LoadProgram returns a copy of the stored program.
func (m *Memory) LoadProgram(ctx context.Context) (models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return models.Program{}, wrap("load program", m.FailWith)
	}
	return m.program.Clone(), nil
}

// SaveProgram replaces the stored program with a copy of p.
func (m *Memory) SaveProgram(ctx context.Context, p models.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return wrap("save program", m.FailWith)
	}
	m.program = p.Clone()
	return nil
}

// Saves returns how many times the history was written.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
