// Package tracker coordinates the workout log, the program and the store.
// Every mutation reloads the history, applies one pure change and rewrites
// the full table; the in-memory copy only moves forward once the write
// succeeded.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/analysis"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/sheet"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workoutlog"
)

// Options selects the analysis behaviour.
type Options struct {
	Formula          analysis.Formula
	Rule             analysis.Rule
	BalanceCap       float64
	ReferenceWeights map[string]float64
}

// Tracker is safe for concurrent use; mutations are serialized.
type Tracker struct {
	store   storage.Store
	log     *slog.Logger
	metrics *metrics.Manager

	estimator  analysis.Estimator
	comparator analysis.Comparator
	aggregator analysis.Aggregator
	refs       map[string]float64
	balanceCap float64

	mu      sync.Mutex
	history workoutlog.Log
	program models.Program
	editing map[models.SessionKey]bool
}

// New creates a tracker. Call Load before serving reads.
func New(store storage.Store, opts Options, log *slog.Logger, m *metrics.Manager) *Tracker {
	est := analysis.Estimator{Formula: opts.Formula}
	if m == nil {
		m = metrics.NewTestManager()
	}
	return &Tracker{
		store:      store,
		log:        log,
		metrics:    m,
		estimator:  est,
		comparator: analysis.Comparator{Rule: opts.Rule, Estimator: est},
		aggregator: analysis.Aggregator{Estimator: est},
		refs:       maps.Clone(opts.ReferenceWeights),
		balanceCap: opts.BalanceCap,
		editing:    map[models.SessionKey]bool{},
	}
}

// Load reads the history and the program from the store.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.store.LoadHistory(ctx)
	if err != nil {
		t.storeFailed("load history")
		return err
	}
	p, err := t.store.LoadProgram(ctx)
	if errors.Is(err, program.ErrMalformed) {
		t.log.Warn("program partly unreadable, keeping what could be read", "error", err)
		err = nil
	}
	if err != nil {
		t.storeFailed("load program")
		return err
	}
	t.history = workoutlog.New(rows)
	t.program = p
	t.metrics.GaugeHistoryRows.Set(float64(t.history.Len()))
	t.log.Info("workout log loaded", "rows", t.history.Len(), "sessions", len(p.Sessions))
	return nil
}

// History returns the current log snapshot.
func (t *Tracker) History() workoutlog.Log {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history
}

// Program returns a copy of the current program.
func (t *Tracker) Program() models.Program {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.program.Clone()
}

// Estimator returns the configured 1RM estimator.
func (t *Tracker) Estimator() analysis.Estimator { return t.estimator }

func (t *Tracker) storeFailed(op string) {
	t.metrics.CounterStoreErrors.WithLabelValues(op).Inc()
}

// mutate runs fn against a freshly loaded history and writes the result.
// Caller holds t.mu.
func (t *Tracker) mutate(ctx context.Context, fn func(workoutlog.Log) (workoutlog.Log, error)) (workoutlog.Log, error) {
	rows, err := t.store.LoadHistory(ctx)
	if err != nil {
		t.storeFailed("load history")
		return workoutlog.Log{}, err
	}
	next, err := fn(workoutlog.New(rows))
	if err != nil {
		return workoutlog.Log{}, err
	}

	start := time.Now()
	if err := t.store.SaveHistory(ctx, next.Rows()); err != nil {
		t.storeFailed("save history")
		t.log.Error("saving history failed", "error", err)
		return workoutlog.Log{}, err
	}
	t.metrics.HistSaveDuration.Observe(time.Since(start).Seconds())
	t.metrics.CounterSaves.WithLabelValues("history").Inc()
	t.metrics.GaugeHistoryRows.Set(float64(next.Len()))

	t.history = next
	return next, nil
}

// LogResult is the outcome of a validated exercise: what was stored and how
// it compares to the previous session.
type LogResult struct {
	Key         models.SessionKey        `json:"key"`
	Sets        []models.WorkoutSet      `json:"sets"`
	Comparisons []analysis.SetComparison `json:"comparisons"`
}

// LogSets validates one exercise: the batch replaces whatever was stored
// under key. Missing muscle groups are filled from the program.
func (t *Tracker) LogSets(ctx context.Context, key models.SessionKey, rows []models.WorkoutSet) (*LogResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	muscle := t.program.MuscleGroupOf(key.Exercise)
	batch := make([]models.WorkoutSet, len(rows))
	for i, r := range rows {
		if r.MuscleGroup == "" {
			r.MuscleGroup = muscle
		}
		batch[i] = r
	}

	next, err := t.mutate(ctx, func(l workoutlog.Log) (workoutlog.Log, error) {
		return workoutlog.Upsert(l, key, batch)
	})
	if err != nil {
		return nil, err
	}
	delete(t.editing, key)

	current := next.Current(key)
	t.metrics.CounterSetsSaved.Add(float64(len(current)))
	t.log.Info("sets logged", "key", key.String(), "sets", len(current))

	baseline := next.Baseline(key.Exercise, key.Session, key.Cycle, key.Week)
	return &LogResult{
		Key:         key,
		Sets:        current,
		Comparisons: t.comparator.CompareSession(current, baseline),
	}, nil
}

// Skip records the exercise as deliberately skipped for the period.
func (t *Tracker) Skip(ctx context.Context, key models.SessionKey, date string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	muscle := t.program.MuscleGroupOf(key.Exercise)
	_, err := t.mutate(ctx, func(l workoutlog.Log) (workoutlog.Log, error) {
		return workoutlog.Skip(l, key, muscle, date), nil
	})
	if err != nil {
		return err
	}
	delete(t.editing, key)
	t.log.Info("exercise skipped", "key", key.String())
	return nil
}

// Clear deletes everything stored under key.
func (t *Tracker) Clear(ctx context.Context, key models.SessionKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.mutate(ctx, func(l workoutlog.Log) (workoutlog.Log, error) {
		return workoutlog.Clear(l, key), nil
	})
	if err != nil {
		return err
	}
	delete(t.editing, key)
	t.log.Info("exercise cleared", "key", key.String())
	return nil
}

// MissSession marks every exercise of a program session as missed.
func (t *Tracker) MissSession(ctx context.Context, period models.Period, session, date string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, ok := t.program.Session(session)
	if !ok {
		return fmt.Errorf("missing session %q: %w", session, program.ErrSessionNotFound)
	}
	_, err := t.mutate(ctx, func(l workoutlog.Log) (workoutlog.Log, error) {
		return workoutlog.MissSession(l, period, session, def.Exercises, date), nil
	})
	if err != nil {
		return err
	}
	t.log.Info("session marked missed", "session", session, "period", period.Label())
	return nil
}

// SetEditing reopens (or closes) a validated exercise for input. Nothing is
// persisted; the flag only changes how the session view renders the key.
func (t *Tracker) SetEditing(key models.SessionKey, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on {
		t.editing[key] = true
	} else {
		delete(t.editing, key)
	}
}

// Batch is one exercise worth of sets to upsert.
type Batch struct {
	Key  models.SessionKey
	Sets []models.WorkoutSet
}

// ImportBatches upserts many exercises with a single write. Batches that end
// up empty are skipped and counted.
func (t *Tracker) ImportBatches(ctx context.Context, batches []Batch) (applied, skipped int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err = t.mutate(ctx, func(l workoutlog.Log) (workoutlog.Log, error) {
		for _, b := range batches {
			muscle := t.program.MuscleGroupOf(b.Key.Exercise)
			sets := make([]models.WorkoutSet, len(b.Sets))
			for i, s := range b.Sets {
				if s.MuscleGroup == "" {
					s.MuscleGroup = muscle
				}
				sets[i] = s
			}
			next, err := workoutlog.Upsert(l, b.Key, sets)
			if err != nil {
				skipped++
				continue
			}
			l = next
			applied++
		}
		return l, nil
	})
	if err != nil {
		return 0, 0, err
	}
	t.log.Info("batches imported", "applied", applied, "skipped", skipped)
	return applied, skipped, nil
}

// ReplaceHistory overwrites the whole log, used by sheet imports.
func (t *Tracker) ReplaceHistory(ctx context.Context, rows []models.WorkoutSet) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.mutate(ctx, func(workoutlog.Log) (workoutlog.Log, error) {
		return workoutlog.New(rows), nil
	})
	if err != nil {
		return err
	}
	clear(t.editing)
	t.log.Info("history replaced", "rows", len(rows))
	return nil
}

// Export writes the full history in sheet CSV form.
func (t *Tracker) Export(w io.Writer) error {
	return sheet.WriteCSV(w, t.History().Rows())
}
