package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
)

type retrying struct {
	next     Store
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

// Retrying wraps s so each call is tried up to attempts times, sleeping
// backoff, 2*backoff, 4*backoff... between tries. Cancelling ctx stops the
// retries. A malformed program blob is returned at once, since reading it
// again gives the same result.
func Retrying(s Store, attempts int, backoff time.Duration, log *slog.Logger) Store {
	if attempts < 1 {
		attempts = 1
	}
	return &retrying{next: s, attempts: attempts, backoff: backoff, log: log}
}

func (r *retrying) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := range r.attempts {
		if attempt > 0 {
			wait := r.backoff * time.Duration(1<<uint(attempt-1))
			r.log.Warn("retrying store call", "op", op, "attempt", attempt+1, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return wrap(op, fmt.Errorf("after %d attempts: %w", attempt, ctx.Err()))
			case <-time.After(wait):
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, program.ErrMalformed) {
			return lastErr
		}
		if ctx.Err() != nil {
			return wrap(op, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr))
		}
	}
	return wrap(op, fmt.Errorf("after %d attempts: %w", r.attempts, lastErr))
}

func (r *retrying) LoadHistory(ctx context.Context) ([]models.WorkoutSet, error) {
	var rows []models.WorkoutSet
	err := r.do(ctx, "load history", func() (err error) {
		rows, err = r.next.LoadHistory(ctx)
		return err
	})
	return rows, err
}

func (r *retrying) SaveHistory(ctx context.Context, rows []models.WorkoutSet) error {
	return r.do(ctx, "save history", func() error {
		return r.next.SaveHistory(ctx, rows)
	})
}

func (r *retrying) LoadProgram(ctx context.Context) (models.Program, error) {
	var p models.Program
	err := r.do(ctx, "load program", func() (err error) {
		p, err = r.next.LoadProgram(ctx)
		return err
	})
	return p, err
}

func (r *retrying) SaveProgram(ctx context.Context, p models.Program) error {
	return r.do(ctx, "save program", func() error {
		return r.next.SaveProgram(ctx, p)
	})
}

func (r *retrying) Close() error { return r.next.Close() }
