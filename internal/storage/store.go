// Package storage persists the workout history table and the program blob.
// Every backend reads everything at load and rewrites the full history on save.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/sheet"
	"github.com/prometheus/client_golang/prometheus"
)

// Store is the persistence contract shared by all backends.
type Store interface {
	LoadHistory(ctx context.Context) ([]models.WorkoutSet, error)
	// SaveHistory clears the stored table and writes rows in order.
	SaveHistory(ctx context.Context, rows []models.WorkoutSet) error
	// LoadProgram returns the readable part of a malformed blob together
	// with an error wrapping program.ErrMalformed.
	LoadProgram(ctx context.Context) (models.Program, error)
	SaveProgram(ctx context.Context, p models.Program) error
	Close() error
}

// StoreError reports a failed read or write against the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err came from the backing store.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// decodeTable turns stored text cells (Header order) back into typed sets.
func decodeTable(rows [][]string) []models.WorkoutSet {
	return sheet.Decode(sheet.Records(sheet.Header, rows))
}

// Open builds the store selected by cfg.Driver, wrapped with retries when
// cfg.Retry.Attempts > 1. When reg is non-nil the postgres pool stats are
// registered on it.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger, reg prometheus.Registerer) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn, cfg.Postgres.Migrations); err != nil {
			return nil, err
		}
		var db *DB
		db, err = New(ctx, dsn)
		if err == nil && reg != nil {
			reg.MustRegister(pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": cfg.Postgres.Name}))
		}
		s = db
	case config.DriverSQLite:
		s, err = OpenSQLite(ctx, cfg.SQLite.Path)
	case config.DriverS3:
		s, err = NewS3(ctx, cfg.S3)
	case config.DriverMemory:
		s = NewMemory(nil, models.Program{})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info("store opened", "driver", cfg.Driver)

	if cfg.Retry.Attempts > 1 {
		s = Retrying(s, cfg.Retry.Attempts, cfg.Retry.Backoff, log)
	}
	return s, nil
}
