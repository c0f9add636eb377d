package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/sheet"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool and implements Store on PostgreSQL.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// LoadHistory reads every history row in stored order.
func (db *DB) LoadHistory(ctx context.Context) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT cycle, week, session, exercise, set_index, reps, weight, note, muscle, date
		 FROM history_rows ORDER BY position`)
	if err != nil {
		return nil, wrap("load history", fmt.Errorf("querying history: %w", err))
	}
	defer rows.Close()

	var table [][]string
	for rows.Next() {
		cells := make([]string, len(sheet.Header))
		ptrs := make([]any, len(cells))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrap("load history", fmt.Errorf("scanning history row: %w", err))
		}
		table = append(table, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("load history", err)
	}
	return decodeTable(table), nil
}

// SaveHistory replaces the whole table in one transaction.
func (db *DB) SaveHistory(ctx context.Context, sets []models.WorkoutSet) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return wrap("save history", fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM history_rows`); err != nil {
		return wrap("save history", fmt.Errorf("clearing history: %w", err))
	}

	batch := &pgx.Batch{}
	for i, cells := range sheet.Rows(sets) {
		args := make([]any, 0, len(cells)+1)
		args = append(args, i)
		for _, c := range cells {
			args = append(args, c)
		}
		batch.Queue(`INSERT INTO history_rows
			(position, cycle, week, session, exercise, set_index, reps, weight, note, muscle, date)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, args...)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return wrap("save history", fmt.Errorf("inserting history: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return wrap("save history", fmt.Errorf("committing history: %w", err))
	}
	return nil
}

// LoadProgram reads and migrates the program blob. No blob is an empty program.
func (db *DB) LoadProgram(ctx context.Context) (models.Program, error) {
	var data string
	err := db.Pool.QueryRow(ctx, `SELECT data FROM program_blob WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Program{}, nil
	}
	if err != nil {
		return models.Program{}, wrap("load program", fmt.Errorf("querying program: %w", err))
	}
	// A malformed blob is not a store failure: the readable part comes back
	// with an error wrapping program.ErrMalformed.
	return program.Decode([]byte(data))
}

// SaveProgram writes the program blob.
func (db *DB) SaveProgram(ctx context.Context, p models.Program) error {
	data, err := program.Encode(p)
	if err != nil {
		return wrap("save program", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO program_blob (id, data) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		string(data))
	if err != nil {
		return wrap("save program", fmt.Errorf("upserting program: %w", err))
	}
	return nil
}
