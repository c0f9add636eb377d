package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/sheet"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history_rows (
	position  INTEGER PRIMARY KEY,
	cycle     TEXT NOT NULL DEFAULT '',
	week      TEXT NOT NULL DEFAULT '',
	session   TEXT NOT NULL DEFAULT '',
	exercise  TEXT NOT NULL DEFAULT '',
	set_index TEXT NOT NULL DEFAULT '',
	reps      TEXT NOT NULL DEFAULT '',
	weight    TEXT NOT NULL DEFAULT '',
	note      TEXT NOT NULL DEFAULT '',
	muscle    TEXT NOT NULL DEFAULT '',
	date      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS program_blob (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// SQLite implements Store on a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and its schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// LoadHistory reads every history row in stored order.
func (s *SQLite) LoadHistory(ctx context.Context) ([]models.WorkoutSet, error) {
	rows, err := s.db.QueryContext(ctx,
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
func (s *SQLite) SaveHistory(ctx context.Context, sets []models.WorkoutSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("save history", fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_rows`); err != nil {
		return wrap("save history", fmt.Errorf("clearing history: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history_rows
		(position, cycle, week, session, exercise, set_index, reps, weight, note, muscle, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return wrap("save history", fmt.Errorf("preparing insert: %w", err))
	}
	defer stmt.Close()

	for i, cells := range sheet.Rows(sets) {
		args := make([]any, 0, len(cells)+1)
		args = append(args, i)
		for _, c := range cells {
			args = append(args, c)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return wrap("save history", fmt.Errorf("inserting history row %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("save history", fmt.Errorf("committing history: %w", err))
	}
	return nil
}

// LoadProgram reads and migrates the program blob. No blob is an empty program.
func (s *SQLite) LoadProgram(ctx context.Context) (models.Program, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM program_blob WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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
func (s *SQLite) SaveProgram(ctx context.Context, p models.Program) error {
	data, err := program.Encode(p)
	if err != nil {
		return wrap("save program", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO program_blob (id, data) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		string(data))
	if err != nil {
		return wrap("save program", fmt.Errorf("upserting program: %w", err))
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
