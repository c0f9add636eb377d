package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB remembers which exports were already imported by which server, so
// a watched folder can be re-scanned cheaply.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS uploaded_exports (
		target      TEXT NOT NULL,
		path        TEXT NOT NULL,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		sets        INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (target, path)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsUploaded reports whether the file was sent to target with the same
// size and hash. An edited export is uploaded again.
func (s *StateDB) IsUploaded(target, relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM uploaded_exports WHERE target = ? AND path = ? AND size = ? AND hash = ?`,
		target, relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking upload state: %w", err)
	}
	return count > 0, nil
}

// MarkUploaded records a successful import of the file.
func (s *StateDB) MarkUploaded(target, relPath string, size int64, hash string, sets int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO uploaded_exports (target, path, size, hash, sets) VALUES (?, ?, ?, ?, ?)`,
		target, relPath, size, hash, sets,
	)
	if err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
