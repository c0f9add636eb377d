// Package upload pushes Alpha Progression exports from a folder (typically
// a synced phone export directory) to a LiftLog server.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SetsSent       int
	BatchesApplied int

	UnknownSessions []string
}

// Uploader walks a directory of CSV exports and imports the new ones.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	cycle  int
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. Every export is imported at cycle.
func New(client *Client, state *StateDB, dir string, cycle int, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		cycle:  cycle,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every new or changed export, oldest file name first. A file
// that fails is counted and skipped; only context cancellation aborts.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := exports(u.dir)
	if err != nil {
		return &u.stats, err
	}

	unknown := map[string]bool{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.uploadFile(ctx, f, unknown); err != nil {
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	for name := range unknown {
		u.stats.UnknownSessions = append(u.stats.UnknownSessions, name)
	}
	sort.Strings(u.stats.UnknownSessions)
	return &u.stats, nil
}

func (u *Uploader) uploadFile(ctx context.Context, path string, unknown map[string]bool) error {
	relPath, _ := filepath.Rel(u.dir, path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	target := u.client.Target()
	uploaded, err := u.state.IsUploaded(target, relPath, info.Size(), hash)
	if err != nil {
		return err
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would upload", "file", relPath, "bytes", info.Size(), "cycle", u.cycle)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}
	result, err := u.client.ImportAlpha(ctx, data, u.cycle)
	if err != nil {
		return err
	}

	u.stats.FilesUploaded++
	u.stats.SetsSent += result.SetsReceived
	u.stats.BatchesApplied += result.BatchesApplied
	for _, name := range result.UnknownSessions {
		unknown[name] = true
	}
	if err := u.state.MarkUploaded(target, relPath, info.Size(), hash, result.SetsReceived); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.log.Info("uploaded export", "file", relPath, "sets", result.SetsReceived, "batches", result.BatchesApplied)
	return nil
}

// exports lists the .csv files under dir, sorted by path.
func exports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
