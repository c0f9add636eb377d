package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
)

// Importer receives the converted batches. *tracker.Tracker satisfies it.
type Importer interface {
	ImportBatches(ctx context.Context, batches []tracker.Batch) (applied, skipped int, err error)
	Program() models.Program
}

// Provider imports Alpha Progression CSV exports into the workout log.
type Provider struct {
	target Importer
	log    *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(target Importer, log *slog.Logger) *Provider {
	return &Provider{target: target, log: log}
}

// Ingest parses an export and upserts one batch per exercise at the given
// cycle. Re-importing the same export replaces the same keys.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, cycle int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	batches, result := Convert(sessions, cycle)
	result.UnknownSessions = unknownSessions(sessions, p.target.Program())
	if len(result.RejectedSessions) > 0 {
		p.log.Warn("sessions with out-of-range week rejected", "sessions", result.RejectedSessions)
	}
	if len(batches) == 0 {
		result.Message = "no working sets found"
		return result, nil
	}

	applied, skipped, err := p.target.ImportBatches(ctx, batches)
	if err != nil {
		return nil, fmt.Errorf("importing batches: %w", err)
	}
	result.BatchesApplied = applied
	result.BatchesSkipped = skipped
	p.log.Info("alpha export imported",
		"sessions", result.SessionsReceived,
		"sets", result.SetsReceived,
		"applied", applied,
		"skipped", skipped,
	)
	return result, nil
}

// Convert turns parsed sessions into upsert batches without touching any
// store. Warmups are dropped; an exercise listed twice in one session is
// merged into a single batch. Sessions whose week is outside 1..10 are
// rejected whole and listed in the result.
func Convert(sessions []models.AlphaSession, cycle int) ([]tracker.Batch, *ingest.Result) {
	result := &ingest.Result{SessionsReceived: len(sessions)}
	cycle = coerce.Cycle(cycle)

	var batches []tracker.Batch
	index := map[models.SessionKey]int{}
	for _, s := range sessions {
		if s.Week < 1 || s.Week > models.DeloadWeek {
			if !slices.Contains(result.RejectedSessions, s.Name) {
				result.RejectedSessions = append(result.RejectedSessions, s.Name)
			}
			continue
		}
		date := s.Date.Format("2006-01-02")
		for _, ex := range s.Exercises {
			working := ex.WorkingSets()
			result.WarmupsIgnored += len(ex.Sets) - len(working)
			if len(working) == 0 {
				continue
			}
			key := models.SessionKey{
				Cycle:    cycle,
				Week:     models.WeekToStorage(s.Week),
				Session:  s.Session,
				Exercise: models.WithVariant(ex.Name, Variant(ex.Equipment, working)),
			}
			i, ok := index[key]
			if !ok {
				i = len(batches)
				index[key] = i
				batches = append(batches, tracker.Batch{Key: key})
			}
			for _, set := range working {
				batches[i].Sets = append(batches[i].Sets, models.WorkoutSet{
					SetIndex: len(batches[i].Sets) + 1,
					Reps:     set.Reps,
					Weight:   set.WeightKg,
					Note:     rirNote(set.RIR),
					Date:     date,
				})
				result.SetsReceived++
			}
		}
	}
	return batches, result
}

// Variant maps Alpha Progression equipment onto the tracker's variants.
// Unrecognised equipment is kept verbatim.
func Variant(equipment string, sets []models.AlphaSet) string {
	switch strings.ToLower(strings.TrimSpace(equipment)) {
	case "", "bodyweight":
		for _, s := range sets {
			if s.IsBodyweightPlus && s.WeightKg > 0 {
				return "Lesté"
			}
		}
		return "Standard"
	case "barbell", "ez bar", "ez-bar":
		return "Barre"
	case "dumbbell", "dumbbells":
		return "Haltères"
	case "cable", "cables":
		return "Poulie"
	case "machine", "smith machine":
		return "Machine"
	}
	return equipment
}

func rirNote(rir float64) string {
	if rir <= 0 {
		return ""
	}
	return fmt.Sprintf("RIR %g", rir)
}

func unknownSessions(sessions []models.AlphaSession, p models.Program) []string {
	if len(p.Sessions) == 0 {
		return nil
	}
	var out []string
	for _, s := range sessions {
		if _, ok := p.Session(s.Session); !ok && !slices.Contains(out, s.Session) {
			out = append(out, s.Session)
		}
	}
	return out
}
