package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/analysis"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/claude/liftlog/internal/workoutlog"
)

// DataSource abstracts the data layer for MCP tools. Local (in process) and
// HTTPClient (remote via the REST API) both satisfy it.
//
// A zero Cycle in a key means the latest logged cycle.
type DataSource interface {
	GetSets(ctx context.Context, q workoutlog.Query) ([]models.WorkoutSet, error)
	GetHistory(ctx context.Context, key models.SessionKey, n int) ([]tracker.PeriodSets, error)
	Compare(ctx context.Context, key models.SessionKey) ([]analysis.SetComparison, error)
	GetPodium(ctx context.Context, n int) ([]analysis.PodiumEntry, error)
	GetRecords(ctx context.Context) (map[string]analysis.BestLift, error)
	GetMuscleBalance(ctx context.Context) (map[string]float64, error)
	GetProgression(ctx context.Context, exercise string) ([]analysis.ProgressPoint, error)
	EstimateOneRepMax(ctx context.Context, weight float64, reps int) (*tracker.Estimate, error)
	GetProgram(ctx context.Context) (models.Program, error)
	GetSummary(ctx context.Context) (analysis.Summary, error)
}

// Local serves MCP tools straight from a loaded tracker.
type Local struct {
	t *tracker.Tracker
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

// NewLocal wraps a tracker that has already been loaded.
func NewLocal(t *tracker.Tracker) Local {
	return Local{t: t}
}

func (l Local) resolve(key models.SessionKey) models.SessionKey {
	if key.Cycle == 0 {
		key.Cycle = l.t.History().CurrentCycle()
	}
	return key
}

func (l Local) GetSets(_ context.Context, q workoutlog.Query) ([]models.WorkoutSet, error) {
	return l.t.Filter(q), nil
}

func (l Local) GetHistory(_ context.Context, key models.SessionKey, n int) ([]tracker.PeriodSets, error) {
	return l.t.RecentHistory(l.resolve(key), n), nil
}

func (l Local) Compare(_ context.Context, key models.SessionKey) ([]analysis.SetComparison, error) {
	return l.t.Compare(l.resolve(key)), nil
}

func (l Local) GetPodium(_ context.Context, n int) ([]analysis.PodiumEntry, error) {
	return l.t.Podium(n), nil
}

func (l Local) GetRecords(context.Context) (map[string]analysis.BestLift, error) {
	return l.t.BestLifts(), nil
}

func (l Local) GetMuscleBalance(context.Context) (map[string]float64, error) {
	return l.t.MuscleBalance(), nil
}

func (l Local) GetProgression(_ context.Context, exercise string) ([]analysis.ProgressPoint, error) {
	return l.t.Progression(exercise), nil
}

func (l Local) EstimateOneRepMax(_ context.Context, weight float64, reps int) (*tracker.Estimate, error) {
	est := l.t.EstimateOneRepMax(weight, reps)
	return &est, nil
}

func (l Local) GetProgram(context.Context) (models.Program, error) {
	return l.t.Program(), nil
}

func (l Local) GetSummary(context.Context) (analysis.Summary, error) {
	return l.t.Summary(), nil
}
