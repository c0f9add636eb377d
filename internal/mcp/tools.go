package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/claude/liftlog/internal/workoutlog"
)

// arg returns a raw tool argument. Numbers may arrive as JSON numbers or
// strings depending on the client, so callers coerce.
func arg(req mcp.CallToolRequest, name string) any {
	v, ok := req.GetArguments()[name]
	if !ok {
		return nil
	}
	if s, isString := v.(string); isString && s == "" {
		return nil
	}
	return v
}

// sessionKey reads exercise, session, cycle and week. Cycle defaults to the
// latest logged one (zero), week to 1.
func sessionKey(req mcp.CallToolRequest) (models.SessionKey, *mcp.CallToolResult) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return models.SessionKey{}, mcp.NewToolResultError("exercise parameter is required")
	}
	session, err := req.RequireString("session")
	if err != nil {
		return models.SessionKey{}, mcp.NewToolResultError("session parameter is required")
	}
	key := models.SessionKey{Session: session, Exercise: exercise, Week: coerce.Week(arg(req, "week"))}
	if c := arg(req, "cycle"); c != nil {
		key.Cycle = coerce.Cycle(c)
	}
	return key, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

// --- Tool definitions ---

var periodOptions = []mcp.ToolOption{
	mcp.WithString("cycle", mcp.Description("Training cycle number. Defaults to the latest logged cycle.")),
	mcp.WithString("week", mcp.Description("Week within the cycle, 1-10 (10 is the deload week). Defaults to 1.")),
}

var toolGetSets = mcp.NewTool("get_sets",
	append([]mcp.ToolOption{
		mcp.WithDescription("List logged sets. Every filter is optional and matches exactly; exercise names include the variant, e.g. 'Bench Press (Barre)'."),
		mcp.WithString("exercise", mcp.Description("Exercise name")),
		mcp.WithString("session", mcp.Description("Program session name, e.g. 'Push'")),
	}, periodOptions...)...,
)

var toolGetHistory = mcp.NewTool("get_history",
	append([]mcp.ToolOption{
		mcp.WithDescription("Sets of the most recent earlier periods for one exercise of one session, most recent first."),
		mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
		mcp.WithString("session", mcp.Required(), mcp.Description("Program session name")),
		mcp.WithString("limit", mcp.Description("Number of periods. Defaults to 2.")),
	}, periodOptions...)...,
)

var toolCompareSession = mcp.NewTool("compare_session",
	append([]mcp.ToolOption{
		mcp.WithDescription("Classify each logged set of an exercise as improved, regressed or unchanged against the same set of the previous session."),
		mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
		mcp.WithString("session", mcp.Required(), mcp.Description("Program session name")),
	}, periodOptions...)...,
)

var toolGetPodium = mcp.NewTool("get_podium",
	mcp.WithDescription("Top exercises ranked by best estimated one-rep max. Bodyweight exercises are excluded."),
	mcp.WithString("n", mcp.Description("Number of entries. Defaults to 3.")),
)

var toolGetRecords = mcp.NewTool("get_records",
	mcp.WithDescription("Best set per exercise: weight, reps and estimated one-rep max."),
)

var toolGetMuscleBalance = mcp.NewTool("get_muscle_balance",
	mcp.WithDescription("Strength per muscle group relative to reference loads, capped so one group does not dominate."),
)

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Heaviest weight per cycle and week for one exercise, in chronological order."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
)

var toolEstimateOneRepMax = mcp.NewTool("estimate_one_rep_max",
	mcp.WithDescription("Estimate a one-rep max from a set and derive the rep-max table."),
	mcp.WithString("weight", mcp.Required(), mcp.Description("Weight in kg")),
	mcp.WithString("reps", mcp.Required(), mcp.Description("Repetitions performed")),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("The training program: sessions in order with their planned exercises, set counts and muscle groups."),
)

// --- Tool handlers ---

func (h *handlers) getSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := workoutlog.Query{
		Exercise: req.GetString("exercise", ""),
		Session:  req.GetString("session", ""),
	}
	if c := arg(req, "cycle"); c != nil {
		q.Cycle = coerce.Cycle(c)
	}
	if w := arg(req, "week"); w != nil {
		q.Week = workoutlog.WeekPtr(coerce.Week(w))
	}

	sets, err := h.ds.GetSets(ctx, q)
	if err != nil {
		h.log.Error("mcp get_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if sets == nil {
		sets = []models.WorkoutSet{}
	}
	return jsonResult(sets), nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, errResult := sessionKey(req)
	if errResult != nil {
		return errResult, nil
	}
	n := coerce.Int(arg(req, "limit"), tracker.HistoryDepth)

	history, err := h.ds.GetHistory(ctx, key, n)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(history), nil
}

func (h *handlers) compareSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, errResult := sessionKey(req)
	if errResult != nil {
		return errResult, nil
	}

	comparisons, err := h.ds.Compare(ctx, key)
	if err != nil {
		h.log.Error("mcp compare_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"key": key, "comparisons": comparisons}), nil
}

func (h *handlers) getPodium(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	podium, err := h.ds.GetPodium(ctx, coerce.Int(arg(req, "n"), 3))
	if err != nil {
		h.log.Error("mcp get_podium", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(podium), nil
}

func (h *handlers) getRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.GetRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(records), nil
}

func (h *handlers) getMuscleBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	balance, err := h.ds.GetMuscleBalance(ctx)
	if err != nil {
		h.log.Error("mcp get_muscle_balance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(balance), nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	points, err := h.ds.GetProgression(ctx, exercise)
	if err != nil {
		h.log.Error("mcp get_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(points), nil
}

func (h *handlers) estimateOneRepMax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, reps := coerce.Weight(arg(req, "weight")), coerce.Reps(arg(req, "reps"))
	if reps < 1 {
		return mcp.NewToolResultError("reps must be at least 1"), nil
	}

	est, err := h.ds.EstimateOneRepMax(ctx, weight, reps)
	if err != nil {
		h.log.Error("mcp estimate_one_rep_max", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(est), nil
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.GetProgram(ctx)
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(p), nil
}
