package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/analysis"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/claude/liftlog/internal/workoutlog"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the log lives on the server (reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// get fetches path and decodes the JSON response into v.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// keyParams encodes a session key; weeks go back to their user-facing form.
func keyParams(key models.SessionKey) url.Values {
	v := url.Values{}
	v.Set("exercise", key.Exercise)
	v.Set("session", key.Session)
	if key.Cycle != 0 {
		v.Set("cycle", strconv.Itoa(key.Cycle))
	}
	v.Set("week", strconv.Itoa(models.WeekFromStorage(key.Week)))
	return v
}

func (c *HTTPClient) GetSets(ctx context.Context, q workoutlog.Query) ([]models.WorkoutSet, error) {
	params := url.Values{}
	if q.Exercise != "" {
		params.Set("exercise", q.Exercise)
	}
	if q.Session != "" {
		params.Set("session", q.Session)
	}
	if q.Cycle != 0 {
		params.Set("cycle", strconv.Itoa(q.Cycle))
	}
	if q.Week != nil {
		params.Set("week", strconv.Itoa(models.WeekFromStorage(*q.Week)))
	}
	var sets []models.WorkoutSet
	if err := c.get(ctx, "/api/v1/log", params, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) GetHistory(ctx context.Context, key models.SessionKey, n int) ([]tracker.PeriodSets, error) {
	params := keyParams(key)
	params.Set("limit", strconv.Itoa(n))
	var history []tracker.PeriodSets
	if err := c.get(ctx, "/api/v1/history", params, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *HTTPClient) Compare(ctx context.Context, key models.SessionKey) ([]analysis.SetComparison, error) {
	var resp struct {
		Comparisons []analysis.SetComparison `json:"comparisons"`
	}
	if err := c.get(ctx, "/api/v1/compare", keyParams(key), &resp); err != nil {
		return nil, err
	}
	return resp.Comparisons, nil
}

func (c *HTTPClient) GetPodium(ctx context.Context, n int) ([]analysis.PodiumEntry, error) {
	var podium []analysis.PodiumEntry
	params := url.Values{"n": {strconv.Itoa(n)}}
	if err := c.get(ctx, "/api/v1/stats/podium", params, &podium); err != nil {
		return nil, err
	}
	return podium, nil
}

func (c *HTTPClient) GetRecords(ctx context.Context) (map[string]analysis.BestLift, error) {
	var records map[string]analysis.BestLift
	if err := c.get(ctx, "/api/v1/stats/records", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetMuscleBalance(ctx context.Context) (map[string]float64, error) {
	var balance map[string]float64
	if err := c.get(ctx, "/api/v1/stats/balance", nil, &balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *HTTPClient) GetProgression(ctx context.Context, exercise string) ([]analysis.ProgressPoint, error) {
	var points []analysis.ProgressPoint
	if err := c.get(ctx, "/api/v1/stats/progression", url.Values{"exercise": {exercise}}, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *HTTPClient) EstimateOneRepMax(ctx context.Context, weight float64, reps int) (*tracker.Estimate, error) {
	params := url.Values{}
	params.Set("weight", strconv.FormatFloat(weight, 'f', -1, 64))
	params.Set("reps", strconv.Itoa(reps))
	var est tracker.Estimate
	if err := c.get(ctx, "/api/v1/estimate", params, &est); err != nil {
		return nil, err
	}
	return &est, nil
}

func (c *HTTPClient) GetProgram(ctx context.Context) (models.Program, error) {
	var p models.Program
	if err := c.get(ctx, "/api/v1/program", nil, &p); err != nil {
		return models.Program{}, err
	}
	return p, nil
}

func (c *HTTPClient) GetSummary(ctx context.Context) (analysis.Summary, error) {
	var s analysis.Summary
	if err := c.get(ctx, "/api/v1/stats/summary", nil, &s); err != nil {
		return analysis.Summary{}, err
	}
	return s, nil
}
