package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/claude/liftlog/internal/workoutlog"
)

// exerciseRequest is the body shared by the per-exercise endpoints. Numeric
// fields go through coercion so "82,5" and "4" are as good as 82.5 and 4.
type exerciseRequest struct {
	Cycle   any              `json:"cycle"`
	Week    any              `json:"week"`
	Variant string           `json:"variant"`
	Date    string           `json:"date"`
	Editing *bool            `json:"editing"`
	Sets    []map[string]any `json:"sets"`
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	rows := s.tracker.Filter(queryFilter(r.URL.Query()))
	if rows == nil {
		rows = []models.WorkoutSet{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	key, ok := s.queryKey(w, r)
	if !ok {
		return
	}
	n := coerce.Int(optional(r.URL.Query().Get("limit")), tracker.HistoryDepth)
	writeJSON(w, http.StatusOK, s.tracker.RecentHistory(key, n))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	key, ok := s.queryKey(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"key":         key,
		"comparisons": s.tracker.Compare(key),
	})
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	names := s.tracker.Exercises()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exercises": names,
		"variants":  models.Variants,
	})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	weight := coerce.Weight(optional(q.Get("weight")))
	reps := coerce.Reps(optional(q.Get("reps")))
	if reps < 1 {
		writeError(w, http.StatusBadRequest, "reps must be at least 1")
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.EstimateOneRepMax(weight, reps))
}

func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := s.period(optional(q.Get("cycle")), optional(q.Get("week")))
	view, err := s.tracker.SessionView(pathParam(r, "session"), period, parseVariants(q["variant"]))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLogSets(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key := s.exerciseKey(r, req)
	rows := make([]models.WorkoutSet, 0, len(req.Sets))
	for i, raw := range req.Sets {
		idx := i + 1
		if v, ok := raw["set_index"]; ok && v != nil {
			idx = coerce.SetIndex(v)
		}
		rows = append(rows, models.WorkoutSet{
			SetIndex:    idx,
			Reps:        coerce.Reps(raw["reps"]),
			Weight:      coerce.Weight(raw["weight"]),
			Note:        coerce.Text(raw["note"]),
			MuscleGroup: coerce.Text(raw["muscle_group"]),
			Date:        req.Date,
		})
	}

	result, err := s.tracker.LogSets(r.Context(), key, rows)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key := s.exerciseKey(r, req)
	if err := s.tracker.Skip(r.Context(), key, req.Date); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "skipped": true})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key := s.exerciseKey(r, req)
	on := req.Editing == nil || *req.Editing
	s.tracker.SetEditing(key, on)
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "editing": on})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := s.exerciseKey(r, exerciseRequest{
		Cycle:   optional(q.Get("cycle")),
		Week:    optional(q.Get("week")),
		Variant: q.Get("variant"),
	})
	if err := s.tracker.Clear(r.Context(), key); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMissSession(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session := pathParam(r, "session")
	period := s.period(req.Cycle, req.Week)
	if err := s.tracker.MissSession(r.Context(), period, session, req.Date); err != nil {
		s.fail(w, err)
		return
	}
	view, err := s.tracker.SessionView(session, period, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// period resolves a (cycle, week) from raw request values. A missing cycle
// means the latest logged one; weeks are user-facing (10 is the deload).
func (s *Server) period(cycle, week any) models.Period {
	c := s.tracker.History().CurrentCycle()
	if cycle != nil {
		c = coerce.Cycle(cycle)
	}
	return models.Period{Cycle: c, Week: coerce.Week(week)}
}

func (s *Server) exerciseKey(r *http.Request, req exerciseRequest) models.SessionKey {
	p := s.period(req.Cycle, req.Week)
	return models.SessionKey{
		Cycle:    p.Cycle,
		Week:     p.Week,
		Session:  pathParam(r, "session"),
		Exercise: models.WithVariant(pathParam(r, "exercise"), req.Variant),
	}
}

// queryKey reads a full session key from the query string; exercise and
// session are required.
func (s *Server) queryKey(w http.ResponseWriter, r *http.Request) (models.SessionKey, bool) {
	q := r.URL.Query()
	exercise, session := q.Get("exercise"), q.Get("session")
	if exercise == "" || session == "" {
		writeError(w, http.StatusBadRequest, "exercise and session parameters required")
		return models.SessionKey{}, false
	}
	p := s.period(optional(q.Get("cycle")), optional(q.Get("week")))
	return models.SessionKey{Cycle: p.Cycle, Week: p.Week, Session: session, Exercise: exercise}, true
}

func queryFilter(q url.Values) workoutlog.Query {
	f := workoutlog.Query{Exercise: q.Get("exercise"), Session: q.Get("session")}
	if v := q.Get("cycle"); v != "" {
		f.Cycle = coerce.Cycle(v)
	}
	if v := q.Get("week"); v != "" {
		f.Week = workoutlog.WeekPtr(coerce.Week(v))
	}
	return f
}

// parseVariants reads repeated "Base:Variant" values.
func parseVariants(values []string) map[string]string {
	out := map[string]string{}
	for _, v := range values {
		i := strings.LastIndex(v, ":")
		if i <= 0 {
			continue
		}
		out[strings.TrimSpace(v[:i])] = strings.TrimSpace(v[i+1:])
	}
	return out
}

// pathParam returns a URL parameter decoded exactly once. chi matches on
// RawPath when the request has one, leaving escapes in the parameter;
// otherwise the parameter is already decoded.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func optional(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// decodeJSON reads an optional JSON body. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
	return false
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case storage.IsStoreError(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, workoutlog.ErrEmptyBatch), errors.Is(err, workoutlog.ErrWeekRange),
		errors.Is(err, program.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, program.ErrSessionNotFound), errors.Is(err, program.ErrExerciseIndex):
		return http.StatusNotFound
	case errors.Is(err, program.ErrSessionExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
