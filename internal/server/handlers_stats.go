package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/analysis"
	"github.com/claude/liftlog/internal/coerce"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}

func (s *Server) handlePodium(w http.ResponseWriter, r *http.Request) {
	n := coerce.Int(optional(r.URL.Query().Get("n")), 3)
	podium := s.tracker.Podium(n)
	if podium == nil {
		podium = []analysis.PodiumEntry{}
	}
	writeJSON(w, http.StatusOK, podium)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.BestLifts())
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeError(w, http.StatusBadRequest, "exercise parameter required")
		return
	}
	rec, ok := s.tracker.ExerciseRecord(exercise)
	if !ok {
		writeError(w, http.StatusNotFound, "no performed sets for "+exercise)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.MuscleBalance())
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeError(w, http.StatusBadRequest, "exercise parameter required")
		return
	}
	points := s.tracker.Progression(exercise)
	if points == nil {
		points = []analysis.ProgressPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}
