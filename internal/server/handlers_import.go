package server

import (
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/sheet"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="liftlog.csv"`)
	if err := s.tracker.Export(w); err != nil {
		s.log.Error("export failed", "error", err)
	}
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	cycle := coerce.Cycle(optional(r.URL.Query().Get("cycle")))
	if r.URL.Query().Get("cycle") == "" {
		cycle = s.tracker.History().CurrentCycle()
	}
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	result, err := s.alpha.Ingest(r.Context(), body, cycle)
	if err != nil {
		s.metrics.CounterImports.WithLabelValues("alpha", "error").Inc()
		s.log.Error("alpha import error", "error", err)
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	s.metrics.CounterImports.WithLabelValues("alpha", "ok").Inc()
	writeJSON(w, http.StatusOK, result)
}

var errEmptySheet = errors.New("sheet has no rows")

// handleSheetImport replaces the whole history with an uploaded sheet CSV.
func (s *Server) handleSheetImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	rows, err := sheet.ReadCSV(body)
	if err == nil && len(rows) == 0 {
		err = errEmptySheet
	}
	if err != nil {
		s.metrics.CounterImports.WithLabelValues("sheet", "error").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.tracker.ReplaceHistory(r.Context(), rows); err != nil {
		s.metrics.CounterImports.WithLabelValues("sheet", "error").Inc()
		s.fail(w, err)
		return
	}
	s.metrics.CounterImports.WithLabelValues("sheet", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]int{"rows": len(rows)})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Load(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}
