package server

import (
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
)

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p := s.tracker.Program()
	if p.Sessions == nil {
		p.Sessions = []models.ProgramSession{}
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.tracker.AddSession(r.Context(), req.Name)
	s.programResponse(w, http.StatusCreated, p, err)
}

func (s *Server) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	p, err := s.tracker.RemoveSession(r.Context(), pathParam(r, "session"))
	s.programResponse(w, http.StatusOK, p, err)
}

func (s *Server) handleMoveSession(w http.ResponseWriter, r *http.Request) {
	delta, ok := direction(w, r)
	if !ok {
		return
	}
	p, err := s.tracker.MoveSession(r.Context(), pathParam(r, "session"), delta)
	s.programResponse(w, http.StatusOK, p, err)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var def models.ExerciseDefinition
	if !decodeJSON(w, r, &def) {
		return
	}
	p, err := s.tracker.AddExercise(r.Context(), pathParam(r, "session"), def)
	s.programResponse(w, http.StatusCreated, p, err)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	index, ok := exerciseIndex(w, r)
	if !ok {
		return
	}
	var u program.ExerciseUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	p, err := s.tracker.UpdateExercise(r.Context(), pathParam(r, "session"), index, u)
	s.programResponse(w, http.StatusOK, p, err)
}

func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	index, ok := exerciseIndex(w, r)
	if !ok {
		return
	}
	delta, ok := direction(w, r)
	if !ok {
		return
	}
	p, err := s.tracker.MoveExercise(r.Context(), pathParam(r, "session"), index, delta)
	s.programResponse(w, http.StatusOK, p, err)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	index, ok := exerciseIndex(w, r)
	if !ok {
		return
	}
	p, err := s.tracker.RemoveExercise(r.Context(), pathParam(r, "session"), index)
	s.programResponse(w, http.StatusOK, p, err)
}

func (s *Server) programResponse(w http.ResponseWriter, status int, p models.Program, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	if p.Sessions == nil {
		p.Sessions = []models.ProgramSession{}
	}
	writeJSON(w, status, p)
}

func exerciseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(pathParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid exercise index")
		return 0, false
	}
	return index, true
}

// direction maps ?dir=up|down to a move delta.
func direction(w http.ResponseWriter, r *http.Request) (int, bool) {
	switch r.URL.Query().Get("dir") {
	case "up":
		return -1, true
	case "down":
		return 1, true
	}
	writeError(w, http.StatusBadRequest, "dir must be up or down")
	return 0, false
}
