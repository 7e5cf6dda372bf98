package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/storage"
	"github.com/go-chi/chi/v5"
)

type planRequest struct {
	Name      *string            `json:"name"`
	Exercises *[]models.Exercise `json:"exercises"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.internalError(w, "list plans", err)
		return
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	// An empty body creates a default plan.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	name := ""
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	p := models.NewPlan(name, s.now())
	if req.Exercises != nil {
		for _, e := range *req.Exercises {
			p.AddExercise(e)
		}
	}

	if err := s.store.SavePlan(r.Context(), p); err != nil {
		s.internalError(w, "create plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	s.editPlan(w, r, http.StatusOK, func(p *models.Plan) (any, error) {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Exercises != nil {
			p.Exercises = []models.Exercise{}
			for _, e := range *req.Exercises {
				p.AddExercise(e)
			}
		}
		return p, nil
	})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
		s.internalError(w, "delete plan", err)
		return
	}
	s.sessions.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClonePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	c := p.Clone(s.now())
	if err := s.store.SavePlan(r.Context(), c); err != nil {
		s.internalError(w, "clone plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// loadPlan fetches the plan named by the {id} URL parameter, writing a 404
// or 500 response when it cannot.
func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) (*models.Plan, bool) {
	p, err := s.store.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "plan not found")
		return nil, false
	}
	if err != nil {
		s.internalError(w, "get plan", err)
		return nil, false
	}
	p.Normalize()
	return p, true
}

// statusError carries an HTTP status out of an editPlan callback.
type statusError struct {
	status int
	msg    string
}

func (e statusError) Error() string { return e.msg }

// editPlan loads the plan, applies fn, bumps updatedAt and saves. fn returns
// the response body; an error from fn is reported as 400 unless it is a
// statusError.
func (s *Server) editPlan(w http.ResponseWriter, r *http.Request, status int, fn func(p *models.Plan) (any, error)) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	body, err := fn(p)
	if err != nil {
		status := http.StatusBadRequest
		var se statusError
		if errors.As(err, &se) {
			status = se.status
		}
		writeError(w, status, err.Error())
		return
	}
	p.UpdatedAt = s.now()
	if err := s.store.SavePlan(r.Context(), *p); err != nil {
		s.internalError(w, "save plan", err)
		return
	}
	writeJSON(w, status, body)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
