package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/claude/setflow/internal/models"
	"github.com/go-chi/chi/v5"
)

// exerciseRequest mirrors the add-exercise form. Duration is in minutes when
// Minutes is set; Delay is always seconds.
type exerciseRequest struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Delay    float64 `json:"delay"`
	Minutes  bool    `json:"minutes"`
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.editPlan(w, r, http.StatusCreated, func(p *models.Plan) (any, error) {
		return p.AddExercise(models.Exercise{
			Name:     name,
			Duration: models.SecondsFromInput(req.Duration, req.Minutes),
			Delay:    models.SecondsFromInput(req.Delay, false),
		}), nil
	})
}

func (s *Server) handleRenameExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.editExercise(w, r, func(p *models.Plan, i int) (any, error) {
		p.Exercises[i].Name = name
		return p.Exercises[i], nil
	})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	s.editExercise(w, r, func(p *models.Plan, i int) (any, error) {
		if err := p.RemoveExercise(i); err != nil {
			return nil, err
		}
		return p, nil
	})
}

func (s *Server) handleCloneExercise(w http.ResponseWriter, r *http.Request) {
	s.editExercise(w, r, func(p *models.Plan, i int) (any, error) {
		return p.CloneExercise(i)
	})
}

func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.editPlan(w, r, http.StatusOK, func(p *models.Plan) (any, error) {
		if err := p.MoveExercise(req.From, req.To); err != nil {
			return nil, err
		}
		return p, nil
	})
}

// editExercise resolves the {exerciseID} parameter inside an editPlan call.
// An unknown exercise is a 404.
func (s *Server) editExercise(w http.ResponseWriter, r *http.Request, fn func(p *models.Plan, i int) (any, error)) {
	exerciseID := chi.URLParam(r, "exerciseID")
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	s.editPlan(w, r, status, func(p *models.Plan) (any, error) {
		i := p.FindExercise(exerciseID)
		if i < 0 {
			return nil, statusError{status: http.StatusNotFound, msg: "exercise not found"}
		}
		return fn(p, i)
	})
}
