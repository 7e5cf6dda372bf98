package server

import (
	"errors"
	"net/http"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/stats"
	"github.com/claude/setflow/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.loadPlan(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.Snapshot(chi.URLParam(r, "id")))
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	action, err := session.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	snap, err := s.sessions.Control(r.Context(), id, action)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		s.internalError(w, "session "+string(action), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.History)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.ForPlan(*p))
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": models.BackgroundImage(models.BackgroundSeed(p.CreatedAt)),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.internalError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.ComputeDashboard(plans))
}
