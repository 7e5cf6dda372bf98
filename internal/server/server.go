package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    storage.Store
	sessions *session.Manager
	log      *slog.Logger
	router   chi.Router
	now      func() time.Time

	// editMu serializes read-modify-write edits of a plan.
	editMu sync.Mutex
}

// New creates a new Server with all routes configured.
func New(store storage.Store, sessions *session.Manager, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		sessions: sessions,
		log:      log,
		router:   chi.NewRouter(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1/plans", func(r chi.Router) {
		r.Get("/", s.handleListPlans)
		r.Post("/", s.handleCreatePlan)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetPlan)
			r.Put("/", s.handleUpdatePlan)
			r.Delete("/", s.handleDeletePlan)
			r.Post("/clone", s.handleClonePlan)

			r.Post("/exercises", s.handleAddExercise)
			r.Post("/exercises/move", s.handleMoveExercise)
			r.Patch("/exercises/{exerciseID}", s.handleRenameExercise)
			r.Delete("/exercises/{exerciseID}", s.handleRemoveExercise)
			r.Post("/exercises/{exerciseID}/clone", s.handleCloneExercise)

			r.Get("/history", s.handleHistory)
			r.Get("/charts", s.handleCharts)
			r.Get("/background", s.handleBackground)

			r.Get("/session", s.handleSessionState)
			r.Post("/session/{action}", s.handleSessionAction)
		})
	})

	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/export", s.handleExport)
	s.router.Post("/api/v1/import", s.handleImport)
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}
