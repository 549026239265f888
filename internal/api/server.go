package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// Server is the HTTP API server for the outline engine.
type Server struct {
	router       chi.Router
	engine       *engine.Engine
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(eng *engine.Engine, orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		engine:       eng,
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.OutlineAPIKey, s.log))

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/render", s.handleRender)
		r.Post("/api/filter", s.handleFilter)
		r.Post("/api/import", s.handleImport)

		r.Post("/api/warm", s.handleWarm)
		r.Get("/api/warm/{jobID}/status", s.handleWarmStatus)

		r.Delete("/api/documents/{docID}/cache", s.handleInvalidate)
		r.Get("/api/stats/engine", s.handleEngineStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
