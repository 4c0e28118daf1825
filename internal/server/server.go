package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/gymweek/internal/pipeline"
	"github.com/claude/gymweek/internal/query"
	"github.com/claude/gymweek/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runner triggers an ingestion run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// RunLogStore reads recent ingestion run logs.
type RunLogStore interface {
	QueryRunLogs(ctx context.Context, limit int) ([]storage.RunLog, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	queries *query.Facade
	runs    RunLogStore
	runner  Runner
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(queries *query.Facade, runs RunLogStore, runner Runner, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		queries: queries,
		runs:    runs,
		runner:  runner,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
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

	// Read API (consumed by the presentation layer, no auth)
	s.router.Get("/api/v1/schedule/today", s.handleToday)
	s.router.Get("/api/v1/schedule/{date}", s.handleByDate)
	s.router.Get("/api/v1/schedule", s.handleAll)
	s.router.Get("/api/v1/runs", s.handleRuns)

	// Privileged trigger (shared secret required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	s.router.Handle("/metrics", promhttp.Handler())
}
