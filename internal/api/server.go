package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/snapback/internal/api/handler"
	mw "github.com/edvin/snapback/internal/api/middleware"
	"github.com/edvin/snapback/internal/config"
	"github.com/edvin/snapback/internal/core"
	"github.com/edvin/snapback/internal/logstream"
	"github.com/edvin/snapback/internal/store"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	store    *store.Store
	pool     *pgxpool.Pool
	hub      *logstream.Hub
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, st *store.Store, services *core.Services, hub *logstream.Hub, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		store:    st,
		pool:     pool,
		hub:      hub,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		backup := handler.NewBackup(s.services.Backup, s.store)
		r.Post("/backups/manual", backup.CreateManual)
		r.Get("/backups", backup.List)
		r.Get("/backups/count", backup.Count)
		r.Get("/backups/{id}", backup.Get)

		restore := handler.NewRestore(s.services.Restore, s.cfg)
		r.Post("/restores", restore.Create)
	})

	// Live log stream for dashboard viewers.
	logs := handler.NewLogs(s.hub)
	s.router.Get("/ws/logs", logs.Stream)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
