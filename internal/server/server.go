// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/database"
	"github.com/neurotradx/neurotradx/internal/scheduler"
)

// RouteRegistrar is implemented by every module handler.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	DataDir   string
	Databases []*database.DB
	Jobs      []scheduler.Job
	// Routes are mounted at the root; they carry their own paths.
	Routes []RouteRegistrar
	// APIRoutes are mounted under /api.
	APIRoutes []RouteRegistrar
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.DataDir, cfg.Databases, cfg.Jobs),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg.Routes, cfg.APIRoutes)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes(routes, apiRoutes []RouteRegistrar) {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	for _, rr := range routes {
		rr.RegisterRoutes(s.router)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
		r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)

		for _, rr := range apiRoutes {
			rr.RegisterRoutes(r)
		}
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
