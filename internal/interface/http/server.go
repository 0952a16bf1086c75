// Package http exposes the application over a JSON REST API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asidocente/school-records/internal/application"
	"github.com/asidocente/school-records/internal/interface/http/handlers"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 10 * time.Second,
		MaxBodyBytes:   1 << 20,
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the routes need. App is required.
type Dependencies struct {
	App *application.App

	// HealthChecker backs /health; nil reports healthy.
	HealthChecker handlers.HealthChecker

	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
	Clock  clock.Clock
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}

	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger.With(logger.Component("http")),
	}
	s.setupRoutes()

	s.handler = handlers.ChainHandler(s.router,
		handlers.RequestIDMiddleware,
		handlers.LoggingMiddleware(s.logger, deps.Clock),
		handlers.RecoveryMiddleware(s.logger),
		handlers.SecurityHeadersMiddleware,
		handlers.RequestSizeLimitMiddleware(config.MaxBodyBytes),
		handlers.TimeoutMiddleware(config.RequestTimeout),
	)

	s.httpServer = &http.Server{
		Addr:              config.Address(),
		Handler:           s.handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}
	return s
}

// Handler returns the fully wrapped router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	app := s.deps.App

	// ─────────────────────────────────────────────────────────────────────────
	// Health & Metrics
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	if s.deps.Gatherer != nil {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Students
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/students", create(s, app.CreateStudent, "/api/students/"))
	s.router.HandleFunc("GET /api/students/{id}", s.handleGetStudent)
	s.router.HandleFunc("GET /api/students", s.handleListStudents)
	s.router.HandleFunc("PUT /api/students/{id}/section", s.handleAssignSection)

	// ─────────────────────────────────────────────────────────────────────────
	// Records
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/parents", create(s, app.CreateParent, ""))
	s.router.HandleFunc("POST /api/grades", create(s, app.RegisterGrade, ""))
	s.router.HandleFunc("GET /api/grades/student/{studentId}", s.handleGradesByStudent)
	s.router.HandleFunc("POST /api/attendance", create(s, app.RecordAttendance, ""))

	// ─────────────────────────────────────────────────────────────────────────
	// Catalog
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/schools", create(s, app.CreateSchool, ""))
	s.router.HandleFunc("POST /api/teachers", create(s, app.CreateTeacher, ""))
	s.router.HandleFunc("POST /api/subjects", create(s, app.CreateSubject, ""))
	s.router.HandleFunc("POST /api/sections", create(s, app.CreateSection, ""))
	s.router.HandleFunc("POST /api/academic-periods", create(s, app.CreateAcademicPeriod, ""))
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", slog.String("address", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address.
func (s *Server) Address() string {
	return s.config.Address()
}
