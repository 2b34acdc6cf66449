package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"devpulse/pkg/config"
	"devpulse/pkg/domain"
	"devpulse/pkg/query"
	"devpulse/pkg/ratelimit"
)

// Ingester runs one ingestion pass.
type Ingester interface {
	Ingest(ctx context.Context) (domain.IngestionResult, error)
}

// Engine answers listings, searches and stats.
type Engine interface {
	Query(ctx context.Context, req query.Request) (query.Result, error)
	Stats(ctx context.Context, sources []string, now time.Time) (query.Stats, error)
	Recent(ctx context.Context, n int) ([]domain.Article, error)
}

// Limiter decides whether a caller may trigger ingestion or search.
type Limiter interface {
	Check(id string) ratelimit.Decision
	Limit() int
}

// Options wires the server dependencies.
type Options struct {
	Ingester Ingester
	Engine   Engine
	Limiter  Limiter
	// Health reports store connectivity; nil means always healthy.
	Health func(ctx context.Context) error
	// Sources are the names reported by /api/stats.
	Sources []string
	Feed    config.FeedConfig

	RequestTimeout time.Duration
	IngestTimeout  time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	opts   Options
	logger *slog.Logger
	now    func() time.Time
	http   *http.Server
}

// New creates a new server instance
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.IngestTimeout <= 0 {
		opts.IngestTimeout = 2 * time.Minute
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(ratelimit.DefaultMaxRequests, ratelimit.DefaultWindow)
	}

	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		logger: opts.Logger.With("component", "server"),
		now:    opts.Now,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(s.opts.RequestTimeout)).Get("/articles", s.handleListArticles)
		r.With(s.rateLimit).Post("/articles", s.handleIngest)
		r.With(s.rateLimit, middleware.Timeout(s.opts.RequestTimeout)).Get("/search", s.handleSearch)
		r.With(middleware.Timeout(s.opts.RequestTimeout)).Get("/stats", s.handleStats)
	})
	s.router.Get("/rss.xml", s.handleRSS)

	// Health check
	s.router.Get("/health", s.handleHealth)
}

// Router returns the Chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start serves HTTP on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
