// Package server exposes recommendation forms over HTTP: a server-rendered
// page per browser session, a JSON view of the session state, health and
// Prometheus endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/internal/metrics"
	"github.com/goliatone/go-recoform/internal/session"
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/orchestrator"
)

// CookieName carries the session id.
const CookieName = "recoform_session"

// Config controls listening, shutdown and session behaviour.
type Config struct {
	Addr          string
	ShutdownGrace time.Duration
	// RateLimit caps POST requests per client IP per minute; 0 disables it.
	RateLimit     int
	SessionTTL    time.Duration
	SweepInterval time.Duration
	CookieSecure  bool
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		ShutdownGrace: 5 * time.Second,
		RateLimit:     60,
		SessionTTL:    30 * time.Minute,
		SweepInterval: time.Minute,
	}
}

type Option func(*Server)

// WithMetrics shares a metrics set with the rest of the process, typically
// the one also observing the recommender client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server owns the router, the session store and the HTTP listener.
type Server struct {
	cfg      Config
	orch     *orchestrator.Orchestrator
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	router   chi.Router
}

// New builds the router and session store. The orchestrator provides the
// forms, renderers and recommender client.
func New(cfg Config, orch *orchestrator.Orchestrator, opts ...Option) (*Server, error) {
	if orch == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaults.ShutdownGrace
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}

	s := &Server{
		cfg:    cfg,
		orch:   orch,
		logger: logging.WithComponent("server"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	s.sessions = session.New(
		func() (*form.Form, error) { return orch.NewForm() },
		cfg.SessionTTL,
		session.WithSizeObserver(s.metrics.SetSessions),
		session.WithLogger(logging.WithComponent("session")),
	)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions exposes the session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the session sweeper on ln until ctx is
// cancelled or either fails, then shuts down within the grace period and
// ends all sessions.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.sessions.Run(gctx, s.cfg.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownGrace)
		defer cancel()
		s.logger.Info().Dur("grace", s.cfg.ShutdownGrace).Msg("shutting down")
		err := srv.Shutdown(shutdownCtx)
		s.sessions.Close()
		if err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
