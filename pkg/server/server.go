package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ruleforge/ruleforge/pkg/audit"
	"github.com/ruleforge/ruleforge/pkg/config"
	"github.com/ruleforge/ruleforge/pkg/limits/ratelimit"
	"github.com/ruleforge/ruleforge/pkg/security/auth"
	"github.com/ruleforge/ruleforge/pkg/store"
	"github.com/ruleforge/ruleforge/pkg/telemetry/metrics"
)

// Server is the rule API server. It exposes rule management and
// evaluation over HTTP with authentication, rate limiting and metrics
// configured from the loaded config.
type Server struct {
	cfg          *config.Config
	backend      store.Backend
	recorder     *audit.Recorder
	collector    *metrics.Collector
	logger       *slog.Logger
	defaultOwner string
	maxBodyBytes int64

	validator   *auth.APIKeyValidator
	rateLimiter *ratelimit.KeyedLimiter

	httpServer   *http.Server
	shutdownOnce sync.Once

	mu        sync.RWMutex
	isRunning bool
}

// Options carries the optional collaborators for a Server. Nil fields
// disable the corresponding feature.
type Options struct {
	// Recorder receives one audit event per evaluation. Nil disables
	// auditing.
	Recorder *audit.Recorder

	// Collector receives metrics. Nil creates a private collector so
	// handlers never nil-check it.
	Collector *metrics.Collector

	// Logger for request and handler logging. Nil uses slog.Default.
	Logger *slog.Logger
}

// New creates a rule API server over the given storage backend.
func New(cfg *config.Config, backend store.Backend, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := opts.Collector
	if collector == nil {
		collector = metrics.NewCollector(nil)
	}

	s := &Server{
		cfg:          cfg,
		backend:      backend,
		recorder:     opts.Recorder,
		collector:    collector,
		logger:       logger,
		defaultOwner: cfg.Rules.Owner,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	if cfg.Security.Auth.Enabled {
		s.validator = auth.NewAPIKeyValidatorFromConfig(cfg.Security.Auth)
	}
	if cfg.Limits.Enabled {
		s.rateLimiter = ratelimit.NewKeyedLimiter(cfg.Limits.Burst, cfg.Limits.RequestsPerSecond)
	}

	return s
}

// Start starts the HTTP server and blocks until the context is
// cancelled, a shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting rule API server",
			"address", s.cfg.Server.ListenAddress,
			"auth_enabled", s.cfg.Security.Auth.Enabled,
			"rate_limit_enabled", s.cfg.Limits.Enabled,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, letting in-flight requests
// finish within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.cfg.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("rule API server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the full route and middleware stack. Exposed for tests
// and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes carry the auth and rate limit chain; probes and metrics
	// stay open.
	mux.Handle("POST /api/rules", s.api(http.HandlerFunc(s.handleCreateRule)))
	mux.Handle("GET /api/rules", s.api(http.HandlerFunc(s.handleListRules)))
	mux.Handle("DELETE /api/rules", s.api(http.HandlerFunc(s.handleDeleteAllRules)))
	mux.Handle("DELETE /api/rules/{id}", s.api(http.HandlerFunc(s.handleDeleteRule)))
	mux.Handle("POST /api/evaluate", s.api(http.HandlerFunc(s.handleEvaluate)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if s.cfg.Telemetry.Metrics.Enabled {
		mux.Handle("GET /metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger, s.collector)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}

// api wraps an API handler with rate limiting and, when enabled,
// authentication. Auth runs first so the limiter keys on the owner.
func (s *Server) api(next http.Handler) http.Handler {
	handler := next

	if s.rateLimiter != nil {
		handler = rateLimitMiddleware(s.rateLimiter, s.logger)(handler)
	}
	if s.validator != nil {
		handler = auth.NewMiddleware(s.validator, s.logger).Handle(handler)
	}

	return handler
}
