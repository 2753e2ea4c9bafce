package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"dripcalc/internal/config"
	"dripcalc/internal/dosing"
	"dripcalc/internal/handlers"
	"dripcalc/internal/logger"
	"dripcalc/internal/middleware"
)

// Server owns the HTTP listener and the active policy registry.
type Server struct {
	cfg        *config.Config
	configPath string
	policies   *registryRef
	httpServer *http.Server
	wg         sync.WaitGroup

	// guards cfg against concurrent reloads
	mu sync.Mutex
}

// registryRef lets handlers read the registry while a reload swaps it.
type registryRef struct {
	p atomic.Pointer[dosing.Registry]
}

func (r *registryRef) Lookup(name string) (dosing.Policy, error) { return r.p.Load().Lookup(name) }
func (r *registryRef) Names() []string                          { return r.p.Load().Names() }
func (r *registryRef) Default() string                          { return r.p.Load().Default() }

// New constructs a Server. When configPath is set, Run watches it and applies
// protocol and log level changes without a restart.
func New(cfg *config.Config, configPath string) (*Server, error) {
	reg, err := cfg.Protocol.Registry()
	if err != nil {
		return nil, fmt.Errorf("build policy registry: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		configPath: configPath,
		policies:   &registryRef{},
	}
	s.policies.p.Store(reg)

	s.httpServer = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	return s, nil
}

// Handler returns the HTTP routes with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	decisions := handlers.NewDecisionHandler(handlers.DecisionConfig{
		Policies:    s.policies,
		MaxBodySize: s.cfg.HTTP.MaxBodySize,
		MaxBatch:    s.cfg.HTTP.MaxBatch,
	})
	initial := handlers.NewInitialHandler(s.cfg.HTTP.MaxBodySize)

	mux.Handle("/v1/decisions", middleware.Chain(decisions, middleware.Recovery, middleware.Logging))
	mux.Handle("/v1/initial", middleware.Chain(initial, middleware.Recovery, middleware.Logging))
	mux.Handle("/v1/policies", middleware.Chain(handlers.PoliciesHandler(s.policies), middleware.Recovery, middleware.Logging))

	// Health check
	mux.HandleFunc("/health", s.healthHandler)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Run serves HTTP and blocks until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")
	log.Info().
		Str("default_policy", s.policies.Default()).
		Strs("policies", s.policies.Names()).
		Msg("server starting")

	errCh := make(chan error, 1)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
		}
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	if s.configPath != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := config.Watch(watchCtx, s.configPath, s.Reload); err != nil {
				log.Error().Err(err).Msg("config watch stopped")
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server: %w", err)
	}

	stopWatch()
	s.shutdown()
	return runErr
}

// Reload applies a new configuration. Protocol settings and the log level take
// effect immediately; listener settings need a restart.
func (s *Server) Reload(cfg *config.Config) {
	log := logger.WithComponent("server")

	reg, err := cfg.Protocol.Registry()
	if err != nil {
		log.Error().Err(err).Msg("reload rejected, keeping previous policies")
		return
	}
	s.policies.p.Store(reg)

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	s.mu.Lock()
	if cfg.HTTP != s.cfg.HTTP {
		log.Warn().Msg("http settings changed; restart to apply")
	}
	s.cfg = cfg
	s.mu.Unlock()

	log.Info().
		Str("default_policy", reg.Default()).
		Float64("target_low", cfg.Protocol.TargetLow).
		Float64("target_high", cfg.Protocol.TargetHigh).
		Msg("policies reloaded")
}

// shutdown performs graceful shutdown
func (s *Server) shutdown() {
	log := logger.WithComponent("server")
	log.Info().Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	s.wg.Wait()
	log.Info().Msg("server stopped gracefully")
}

// healthHandler handles health check requests
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","default_policy":%q,"timestamp":"%s"}`,
		s.policies.Default(), time.Now().Format(time.RFC3339))
}
