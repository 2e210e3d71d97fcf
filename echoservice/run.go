// Package echoservice wires the journaling backend together and runs it.
package echoservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Henok-Aragaw/echo/internal/api"
	"github.com/Henok-Aragaw/echo/internal/auth"
	"github.com/Henok-Aragaw/echo/internal/blob"
	"github.com/Henok-Aragaw/echo/internal/config"
	"github.com/Henok-Aragaw/echo/internal/genai"
	"github.com/Henok-Aragaw/echo/internal/health"
	"github.com/Henok-Aragaw/echo/internal/insight"
	"github.com/Henok-Aragaw/echo/internal/logger"
	"github.com/Henok-Aragaw/echo/internal/services"
	"github.com/Henok-Aragaw/echo/internal/store"
	"github.com/Henok-Aragaw/echo/internal/store/postgres"
)

// Run starts the echo service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("echo-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("timezone", cfg.Timezone).
		Int("sweep_hour", cfg.SweepHour).
		Msg("Echo service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Initialize the store and external collaborators
	st, err := initStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	verifier := newVerifier(cfg, log)
	uploader := blob.NewHTTPUploader(cfg.MediaUploadURL, cfg.MediaUploadPreset)
	generator := insight.NewGenerator(genai.NewGeminiClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey), log)

	// Services
	loc := cfg.Location()
	fragmentSvc := services.NewFragmentService(st, generator, uploader, log)
	echoSvc := services.NewEchoService(st, generator, loc, cfg.EchoPageSize, log)
	userSvc := services.NewUserService(st, verifier, log)

	// Router
	router := buildRouter(fragmentSvc, echoSvc, userSvc, verifier, loc)

	// Health checkers and startup gate
	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// Nightly sweep
	go echoSvc.RunNightly(ctx, cfg.SweepHour)

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initStore opens Postgres, applies the schema, and wraps it in the store.
func initStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	db, err := postgres.OpenWithRetry(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Postgres unavailable")
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Error().Stack().Err(err).Msg("schema bootstrap failed")
		return nil, err
	}
	return postgres.NewWithDB(db), nil
}

// newVerifier picks the session verifier. Testing builds keep the static
// local token; everything else talks to the hosted auth service.
func newVerifier(cfg *config.Config, log zerolog.Logger) auth.Verifier {
	if cfg.IsTesting() {
		log.Warn().Msg("using static local-dev session verifier")
		return auth.NewStaticVerifier()
	}
	return auth.NewHTTPVerifier(cfg.AuthBaseURL)
}

func buildRouter(frag *services.FragmentService, echoes *services.EchoService, users *services.UserService, verifier auth.Verifier, loc *time.Location) *mux.Router {
	return api.NewRouter(api.Deps{
		Fragments: frag,
		Echoes:    echoes,
		Users:     users,
		Verifier:  verifier,
		Location:  loc,
	})
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
