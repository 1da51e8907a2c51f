package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/analytics"
	"github.com/patrickwarner/onboardingcta/internal/api"
	"github.com/patrickwarner/onboardingcta/internal/config"
	"github.com/patrickwarner/onboardingcta/internal/db"
	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/resources"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	err = run(logger, cfg)
	if err != nil {
		logger.Error("server error", zap.Error(err))
	}
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	store, err := db.InitRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer store.Close()

	metricsRegistry := observability.NewPrometheusRegistry()

	// Pixels are best effort; the service runs without ClickHouse.
	var recorder analytics.PixelRecorder
	if cfg.PixelsEnabled {
		ch, err := analytics.InitClickHouse(ctx, cfg.ClickHouseDSN, cfg.CHMaxOpenConns, metricsRegistry)
		if err != nil {
			logger.Warn("clickhouse unavailable, pixels will not be stored", zap.Error(err))
		} else {
			defer func() { _ = ch.Close() }()
			recorder = ch
		}
	}

	srvDeps := api.NewServer(logger, store, recorder, resources.English(), metricsRegistry, cfg)

	r := mux.NewRouter()
	srvDeps.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.ServiceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Onboarding CTA server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
