// Package main starts an HTTP server that exposes a wiring harness workspace:
// state import and export, action dispatch, undo and redo, validation and
// occupancy reports. Requests go through the internal engine, which
// serializes every change.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wirescope/core/cmd/api/middleware"
	"github.com/wirescope/core/internal/config"
	"github.com/wirescope/core/internal/engine"
	"github.com/wirescope/core/internal/handlers"
	"github.com/wirescope/core/internal/logging"
	"github.com/wirescope/core/internal/observability/metrics"
)

func newRouter(e *engine.Engine, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", handlers.HealthHandler(e))
	handlers.NewWorkspaceHandler(e, logger).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Service)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init(nil)
	handlers.ServiceName = cfg.Service

	e := engine.New(nil,
		engine.WithLogger(logger.Named("engine")),
		engine.WithHistoryLimit(cfg.History.Limit),
	)
	if cfg.LoadSample {
		if err := e.LoadSample(); err != nil {
			logger.Fatal("sample load failed", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.Cors(cfg.Cors.AllowedOrigin)(newRouter(e, logger.Named("http"))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}
