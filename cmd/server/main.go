package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Harshitk-cp/fitcheck/internal/api"
	"github.com/Harshitk-cp/fitcheck/internal/api/handlers"
	"github.com/Harshitk-cp/fitcheck/internal/app"
	"github.com/Harshitk-cp/fitcheck/internal/config"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logCfg := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(config.LogLevel()); err == nil {
		logCfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.Build(ctx, logger, app.Options{})
	if err != nil {
		logger.Fatal("failed to build components", zap.Error(err))
	}
	defer components.Close()

	checks := make(map[string]handlers.Pinger, len(components.Checks))
	for name, p := range components.Checks {
		checks[name] = p
	}

	deps := api.Deps{
		Pipeline:       components.Pipeline,
		Retriever:      components.Retriever,
		Stats:          components.Stats,
		Checks:         checks,
		APIKeys:        config.APIKeys(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}
	if len(deps.APIKeys) == 0 {
		logger.Warn("API_KEYS is empty, /v1 is unauthenticated")
	}

	application := api.NewApp(deps, logger)

	// Start background services
	application.StartBackground(ctx)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	cancel()

	// In-flight verifications may run up to the pipeline timeout.
	shutdownCtx, stop := context.WithTimeout(context.Background(), config.PipelineTimeout()+5*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
