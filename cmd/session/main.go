package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/omarkov/insight-session/internal/bootstrap"
	"github.com/omarkov/insight-session/internal/config"
	"github.com/omarkov/insight-session/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("session", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger, bootstrap.Options{
		Service:      "session",
		WithRenderer: true,
		WithMetrics:  true,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := app.Remote.Health(healthCtx); err != nil {
		logger.Warn("backend unreachable at startup", "error", err)
	}
	cancel()

	if err := app.SessionUC.Restore(ctx); err != nil {
		logger.Error("session restore failed", "error", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	server := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "port", cfg.MetricsPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		app.Viewer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		app.Reconciler.Run(ctx)
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown error", "error", err)
	}
	wg.Wait()
}
