// Package server exposes evaluation runs and their history over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agentevals/internal/app"
	"agentevals/internal/dataset"
	"agentevals/internal/history"
	"agentevals/internal/metrics"
	"agentevals/internal/runner"
)

const shutdownTimeout = 5 * time.Second

// Service is what the HTTP surface needs from the evaluation core.
type Service interface {
	RunHandoffEval(ctx context.Context, req app.RunRequest) (runner.EvalResult, error)
	RunToolEval(ctx context.Context, req app.RunRequest) (runner.EvalResult, error)
	History() ([]history.Record, error)
	Examples(kind dataset.Kind) ([]dataset.Case, error)
}

// Config captures the settings for serving the evaluation API.
type Config struct {
	Addr    string
	Service Service
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// Serve starts the HTTP server and shuts it down when ctx is cancelled.
func Serve(ctx context.Context, cfg Config) error {
	if ctx == nil {
		return errors.New("server: context is nil")
	}
	if cfg.Addr == "" {
		return errors.New("server: addr is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info("server listening", zap.String("addr", cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			logger.Info("server stopped")
			return nil
		}
		return err
	}
}
