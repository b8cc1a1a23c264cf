// Package cli holds the start-up steps shared by the server and the report
// command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financas/internal/backend"
	"financas/internal/config"
	"financas/internal/log"
)

// SetupLogger builds the process logger at the given LOG_LEVEL, writing text
// records to w, and installs it as the slog default.
func SetupLogger(level string, w io.Writer) *log.Logger {
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env when present. A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenBackend opens the store selected by cfg.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// Shutdowner is anything that stops within a deadline, such as http.Server.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Server is a Shutdowner that also serves until stopped.
type Server interface {
	Shutdowner
	ListenAndServe() error
}

// RunServer serves srv until SIGINT or SIGTERM (or ctx ending) and then shuts
// it down gracefully. If srv stops serving on its own, cleanup still runs and
// the serve error is returned.
func RunServer(ctx context.Context, logger *log.Logger, srv Server, timeout time.Duration, cleanup func() error) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownErr := make(chan error, 1)
	go func() {
		shutdownErr <- GracefulShutdown(ctx, logger, srv, timeout, cleanup)
	}()

	select {
	case err := <-shutdownErr:
		return err
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return <-shutdownErr
		}
		logger.Error("Server stopped serving", log.FieldError, err)
		cancel()
		return errors.Join(fmt.Errorf("serve: %w", err), <-shutdownErr)
	}
}

// GracefulShutdown waits for SIGINT or SIGTERM (or ctx ending), then stops
// srv within timeout and runs cleanup. It returns the first error seen.
func GracefulShutdown(ctx context.Context, logger *log.Logger, srv Shutdowner, timeout time.Duration, cleanup func() error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if cleanup != nil {
		if err := cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("Shutdown finished with errors", log.FieldError, err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}
