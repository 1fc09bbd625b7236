// Package cli provides the initialization shared by cmd/saldo,
// cmd/recurring-worker and cmd/process-recurring.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL / LOG_JSON and sets
// it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    os.Stdout,
		JSON:      cfg.LogJSON,
	})
	log.SetDefault(logger)
	return logger
}

// LoadConfig loads .env and the environment. The logger is not configured
// yet at this point, so validation is left to MustValidate.
func LoadConfig() *config.Config {
	config.LoadEnvFile()
	return config.Load()
}

// MustValidate exits the process when err is a validation failure.
func MustValidate(logger *log.Logger, err error) {
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
}

// InitSQLite opens (and migrates) the database or exits the process.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitAMQP connects to the broker when one is configured. A failed
// connection is logged and reported as nil: messaging is best effort.
func InitAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, transaction events will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without messaging", log.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// ParseDay returns the calendar date named by s (YYYY-MM-DD), or today's
// UTC date when s is empty.
func ParseDay(s string) (core.Date, error) {
	if s == "" {
		return core.DateOf(time.Now()), nil
	}
	return core.ParseDate(s)
}

// ServeMetrics serves handler as GET /metrics on ln until ctx is done, then
// shuts the listener down and returns ctx.Err().
func ServeMetrics(ctx context.Context, logger *log.Logger, ln net.Listener, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("Metrics listener started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listener: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics listener shutdown: %w", err)
	}
	return ctx.Err()
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. cleanup
// runs with a deadline of timeout after the signal; done is closed once it
// has returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown sequence has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
