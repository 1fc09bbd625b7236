package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/metrics"
	"saldo/internal/services"
)

func main() {
	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	cli.MustValidate(logger, cfg.Validate())

	logger.Info("Starting recurring-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var events services.EventPublisher
	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
		events = amqpClient
	}

	m := metrics.New()
	processor := services.NewRecurringProcessor(repo, services.NewTransactionService(repo, events, m), m)

	run := func(ctx context.Context, owner string, day core.Date, trigger string) {
		count, err := processor.ProcessDue(ctx, owner, day)
		if err != nil {
			logger.Error("Recurring processing failed", log.FieldError, err, "trigger", trigger)
			return
		}
		logger.Info("Recurring processing complete",
			log.FieldCount, count,
			log.FieldDate, day.String(),
			"trigger", trigger)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	interval := cfg.RecurringProcessorInterval
	logger.Info("Recurring processor configured", "interval", interval, "sqlite_db", cfg.SQLiteDBPath)

	run(ctx, services.AllOwners, core.DateOf(time.Now()), "startup")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case now := <-ticker.C:
				run(gctx, services.AllOwners, core.DateOf(now), "ticker")
			}
		}
	})

	if cfg.MetricsEnabled() {
		ln, err := net.Listen("tcp", ":"+cfg.MetricsPort)
		if err != nil {
			logger.Error("Failed to open metrics listener", log.FieldError, err, "port", cfg.MetricsPort)
			os.Exit(1)
		}
		g.Go(func() error { return cli.ServeMetrics(gctx, logger, ln, m.Handler()) })
	}

	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeProcessDue(gctx, func(ctx context.Context, msg *amqp.ProcessDueMessage) error {
				day, err := cli.ParseDay(msg.Date)
				if err != nil {
					return fmt.Errorf("message %s: invalid date %q: %w", msg.MessageID, msg.Date, err)
				}
				logger.Info("Process-due trigger received",
					"message_id", msg.MessageID,
					log.FieldOwner, msg.Owner)
				run(ctx, msg.Owner, day, "amqp")
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Recurring-worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
