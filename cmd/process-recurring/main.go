// Command process-recurring runs the recurring engine once, or with
// -publish asks running workers to do it through the broker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/log"
	"saldo/internal/services"
)

func main() {
	owner := flag.String("owner", "", "process a single owner (default: every owner)")
	date := flag.String("date", "", "processing date YYYY-MM-DD (default: today, UTC)")
	publish := flag.Bool("publish", false, "publish a process-due trigger instead of processing locally")
	flag.Parse()

	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentRecurring)
	cli.MustValidate(logger, cfg.Validate())

	day, err := cli.ParseDay(*date)
	if err != nil {
		logger.Error("Invalid -date", log.FieldError, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *publish {
		client := cli.InitAMQP(logger, cfg)
		if client == nil {
			logger.Error("-publish requires a reachable AMQP broker")
			os.Exit(1)
		}
		defer client.Close()

		msg := amqp.NewProcessDueMessage(*owner, day.String())
		if err := client.PublishProcessDue(ctx, msg); err != nil {
			logger.Error("Failed to publish process-due trigger", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Process-due trigger published", "message_id", msg.MessageID, log.FieldOwner, *owner)
		return
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var events services.EventPublisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		defer client.Close()
		events = client
	}

	processor := services.NewRecurringProcessor(repo, services.NewTransactionService(repo, events, nil), nil)
	count, err := processor.ProcessDue(ctx, *owner, day)
	if err != nil {
		logger.Error("Recurring processing failed", log.FieldError, err)
		os.Exit(1)
	}
	fmt.Printf("%d transaction(s) created for %s\n", count, day.String())
}
