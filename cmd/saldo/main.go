package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"saldo/internal/cache"
	"saldo/internal/cli"
	"saldo/internal/core"
	apphttp "saldo/internal/http"
	"saldo/internal/log"
	"saldo/internal/metrics"
	"saldo/internal/services"
	"saldo/internal/sheets"
	gsheet "saldo/internal/sheets/google"
)

func main() {
	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	cli.MustValidate(logger, cfg.ValidateServer())

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	m := metrics.New()

	// A nil *amqp.Client must not end up inside the interface.
	var events services.EventPublisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		defer client.Close()
		events = client
	}

	var sink sheets.RowAppender
	if cfg.SheetsEnabled() {
		credsFile := cfg.GoogleServiceAccountFile
		if credsFile == "" {
			credsFile = cfg.GoogleApplicationCredsFile
		}
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: credsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets export", log.FieldError, err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	dashboardCache := cache.NewLRUCache[core.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	dashboardCache.OnLookup = func(hit bool) { m.IncCacheLookup("dashboard", hit) }
	caches := cache.NewManager()
	caches.Register(dashboardCache)
	caches.StartCleanup(cfg.CacheTTL)
	defer caches.Stop()

	transactions := services.NewTransactionService(repo, events, m)
	budgets := services.NewBudgetService(repo)
	dashboards := services.NewDashboardService(repo, budgets, dashboardCache)
	transactions.OnChange(dashboards.Invalidate)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions:       transactions,
		References:         services.NewReferenceService(repo, transactions),
		Budgets:            budgets,
		Dashboards:         dashboards,
		Exports:            services.NewExportService(repo, sink),
		Recurring:          services.NewRecurringProcessor(repo, transactions, m),
		Metrics:            m,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		Auth:               apphttp.AuthConfig{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer},
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              repo.Ping,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting saldo server",
		"port", cfg.Port,
		"sqlite_db", cfg.SQLiteDBPath,
		"amqp", events != nil,
		"sheets_export", sink != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
