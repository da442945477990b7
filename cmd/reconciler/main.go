package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/OmKumar-08/advanced-budget-app/internal/amqp"
	"github.com/OmKumar-08/advanced-budget-app/internal/config"
	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	applog "github.com/OmKumar-08/advanced-budget-app/internal/log"
	"github.com/OmKumar-08/advanced-budget-app/internal/services"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage/sqlite"
	"github.com/OmKumar-08/advanced-budget-app/internal/worker"
)

// reconciler runs every reconciliation sweep exactly once and exits.
// Deploy it as a cron job or run it by hand after an incident; every
// sweep is idempotent so rerunning is always safe.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentScheduler})
	applog.SetDefault(logger)

	logger.Info("Starting reconciler")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Open applies pending migrations before returning.
	store, err := sqlite.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var (
		notifier services.Notifier = services.NopNotifier{}
		syncPub  services.SyncPublisher
	)
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, cfg.AMQPNotificationQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			syncPub = amqpClient
			logger.Info("AMQP client initialized - reminders will be published")
		}
	} else {
		logger.Info("AMQP disabled - reminders will not be published")
	}

	clock := core.SystemClock()
	settlements := services.NewSettlementService(store, clock, notifier, syncPub)
	transactions := services.NewTransactionService(store, clock, settlements, syncPub)
	deps := worker.SchedulerDeps{
		Settlements:      settlements,
		Transactions:     transactions,
		Recurring:        services.NewRecurringService(store, clock, transactions, notifier),
		Loans:            services.NewLoanService(store, clock, transactions),
		Invoices:         services.NewInvoiceService(store, clock, notifier),
		Investments:      services.NewInvestmentService(store, clock),
		ReminderLeadDays: cfg.ReminderLeadDays,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.SweepTimeout)
	defer cancel()

	worker.RunAll(ctx, deps)
	if err := ctx.Err(); err != nil {
		logger.Warn("Reconciliation interrupted", "error", err)
		os.Exit(1)
	}
	logger.Info("Reconciliation complete")
}
