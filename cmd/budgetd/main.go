package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/OmKumar-08/advanced-budget-app/internal/amqp"
	"github.com/OmKumar-08/advanced-budget-app/internal/config"
	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	apphttp "github.com/OmKumar-08/advanced-budget-app/internal/http"
	applog "github.com/OmKumar-08/advanced-budget-app/internal/log"
	"github.com/OmKumar-08/advanced-budget-app/internal/services"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage/memory"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage/sqlite"
	"github.com/OmKumar-08/advanced-budget-app/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.DataBackend {
	case "sqlite":
		// Open applies pending migrations before returning.
		sqliteStore, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		store = memory.New()
		logger.Info("Initialized memory backend")
	}

	// AMQP is optional: without it the server still works, but transaction
	// sync and reminder notifications go nowhere.
	var (
		notifier services.Notifier = services.NopNotifier{}
		syncPub  services.SyncPublisher
	)
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, cfg.AMQPNotificationQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without messaging", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			syncPub = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - sync and notifications will not be published")
	}

	clock := core.SystemClock()
	settlements := services.NewSettlementService(store, clock, notifier, syncPub)
	transactions := services.NewTransactionService(store, clock, settlements, syncPub)
	svc := apphttp.Services{
		Users:        services.NewUserService(store, clock),
		Groups:       services.NewGroupService(store, clock),
		Transactions: transactions,
		Settlements:  settlements,
		Recurring:    services.NewRecurringService(store, clock, transactions, notifier),
		Loans:        services.NewLoanService(store, clock, transactions),
		Invoices:     services.NewInvoiceService(store, clock, notifier),
		Investments:  services.NewInvestmentService(store, clock),
	}

	scheduler, err := worker.NewScheduler(worker.SchedulerDeps{
		Settlements:      svc.Settlements,
		Transactions:     svc.Transactions,
		Recurring:        svc.Recurring,
		Loans:            svc.Loans,
		Invoices:         svc.Invoices,
		Investments:      svc.Investments,
		ReminderLeadDays: cfg.ReminderLeadDays,
	})
	if err != nil {
		logger.Error("Failed to configure scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	srv := apphttp.NewServer(":"+cfg.Port, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}

		// Let in-flight sweeps finish before the store closes.
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("Timed out waiting for sweeps to finish")
		}
		cancel()
	}()

	logger.Info("Starting budgetd server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
