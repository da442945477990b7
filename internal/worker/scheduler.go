package worker

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/OmKumar-08/advanced-budget-app/internal/services"
)

// Cron cadences for the reconciliation sweeps. Settlement aging runs
// hourly; everything else catches up once a day.
const (
	specHourly     = "0 * * * *"
	specMidnight   = "0 0 * * *"
	specMorning9AM = "0 9 * * *"
)

// Sweep is one named reconciliation pass. Every sweep is idempotent and
// reports how many records it touched.
type Sweep struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// Scheduler drives the reconciliation sweeps on their cron cadences.
type Scheduler struct {
	cron *cron.Cron
}

type SchedulerDeps struct {
	Settlements  *services.SettlementService
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Loans        *services.LoanService
	Invoices     *services.InvoiceService
	Investments  *services.InvestmentService

	// ReminderLeadDays is how far ahead of the due date reminders fire.
	ReminderLeadDays int
}

func NewScheduler(deps SchedulerDeps) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	jobs := []struct {
		spec  string
		sweep Sweep
	}{
		{specHourly, Sweep{"settlement-aging", deps.Settlements.Age}},
		{specMidnight, Sweep{"recurring-materialization", deps.Recurring.MaterializeDue}},
		{specMidnight, Sweep{"loan-aging", deps.Loans.Age}},
		{specMidnight, Sweep{"invoice-aging", deps.Invoices.Age}},
		{specMidnight, Sweep{"investment-maturity", deps.Investments.Age}},
		{specMidnight, Sweep{"settled-flag-repair", deps.Transactions.SettledFlagSweep}},
		{specMorning9AM, Sweep{"settlement-reminders", func(ctx context.Context) (int, error) {
			return deps.Settlements.ReminderSweep(ctx, deps.ReminderLeadDays)
		}}},
		{specMorning9AM, Sweep{"invoice-reminders", func(ctx context.Context) (int, error) {
			return deps.Invoices.ReminderSweep(ctx, deps.ReminderLeadDays)
		}}},
		{specMorning9AM, Sweep{"recurring-notifications", deps.Recurring.NotifyUpcoming}},
	}

	for _, j := range jobs {
		sweep := j.sweep
		if _, err := c.AddFunc(j.spec, func() { runSweep(context.Background(), sweep) }); err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: c}, nil
}

func runSweep(ctx context.Context, sweep Sweep) {
	n, err := sweep.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Sweep failed", "sweep", sweep.Name, "error", err)
		return
	}
	slog.InfoContext(ctx, "Sweep completed", "sweep", sweep.Name, "touched", n)
}

// RunAll executes every sweep once, in dependency order, for one-shot
// reconciliation runs. Failures are logged and do not stop later sweeps.
func RunAll(ctx context.Context, deps SchedulerDeps) {
	sweeps := []Sweep{
		{"settlement-aging", deps.Settlements.Age},
		{"recurring-materialization", deps.Recurring.MaterializeDue},
		{"loan-aging", deps.Loans.Age},
		{"invoice-aging", deps.Invoices.Age},
		{"investment-maturity", deps.Investments.Age},
		{"settled-flag-repair", deps.Transactions.SettledFlagSweep},
		{"settlement-reminders", func(ctx context.Context) (int, error) {
			return deps.Settlements.ReminderSweep(ctx, deps.ReminderLeadDays)
		}},
		{"invoice-reminders", func(ctx context.Context) (int, error) {
			return deps.Invoices.ReminderSweep(ctx, deps.ReminderLeadDays)
		}},
		{"recurring-notifications", deps.Recurring.NotifyUpcoming},
	}
	for _, sweep := range sweeps {
		if ctx.Err() != nil {
			return
		}
		runSweep(ctx, sweep)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running sweeps to finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }
