package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/services"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage/memory"
)

func testDeps(t *testing.T, store *memory.Store, now time.Time) SchedulerDeps {
	t.Helper()
	clock := core.FixedClock(now)
	settlements := services.NewSettlementService(store, clock, services.NopNotifier{}, nil)
	transactions := services.NewTransactionService(store, clock, settlements, nil)
	return SchedulerDeps{
		Settlements:      settlements,
		Transactions:     transactions,
		Recurring:        services.NewRecurringService(store, clock, transactions, services.NopNotifier{}),
		Loans:            services.NewLoanService(store, clock, transactions),
		Invoices:         services.NewInvoiceService(store, clock, services.NopNotifier{}),
		Investments:      services.NewInvestmentService(store, clock),
		ReminderLeadDays: 3,
	}
}

func TestRunAll_AgesOverdueRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// An overdue settlement planted directly in the store; the sweep should
	// pick it up regardless of how it got there.
	if err := store.Settlements().Save(ctx, &core.Settlement{
		TransactionID: 1,
		PayerID:       2,
		PayeeID:       3,
		Amount:        decimal.RequireFromString("10.00"),
		Status:        core.SettlementPending,
		DueDate:       now.AddDate(0, 0, -1),
	}); err != nil {
		t.Fatalf("save settlement: %v", err)
	}

	deps := testDeps(t, store, now)
	RunAll(ctx, deps)

	overdue, err := store.Settlements().ByStatus(ctx, core.SettlementOverdue)
	if err != nil {
		t.Fatalf("ByStatus: %v", err)
	}
	if len(overdue) != 1 {
		t.Errorf("got %d OVERDUE settlements after RunAll, want 1", len(overdue))
	}

	// Rerunning is safe; everything is already reconciled.
	RunAll(ctx, deps)
	overdue, _ = store.Settlements().ByStatus(ctx, core.SettlementOverdue)
	if len(overdue) != 1 {
		t.Errorf("rerun changed state: %d OVERDUE settlements", len(overdue))
	}
}

func TestRunAll_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Must return promptly without panicking on a dead context.
	RunAll(ctx, testDeps(t, memory.New(), time.Now()))
}

func TestNewScheduler_ValidCronSpecs(t *testing.T) {
	s, err := NewScheduler(testDeps(t, memory.New(), time.Now()))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	<-s.Stop().Done()
}
