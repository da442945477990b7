package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage/memory"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	events []notification
}

type notification struct {
	kind    string
	userID  int64
	payload map[string]string
}

func (r *recordingNotifier) Notify(_ context.Context, kind string, userID int64, payload map[string]string) error {
	r.events = append(r.events, notification{kind: kind, userID: userID, payload: payload})
	return nil
}

// testEnv wires every service against one in-memory store and a frozen
// clock. at() rewires the same store to a later instant for aging tests.
type testEnv struct {
	store    *memory.Store
	notifier *recordingNotifier

	users        *UserService
	groups       *GroupService
	transactions *TransactionService
	settlements  *SettlementService
	recurring    *RecurringService
	loans        *LoanService
	invoices     *InvoiceService
	investments  *InvestmentService
}

func newTestEnv(now time.Time) *testEnv {
	return wireEnv(memory.New(), &recordingNotifier{}, now)
}

func (e *testEnv) at(now time.Time) *testEnv {
	return wireEnv(e.store, e.notifier, now)
}

func wireEnv(store *memory.Store, notifier *recordingNotifier, now time.Time) *testEnv {
	clock := core.FixedClock(now)
	settlements := NewSettlementService(store, clock, notifier, nil)
	transactions := NewTransactionService(store, clock, settlements, nil)
	return &testEnv{
		store:        store,
		notifier:     notifier,
		users:        NewUserService(store, clock),
		groups:       NewGroupService(store, clock),
		transactions: transactions,
		settlements:  settlements,
		recurring:    NewRecurringService(store, clock, transactions, notifier),
		loans:        NewLoanService(store, clock, transactions),
		invoices:     NewInvoiceService(store, clock, notifier),
		investments:  NewInvestmentService(store, clock),
	}
}

func seedUser(t *testing.T, env *testEnv, username string) int64 {
	t.Helper()
	u, err := env.users.Create(context.Background(), &core.User{Username: username})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u.ID
}

func seedGroup(t *testing.T, env *testEnv, creatorID int64, memberIDs ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	g, err := env.groups.Create(ctx, &core.Group{Name: "test group", CreatorID: creatorID})
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	for _, id := range memberIDs {
		if err := env.groups.AddMember(ctx, g.ID, id); err != nil {
			t.Fatalf("seed member %d: %v", id, err)
		}
	}
	return g.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
