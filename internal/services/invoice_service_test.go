package services

import (
	"context"
	"errors"
	"testing"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func seedInvoice(t *testing.T, env *testEnv, userID int64, amount string) *core.Invoice {
	t.Helper()
	inv, err := env.invoices.Create(context.Background(), &core.Invoice{
		UserID:      userID,
		Amount:      dec(amount),
		DueDate:     testNow.AddDate(0, 0, 14),
		Description: "consulting",
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func TestInvoiceCreate_DefaultsAndRejections(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	inv := seedInvoice(t, env, alice, "250.00")
	if inv.Status != core.InvoicePending {
		t.Errorf("status = %s, want PENDING", inv.Status)
	}
	if !inv.IssueDate.Equal(testNow) {
		t.Errorf("issue date = %v, want defaulted to %v", inv.IssueDate, testNow)
	}

	var argErr *core.InvalidArgumentError
	if _, err := env.invoices.Create(ctx, &core.Invoice{UserID: alice, Amount: dec("10.00")}); !errors.As(err, &argErr) {
		t.Errorf("missing due date: err = %v, want InvalidArgumentError", err)
	}
	var notFound *core.NotFoundError
	if _, err := env.invoices.Create(ctx, &core.Invoice{
		UserID:        alice,
		Amount:        dec("10.00"),
		DueDate:       testNow.AddDate(0, 0, 7),
		TransactionID: 999,
	}); !errors.As(err, &notFound) {
		t.Errorf("unknown transaction: err = %v, want NotFoundError", err)
	}
}

func TestInvoiceMarkPaid_StampsAndBecomesTerminal(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	inv := seedInvoice(t, env, alice, "250.00")
	ctx := context.Background()

	paid, err := env.invoices.MarkPaid(ctx, inv.ID, "bank transfer")
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != core.InvoicePaid || paid.PaymentMethod != "bank transfer" || paid.PaymentDate.IsZero() {
		t.Errorf("payment not stamped: %+v", paid)
	}

	var stateErr *core.IllegalStateError
	if _, err := env.invoices.Cancel(ctx, inv.ID); !errors.As(err, &stateErr) {
		t.Errorf("cancel PAID: err = %v, want IllegalStateError", err)
	}
	paid.Description = "edited"
	if _, err := env.invoices.Update(ctx, paid); !errors.As(err, &stateErr) {
		t.Errorf("update PAID: err = %v, want IllegalStateError", err)
	}
}

func TestInvoiceAge_OverdueTransition(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	inv := seedInvoice(t, env, alice, "250.00")
	ctx := context.Background()

	if n, err := env.invoices.Age(ctx); err != nil || n != 0 {
		t.Fatalf("Age before due = (%d, %v), want (0, nil)", n, err)
	}

	later := env.at(testNow.AddDate(0, 0, 15))
	if n, err := later.invoices.Age(ctx); err != nil || n != 1 {
		t.Fatalf("Age = (%d, %v), want (1, nil)", n, err)
	}
	loaded, _ := later.invoices.Get(ctx, inv.ID)
	if loaded.Status != core.InvoiceOverdue {
		t.Errorf("status = %s, want OVERDUE", loaded.Status)
	}

	if n, err := later.invoices.Age(ctx); err != nil || n != 0 {
		t.Errorf("rerun Age = (%d, %v), want (0, nil)", n, err)
	}

	// An overdue invoice can still be paid.
	if _, err := later.invoices.MarkPaid(ctx, inv.ID, "cash"); err != nil {
		t.Errorf("MarkPaid on OVERDUE: %v", err)
	}
}

func TestInvoiceReminderSweep_FiresOnce(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	seedInvoice(t, env, alice, "250.00")
	ctx := context.Background()

	if n, err := env.invoices.ReminderSweep(ctx, 3); err != nil || n != 0 {
		t.Fatalf("early sweep = (%d, %v), want (0, nil)", n, err)
	}

	later := env.at(testNow.AddDate(0, 0, 12))
	if n, err := later.invoices.ReminderSweep(ctx, 3); err != nil || n != 1 {
		t.Fatalf("sweep = (%d, %v), want (1, nil)", n, err)
	}
	if len(env.notifier.events) != 1 || env.notifier.events[0].kind != KindInvoiceReminder {
		t.Fatalf("notifications = %+v, want one invoice reminder", env.notifier.events)
	}
	if n, err := later.invoices.ReminderSweep(ctx, 3); err != nil || n != 0 {
		t.Errorf("rerun sweep = (%d, %v), want (0, nil)", n, err)
	}
}
