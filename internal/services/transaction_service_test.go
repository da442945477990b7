package services

import (
	"context"
	"errors"
	"testing"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func TestTransactionCreate_DerivesEqualSettlements(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")
	carol := seedUser(t, env, "carol")
	group := seedGroup(t, env, alice, bob, carol)
	ctx := context.Background()

	tx, err := env.transactions.Create(ctx, &core.Transaction{
		UserID:      alice,
		Amount:      dec("90.00"),
		Description: "groceries",
		Type:        core.TypeBillSplit,
		Category:    core.CategoryFood,
		Date:        testNow,
		GroupID:     group,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	settlements, _ := env.settlements.ByTransaction(ctx, tx.ID)
	if len(settlements) != 2 {
		t.Fatalf("got %d settlements, want 2", len(settlements))
	}
	for _, s := range settlements {
		if !s.Amount.Equal(dec("30.00")) {
			t.Errorf("settlement amount = %s, want 30.00", s.Amount)
		}
	}
}

func TestTransactionCreate_NoGroupNoSettlements(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	tx, err := env.transactions.Create(ctx, &core.Transaction{
		UserID:      alice,
		Amount:      dec("12.50"),
		Description: "coffee",
		Type:        core.TypeExpense,
		Category:    core.CategoryFood,
		Date:        testNow,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	settlements, _ := env.settlements.ByTransaction(ctx, tx.ID)
	if len(settlements) != 0 {
		t.Errorf("got %d settlements for personal expense, want 0", len(settlements))
	}
}

func TestTransactionCreate_Validation(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	base := func() *core.Transaction {
		return &core.Transaction{
			UserID:      alice,
			Amount:      dec("10.00"),
			Description: "x",
			Type:        core.TypeExpense,
			Category:    core.CategoryFood,
			Date:        testNow,
		}
	}

	tx := base()
	tx.Amount = dec("0")
	if _, err := env.transactions.Create(ctx, tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v, want ErrInvalidAmount", err)
	}

	tx = base()
	tx.Amount = dec("10.005")
	if _, err := env.transactions.Create(ctx, tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("sub-cent amount: err = %v, want ErrInvalidAmount", err)
	}

	tx = base()
	tx.Description = "   "
	if _, err := env.transactions.Create(ctx, tx); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("blank description: err = %v, want ErrEmptyDescription", err)
	}

	tx = base()
	tx.UserID = 999
	var notFound *core.NotFoundError
	if _, err := env.transactions.Create(ctx, tx); !errors.As(err, &notFound) {
		t.Errorf("unknown user: err = %v, want NotFoundError", err)
	}
}

func TestTransactionUpdate_AmountFrozenBySettlements(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")
	group := seedGroup(t, env, alice, bob)
	ctx := context.Background()

	tx := recordExpense(t, env, alice, group, "40.00", nil)

	update := *tx
	update.Amount = dec("50.00")
	var stateErr *core.IllegalStateError
	if _, err := env.transactions.Update(ctx, &update); !errors.As(err, &stateErr) {
		t.Fatalf("amount change: err = %v, want IllegalStateError", err)
	}

	update = *tx
	update.Description = "corrected dinner"
	updated, err := env.transactions.Update(ctx, &update)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != "corrected dinner" {
		t.Errorf("description = %q, want corrected", updated.Description)
	}
}

func TestTransactionByUserAndDateRange(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	for _, offset := range []int{-5, 0, 5} {
		if _, err := env.transactions.Create(ctx, &core.Transaction{
			UserID:      alice,
			Amount:      dec("10.00"),
			Description: "x",
			Type:        core.TypeExpense,
			Category:    core.CategoryFood,
			Date:        testNow.AddDate(0, 0, offset),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	ts, err := env.transactions.ByUserAndDateRange(ctx, alice, testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ByUserAndDateRange: %v", err)
	}
	if len(ts) != 1 {
		t.Errorf("got %d transactions in range, want 1", len(ts))
	}

	var argErr *core.InvalidArgumentError
	if _, err := env.transactions.ByUserAndDateRange(ctx, alice, testNow, testNow.AddDate(0, 0, -1)); !errors.As(err, &argErr) {
		t.Errorf("inverted range: err = %v, want InvalidArgumentError", err)
	}
}

func TestSettledFlagSweep_RepairsMissedFlags(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	bob := seedUser(t, env, "bob")
	group := seedGroup(t, env, alice, bob)
	ctx := context.Background()

	tx := recordExpense(t, env, alice, group, "40.00", nil)

	// Complete the settlement behind the service's back, as if the flag
	// update had been lost.
	settlements, _ := env.store.Settlements().ByTransaction(ctx, tx.ID)
	settlements[0].Status = core.SettlementCompleted
	if err := env.store.Settlements().Save(ctx, &settlements[0]); err != nil {
		t.Fatalf("save settlement: %v", err)
	}

	loaded, _ := env.transactions.Get(ctx, tx.ID)
	if loaded.Settled {
		t.Fatal("flag already set, sweep has nothing to prove")
	}

	if _, err := env.transactions.SettledFlagSweep(ctx); err != nil {
		t.Fatalf("SettledFlagSweep: %v", err)
	}
	loaded, _ = env.transactions.Get(ctx, tx.ID)
	if !loaded.Settled {
		t.Error("settled flag not repaired")
	}
}
