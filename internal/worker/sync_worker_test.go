package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/amqp"
	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	memsheet "github.com/OmKumar-08/advanced-budget-app/internal/sheets/memory"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage/memory"
)

func TestHandleSyncMessage_ExportsLatestState(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sink := memsheet.New()

	tx := &core.Transaction{
		UserID:      1,
		Amount:      decimal.RequireFromString("12.50"),
		Description: "coffee",
		Type:        core.TypeExpense,
		Category:    core.CategoryFood,
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Transactions().Save(ctx, tx); err != nil {
		t.Fatalf("save transaction: %v", err)
	}

	w := NewSyncWorker(store, sink)
	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tx.ID)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	items := sink.Items()
	if len(items) != 1 {
		t.Fatalf("got %d exported rows, want 1", len(items))
	}
	if !items[0].Amount.Equal(tx.Amount) {
		t.Errorf("exported amount = %s, want %s", items[0].Amount, tx.Amount)
	}
}

func TestHandleSyncMessage_UnknownTransaction(t *testing.T) {
	w := NewSyncWorker(memory.New(), memsheet.New())
	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(42)); err == nil {
		t.Error("expected error for unknown transaction")
	}
}
