// Package worker runs the transaction export pipeline: consume sync
// messages, load the transaction from the store, append it to the
// spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/OmKumar-08/advanced-budget-app/internal/amqp"
	"github.com/OmKumar-08/advanced-budget-app/internal/sheets"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

type SyncWorker struct {
	store  storage.Store
	writer sheets.TransactionWriter
}

func NewSyncWorker(store storage.Store, writer sheets.TransactionWriter) *SyncWorker {
	return &SyncWorker{store: store, writer: writer}
}

// HandleSyncMessage exports one transaction. The message only carries the
// ID; the row comes from the store, so we always export the latest state.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	t, err := w.store.Transactions().Get(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"transaction_id", t.ID,
		"sheets_ref", ref,
		"amount", t.Amount.StringFixed(2))
	return nil
}
