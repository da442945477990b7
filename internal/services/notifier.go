// Package services holds the ledger engines: settlement derivation and
// aging, recurring materialization, the loan state machine, invoice and
// investment lifecycles, and group membership rules. Engines consume the
// storage interfaces, a Clock, and the fire-and-forget ports below.
package services

import (
	"context"
	"log/slog"
)

// Notification kinds emitted by the engines.
const (
	KindSettlementReminder = "settlement.reminder"
	KindUpcomingRecurrence = "recurring.upcoming"
	KindInvoiceReminder    = "invoice.reminder"
)

// Notifier delivers user-facing events. The engines decide when a
// notification is due; delivery is someone else's problem and is never
// allowed to fail an engine operation.
type Notifier interface {
	Notify(ctx context.Context, kind string, userID int64, payload map[string]string) error
}

// SyncPublisher fans out newly created transactions for export.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, transactionID int64) error
}

// NopNotifier discards notifications. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, int64, map[string]string) error { return nil }

// notify sends through n, logging failures instead of propagating them.
func notify(ctx context.Context, n Notifier, kind string, userID int64, payload map[string]string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, kind, userID, payload); err != nil {
		slog.ErrorContext(ctx, "Failed to deliver notification",
			"kind", kind,
			"user_id", userID,
			"error", err)
	}
}
