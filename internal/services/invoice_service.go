package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// InvoiceService tracks billed amounts through their own pending/overdue
// lifecycle, mirroring how settlements age but tied to a single user.
type InvoiceService struct {
	store    storage.Store
	clock    core.Clock
	notifier Notifier
}

func NewInvoiceService(store storage.Store, clock core.Clock, notifier Notifier) *InvoiceService {
	return &InvoiceService{store: store, clock: clock, notifier: notifier}
}

// Create registers an invoice in PENDING. A linked transaction is
// optional and only validated when present.
func (s *InvoiceService) Create(ctx context.Context, inv *core.Invoice) (*core.Invoice, error) {
	if inv.UserID == 0 {
		return nil, &core.InvalidArgumentError{Reason: "invoice requires an owner"}
	}
	if err := core.ValidateAmount(inv.Amount); err != nil {
		return nil, err
	}
	if inv.DueDate.IsZero() {
		return nil, &core.InvalidArgumentError{Reason: "invoice due date is required"}
	}
	if inv.TransactionID != 0 {
		if _, err := s.store.Transactions().Get(ctx, inv.TransactionID); err != nil {
			return nil, err
		}
	}
	now := s.clock.Now()
	inv.Status = core.InvoicePending
	if inv.IssueDate.IsZero() {
		inv.IssueDate = now
	}
	inv.CreatedAt, inv.UpdatedAt = now, now
	if err := s.store.Invoices().Save(ctx, inv); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created invoice",
		"invoice_id", inv.ID,
		"user_id", inv.UserID,
		"amount", inv.Amount.StringFixed(2))
	return inv, nil
}

// Update modifies an invoice's descriptive fields. Terminal invoices are
// immutable.
func (s *InvoiceService) Update(ctx context.Context, inv *core.Invoice) (*core.Invoice, error) {
	if err := core.ValidateAmount(inv.Amount); err != nil {
		return nil, err
	}
	var out *core.Invoice
	err := s.store.InTx(ctx, func(st storage.Store) error {
		existing, err := st.Invoices().Get(ctx, inv.ID)
		if err != nil {
			return err
		}
		if existing.Terminal() {
			return &core.IllegalStateError{Reason: "invoice " + strconv.FormatInt(inv.ID, 10) + " is already " + string(existing.Status)}
		}
		existing.Amount = inv.Amount
		existing.DueDate = inv.DueDate
		existing.Description = inv.Description
		existing.PaymentTerms = inv.PaymentTerms
		existing.AttachmentURL = inv.AttachmentURL
		existing.UpdatedAt = s.clock.Now()
		if err := st.Invoices().Save(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid completes an invoice, stamping the payment method and date.
func (s *InvoiceService) MarkPaid(ctx context.Context, id int64, paymentMethod string) (*core.Invoice, error) {
	return s.transition(ctx, id, core.InvoicePaid, paymentMethod)
}

// Cancel voids an invoice that will never be paid.
func (s *InvoiceService) Cancel(ctx context.Context, id int64) (*core.Invoice, error) {
	return s.transition(ctx, id, core.InvoiceCancelled, "")
}

func (s *InvoiceService) transition(ctx context.Context, id int64, status core.InvoiceStatus, paymentMethod string) (*core.Invoice, error) {
	var out *core.Invoice
	err := s.store.InTx(ctx, func(st storage.Store) error {
		inv, err := st.Invoices().Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.Terminal() {
			return &core.IllegalStateError{Reason: "invoice " + strconv.FormatInt(id, 10) + " is already " + string(inv.Status)}
		}
		inv.Status = status
		inv.UpdatedAt = s.clock.Now()
		if status == core.InvoicePaid {
			inv.PaymentMethod = paymentMethod
			inv.PaymentDate = s.clock.Now()
		}
		if err := st.Invoices().Save(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Age moves PENDING invoices past their due date to OVERDUE. Independent
// per invoice, idempotent on rerun.
func (s *InvoiceService) Age(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.store.Invoices().PendingDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	aged := 0
	for i := range due {
		inv := due[i]
		if inv.Status != core.InvoicePending {
			continue
		}
		inv.Status = core.InvoiceOverdue
		inv.UpdatedAt = now
		if err := s.store.Invoices().Save(ctx, &inv); err != nil {
			slog.ErrorContext(ctx, "Failed to age invoice",
				"invoice_id", inv.ID,
				"error", err)
			continue
		}
		aged++
	}
	if aged > 0 {
		slog.InfoContext(ctx, "Aged overdue invoices", "count", aged)
	}
	return aged, nil
}

// ReminderSweep notifies owners of PENDING invoices due within leadDays,
// once per invoice.
func (s *InvoiceService) ReminderSweep(ctx context.Context, leadDays int) (int, error) {
	now := s.clock.Now()
	horizon := now.AddDate(0, 0, leadDays)
	pending, err := s.store.Invoices().NeedingReminder(ctx, horizon)
	if err != nil {
		return 0, err
	}

	reminded := 0
	for i := range pending {
		inv := pending[i]
		inv.ReminderSent = true
		inv.LastReminderDate = now
		inv.UpdatedAt = now
		if err := s.store.Invoices().Save(ctx, &inv); err != nil {
			slog.ErrorContext(ctx, "Failed to mark invoice reminded",
				"invoice_id", inv.ID,
				"error", err)
			continue
		}
		notify(ctx, s.notifier, KindInvoiceReminder, inv.UserID, map[string]string{
			"invoice_id": strconv.FormatInt(inv.ID, 10),
			"amount":     inv.Amount.StringFixed(2),
			"due_date":   inv.DueDate.Format(time.RFC3339),
		})
		reminded++
	}
	return reminded, nil
}

func (s *InvoiceService) Get(ctx context.Context, id int64) (*core.Invoice, error) {
	return s.store.Invoices().Get(ctx, id)
}

func (s *InvoiceService) ByStatus(ctx context.Context, status core.InvoiceStatus) ([]core.Invoice, error) {
	return s.store.Invoices().ByStatus(ctx, status)
}

func (s *InvoiceService) ByTransaction(ctx context.Context, transactionID int64) ([]core.Invoice, error) {
	return s.store.Invoices().ByTransaction(ctx, transactionID)
}
