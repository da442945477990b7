package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/split"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// settlementDueDays is how long a group member has to settle their share.
const settlementDueDays = 7

// SettlementService owns the settlement lifecycle: it is the only writer
// of new settlements and the only place status transitions happen.
type SettlementService struct {
	store    storage.Store
	clock    core.Clock
	notifier Notifier
	sync     SyncPublisher
}

func NewSettlementService(store storage.Store, clock core.Clock, notifier Notifier, sync SyncPublisher) *SettlementService {
	return &SettlementService{
		store:    store,
		clock:    clock,
		notifier: notifier,
		sync:     sync,
	}
}

// RecordGroupExpense persists a bill-split transaction and derives one
// PENDING settlement per non-payer member with a positive share. The
// settlement amounts plus the payer's own share always sum to the
// transaction amount exactly.
func (s *SettlementService) RecordGroupExpense(ctx context.Context, t *core.Transaction, weights map[int64]decimal.Decimal) (*core.Transaction, error) {
	if t.GroupID == 0 {
		return nil, &core.InvalidArgumentError{Reason: "group must be specified for group expense"}
	}
	t.Type = core.TypeBillSplit
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(st storage.Store) error {
		group, err := st.Groups().Get(ctx, t.GroupID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		t.CreatedAt, t.UpdatedAt = now, now
		if err := st.Transactions().Save(ctx, t); err != nil {
			return err
		}
		return s.deriveSettlements(ctx, st, t, group.MemberIDs, weights)
	})
	if err != nil {
		return nil, err
	}

	s.publishSync(ctx, t.ID)
	slog.InfoContext(ctx, "Recorded group expense",
		"transaction_id", t.ID,
		"group_id", t.GroupID,
		"amount", t.Amount.StringFixed(2))
	return t, nil
}

// DeriveEqualSettlements creates equal-split settlements for a transaction
// that merely references a group. Called inside the caller's unit of work.
func (s *SettlementService) DeriveEqualSettlements(ctx context.Context, st storage.Store, t *core.Transaction) error {
	group, err := st.Groups().Get(ctx, t.GroupID)
	if err != nil {
		return err
	}
	return s.deriveSettlements(ctx, st, t, group.MemberIDs, nil)
}

func (s *SettlementService) deriveSettlements(ctx context.Context, st storage.Store, t *core.Transaction, memberIDs []int64, weights map[int64]decimal.Decimal) error {
	shares, err := split.ComputeShares(t.Amount, memberIDs, weights)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	for _, member := range memberIDs {
		share := shares[member]
		// The payer never owes themselves.
		if member == t.UserID || !share.IsPositive() {
			continue
		}
		settlement := &core.Settlement{
			TransactionID: t.ID,
			PayerID:       member,
			PayeeID:       t.UserID,
			Amount:        share,
			Status:        core.SettlementPending,
			DueDate:       t.Date.AddDate(0, 0, settlementDueDays),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := st.Settlements().Save(ctx, settlement); err != nil {
			return fmt.Errorf("save settlement: %w", err)
		}
	}
	return nil
}

// ComputeGroupBalances nets PENDING settlements across the group's
// bill-split transactions: positive means the user owes, negative means
// the user is owed. The balances always sum to zero.
func (s *SettlementService) ComputeGroupBalances(ctx context.Context, groupID int64) (map[int64]decimal.Decimal, error) {
	if _, err := s.store.Groups().Get(ctx, groupID); err != nil {
		return nil, err
	}
	expenses, err := s.store.Transactions().ByGroupAndType(ctx, groupID, core.TypeBillSplit)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	settlements, err := s.store.Settlements().ByTransactions(ctx, ids)
	if err != nil {
		return nil, err
	}

	balances := make(map[int64]decimal.Decimal)
	for _, st := range settlements {
		if st.Status != core.SettlementPending {
			continue
		}
		balances[st.PayerID] = balances[st.PayerID].Add(st.Amount)
		balances[st.PayeeID] = balances[st.PayeeID].Sub(st.Amount)
	}
	return balances, nil
}

// UpdateStatus moves a settlement to the given status. COMPLETED and
// CANCELLED are terminal; once reached the settlement is immutable.
func (s *SettlementService) UpdateStatus(ctx context.Context, id int64, status core.SettlementStatus, paymentMethod, paymentReference string) (*core.Settlement, error) {
	var out *core.Settlement
	err := s.store.InTx(ctx, func(st storage.Store) error {
		settlement, err := st.Settlements().Get(ctx, id)
		if err != nil {
			return err
		}
		if settlement.Terminal() {
			return &core.IllegalStateError{Reason: "settlement " + strconv.FormatInt(id, 10) + " is already " + string(settlement.Status)}
		}
		settlement.Status = status
		settlement.PaymentMethod = paymentMethod
		settlement.PaymentReference = paymentReference
		settlement.UpdatedAt = s.clock.Now()
		if status == core.SettlementCompleted {
			settlement.SettlementDate = s.clock.Now()
		}
		if err := st.Settlements().Save(ctx, settlement); err != nil {
			return err
		}
		out = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best effort: the transaction may have just become fully settled.
	if out.Status != core.SettlementPending {
		if err := s.MarkTransactionSettled(ctx, out.TransactionID); err != nil {
			slog.ErrorContext(ctx, "Failed to re-check transaction settled flag",
				"transaction_id", out.TransactionID,
				"error", err)
		}
	}
	return out, nil
}

// MarkTransactionSettled flips the transaction's settled flag, but only
// when no settlement referencing it is still open. Otherwise it is a
// silent no-op; the next sweep or status update will retry.
func (s *SettlementService) MarkTransactionSettled(ctx context.Context, transactionID int64) error {
	return s.store.InTx(ctx, func(st storage.Store) error {
		unsettled, err := st.Settlements().HasUnsettled(ctx, transactionID)
		if err != nil {
			return err
		}
		if unsettled {
			return nil
		}
		t, err := st.Transactions().Get(ctx, transactionID)
		if err != nil {
			return err
		}
		if t.Settled {
			return nil
		}
		t.Settled = true
		t.UpdatedAt = s.clock.Now()
		return st.Transactions().Save(ctx, t)
	})
}

// Age transitions PENDING settlements past their due date to OVERDUE.
// Each settlement is processed independently; a failure on one never
// blocks the rest. Rerunning against already-OVERDUE rows is a no-op.
func (s *SettlementService) Age(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.store.Settlements().PendingDueBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find overdue settlements: %w", err)
	}

	aged := 0
	for i := range due {
		settlement := due[i]
		if settlement.Status != core.SettlementPending {
			continue
		}
		settlement.Status = core.SettlementOverdue
		settlement.UpdatedAt = now
		if err := s.store.Settlements().Save(ctx, &settlement); err != nil {
			slog.ErrorContext(ctx, "Failed to age settlement",
				"settlement_id", settlement.ID,
				"error", err)
			continue
		}
		aged++
	}
	if aged > 0 {
		slog.InfoContext(ctx, "Aged overdue settlements", "count", aged)
	}
	return aged, nil
}

// ReminderSweep notifies payers of PENDING settlements due within leadDays
// and marks them reminded so each settlement produces exactly one reminder.
func (s *SettlementService) ReminderSweep(ctx context.Context, leadDays int) (int, error) {
	horizon := s.clock.Now().AddDate(0, 0, leadDays)
	pending, err := s.store.Settlements().NeedingReminder(ctx, horizon)
	if err != nil {
		return 0, fmt.Errorf("find settlements needing reminders: %w", err)
	}

	reminded := 0
	for i := range pending {
		settlement := pending[i]
		settlement.ReminderSent = true
		settlement.UpdatedAt = s.clock.Now()
		if err := s.store.Settlements().Save(ctx, &settlement); err != nil {
			slog.ErrorContext(ctx, "Failed to mark settlement reminded",
				"settlement_id", settlement.ID,
				"error", err)
			continue
		}
		notify(ctx, s.notifier, KindSettlementReminder, settlement.PayerID, map[string]string{
			"settlement_id": strconv.FormatInt(settlement.ID, 10),
			"amount":        settlement.Amount.StringFixed(2),
			"due_date":      settlement.DueDate.Format(time.RFC3339),
		})
		reminded++
	}
	return reminded, nil
}

func (s *SettlementService) Get(ctx context.Context, id int64) (*core.Settlement, error) {
	return s.store.Settlements().Get(ctx, id)
}

func (s *SettlementService) ByUser(ctx context.Context, userID int64) ([]core.Settlement, error) {
	return s.store.Settlements().ByUser(ctx, userID)
}

func (s *SettlementService) ByStatus(ctx context.Context, status core.SettlementStatus) ([]core.Settlement, error) {
	return s.store.Settlements().ByStatus(ctx, status)
}

func (s *SettlementService) ByTransaction(ctx context.Context, transactionID int64) ([]core.Settlement, error) {
	return s.store.Settlements().ByTransaction(ctx, transactionID)
}

func (s *SettlementService) publishSync(ctx context.Context, transactionID int64) {
	if s.sync == nil {
		return
	}
	if err := s.sync.PublishTransactionSync(ctx, transactionID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction sync message",
			"transaction_id", transactionID,
			"error", err)
	}
}
