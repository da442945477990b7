package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// TransactionService records money movements. Group-scoped transactions
// get equal-split settlements derived on creation; weighted splits go
// through SettlementService.RecordGroupExpense instead.
type TransactionService struct {
	store       storage.Store
	clock       core.Clock
	settlements *SettlementService
	sync        SyncPublisher
}

func NewTransactionService(store storage.Store, clock core.Clock, settlements *SettlementService, sync SyncPublisher) *TransactionService {
	return &TransactionService{
		store:       store,
		clock:       clock,
		settlements: settlements,
		sync:        sync,
	}
}

// Create persists a transaction. When it references a group, settlements
// for an equal split are derived in the same unit of work.
func (s *TransactionService) Create(ctx context.Context, t *core.Transaction) (*core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(st storage.Store) error {
		if _, err := st.Users().Get(ctx, t.UserID); err != nil {
			return err
		}
		now := s.clock.Now()
		t.CreatedAt, t.UpdatedAt = now, now
		if err := st.Transactions().Save(ctx, t); err != nil {
			return err
		}
		if t.GroupID != 0 {
			return s.settlements.DeriveEqualSettlements(ctx, st, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishSync(ctx, t.ID)
	slog.InfoContext(ctx, "Created transaction",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"type", t.Type,
		"amount", t.Amount.StringFixed(2))
	return t, nil
}

// Update modifies a transaction's descriptive fields. Once settlements
// reference the transaction its amount is frozen; the derived obligations
// would no longer add up otherwise.
func (s *TransactionService) Update(ctx context.Context, t *core.Transaction) (*core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var out *core.Transaction
	err := s.store.InTx(ctx, func(st storage.Store) error {
		existing, err := st.Transactions().Get(ctx, t.ID)
		if err != nil {
			return err
		}
		derived, err := st.Settlements().ByTransaction(ctx, t.ID)
		if err != nil {
			return err
		}
		if len(derived) > 0 && !existing.Amount.Equal(t.Amount) {
			return &core.IllegalStateError{Reason: "cannot change amount of transaction " + strconv.FormatInt(t.ID, 10) + " with derived settlements"}
		}
		existing.Amount = t.Amount
		existing.Description = t.Description
		existing.Category = t.Category
		existing.Date = t.Date
		existing.UpdatedAt = s.clock.Now()
		if err := st.Transactions().Save(ctx, existing); err != nil {
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

func (s *TransactionService) Get(ctx context.Context, id int64) (*core.Transaction, error) {
	return s.store.Transactions().Get(ctx, id)
}

func (s *TransactionService) ByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.Transactions().ByUser(ctx, userID)
}

func (s *TransactionService) ByUserAndType(ctx context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error) {
	return s.store.Transactions().ByUserAndType(ctx, userID, typ)
}

func (s *TransactionService) ByUserAndDateRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	if to.Before(from) {
		return nil, &core.InvalidArgumentError{Reason: "date range end precedes start"}
	}
	return s.store.Transactions().ByUserAndDateRange(ctx, userID, from, to)
}

// UnsettledGroup lists group transactions still awaiting settlement. The
// reconciler walks this to retry the settled-flag check.
func (s *TransactionService) UnsettledGroup(ctx context.Context) ([]core.Transaction, error) {
	return s.store.Transactions().UnsettledGroup(ctx)
}

// SettledFlagSweep re-checks the settled flag of every unsettled group
// transaction. Flags that could not flip earlier, for example because the
// last settlement update raced, are repaired here.
func (s *TransactionService) SettledFlagSweep(ctx context.Context) (int, error) {
	unsettled, err := s.store.Transactions().UnsettledGroup(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, t := range unsettled {
		if err := s.settlements.MarkTransactionSettled(ctx, t.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to re-check settled flag",
				"transaction_id", t.ID,
				"error", err)
			continue
		}
		repaired++
	}
	return repaired, nil
}

func (s *TransactionService) publishSync(ctx context.Context, transactionID int64) {
	if s.sync == nil {
		return
	}
	if err := s.sync.PublishTransactionSync(ctx, transactionID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction sync message",
			"transaction_id", transactionID,
			"error", err)
	}
}
