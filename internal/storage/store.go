// Package storage defines the persistence ports consumed by the engines.
// Implementations live in the sqlite and memory subpackages; the engines
// only ever see these interfaces.
package storage

import (
	"context"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

// Store aggregates the per-entity stores and provides the unit-of-work
// boundary. Every public engine operation runs its reads and writes either
// directly against the store or inside one InTx call; partial effects are
// never visible to concurrent operations.
type Store interface {
	Users() UserStore
	Groups() GroupStore
	Transactions() TransactionStore
	Settlements() SettlementStore
	Loans() LoanStore
	Schedules() ScheduleStore
	Invoices() InvoiceStore
	Investments() InvestmentStore

	// InTx runs fn atomically. The Store passed to fn operates inside the
	// transaction; it commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
}

type UserStore interface {
	Get(ctx context.Context, id int64) (*core.User, error)
	Save(ctx context.Context, u *core.User) error
}

type GroupStore interface {
	// Get returns the group with its member list resolved.
	Get(ctx context.Context, id int64) (*core.Group, error)
	Save(ctx context.Context, g *core.Group) error
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	ByMember(ctx context.Context, userID int64) ([]core.Group, error)
	// HasUnsettledTransactions reports whether any group transaction is
	// still flagged unsettled.
	HasUnsettledTransactions(ctx context.Context, groupID int64) (bool, error)
}

type TransactionStore interface {
	Get(ctx context.Context, id int64) (*core.Transaction, error)
	Save(ctx context.Context, t *core.Transaction) error
	ByUser(ctx context.Context, userID int64) ([]core.Transaction, error)
	ByUserAndType(ctx context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error)
	ByUserAndDateRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
	ByGroupAndType(ctx context.Context, groupID int64, typ core.TransactionType) ([]core.Transaction, error)
	UnsettledGroup(ctx context.Context) ([]core.Transaction, error)
}

type SettlementStore interface {
	Get(ctx context.Context, id int64) (*core.Settlement, error)
	Save(ctx context.Context, s *core.Settlement) error
	ByTransaction(ctx context.Context, transactionID int64) ([]core.Settlement, error)
	ByTransactions(ctx context.Context, transactionIDs []int64) ([]core.Settlement, error)
	ByUser(ctx context.Context, userID int64) ([]core.Settlement, error)
	ByStatus(ctx context.Context, status core.SettlementStatus) ([]core.Settlement, error)
	// PendingDueBefore returns PENDING settlements whose due date has
	// passed at the given instant.
	PendingDueBefore(ctx context.Context, now time.Time) ([]core.Settlement, error)
	// NeedingReminder returns PENDING, reminder-not-sent settlements due
	// on or before the given horizon.
	NeedingReminder(ctx context.Context, horizon time.Time) ([]core.Settlement, error)
	// HasUnsettled reports whether any non-terminal (PENDING or OVERDUE)
	// settlement still references the transaction.
	HasUnsettled(ctx context.Context, transactionID int64) (bool, error)
}

type LoanStore interface {
	Get(ctx context.Context, id int64) (*core.Loan, error)
	Save(ctx context.Context, l *core.Loan) error
	ByUser(ctx context.Context, userID int64) ([]core.Loan, error)
	// ActiveOverdue returns ACTIVE loans whose due date has passed.
	ActiveOverdue(ctx context.Context, now time.Time) ([]core.Loan, error)
	// Payments returns the loan's payment transactions.
	Payments(ctx context.Context, loanID int64) ([]core.Transaction, error)
}

type ScheduleStore interface {
	Get(ctx context.Context, id int64) (*core.RecurringSchedule, error)
	Save(ctx context.Context, s *core.RecurringSchedule) error
	ByUser(ctx context.Context, userID int64) ([]core.RecurringSchedule, error)
	// ActiveDue returns active schedules whose next execution is at or
	// before the given instant.
	ActiveDue(ctx context.Context, now time.Time) ([]core.RecurringSchedule, error)
	// ActiveNotifiable returns active schedules with notifications enabled.
	ActiveNotifiable(ctx context.Context) ([]core.RecurringSchedule, error)
}

type InvoiceStore interface {
	Get(ctx context.Context, id int64) (*core.Invoice, error)
	Save(ctx context.Context, i *core.Invoice) error
	ByTransaction(ctx context.Context, transactionID int64) ([]core.Invoice, error)
	ByStatus(ctx context.Context, status core.InvoiceStatus) ([]core.Invoice, error)
	PendingDueBefore(ctx context.Context, now time.Time) ([]core.Invoice, error)
	NeedingReminder(ctx context.Context, horizon time.Time) ([]core.Invoice, error)
}

type InvestmentStore interface {
	Get(ctx context.Context, id int64) (*core.Investment, error)
	Save(ctx context.Context, i *core.Investment) error
	ByUser(ctx context.Context, userID int64) ([]core.Investment, error)
	// ActiveMatured returns ACTIVE investments past their maturity date.
	ActiveMatured(ctx context.Context, now time.Time) ([]core.Investment, error)
}
