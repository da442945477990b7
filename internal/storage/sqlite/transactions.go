package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

const transactionCols = `id, user_id, amount, description, type, category,
	transaction_date, group_id, loan_id, is_recurring, is_settled, created_at, updated_at`

type transactionStore struct{ s *Store }

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var t core.Transaction
	var amount string
	var date, created, updated, recurring, settled int64
	err := row.Scan(&t.ID, &t.UserID, &amount, &t.Description, &t.Type, &t.Category,
		&date, &t.GroupID, &t.LoanID, &recurring, &settled, &created, &updated)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = decDec(amount); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	t.Date = decTime(date)
	t.Recurring = recurring == 1
	t.Settled = settled == 1
	t.CreatedAt, t.UpdatedAt = decTime(created), decTime(updated)
	return &t, nil
}

func (r *transactionStore) Get(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.s.q.QueryRowContext(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *transactionStore) Save(ctx context.Context, t *core.Transaction) error {
	if t.ID == 0 {
		res, err := r.s.q.ExecContext(ctx,
			`INSERT INTO transactions (user_id, amount, description, type, category,
			   transaction_date, group_id, loan_id, is_recurring, is_settled, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.UserID, encDec(t.Amount), t.Description, t.Type, t.Category,
			encTime(t.Date), t.GroupID, t.LoanID, encBool(t.Recurring), encBool(t.Settled),
			encTime(t.CreatedAt), encTime(t.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		t.ID, err = res.LastInsertId()
		return err
	}
	_, err := r.s.q.ExecContext(ctx,
		`UPDATE transactions SET amount = ?, description = ?, type = ?, category = ?,
		   transaction_date = ?, is_recurring = ?, is_settled = ?, updated_at = ?
		 WHERE id = ?`,
		encDec(t.Amount), t.Description, t.Type, t.Category,
		encTime(t.Date), encBool(t.Recurring), encBool(t.Settled), encTime(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (r *transactionStore) list(ctx context.Context, where string, args ...any) ([]core.Transaction, error) {
	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *transactionStore) ByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.list(ctx, `user_id = ?`, userID)
}

func (r *transactionStore) ByUserAndType(ctx context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error) {
	return r.list(ctx, `user_id = ? AND type = ?`, userID, typ)
}

func (r *transactionStore) ByUserAndDateRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	return r.list(ctx, `user_id = ? AND transaction_date >= ? AND transaction_date <= ?`,
		userID, encTime(from), encTime(to))
}

func (r *transactionStore) ByGroupAndType(ctx context.Context, groupID int64, typ core.TransactionType) ([]core.Transaction, error) {
	return r.list(ctx, `group_id = ? AND type = ?`, groupID, typ)
}

func (r *transactionStore) UnsettledGroup(ctx context.Context) ([]core.Transaction, error) {
	return r.list(ctx, `group_id != 0 AND is_settled = 0`)
}

// --- settlements ---

const settlementCols = `id, transaction_id, payer_id, payee_id, amount, status,
	payment_method, payment_reference, settlement_date, due_date, reminder_sent, created_at, updated_at`

type settlementStore struct{ s *Store }

func scanSettlement(row interface{ Scan(...any) error }) (*core.Settlement, error) {
	var st core.Settlement
	var amount string
	var settled, due, created, updated, reminder int64
	err := row.Scan(&st.ID, &st.TransactionID, &st.PayerID, &st.PayeeID, &amount, &st.Status,
		&st.PaymentMethod, &st.PaymentReference, &settled, &due, &reminder, &created, &updated)
	if err != nil {
		return nil, err
	}
	if st.Amount, err = decDec(amount); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	st.SettlementDate = decTime(settled)
	st.DueDate = decTime(due)
	st.ReminderSent = reminder == 1
	st.CreatedAt, st.UpdatedAt = decTime(created), decTime(updated)
	return &st, nil
}

func (r *settlementStore) Get(ctx context.Context, id int64) (*core.Settlement, error) {
	row := r.s.q.QueryRowContext(ctx,
		`SELECT `+settlementCols+` FROM settlements WHERE id = ?`, id)
	st, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "settlement", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return st, nil
}

func (r *settlementStore) Save(ctx context.Context, st *core.Settlement) error {
	if st.ID == 0 {
		res, err := r.s.q.ExecContext(ctx,
			`INSERT INTO settlements (transaction_id, payer_id, payee_id, amount, status,
			   payment_method, payment_reference, settlement_date, due_date, reminder_sent,
			   created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.TransactionID, st.PayerID, st.PayeeID, encDec(st.Amount), st.Status,
			st.PaymentMethod, st.PaymentReference, encTime(st.SettlementDate), encTime(st.DueDate),
			encBool(st.ReminderSent), encTime(st.CreatedAt), encTime(st.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert settlement: %w", err)
		}
		st.ID, err = res.LastInsertId()
		return err
	}
	_, err := r.s.q.ExecContext(ctx,
		`UPDATE settlements SET status = ?, payment_method = ?, payment_reference = ?,
		   settlement_date = ?, reminder_sent = ?, updated_at = ?
		 WHERE id = ?`,
		st.Status, st.PaymentMethod, st.PaymentReference,
		encTime(st.SettlementDate), encBool(st.ReminderSent), encTime(st.UpdatedAt), st.ID)
	if err != nil {
		return fmt.Errorf("update settlement: %w", err)
	}
	return nil
}

func (r *settlementStore) list(ctx context.Context, where string, args ...any) ([]core.Settlement, error) {
	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+settlementCols+` FROM settlements WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()
	var out []core.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func (r *settlementStore) ByTransaction(ctx context.Context, transactionID int64) ([]core.Settlement, error) {
	return r.list(ctx, `transaction_id = ?`, transactionID)
}

func (r *settlementStore) ByTransactions(ctx context.Context, ids []int64) ([]core.Settlement, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	return r.list(ctx, `transaction_id IN (`+placeholders+`)`, args...)
}

func (r *settlementStore) ByUser(ctx context.Context, userID int64) ([]core.Settlement, error) {
	return r.list(ctx, `payer_id = ? OR payee_id = ?`, userID, userID)
}

func (r *settlementStore) ByStatus(ctx context.Context, status core.SettlementStatus) ([]core.Settlement, error) {
	return r.list(ctx, `status = ?`, status)
}

func (r *settlementStore) PendingDueBefore(ctx context.Context, now time.Time) ([]core.Settlement, error) {
	return r.list(ctx, `status = ? AND due_date != 0 AND due_date < ?`,
		core.SettlementPending, encTime(now))
}

func (r *settlementStore) NeedingReminder(ctx context.Context, horizon time.Time) ([]core.Settlement, error) {
	return r.list(ctx, `status = ? AND reminder_sent = 0 AND due_date != 0 AND due_date <= ?`,
		core.SettlementPending, encTime(horizon))
}

func (r *settlementStore) HasUnsettled(ctx context.Context, transactionID int64) (bool, error) {
	row := r.s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM settlements WHERE transaction_id = ? AND status IN (?, ?))`,
		transactionID, core.SettlementPending, core.SettlementOverdue)
	var exists int64
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("unsettled check: %w", err)
	}
	return exists == 1, nil
}
