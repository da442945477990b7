package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

const invoiceCols = `id, user_id, transaction_id, issue_date, due_date, amount, status,
	description, payment_terms, payment_method, payment_date, attachment_url,
	reminder_sent, last_reminder_date, created_at, updated_at`

type invoiceStore struct{ s *Store }

func scanInvoice(row interface{ Scan(...any) error }) (*core.Invoice, error) {
	var inv core.Invoice
	var amount string
	var issue, due, payment, lastReminder, created, updated, reminder int64
	err := row.Scan(&inv.ID, &inv.UserID, &inv.TransactionID, &issue, &due, &amount, &inv.Status,
		&inv.Description, &inv.PaymentTerms, &inv.PaymentMethod, &payment, &inv.AttachmentURL,
		&reminder, &lastReminder, &created, &updated)
	if err != nil {
		return nil, err
	}
	if inv.Amount, err = decDec(amount); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	inv.IssueDate, inv.DueDate = decTime(issue), decTime(due)
	inv.PaymentDate, inv.LastReminderDate = decTime(payment), decTime(lastReminder)
	inv.ReminderSent = reminder == 1
	inv.CreatedAt, inv.UpdatedAt = decTime(created), decTime(updated)
	return &inv, nil
}

func (r *invoiceStore) Get(ctx context.Context, id int64) (*core.Invoice, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "invoice", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *invoiceStore) Save(ctx context.Context, inv *core.Invoice) error {
	if inv.ID == 0 {
		res, err := r.s.q.ExecContext(ctx,
			`INSERT INTO invoices (user_id, transaction_id, issue_date, due_date, amount, status,
			   description, payment_terms, payment_method, payment_date, attachment_url,
			   reminder_sent, last_reminder_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.UserID, inv.TransactionID, encTime(inv.IssueDate), encTime(inv.DueDate),
			encDec(inv.Amount), inv.Status, inv.Description, inv.PaymentTerms, inv.PaymentMethod,
			encTime(inv.PaymentDate), inv.AttachmentURL, encBool(inv.ReminderSent),
			encTime(inv.LastReminderDate), encTime(inv.CreatedAt), encTime(inv.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		inv.ID, err = res.LastInsertId()
		return err
	}
	_, err := r.s.q.ExecContext(ctx,
		`UPDATE invoices SET due_date = ?, status = ?, description = ?, payment_terms = ?,
		   payment_method = ?, payment_date = ?, attachment_url = ?, reminder_sent = ?,
		   last_reminder_date = ?, updated_at = ?
		 WHERE id = ?`,
		encTime(inv.DueDate), inv.Status, inv.Description, inv.PaymentTerms,
		inv.PaymentMethod, encTime(inv.PaymentDate), inv.AttachmentURL, encBool(inv.ReminderSent),
		encTime(inv.LastReminderDate), encTime(inv.UpdatedAt), inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func (r *invoiceStore) list(ctx context.Context, where string, args ...any) ([]core.Invoice, error) {
	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var out []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *invoiceStore) ByTransaction(ctx context.Context, transactionID int64) ([]core.Invoice, error) {
	return r.list(ctx, `transaction_id = ?`, transactionID)
}

func (r *invoiceStore) ByStatus(ctx context.Context, status core.InvoiceStatus) ([]core.Invoice, error) {
	return r.list(ctx, `status = ?`, status)
}

func (r *invoiceStore) PendingDueBefore(ctx context.Context, now time.Time) ([]core.Invoice, error) {
	return r.list(ctx, `status = ? AND due_date != 0 AND due_date < ?`,
		core.InvoicePending, encTime(now))
}

func (r *invoiceStore) NeedingReminder(ctx context.Context, horizon time.Time) ([]core.Invoice, error) {
	return r.list(ctx, `status = ? AND reminder_sent = 0 AND due_date != 0 AND due_date <= ?`,
		core.InvoicePending, encTime(horizon))
}

// --- investments ---

const investmentCols = `id, user_id, name, invested_amount, current_value, return_amount,
	return_percentage, type, status, investment_date, maturity_date, last_valuation_date,
	description, risk_level, created_at, updated_at`

type investmentStore struct{ s *Store }

func scanInvestment(row interface{ Scan(...any) error }) (*core.Investment, error) {
	var inv core.Investment
	var invested, current, retAmount, retPct string
	var date, maturity, valuation, created, updated int64
	err := row.Scan(&inv.ID, &inv.UserID, &inv.Name, &invested, &current, &retAmount,
		&retPct, &inv.Type, &inv.Status, &date, &maturity, &valuation,
		&inv.Description, &inv.RiskLevel, &created, &updated)
	if err != nil {
		return nil, err
	}
	if inv.InvestedAmount, err = decDec(invested); err != nil {
		return nil, fmt.Errorf("decode invested: %w", err)
	}
	if inv.CurrentValue, err = decDec(current); err != nil {
		return nil, fmt.Errorf("decode current value: %w", err)
	}
	if inv.ReturnAmount, err = decDec(retAmount); err != nil {
		return nil, fmt.Errorf("decode return amount: %w", err)
	}
	if inv.ReturnPercentage, err = decDec(retPct); err != nil {
		return nil, fmt.Errorf("decode return percentage: %w", err)
	}
	inv.InvestmentDate, inv.MaturityDate = decTime(date), decTime(maturity)
	inv.LastValuationDate = decTime(valuation)
	inv.CreatedAt, inv.UpdatedAt = decTime(created), decTime(updated)
	return &inv, nil
}

func (r *investmentStore) Get(ctx context.Context, id int64) (*core.Investment, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+investmentCols+` FROM investments WHERE id = ?`, id)
	inv, err := scanInvestment(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "investment", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get investment: %w", err)
	}
	return inv, nil
}

func (r *investmentStore) Save(ctx context.Context, inv *core.Investment) error {
	if inv.ID == 0 {
		res, err := r.s.q.ExecContext(ctx,
			`INSERT INTO investments (user_id, name, invested_amount, current_value, return_amount,
			   return_percentage, type, status, investment_date, maturity_date, last_valuation_date,
			   description, risk_level, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.UserID, inv.Name, encDec(inv.InvestedAmount), encDec(inv.CurrentValue),
			encDec(inv.ReturnAmount), encDec(inv.ReturnPercentage), inv.Type, inv.Status,
			encTime(inv.InvestmentDate), encTime(inv.MaturityDate), encTime(inv.LastValuationDate),
			inv.Description, inv.RiskLevel, encTime(inv.CreatedAt), encTime(inv.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert investment: %w", err)
		}
		inv.ID, err = res.LastInsertId()
		return err
	}
	_, err := r.s.q.ExecContext(ctx,
		`UPDATE investments SET name = ?, current_value = ?, return_amount = ?,
		   return_percentage = ?, type = ?, status = ?, maturity_date = ?,
		   last_valuation_date = ?, description = ?, risk_level = ?, updated_at = ?
		 WHERE id = ?`,
		inv.Name, encDec(inv.CurrentValue), encDec(inv.ReturnAmount),
		encDec(inv.ReturnPercentage), inv.Type, inv.Status, encTime(inv.MaturityDate),
		encTime(inv.LastValuationDate), inv.Description, inv.RiskLevel, encTime(inv.UpdatedAt),
		inv.ID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return nil
}

func (r *investmentStore) ByUser(ctx context.Context, userID int64) ([]core.Investment, error) {
	return r.list(ctx, `user_id = ?`, userID)
}

func (r *investmentStore) ActiveMatured(ctx context.Context, now time.Time) ([]core.Investment, error) {
	return r.list(ctx, `status = ? AND maturity_date != 0 AND maturity_date < ?`,
		core.InvestmentActive, encTime(now))
}

func (r *investmentStore) list(ctx context.Context, where string, args ...any) ([]core.Investment, error) {
	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+investmentCols+` FROM investments WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()
	var out []core.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}
