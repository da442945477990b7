package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

const loanCols = `id, borrower_id, lender_id, principal_amount, interest_rate,
	remaining_amount, start_date, due_date, payment_frequency, status, created_at, updated_at`

type loanStore struct{ s *Store }

func scanLoan(row interface{ Scan(...any) error }) (*core.Loan, error) {
	var l core.Loan
	var principal, rate, remaining string
	var start, due, created, updated int64
	err := row.Scan(&l.ID, &l.BorrowerID, &l.LenderID, &principal, &rate,
		&remaining, &start, &due, &l.PaymentFrequency, &l.Status, &created, &updated)
	if err != nil {
		return nil, err
	}
	if l.PrincipalAmount, err = decDec(principal); err != nil {
		return nil, fmt.Errorf("decode principal: %w", err)
	}
	if l.InterestRate, err = decDec(rate); err != nil {
		return nil, fmt.Errorf("decode rate: %w", err)
	}
	if l.RemainingAmount, err = decDec(remaining); err != nil {
		return nil, fmt.Errorf("decode remaining: %w", err)
	}
	l.StartDate, l.DueDate = decTime(start), decTime(due)
	l.CreatedAt, l.UpdatedAt = decTime(created), decTime(updated)
	return &l, nil
}

func (r *loanStore) Get(ctx context.Context, id int64) (*core.Loan, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+loanCols+` FROM loans WHERE id = ?`, id)
	l, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "loan", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return l, nil
}

func (r *loanStore) Save(ctx context.Context, l *core.Loan) error {
	if l.ID == 0 {
		res, err := r.s.q.ExecContext(ctx,
			`INSERT INTO loans (borrower_id, lender_id, principal_amount, interest_rate,
			   remaining_amount, start_date, due_date, payment_frequency, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.BorrowerID, l.LenderID, encDec(l.PrincipalAmount), encDec(l.InterestRate),
			encDec(l.RemainingAmount), encTime(l.StartDate), encTime(l.DueDate),
			l.PaymentFrequency, l.Status, encTime(l.CreatedAt), encTime(l.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}
		l.ID, err = res.LastInsertId()
		return err
	}
	_, err := r.s.q.ExecContext(ctx,
		`UPDATE loans SET remaining_amount = ?, status = ?, payment_frequency = ?,
		   due_date = ?, updated_at = ?
		 WHERE id = ?`,
		encDec(l.RemainingAmount), l.Status, l.PaymentFrequency,
		encTime(l.DueDate), encTime(l.UpdatedAt), l.ID)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	return nil
}

func (r *loanStore) list(ctx context.Context, where string, args ...any) ([]core.Loan, error) {
	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+loanCols+` FROM loans WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()
	var out []core.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *loanStore) ByUser(ctx context.Context, userID int64) ([]core.Loan, error) {
	return r.list(ctx, `borrower_id = ? OR lender_id = ?`, userID, userID)
}

func (r *loanStore) ActiveOverdue(ctx context.Context, now time.Time) ([]core.Loan, error) {
	return r.list(ctx, `status = ? AND due_date != 0 AND due_date < ?`,
		core.LoanActive, encTime(now))
}

func (r *loanStore) Payments(ctx context.Context, loanID int64) ([]core.Transaction, error) {
	return (&transactionStore{r.s}).list(ctx, `loan_id = ? AND type = ?`,
		loanID, core.TypeLoanPayment)
}

// --- recurring schedules ---

const scheduleCols = `id, user_id, title, description, amount, type, category,
	frequency, frequency_interval, start_date, end_date, last_execution_date,
	next_execution_date, notification_enabled, notification_days_before,
	last_notified_for, is_active, created_at, updated_at`

type scheduleStore struct{ s *Store }

func scanSchedule(row interface{ Scan(...any) error }) (*core.RecurringSchedule, error) {
	var sc core.RecurringSchedule
	var amount string
	var start, end, last, next, notified, created, updated int64
	var enabled, active int64
	err := row.Scan(&sc.ID, &sc.UserID, &sc.Title, &sc.Description, &amount, &sc.Type, &sc.Category,
		&sc.Frequency, &sc.FrequencyInterval, &start, &end, &last,
		&next, &enabled, &sc.NotificationDaysBefore,
		&notified, &active, &created, &updated)
	if err != nil {
		return nil, err
	}
	if sc.Amount, err = decDec(amount); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	sc.StartDate, sc.EndDate = decTime(start), decTime(end)
	sc.LastExecutionDate, sc.NextExecutionDate = decTime(last), decTime(next)
	sc.LastNotifiedFor = decTime(notified)
	sc.NotificationEnabled = enabled == 1
	sc.Active = active == 1
	sc.CreatedAt, sc.UpdatedAt = decTime(created), decTime(updated)
	return &sc, nil
}

func (r *scheduleStore) Get(ctx context.Context, id int64) (*core.RecurringSchedule, error) {
	row := r.s.q.QueryRowContext(ctx,
		`SELECT `+scheduleCols+` FROM recurring_schedules WHERE id = ?`, id)
	sc, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "recurring schedule", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return sc, nil
}

func (r *scheduleStore) Save(ctx context.Context, sc *core.RecurringSchedule) error {
	if sc.ID == 0 {
		res, err := r.s.q.ExecContext(ctx,
			`INSERT INTO recurring_schedules (user_id, title, description, amount, type, category,
			   frequency, frequency_interval, start_date, end_date, last_execution_date,
			   next_execution_date, notification_enabled, notification_days_before,
			   last_notified_for, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sc.UserID, sc.Title, sc.Description, encDec(sc.Amount), sc.Type, sc.Category,
			sc.Frequency, sc.FrequencyInterval, encTime(sc.StartDate), encTime(sc.EndDate),
			encTime(sc.LastExecutionDate), encTime(sc.NextExecutionDate),
			encBool(sc.NotificationEnabled), sc.NotificationDaysBefore,
			encTime(sc.LastNotifiedFor), encBool(sc.Active), encTime(sc.CreatedAt), encTime(sc.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
		sc.ID, err = res.LastInsertId()
		return err
	}
	_, err := r.s.q.ExecContext(ctx,
		`UPDATE recurring_schedules SET title = ?, description = ?, amount = ?, type = ?,
		   category = ?, frequency = ?, frequency_interval = ?, end_date = ?,
		   last_execution_date = ?, next_execution_date = ?, notification_enabled = ?,
		   notification_days_before = ?, last_notified_for = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		sc.Title, sc.Description, encDec(sc.Amount), sc.Type,
		sc.Category, sc.Frequency, sc.FrequencyInterval, encTime(sc.EndDate),
		encTime(sc.LastExecutionDate), encTime(sc.NextExecutionDate), encBool(sc.NotificationEnabled),
		sc.NotificationDaysBefore, encTime(sc.LastNotifiedFor), encBool(sc.Active), encTime(sc.UpdatedAt),
		sc.ID)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

func (r *scheduleStore) list(ctx context.Context, where string, args ...any) ([]core.RecurringSchedule, error) {
	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+scheduleCols+` FROM recurring_schedules WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()
	var out []core.RecurringSchedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

func (r *scheduleStore) ByUser(ctx context.Context, userID int64) ([]core.RecurringSchedule, error) {
	return r.list(ctx, `user_id = ?`, userID)
}

func (r *scheduleStore) ActiveDue(ctx context.Context, now time.Time) ([]core.RecurringSchedule, error) {
	return r.list(ctx, `is_active = 1 AND next_execution_date != 0 AND next_execution_date <= ?`,
		encTime(now))
}

func (r *scheduleStore) ActiveNotifiable(ctx context.Context) ([]core.RecurringSchedule, error) {
	return r.list(ctx, `is_active = 1 AND notification_enabled = 1`)
}
