package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// LoanService runs the loan state machine. PENDING loans activate on
// approval or die on cancellation; ACTIVE loans shrink payment by payment
// until COMPLETED, or default when the due date passes.
type LoanService struct {
	store        storage.Store
	clock        core.Clock
	transactions *TransactionService
}

func NewLoanService(store storage.Store, clock core.Clock, transactions *TransactionService) *LoanService {
	return &LoanService{
		store:        store,
		clock:        clock,
		transactions: transactions,
	}
}

// Create registers a loan request in PENDING owing the full principal.
// The interest rate is carried on the loan for the parties to see; the
// engine never applies it to the balance.
func (s *LoanService) Create(ctx context.Context, loan *core.Loan) (*core.Loan, error) {
	if err := loan.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().Get(ctx, loan.BorrowerID); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().Get(ctx, loan.LenderID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	loan.Status = core.LoanPending
	loan.RemainingAmount = loan.PrincipalAmount
	loan.CreatedAt, loan.UpdatedAt = now, now
	if err := s.store.Loans().Save(ctx, loan); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created loan request",
		"loan_id", loan.ID,
		"borrower_id", loan.BorrowerID,
		"lender_id", loan.LenderID,
		"principal", loan.PrincipalAmount.StringFixed(2))
	return loan, nil
}

// Approve activates a PENDING loan and records the disbursement
// transaction for the borrower. The balance is untouched; it was set to
// the principal at creation.
func (s *LoanService) Approve(ctx context.Context, id int64) (*core.Loan, error) {
	var out *core.Loan
	err := s.store.InTx(ctx, func(st storage.Store) error {
		loan, err := st.Loans().Get(ctx, id)
		if err != nil {
			return err
		}
		if loan.Status != core.LoanPending {
			return &core.InvalidLoanStateError{LoanID: id, Status: loan.Status, Op: "approve"}
		}
		now := s.clock.Now()
		loan.Status = core.LoanActive
		loan.StartDate = now
		loan.UpdatedAt = now
		if err := st.Loans().Save(ctx, loan); err != nil {
			return err
		}

		disbursement := &core.Transaction{
			UserID:      loan.BorrowerID,
			Amount:      loan.PrincipalAmount,
			Description: "Loan disbursement #" + strconv.FormatInt(loan.ID, 10),
			Type:        core.TypeLoan,
			Category:    core.CategoryOther,
			Date:        now,
			LoanID:      loan.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := st.Transactions().Save(ctx, disbursement); err != nil {
			return err
		}
		out = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Approved loan",
		"loan_id", out.ID,
		"remaining", out.RemainingAmount.StringFixed(2))
	return out, nil
}

// RecordPayment applies a payment against an ACTIVE loan. The remaining
// amount goes down by the full payment; when it reaches zero or below the
// loan completes and keeps the signed remainder, so an overpayment stays
// visible as a negative balance. Payments against a non-ACTIVE loan are
// rejected.
func (s *LoanService) RecordPayment(ctx context.Context, id int64, amount decimal.Decimal) (*core.Loan, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}
	var out *core.Loan
	err := s.store.InTx(ctx, func(st storage.Store) error {
		loan, err := st.Loans().Get(ctx, id)
		if err != nil {
			return err
		}
		if loan.Status != core.LoanActive {
			return &core.InvalidLoanStateError{LoanID: id, Status: loan.Status, Op: "record payment"}
		}
		now := s.clock.Now()
		loan.RemainingAmount = loan.RemainingAmount.Sub(amount)
		if !loan.RemainingAmount.IsPositive() {
			loan.Status = core.LoanCompleted
		}
		loan.UpdatedAt = now
		if err := st.Loans().Save(ctx, loan); err != nil {
			return err
		}

		payment := &core.Transaction{
			UserID:      loan.BorrowerID,
			Amount:      amount,
			Description: "Loan payment #" + strconv.FormatInt(loan.ID, 10),
			Type:        core.TypeLoanPayment,
			Category:    core.CategoryLoanPayment,
			Date:        now,
			LoanID:      loan.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := st.Transactions().Save(ctx, payment); err != nil {
			return err
		}
		out = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Status == core.LoanCompleted {
		slog.InfoContext(ctx, "Loan fully repaid",
			"loan_id", out.ID,
			"remainder", out.RemainingAmount.StringFixed(2))
	}
	return out, nil
}

// Cancel withdraws a PENDING or ACTIVE loan. Settled, defaulted, and
// already-cancelled loans stay where they are.
func (s *LoanService) Cancel(ctx context.Context, id int64) (*core.Loan, error) {
	var out *core.Loan
	err := s.store.InTx(ctx, func(st storage.Store) error {
		loan, err := st.Loans().Get(ctx, id)
		if err != nil {
			return err
		}
		if loan.Status != core.LoanPending && loan.Status != core.LoanActive {
			return &core.InvalidLoanStateError{LoanID: id, Status: loan.Status, Op: "cancel"}
		}
		loan.Status = core.LoanCancelled
		loan.UpdatedAt = s.clock.Now()
		if err := st.Loans().Save(ctx, loan); err != nil {
			return err
		}
		out = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Age defaults ACTIVE loans whose due date has passed with a balance still
// owed. Loans are processed independently; rerunning is a no-op for loans
// already DEFAULTED.
func (s *LoanService) Age(ctx context.Context) (int, error) {
	now := s.clock.Now()
	overdue, err := s.store.Loans().ActiveOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	defaulted := 0
	for i := range overdue {
		loan := overdue[i]
		if loan.Status != core.LoanActive || !loan.RemainingAmount.IsPositive() {
			continue
		}
		loan.Status = core.LoanDefaulted
		loan.UpdatedAt = now
		if err := s.store.Loans().Save(ctx, &loan); err != nil {
			slog.ErrorContext(ctx, "Failed to default overdue loan",
				"loan_id", loan.ID,
				"error", err)
			continue
		}
		defaulted++
	}
	if defaulted > 0 {
		slog.InfoContext(ctx, "Defaulted overdue loans", "count", defaulted)
	}
	return defaulted, nil
}

func (s *LoanService) Get(ctx context.Context, id int64) (*core.Loan, error) {
	return s.store.Loans().Get(ctx, id)
}

func (s *LoanService) ByUser(ctx context.Context, userID int64) ([]core.Loan, error) {
	return s.store.Loans().ByUser(ctx, userID)
}

func (s *LoanService) Payments(ctx context.Context, loanID int64) ([]core.Transaction, error) {
	if _, err := s.store.Loans().Get(ctx, loanID); err != nil {
		return nil, err
	}
	return s.store.Loans().Payments(ctx, loanID)
}
