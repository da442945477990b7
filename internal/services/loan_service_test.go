package services

import (
	"context"
	"errors"
	"testing"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func seedLoan(t *testing.T, env *testEnv, borrowerID, lenderID int64, principal, rate string) *core.Loan {
	t.Helper()
	loan, err := env.loans.Create(context.Background(), &core.Loan{
		BorrowerID:      borrowerID,
		LenderID:        lenderID,
		PrincipalAmount: dec(principal),
		InterestRate:    dec(rate),
		DueDate:         testNow.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	return loan
}

func TestLoanCreate_StartsPendingOwingPrincipal(t *testing.T) {
	env := newTestEnv(testNow)
	bob := seedUser(t, env, "bob")
	alice := seedUser(t, env, "alice")

	loan := seedLoan(t, env, bob, alice, "1000.00", "10")
	if loan.Status != core.LoanPending {
		t.Errorf("status = %s, want PENDING", loan.Status)
	}
	if !loan.RemainingAmount.Equal(dec("1000.00")) {
		t.Errorf("remaining = %s, want principal 1000.00", loan.RemainingAmount)
	}
}

func TestLoanCreate_Rejections(t *testing.T) {
	env := newTestEnv(testNow)
	bob := seedUser(t, env, "bob")
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	var argErr *core.InvalidArgumentError
	if _, err := env.loans.Create(ctx, &core.Loan{
		BorrowerID:      bob,
		LenderID:        bob,
		PrincipalAmount: dec("100.00"),
		DueDate:         testNow.AddDate(0, 1, 0),
	}); !errors.As(err, &argErr) {
		t.Errorf("self-loan: err = %v, want InvalidArgumentError", err)
	}

	var notFound *core.NotFoundError
	if _, err := env.loans.Create(ctx, &core.Loan{
		BorrowerID:      bob,
		LenderID:        999,
		PrincipalAmount: dec("100.00"),
		DueDate:         testNow.AddDate(0, 1, 0),
	}); !errors.As(err, &notFound) {
		t.Errorf("unknown lender: err = %v, want NotFoundError", err)
	}

	if _, err := env.loans.Create(ctx, &core.Loan{
		BorrowerID:      bob,
		LenderID:        alice,
		PrincipalAmount: dec("100.00"),
		InterestRate:    dec("-1"),
		DueDate:         testNow.AddDate(0, 1, 0),
	}); !errors.As(err, &argErr) {
		t.Errorf("negative rate: err = %v, want InvalidArgumentError", err)
	}
}

func TestLoanApprove_ActivatesAndDisburses(t *testing.T) {
	env := newTestEnv(testNow)
	bob := seedUser(t, env, "bob")
	alice := seedUser(t, env, "alice")
	loan := seedLoan(t, env, bob, alice, "1000.00", "10")
	ctx := context.Background()

	approved, err := env.loans.Approve(ctx, loan.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != core.LoanActive {
		t.Errorf("status = %s, want ACTIVE", approved.Status)
	}
	// The interest rate rides along for the parties; approval never
	// applies it to the balance.
	if !approved.RemainingAmount.Equal(dec("1000.00")) {
		t.Errorf("remaining = %s, want untouched principal 1000.00", approved.RemainingAmount)
	}
	if !approved.StartDate.Equal(testNow) {
		t.Errorf("start date = %v, want %v", approved.StartDate, testNow)
	}

	disbursed, err := env.transactions.ByUserAndType(ctx, bob, core.TypeLoan)
	if err != nil {
		t.Fatalf("ByUserAndType: %v", err)
	}
	if len(disbursed) != 1 || !disbursed[0].Amount.Equal(dec("1000.00")) {
		t.Fatalf("disbursement transactions = %+v, want one of 1000.00", disbursed)
	}

	var stateErr *core.InvalidLoanStateError
	if _, err := env.loans.Approve(ctx, loan.ID); !errors.As(err, &stateErr) {
		t.Errorf("re-approve: err = %v, want InvalidLoanStateError", err)
	}
}

func TestLoanPayment_CompletesAndKeepsOverpayment(t *testing.T) {
	env := newTestEnv(testNow)
	bob := seedUser(t, env, "bob")
	alice := seedUser(t, env, "alice")
	loan := seedLoan(t, env, bob, alice, "1000.00", "0")
	ctx := context.Background()

	var stateErr *core.InvalidLoanStateError
	if _, err := env.loans.RecordPayment(ctx, loan.ID, dec("10.00")); !errors.As(err, &stateErr) {
		t.Fatalf("payment on PENDING: err = %v, want InvalidLoanStateError", err)
	}

	if _, err := env.loans.Approve(ctx, loan.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	partial, err := env.loans.RecordPayment(ctx, loan.ID, dec("600.00"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if partial.Status != core.LoanActive || !partial.RemainingAmount.Equal(dec("400.00")) {
		t.Errorf("after partial payment: status = %s remaining = %s, want ACTIVE 400.00", partial.Status, partial.RemainingAmount)
	}

	final, err := env.loans.RecordPayment(ctx, loan.ID, dec("500.00"))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if final.Status != core.LoanCompleted {
		t.Errorf("status = %s, want COMPLETED", final.Status)
	}
	// The overpayment stays visible as a negative balance.
	if !final.RemainingAmount.Equal(dec("-100.00")) {
		t.Errorf("remaining = %s, want -100.00", final.RemainingAmount)
	}

	if _, err := env.loans.RecordPayment(ctx, loan.ID, dec("1.00")); !errors.As(err, &stateErr) {
		t.Errorf("payment on COMPLETED: err = %v, want InvalidLoanStateError", err)
	}

	payments, err := env.loans.Payments(ctx, loan.ID)
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("got %d payment transactions, want 2", len(payments))
	}
	for _, p := range payments {
		if p.Type != core.TypeLoanPayment || p.LoanID != loan.ID {
			t.Errorf("payment transaction %+v not tied to loan", p)
		}
	}
}

func TestLoanCancel_PendingAndActiveOnly(t *testing.T) {
	env := newTestEnv(testNow)
	bob := seedUser(t, env, "bob")
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	loan := seedLoan(t, env, bob, alice, "50.00", "0")
	cancelled, err := env.loans.Cancel(ctx, loan.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != core.LoanCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	// A lender can pull an active loan too.
	active := seedLoan(t, env, bob, alice, "50.00", "0")
	if _, err := env.loans.Approve(ctx, active.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if cancelled, err = env.loans.Cancel(ctx, active.ID); err != nil || cancelled.Status != core.LoanCancelled {
		t.Errorf("cancel ACTIVE = (%v, %v), want CANCELLED", cancelled, err)
	}

	// Terminal loans stay put.
	var stateErr *core.InvalidLoanStateError
	if _, err := env.loans.Cancel(ctx, active.ID); !errors.As(err, &stateErr) {
		t.Errorf("re-cancel: err = %v, want InvalidLoanStateError", err)
	}

	repaid := seedLoan(t, env, bob, alice, "20.00", "0")
	if _, err := env.loans.Approve(ctx, repaid.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := env.loans.RecordPayment(ctx, repaid.ID, dec("20.00")); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := env.loans.Cancel(ctx, repaid.ID); !errors.As(err, &stateErr) {
		t.Errorf("cancel COMPLETED: err = %v, want InvalidLoanStateError", err)
	}
}

func TestLoanAge_DefaultsOverdueWithBalance(t *testing.T) {
	env := newTestEnv(testNow)
	bob := seedUser(t, env, "bob")
	alice := seedUser(t, env, "alice")
	ctx := context.Background()

	loan := seedLoan(t, env, bob, alice, "100.00", "0")
	if _, err := env.loans.Approve(ctx, loan.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// Repaid loan past its due date must not default.
	repaid := seedLoan(t, env, bob, alice, "20.00", "0")
	if _, err := env.loans.Approve(ctx, repaid.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := env.loans.RecordPayment(ctx, repaid.ID, dec("20.00")); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	later := env.at(testNow.AddDate(0, 2, 0))
	n, err := later.loans.Age(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Age = (%d, %v), want (1, nil)", n, err)
	}
	defaulted, _ := later.loans.Get(ctx, loan.ID)
	if defaulted.Status != core.LoanDefaulted {
		t.Errorf("status = %s, want DEFAULTED", defaulted.Status)
	}

	if n, err := later.loans.Age(ctx); err != nil || n != 0 {
		t.Errorf("rerun Age = (%d, %v), want (0, nil)", n, err)
	}
}
