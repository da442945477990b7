package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() *Transaction {
	return &Transaction{
		UserID:      1,
		Amount:      decimal.RequireFromString("10.00"),
		Description: "coffee",
		Type:        TypeExpense,
		Category:    CategoryFood,
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"no owner", func(tx *Transaction) { tx.UserID = 0 }},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }},
		{"missing type", func(tx *Transaction) { tx.Type = "" }},
		{"missing category", func(tx *Transaction) { tx.Category = "" }},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(tx)
			if err := tx.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoanValidate(t *testing.T) {
	valid := func() *Loan {
		return &Loan{
			BorrowerID:      1,
			LenderID:        2,
			PrincipalAmount: decimal.RequireFromString("100.00"),
			InterestRate:    decimal.RequireFromString("5"),
			DueDate:         time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid loan rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Loan)
	}{
		{"missing borrower", func(l *Loan) { l.BorrowerID = 0 }},
		{"self loan", func(l *Loan) { l.LenderID = l.BorrowerID }},
		{"zero principal", func(l *Loan) { l.PrincipalAmount = decimal.Zero }},
		{"negative rate", func(l *Loan) { l.InterestRate = decimal.RequireFromString("-1") }},
		{"no due date", func(l *Loan) { l.DueDate = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := valid()
			tc.mutate(l)
			if err := l.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRecurringScheduleValidate(t *testing.T) {
	valid := func() *RecurringSchedule {
		return &RecurringSchedule{
			UserID:            1,
			Title:             "rent",
			Amount:            decimal.RequireFromString("800.00"),
			Type:              TypeExpense,
			Category:          CategoryHousing,
			Frequency:         Monthly,
			FrequencyInterval: 1,
			StartDate:         time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RecurringSchedule)
	}{
		{"unknown frequency", func(s *RecurringSchedule) { s.Frequency = "HOURLY" }},
		{"zero interval", func(s *RecurringSchedule) { s.FrequencyInterval = 0 }},
		{"blank title", func(s *RecurringSchedule) { s.Title = " " }},
		{"no start date", func(s *RecurringSchedule) { s.StartDate = time.Time{} }},
		{"end before start", func(s *RecurringSchedule) { s.EndDate = s.StartDate.AddDate(0, 0, -1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []SettlementStatus{SettlementCompleted, SettlementCancelled} {
		if !(&Settlement{Status: status}).Terminal() {
			t.Errorf("settlement %s should be terminal", status)
		}
	}
	for _, status := range []SettlementStatus{SettlementPending, SettlementOverdue} {
		if (&Settlement{Status: status}).Terminal() {
			t.Errorf("settlement %s should not be terminal", status)
		}
	}
	if !(&Invoice{Status: InvoicePaid}).Terminal() || (&Invoice{Status: InvoiceOverdue}).Terminal() {
		t.Error("invoice terminal statuses wrong")
	}
}
