package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	TransactionType     string
	TransactionCategory string
	SettlementStatus    string
	Frequency           string
	LoanStatus          string
	InvoiceStatus       string
	InvestmentType      string
	InvestmentStatus    string
)

const (
	TypeExpense     TransactionType = "EXPENSE"
	TypeIncome      TransactionType = "INCOME"
	TypeLoan        TransactionType = "LOAN"
	TypeInvestment  TransactionType = "INVESTMENT"
	TypeBillSplit   TransactionType = "BILL_SPLIT"
	TypeLoanPayment TransactionType = "LOAN_PAYMENT"
)

const (
	CategoryFood           TransactionCategory = "FOOD"
	CategoryTransportation TransactionCategory = "TRANSPORTATION"
	CategoryHousing        TransactionCategory = "HOUSING"
	CategoryUtilities      TransactionCategory = "UTILITIES"
	CategoryEntertainment  TransactionCategory = "ENTERTAINMENT"
	CategoryHealthcare     TransactionCategory = "HEALTHCARE"
	CategoryEducation      TransactionCategory = "EDUCATION"
	CategoryShopping       TransactionCategory = "SHOPPING"
	CategoryInvestment     TransactionCategory = "INVESTMENT"
	CategoryLoanPayment    TransactionCategory = "LOAN_PAYMENT"
	CategorySalary         TransactionCategory = "SALARY"
	CategoryOther          TransactionCategory = "OTHER"
)

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementCancelled SettlementStatus = "CANCELLED"
	SettlementOverdue   SettlementStatus = "OVERDUE"
)

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

const (
	LoanPending   LoanStatus = "PENDING"
	LoanActive    LoanStatus = "ACTIVE"
	LoanCompleted LoanStatus = "COMPLETED"
	LoanDefaulted LoanStatus = "DEFAULTED"
	LoanCancelled LoanStatus = "CANCELLED"
)

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

const (
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentSold      InvestmentStatus = "SOLD"
	InvestmentMatured   InvestmentStatus = "MATURED"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// User is the identity stub the ledger references. Authentication lives
// outside this module.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

// Group is a reusable participant list. The settlement engine only reads
// its member set; membership rules live in the group service.
type Group struct {
	ID          int64
	Name        string
	Description string
	CreatorID   int64
	MemberIDs   []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID int64) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Transaction is a single money movement owned by a user. Relationships to
// settlements, groups and loans are id references, never embedded objects.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Description string
	Type        TransactionType
	Category    TransactionCategory
	Date        time.Time
	GroupID     int64 // 0 when not group-scoped
	LoanID      int64 // 0 when not tied to a loan
	Recurring   bool
	Settled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Transaction) Validate() error {
	if t.UserID == 0 {
		return &InvalidArgumentError{Reason: "transaction requires an owner"}
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Type == "" || t.Category == "" {
		return &InvalidArgumentError{Reason: "transaction type and category are required"}
	}
	if t.Date.IsZero() {
		return &InvalidArgumentError{Reason: "transaction date is required"}
	}
	return nil
}

// Settlement is a one-directional obligation from payer to payee, tied to
// exactly one transaction. COMPLETED and CANCELLED are terminal.
type Settlement struct {
	ID               int64
	TransactionID    int64
	PayerID          int64
	PayeeID          int64
	Amount           decimal.Decimal
	Status           SettlementStatus
	PaymentMethod    string
	PaymentReference string
	SettlementDate   time.Time
	DueDate          time.Time
	ReminderSent     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the settlement reached a final status.
func (s *Settlement) Terminal() bool {
	return s.Status == SettlementCompleted || s.Status == SettlementCancelled
}

// Loan is a peer loan between two users. RemainingAmount only ever
// decreases while the loan is ACTIVE; interest is carried, not compounded.
type Loan struct {
	ID               int64
	BorrowerID       int64
	LenderID         int64
	PrincipalAmount  decimal.Decimal
	InterestRate     decimal.Decimal
	RemainingAmount  decimal.Decimal
	StartDate        time.Time
	DueDate          time.Time
	PaymentFrequency string // descriptive only
	Status           LoanStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (l *Loan) Validate() error {
	if l.BorrowerID == 0 || l.LenderID == 0 {
		return &InvalidArgumentError{Reason: "loan requires borrower and lender"}
	}
	if l.BorrowerID == l.LenderID {
		return &InvalidArgumentError{Reason: "borrower and lender must differ"}
	}
	if err := ValidateAmount(l.PrincipalAmount); err != nil {
		return err
	}
	if l.InterestRate.IsNegative() {
		return &InvalidArgumentError{Reason: "interest rate cannot be negative"}
	}
	if l.DueDate.IsZero() {
		return &InvalidArgumentError{Reason: "loan due date is required"}
	}
	return nil
}

// RecurringSchedule is a template that periodically materializes into real
// transactions. Execution dates are mutated only by the recurring engine.
type RecurringSchedule struct {
	ID                     int64
	UserID                 int64
	Title                  string
	Description            string
	Amount                 decimal.Decimal
	Type                   TransactionType
	Category               TransactionCategory
	Frequency              Frequency
	FrequencyInterval      int
	StartDate              time.Time
	EndDate                time.Time // zero when open-ended
	LastExecutionDate      time.Time
	NextExecutionDate      time.Time
	NotificationEnabled    bool
	NotificationDaysBefore int
	LastNotifiedFor        time.Time // occurrence already announced
	Active                 bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (r *RecurringSchedule) Validate() error {
	if r.UserID == 0 {
		return &InvalidArgumentError{Reason: "schedule requires an owner"}
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyDescription
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if r.Type == "" || r.Category == "" {
		return &InvalidArgumentError{Reason: "schedule type and category are required"}
	}
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return &InvalidArgumentError{Reason: "unknown frequency " + string(r.Frequency)}
	}
	if r.FrequencyInterval < 1 {
		return &InvalidArgumentError{Reason: "frequency interval must be at least 1"}
	}
	if r.StartDate.IsZero() {
		return &InvalidArgumentError{Reason: "schedule start date is required"}
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return &InvalidArgumentError{Reason: "end date precedes start date"}
	}
	return nil
}

// Invoice tracks a billed amount with its own pending/overdue lifecycle,
// optionally tied to a transaction.
type Invoice struct {
	ID               int64
	UserID           int64
	TransactionID    int64 // 0 when standalone
	IssueDate        time.Time
	DueDate          time.Time
	Amount           decimal.Decimal
	Status           InvoiceStatus
	Description      string
	PaymentTerms     string
	PaymentMethod    string
	PaymentDate      time.Time
	AttachmentURL    string
	ReminderSent     bool
	LastReminderDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the invoice reached a final status.
func (i *Invoice) Terminal() bool {
	return i.Status == InvoicePaid || i.Status == InvoiceCancelled
}

// Investment tracks an invested amount and its valuation over time.
type Investment struct {
	ID                int64
	UserID            int64
	Name              string
	InvestedAmount    decimal.Decimal
	CurrentValue      decimal.Decimal
	ReturnAmount      decimal.Decimal
	ReturnPercentage  decimal.Decimal
	Type              InvestmentType
	Status            InvestmentStatus
	InvestmentDate    time.Time
	MaturityDate      time.Time
	LastValuationDate time.Time
	Description       string
	RiskLevel         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
