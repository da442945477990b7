package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

// Decimal fields marshal as quoted strings, so amounts never pass through
// floating point on the wire.

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func toUserResponse(u *core.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

type groupResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatorID   int64   `json:"creator_id"`
	MemberIDs   []int64 `json:"member_ids"`
}

func toGroupResponse(g *core.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatorID:   g.CreatorID,
		MemberIDs:   g.MemberIDs,
	}
}

type transactionResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	GroupID     int64           `json:"group_id,omitempty"`
	LoanID      int64           `json:"loan_id,omitempty"`
	Recurring   bool            `json:"recurring"`
	Settled     bool            `json:"settled"`
}

func toTransactionResponse(t *core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Description: t.Description,
		Type:        string(t.Type),
		Category:    string(t.Category),
		Date:        t.Date,
		GroupID:     t.GroupID,
		LoanID:      t.LoanID,
		Recurring:   t.Recurring,
		Settled:     t.Settled,
	}
}

func toTransactionResponses(ts []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(ts))
	for i := range ts {
		out[i] = toTransactionResponse(&ts[i])
	}
	return out
}

type settlementResponse struct {
	ID               int64           `json:"id"`
	TransactionID    int64           `json:"transaction_id"`
	PayerID          int64           `json:"payer_id"`
	PayeeID          int64           `json:"payee_id"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	SettlementDate   *time.Time      `json:"settlement_date,omitempty"`
	DueDate          time.Time       `json:"due_date"`
}

func toSettlementResponse(s *core.Settlement) settlementResponse {
	resp := settlementResponse{
		ID:               s.ID,
		TransactionID:    s.TransactionID,
		PayerID:          s.PayerID,
		PayeeID:          s.PayeeID,
		Amount:           s.Amount,
		Status:           string(s.Status),
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		DueDate:          s.DueDate,
	}
	if !s.SettlementDate.IsZero() {
		d := s.SettlementDate
		resp.SettlementDate = &d
	}
	return resp
}

func toSettlementResponses(ss []core.Settlement) []settlementResponse {
	out := make([]settlementResponse, len(ss))
	for i := range ss {
		out[i] = toSettlementResponse(&ss[i])
	}
	return out
}

type loanResponse struct {
	ID               int64           `json:"id"`
	BorrowerID       int64           `json:"borrower_id"`
	LenderID         int64           `json:"lender_id"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	DueDate          time.Time       `json:"due_date"`
	PaymentFrequency string          `json:"payment_frequency,omitempty"`
	Status           string          `json:"status"`
}

func toLoanResponse(l *core.Loan) loanResponse {
	resp := loanResponse{
		ID:               l.ID,
		BorrowerID:       l.BorrowerID,
		LenderID:         l.LenderID,
		PrincipalAmount:  l.PrincipalAmount,
		InterestRate:     l.InterestRate,
		RemainingAmount:  l.RemainingAmount,
		DueDate:          l.DueDate,
		PaymentFrequency: l.PaymentFrequency,
		Status:           string(l.Status),
	}
	if !l.StartDate.IsZero() {
		d := l.StartDate
		resp.StartDate = &d
	}
	return resp
}

type scheduleResponse struct {
	ID                     int64           `json:"id"`
	UserID                 int64           `json:"user_id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description,omitempty"`
	Amount                 decimal.Decimal `json:"amount"`
	Type                   string          `json:"type"`
	Category               string          `json:"category"`
	Frequency              string          `json:"frequency"`
	FrequencyInterval      int             `json:"frequency_interval"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                *time.Time      `json:"end_date,omitempty"`
	LastExecutionDate      *time.Time      `json:"last_execution_date,omitempty"`
	NextExecutionDate      time.Time       `json:"next_execution_date"`
	NotificationEnabled    bool            `json:"notification_enabled"`
	NotificationDaysBefore int             `json:"notification_days_before"`
	Active                 bool            `json:"active"`
}

func toScheduleResponse(s *core.RecurringSchedule) scheduleResponse {
	resp := scheduleResponse{
		ID:                     s.ID,
		UserID:                 s.UserID,
		Title:                  s.Title,
		Description:            s.Description,
		Amount:                 s.Amount,
		Type:                   string(s.Type),
		Category:               string(s.Category),
		Frequency:              string(s.Frequency),
		FrequencyInterval:      s.FrequencyInterval,
		StartDate:              s.StartDate,
		NextExecutionDate:      s.NextExecutionDate,
		NotificationEnabled:    s.NotificationEnabled,
		NotificationDaysBefore: s.NotificationDaysBefore,
		Active:                 s.Active,
	}
	if !s.EndDate.IsZero() {
		d := s.EndDate
		resp.EndDate = &d
	}
	if !s.LastExecutionDate.IsZero() {
		d := s.LastExecutionDate
		resp.LastExecutionDate = &d
	}
	return resp
}

type invoiceResponse struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	TransactionID int64           `json:"transaction_id,omitempty"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Description   string          `json:"description,omitempty"`
	PaymentTerms  string          `json:"payment_terms,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	AttachmentURL string          `json:"attachment_url,omitempty"`
}

func toInvoiceResponse(i *core.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:            i.ID,
		UserID:        i.UserID,
		TransactionID: i.TransactionID,
		IssueDate:     i.IssueDate,
		DueDate:       i.DueDate,
		Amount:        i.Amount,
		Status:        string(i.Status),
		Description:   i.Description,
		PaymentTerms:  i.PaymentTerms,
		PaymentMethod: i.PaymentMethod,
		AttachmentURL: i.AttachmentURL,
	}
	if !i.PaymentDate.IsZero() {
		d := i.PaymentDate
		resp.PaymentDate = &d
	}
	return resp
}

type investmentResponse struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	Name             string          `json:"name"`
	InvestedAmount   decimal.Decimal `json:"invested_amount"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	ReturnAmount     decimal.Decimal `json:"return_amount"`
	ReturnPercentage decimal.Decimal `json:"return_percentage"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	InvestmentDate   time.Time       `json:"investment_date"`
	MaturityDate     *time.Time      `json:"maturity_date,omitempty"`
	RiskLevel        string          `json:"risk_level,omitempty"`
}

func toInvestmentResponse(i *core.Investment) investmentResponse {
	resp := investmentResponse{
		ID:               i.ID,
		UserID:           i.UserID,
		Name:             i.Name,
		InvestedAmount:   i.InvestedAmount,
		CurrentValue:     i.CurrentValue,
		ReturnAmount:     i.ReturnAmount,
		ReturnPercentage: i.ReturnPercentage,
		Type:             string(i.Type),
		Status:           string(i.Status),
		InvestmentDate:   i.InvestmentDate,
		RiskLevel:        i.RiskLevel,
	}
	if !i.MaturityDate.IsZero() {
		d := i.MaturityDate
		resp.MaturityDate = &d
	}
	return resp
}
