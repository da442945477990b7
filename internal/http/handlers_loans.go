package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BorrowerID       int64           `json:"borrower_id"`
		LenderID         int64           `json:"lender_id"`
		PrincipalAmount  decimal.Decimal `json:"principal_amount"`
		InterestRate     decimal.Decimal `json:"interest_rate"`
		DueDate          time.Time       `json:"due_date"`
		PaymentFrequency string          `json:"payment_frequency"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	loan := &core.Loan{
		BorrowerID:       req.BorrowerID,
		LenderID:         req.LenderID,
		PrincipalAmount:  req.PrincipalAmount,
		InterestRate:     req.InterestRate,
		DueDate:          req.DueDate,
		PaymentFrequency: req.PaymentFrequency,
	}
	created, err := s.loans.Create(r.Context(), loan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanResponse(created))
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) handleApproveLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Approve(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) handleLoanPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.RecordPayment(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) handleCancelLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) handleLoanPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.loans.Payments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(payments))
}

func (s *Server) handleUserLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loans, err := s.loans.ByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]loanResponse, len(loans))
	for i := range loans {
		out[i] = toLoanResponse(&loans[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.recurring.Create(r.Context(), req.toSchedule(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(created))
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	schedule, err := s.recurring.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(schedule))
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.recurring.Update(r.Context(), req.toSchedule(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(updated))
}

func (s *Server) handleUserSchedules(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	schedules, err := s.recurring.ByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]scheduleResponse, len(schedules))
	for i := range schedules {
		out[i] = toScheduleResponse(&schedules[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type scheduleRequest struct {
	UserID                 int64           `json:"user_id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description"`
	Amount                 decimal.Decimal `json:"amount"`
	Type                   string          `json:"type"`
	Category               string          `json:"category"`
	Frequency              string          `json:"frequency"`
	FrequencyInterval      int             `json:"frequency_interval"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                time.Time       `json:"end_date"`
	NotificationEnabled    bool            `json:"notification_enabled"`
	NotificationDaysBefore int             `json:"notification_days_before"`
	Active                 bool            `json:"active"`
}

func (req scheduleRequest) toSchedule(id int64) *core.RecurringSchedule {
	interval := req.FrequencyInterval
	if interval == 0 {
		interval = 1
	}
	return &core.RecurringSchedule{
		ID:                     id,
		UserID:                 req.UserID,
		Title:                  req.Title,
		Description:            req.Description,
		Amount:                 req.Amount,
		Type:                   core.TransactionType(strings.ToUpper(req.Type)),
		Category:               core.TransactionCategory(strings.ToUpper(req.Category)),
		Frequency:              core.Frequency(strings.ToUpper(req.Frequency)),
		FrequencyInterval:      interval,
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		NotificationEnabled:    req.NotificationEnabled,
		NotificationDaysBefore: req.NotificationDaysBefore,
		Active:                 req.Active,
	}
}
