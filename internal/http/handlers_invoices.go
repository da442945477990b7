package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

type invoiceRequest struct {
	UserID        int64           `json:"user_id"`
	TransactionID int64           `json:"transaction_id"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentTerms  string          `json:"payment_terms"`
	AttachmentURL string          `json:"attachment_url"`
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv := &core.Invoice{
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentTerms:  req.PaymentTerms,
		AttachmentURL: req.AttachmentURL,
	}
	created, err := s.invoices.Create(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(created))
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.invoices.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv := &core.Invoice{
		ID:            id,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		Description:   req.Description,
		PaymentTerms:  req.PaymentTerms,
		AttachmentURL: req.AttachmentURL,
	}
	updated, err := s.invoices.Update(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(updated))
}

func (s *Server) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.invoices.MarkPaid(r.Context(), id, req.PaymentMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (s *Server) handleCancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.invoices.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID         int64           `json:"user_id"`
		Name           string          `json:"name"`
		InvestedAmount decimal.Decimal `json:"invested_amount"`
		Type           string          `json:"type"`
		InvestmentDate time.Time       `json:"investment_date"`
		MaturityDate   time.Time       `json:"maturity_date"`
		Description    string          `json:"description"`
		RiskLevel      string          `json:"risk_level"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv := &core.Investment{
		UserID:         req.UserID,
		Name:           req.Name,
		InvestedAmount: req.InvestedAmount,
		Type:           core.InvestmentType(strings.ToUpper(req.Type)),
		InvestmentDate: req.InvestmentDate,
		MaturityDate:   req.MaturityDate,
		Description:    req.Description,
		RiskLevel:      req.RiskLevel,
	}
	created, err := s.investments.Create(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentResponse(created))
}

func (s *Server) handleGetInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.investments.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

func (s *Server) handleInvestmentValuation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		CurrentValue decimal.Decimal `json:"current_value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.investments.UpdateValuation(r.Context(), id, req.CurrentValue)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

func (s *Server) handleCloseInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.investments.Close(r.Context(), id, core.InvestmentStatus(strings.ToUpper(req.Status)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

func (s *Server) handleUserInvestments(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	investments, err := s.investments.ByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]investmentResponse, len(investments))
	for i := range investments {
		out[i] = toInvestmentResponse(&investments[i])
	}
	writeJSON(w, http.StatusOK, out)
}
