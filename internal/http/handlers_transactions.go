package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

type transactionRequest struct {
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	GroupID     int64           `json:"group_id"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t := &core.Transaction{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        core.TransactionType(req.Type),
		Category:    core.TransactionCategory(req.Category),
		Date:        req.Date,
		GroupID:     req.GroupID,
	}
	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if created.GroupID != 0 {
		s.invalidateBalances(created.GroupID)
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t := &core.Transaction{
		ID:          id,
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        core.TransactionType(req.Type),
		Category:    core.TransactionCategory(req.Category),
		Date:        req.Date,
	}
	updated, err := s.transactions.Update(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

// handleUserTransactions lists a user's transactions, optionally filtered
// by ?type= or ?from=&to= (RFC 3339).
func (s *Server) handleUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	var ts []core.Transaction
	switch {
	case q.Get("type") != "":
		typ := core.TransactionType(strings.ToUpper(q.Get("type")))
		ts, err = s.transactions.ByUserAndType(r.Context(), userID, typ)
	case q.Get("from") != "" || q.Get("to") != "":
		var from, to time.Time
		if from, err = time.Parse(time.RFC3339, q.Get("from")); err != nil {
			writeError(w, r, &core.InvalidArgumentError{Reason: "invalid from parameter"})
			return
		}
		if to, err = time.Parse(time.RFC3339, q.Get("to")); err != nil {
			writeError(w, r, &core.InvalidArgumentError{Reason: "invalid to parameter"})
			return
		}
		ts, err = s.transactions.ByUserAndDateRange(r.Context(), userID, from, to)
	default:
		ts, err = s.transactions.ByUser(r.Context(), userID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(ts))
}

func (s *Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.settlements.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(st))
}

func (s *Server) handleSettlementStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Status           string `json:"status"`
		PaymentMethod    string `json:"payment_method"`
		PaymentReference string `json:"payment_reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status := core.SettlementStatus(strings.ToUpper(req.Status))
	switch status {
	case core.SettlementPending, core.SettlementCompleted, core.SettlementCancelled, core.SettlementOverdue:
	default:
		writeError(w, r, &core.InvalidArgumentError{Reason: "unknown settlement status " + req.Status})
		return
	}
	st, err := s.settlements.UpdateStatus(r.Context(), id, status, req.PaymentMethod, req.PaymentReference)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Balances derive from pending settlements; drop any cached copy.
	if t, terr := s.transactions.Get(r.Context(), st.TransactionID); terr == nil && t.GroupID != 0 {
		s.invalidateBalances(t.GroupID)
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(st))
}

func (s *Server) handleUserSettlements(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ss, err := s.settlements.ByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponses(ss))
}

func (s *Server) handleTransactionSettlements(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ss, err := s.settlements.ByTransaction(r.Context(), transactionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponses(ss))
}
