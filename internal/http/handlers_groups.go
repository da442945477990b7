package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.users.Create(r.Context(), &core.User{Username: req.Username, Email: req.Email})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		CreatorID   int64  `json:"creator_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.groups.Create(r.Context(), &core.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   req.CreatorID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.groups.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.groups.Update(r.Context(), &core.Group{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.groups.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBalances(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.groups.AddMember(r.Context(), groupID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.groups.RemoveMember(r.Context(), groupID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balanceEntry struct {
	UserID  int64           `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := strconv.FormatInt(groupID, 10)
	balances, cached := s.balanceCache.Get(key)
	if !cached {
		balances, err = s.settlements.ComputeGroupBalances(r.Context(), groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.balanceCache.Set(key, balances)
	}

	out := make([]balanceEntry, 0, len(balances))
	for userID, balance := range balances {
		out = append(out, balanceEntry{UserID: userID, Balance: balance})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) invalidateBalances(groupID int64) {
	s.balanceCache.Delete(strconv.FormatInt(groupID, 10))
}

func (s *Server) handleGroupExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		UserID      int64                     `json:"user_id"`
		Amount      decimal.Decimal           `json:"amount"`
		Description string                    `json:"description"`
		Category    string                    `json:"category"`
		Date        time.Time                 `json:"date"`
		Weights     map[int64]decimal.Decimal `json:"weights"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t := &core.Transaction{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    core.TransactionCategory(req.Category),
		Date:        req.Date,
		GroupID:     groupID,
	}
	created, err := s.settlements.RecordGroupExpense(r.Context(), t, req.Weights)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateBalances(groupID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}
