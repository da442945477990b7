package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	applog "github.com/OmKumar-08/advanced-budget-app/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps engine errors onto HTTP statuses: missing entities are
// 404, bad input 422, state conflicts 409, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound  *core.NotFoundError
		badSplit  *core.InvalidSplitError
		badArg    *core.InvalidArgumentError
		badState  *core.IllegalStateError
		loanState *core.InvalidLoanStateError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &badSplit), errors.As(err, &badArg),
		errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrEmptyDescription):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &badState), errors.As(err, &loanState):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &core.InvalidArgumentError{Reason: "malformed request body: " + err.Error()}
	}
	return nil
}

// pathID parses the named path wildcard as an int64.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, &core.InvalidArgumentError{Reason: "invalid " + name + " in path"}
	}
	return id, nil
}
