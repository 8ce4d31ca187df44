package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"social-ads/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps engine errors to status codes. Rule violations are
// expected and are not logged as errors; anything unrecognised is.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		writeMessage(w, status, "internal error, please try again")
		return
	}
	h.logger.Debug("request rejected", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrLedgerInvariant):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrWalletFrozen), errors.Is(err, domain.ErrAdvertiserSuspended):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPromoExpired), errors.Is(err, domain.ErrPromoLimitReached):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadyRedeemed),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrNothingApproved),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrBudgetExhausted),
		errors.Is(err, domain.ErrDuplicateEvent):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Field: "id", Reason: "not a uuid"}
	}
	return id, nil
}
