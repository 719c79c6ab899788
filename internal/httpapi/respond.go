package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// respondDomainError maps engine errors onto the wire taxonomy. Callers
// can rely on the codes to distinguish "nothing happened, retry" from
// "payment rejected" from "already processed".
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory):
		respondError(w, http.StatusConflict, "insufficient_inventory", err.Error())
	case errors.Is(err, domain.ErrSessionFinalized),
		errors.Is(err, domain.ErrDuplicateOrder):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidSignature):
		respondError(w, http.StatusUnauthorized, "invalid_signature", err.Error())
	case errors.Is(err, domain.ErrSessionExpired):
		respondError(w, http.StatusGone, "expired", err.Error())
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrTransient):
		respondError(w, http.StatusServiceUnavailable, "transient", "backing store busy, retry")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
