package http

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int, errs []ValidationError) {
	respondJSON(w, status, ErrorResponse{Error: message, Errors: errs})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrUnknownIngredient),
		errors.Is(err, domain.ErrUnknownPlate),
		errors.Is(err, domain.ErrUnknownOwner),
		errors.Is(err, domain.ErrTotalsMismatch),
		errors.Is(err, domain.ErrAmountMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the mapped status. Internal errors are logged and
// hidden behind a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(action, "Request failed", chimw.GetReqID(r.Context()), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}, err)
		respondError(w, "Internal server error", status, nil)
		return
	}
	respondError(w, err.Error(), status, nil)
}
