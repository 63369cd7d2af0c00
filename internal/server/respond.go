package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"failmarket/pkg/types"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Service) respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successEnvelope{
		Success: true,
		Code:    status,
		Message: message,
		Data:    data,
	}); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorEnvelope{
		Success: false,
		Code:    status,
		Message: message,
	}); err != nil {
		s.logger.WithError(err).Error("failed to encode error response")
	}
}

// respondDomainError maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a fault: logged, surfaced as a bare 500.
func (s *Service) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrProjectNotFound),
		errors.Is(err, types.ErrCategoryNotFound),
		errors.Is(err, types.ErrHelpfulNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrAlreadyMarked),
		errors.Is(err, types.ErrAlreadyPurchased),
		errors.Is(err, types.ErrDuplicateCategory):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, types.ErrInsufficientFunds):
		s.respondError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, types.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	default:
		s.logger.WithError(err).Error("unexpected error")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", types.ErrValidation)
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, types.ErrValidation)
	}
	return id, nil
}
