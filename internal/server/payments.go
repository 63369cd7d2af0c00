package server

import (
	"io"
	"net/http"

	"failmarket/pkg/types"
)

const maxWebhookBodyBytes = 65536

func (s *Service) handleCreateTopup(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input types.TopupInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	intent, err := s.paymentsSvc.CreateTopupIntent(r.Context(), user.UserID, input.Amount)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "top-up intent created", intent)
}

func (s *Service) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read webhook body")
		return
	}

	err = s.paymentsSvc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
