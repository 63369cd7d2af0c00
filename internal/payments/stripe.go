// Package payments funds user balances through Stripe. A top-up creates a
// PaymentIntent; the webhook credits the balance once Stripe confirms the
// payment, idempotently per intent.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"failmarket/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/webhook"
)

type TopupStore interface {
	RecordTopup(ctx context.Context, userID, amount int64, paymentIntent string) (bool, error)
}

// TopupIntent is returned to the client, which confirms the payment with the
// client secret through Stripe.js.
type TopupIntent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
}

type Service struct {
	logger        *logrus.Logger
	topups        TopupStore
	webhookSecret string
}

func NewService(logger *logrus.Logger, topups TopupStore, secretKey, webhookSecret string) *Service {
	stripe.Key = secretKey

	return &Service{
		logger:        logger,
		topups:        topups,
		webhookSecret: webhookSecret,
	}
}

func (s *Service) CreateTopupIntent(ctx context.Context, userID, amount int64) (*TopupIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("top-up amount must be positive: %w", types.ErrValidation)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyKRW)),
		Metadata: map[string]string{
			"user_id": strconv.FormatInt(userID, 10),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount,
		"intent_id": intent.ID,
	}).Info("top-up intent created")

	return &TopupIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
	}, nil
}

// HandleWebhook verifies the Stripe signature and credits the balance on
// payment_intent.succeeded. Replayed deliveries are no-ops thanks to the
// unique intent id in the top-up ledger.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("stripe signature verification failed: %w", types.ErrValidation)
	}

	if event.Type != "payment_intent.succeeded" {
		s.logger.WithField("event_type", event.Type).Debug("ignoring stripe event")
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}

	userID, err := strconv.ParseInt(intent.Metadata["user_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("payment intent %s has no valid user_id metadata: %w", intent.ID, types.ErrValidation)
	}

	credited, err := s.topups.RecordTopup(ctx, userID, intent.Amount, intent.ID)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    intent.Amount,
		"intent_id": intent.ID,
		"credited":  credited,
	}).Info("stripe webhook processed")

	return nil
}
