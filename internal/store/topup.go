package store

import (
	"context"
	"fmt"
	"time"

	"failmarket/internal/utils"
	"failmarket/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const topupTableName = "failmarket.balance_topups"

var topupColumns = utils.StructTagValues(types.BalanceTopup{})

// TopupRepository records Stripe-funded balance credits. The unique
// payment_intent column makes replayed webhook deliveries harmless.
type TopupRepository struct {
	db DB
}

func NewTopupRepository(db DB) *TopupRepository {
	return &TopupRepository{db: db}
}

// RecordTopup credits the user's balance and writes the top-up row in one
// transaction. Returns false when the payment intent was already recorded,
// in which case nothing changes.
func (r *TopupRepository) RecordTopup(ctx context.Context, userID, amount int64, paymentIntent string) (bool, error) {
	topup := &types.BalanceTopup{
		TopupID:       utils.NanoID(),
		UserID:        userID,
		Amount:        amount,
		PaymentIntent: paymentIntent,
		CreatedAt:     time.Now(),
	}

	query, args, err := psql().
		Insert(topupTableName).
		SetMap(utils.StructToMap(topup)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate insert topup query: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		if isForeignKeyViolation(err) {
			return false, types.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to insert topup: %w", err)
	}

	query, args, err = psql().
		Update(userTableName).
		Set("balance", sq.Expr("balance + ?", amount)).
		Set("updated_at", topup.CreatedAt).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate credit query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to credit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, types.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
