package types

import "time"

// UserHelpful is a user's helpful mark on a project. At most one row exists
// per (user, project) pair, enforced by a unique index.
type UserHelpful struct {
	HelpfulID string    `db:"helpful_id" json:"helpful_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProjectID int64     `db:"project_id" json:"project_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Purchase records a user buying a project. At most one purchase exists per
// (user, project) pair; the row is only ever written in the same transaction
// that debits the buyer's balance.
type Purchase struct {
	PurchaseID string    `db:"purchase_id" json:"purchase_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	ProjectID  int64     `db:"project_id" json:"project_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PurchaseReceipt is returned from a successful purchase: the buyer with the
// debited balance and the new purchase row.
type PurchaseReceipt struct {
	User     *User     `json:"user"`
	Purchase *Purchase `json:"purchase"`
}

// BalanceTopup records a Stripe payment that credited a user's balance. The
// unique payment_intent column makes webhook delivery idempotent.
type BalanceTopup struct {
	TopupID       string    `db:"topup_id" json:"topup_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Amount        int64     `db:"amount" json:"amount"`
	PaymentIntent string    `db:"payment_intent" json:"payment_intent"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
