package store

import (
	"context"
	"fmt"
	"time"

	"failmarket/internal/utils"
	"failmarket/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const purchaseTableName = "failmarket.purchases"

var purchaseColumns = utils.StructTagValues(types.Purchase{})

// PurchaseRepository owns the purchase ledger. The debit and the purchase row
// commit together or not at all.
type PurchaseRepository struct {
	db DB
}

func NewPurchaseRepository(db DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) PurchaseByUserAndProject(ctx context.Context, userID, projectID int64) (*types.Purchase, error) {
	query, args, err := psql().
		Select(purchaseColumns...).
		From(purchaseTableName).
		Where(sq.Eq{"user_id": userID, "project_id": projectID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate purchase query: %w", err)
	}

	var purchase types.Purchase
	err = pgxscan.Get(ctx, r.db, &purchase, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch purchase: %w", err)
	}

	return &purchase, nil
}

// PurchasedProjects lists the projects a user has bought, newest purchase
// first.
func (r *PurchaseRepository) PurchasedProjects(ctx context.Context, userID int64) ([]*types.Project, error) {
	query, args, err := psql().
		Select(prefixColumns("p", projectColumns)...).
		From(projectTableName + " p").
		Join(purchaseTableName + " b ON b.project_id = p.project_id").
		Where(sq.Eq{"b.user_id": userID}).
		OrderBy("b.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate purchased projects query: %w", err)
	}

	projects := make([]*types.Project, 0)
	err = pgxscan.Select(ctx, r.db, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchased projects: %w", err)
	}

	return projects, nil
}

// CreatePurchase runs the whole purchase as one transaction:
//
//  1. lock the buyer row (SELECT ... FOR UPDATE)
//  2. verify the project exists
//  3. verify no prior purchase for the pair
//  4. verify balance covers the price
//  5. debit the balance
//  6. insert the purchase row
//
// The unique index on (user_id, project_id) backstops step 3 under
// concurrency: the racing loser gets ErrAlreadyPurchased, never a second row.
func (r *PurchaseRepository) CreatePurchase(ctx context.Context, userID, projectID, price int64) (*types.User, *types.Purchase, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"user_id": userID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate user lock query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, tx, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil, types.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock user: %w", err)
	}

	query, args, err = psql().
		Select("1").
		From(projectTableName).
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate project exists query: %w", err)
	}

	var one int
	err = pgxscan.Get(ctx, tx, &one, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil, types.ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to check project: %w", err)
	}

	query, args, err = psql().
		Select("COUNT(*)").
		From(purchaseTableName).
		Where(sq.Eq{"user_id": userID, "project_id": projectID}).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate prior purchase query: %w", err)
	}

	var prior int64
	err = pgxscan.Get(ctx, tx, &prior, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check prior purchase: %w", err)
	}
	if prior > 0 {
		return nil, nil, types.ErrAlreadyPurchased
	}

	if user.Balance < price {
		return nil, nil, types.ErrInsufficientFunds
	}

	now := time.Now()

	query, args, err = psql().
		Update(userTableName).
		Set("balance", sq.Expr("balance - ?", price)).
		Set("updated_at", now).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate debit query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	purchase := &types.Purchase{
		PurchaseID: utils.NanoID(),
		UserID:     userID,
		ProjectID:  projectID,
		CreatedAt:  now,
	}

	query, args, err = psql().
		Insert(purchaseTableName).
		SetMap(utils.StructToMap(purchase)).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate insert purchase query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, types.ErrAlreadyPurchased
		}
		return nil, nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Balance -= price
	user.UpdatedAt = now

	return &user, purchase, nil
}
