package store

import (
	"context"
	"fmt"
	"time"

	"failmarket/internal/utils"
	"failmarket/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const helpfulTableName = "failmarket.user_helpfuls"

var helpfulColumns = utils.StructTagValues(types.UserHelpful{})

// HelpfulRepository is the helpful-mark ledger. Uniqueness of the
// (user, project) pair is enforced by a unique index, not by a
// check-then-insert, so racing adds cannot both succeed.
type HelpfulRepository struct {
	db DB
}

func NewHelpfulRepository(db DB) *HelpfulRepository {
	return &HelpfulRepository{db: db}
}

func (r *HelpfulRepository) Helpful(ctx context.Context, userID, projectID int64) (*types.UserHelpful, error) {
	query, args, err := psql().
		Select(helpfulColumns...).
		From(helpfulTableName).
		Where(sq.Eq{"user_id": userID, "project_id": projectID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate helpful query: %w", err)
	}

	var helpful types.UserHelpful
	err = pgxscan.Get(ctx, r.db, &helpful, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrHelpfulNotFound
		}
		return nil, fmt.Errorf("failed to fetch helpful: %w", err)
	}

	return &helpful, nil
}

// ProjectsMarkedHelpful lists the projects a user has marked helpful, most
// recent mark first.
func (r *HelpfulRepository) ProjectsMarkedHelpful(ctx context.Context, userID int64) ([]*types.Project, error) {
	query, args, err := psql().
		Select(prefixColumns("p", projectColumns)...).
		From(projectTableName + " p").
		Join(helpfulTableName + " h ON h.project_id = p.project_id").
		Where(sq.Eq{"h.user_id": userID}).
		OrderBy("h.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate helpful projects query: %w", err)
	}

	projects := make([]*types.Project, 0)
	err = pgxscan.Select(ctx, r.db, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch helpful projects: %w", err)
	}

	return projects, nil
}

// AddHelpful inserts the mark and bumps the project's helpful counter in one
// transaction. A unique-index conflict becomes ErrAlreadyMarked; a missing
// project surfaces as ErrProjectNotFound via the foreign key.
func (r *HelpfulRepository) AddHelpful(ctx context.Context, userID, projectID int64) (*types.UserHelpful, error) {
	helpful := &types.UserHelpful{
		HelpfulID: utils.NanoID(),
		UserID:    userID,
		ProjectID: projectID,
		CreatedAt: time.Now(),
	}

	query, args, err := psql().
		Insert(helpfulTableName).
		SetMap(utils.StructToMap(helpful)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insert helpful query: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, types.ErrAlreadyMarked
		}
		if isForeignKeyViolation(err) {
			return nil, types.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to insert helpful: %w", err)
	}

	if err := bumpHelpfulCount(ctx, tx, projectID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return helpful, nil
}

// RemoveHelpful deletes the mark and decrements the counter in one
// transaction. ErrHelpfulNotFound when no row exists for the pair.
func (r *HelpfulRepository) RemoveHelpful(ctx context.Context, userID, projectID int64) error {
	query, args, err := psql().
		Delete(helpfulTableName).
		Where(sq.Eq{"user_id": userID, "project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete helpful query: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete helpful: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrHelpfulNotFound
	}

	if err := bumpHelpfulCount(ctx, tx, projectID, -1); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func bumpHelpfulCount(ctx context.Context, tx pgx.Tx, projectID int64, delta int64) error {
	query, args, err := psql().
		Update(projectTableName).
		Set("helpful_count", sq.Expr("helpful_count + ?", delta)).
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate helpful count update: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update helpful count: %w", err)
	}

	return nil
}

func prefixColumns(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + "." + c
	}
	return out
}
