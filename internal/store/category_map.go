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

const mapTableName = "failmarket.project_category_maps"

var mapColumns = utils.StructTagValues(types.ProjectCategoryMap{})

// CategoryMapRepository persists the correspondence between a project and its
// declared failure categories.
type CategoryMapRepository struct {
	db DB
}

func NewCategoryMapRepository(db DB) *CategoryMapRepository {
	return &CategoryMapRepository{db: db}
}

// CategoryDetailsByProjectID returns the mappings joined with category names,
// in insertion order.
func (r *CategoryMapRepository) CategoryDetailsByProjectID(ctx context.Context, projectID int64) ([]types.ProjectCategoryDetail, error) {
	query, args, err := psql().
		Select("m.category_id", "c.name", "m.answer1", "m.answer2", "m.answer3").
		From(mapTableName + " m").
		Join(categoryTableName + " c ON c.category_id = m.category_id").
		Where(sq.Eq{"m.project_id": projectID}).
		OrderBy("m.created_at ASC", "m.category_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category details query: %w", err)
	}

	details := make([]types.ProjectCategoryDetail, 0)
	err = pgxscan.Select(ctx, r.db, &details, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category details: %w", err)
	}

	return details, nil
}

// CategoryNamesByProjectIDs returns the category names mapped to each of the
// given projects, for search result assembly.
func (r *CategoryMapRepository) CategoryNamesByProjectIDs(ctx context.Context, projectIDs []int64) (map[int64][]string, error) {
	names := make(map[int64][]string, len(projectIDs))
	if len(projectIDs) == 0 {
		return names, nil
	}

	query, args, err := psql().
		Select("m.project_id", "c.name").
		From(mapTableName + " m").
		Join(categoryTableName + " c ON c.category_id = m.category_id").
		Where(sq.Eq{"m.project_id": projectIDs}).
		OrderBy("m.project_id ASC", "m.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category names query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int64
		var name string
		if err := rows.Scan(&projectID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category name row: %w", err)
		}
		names[projectID] = append(names[projectID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category name rows: %w", err)
	}

	return names, nil
}

// ReplaceMaps atomically swaps a project's entire mapping set: all existing
// rows are deleted and the new set inserted inside one transaction, so a
// reader never observes the empty window between the two.
func (r *CategoryMapRepository) ReplaceMaps(ctx context.Context, projectID int64, maps []*types.ProjectCategoryMap) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Delete(mapTableName).
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete maps query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete category maps: %w", err)
	}

	for _, m := range maps {
		m.ProjectID = projectID
	}

	if err := insertCategoryMaps(ctx, tx, maps, time.Now()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertCategoryMaps batch-inserts mapping rows inside the caller's
// transaction. Both project creation and full replacement go through here.
func insertCategoryMaps(ctx context.Context, tx pgx.Tx, maps []*types.ProjectCategoryMap, now time.Time) error {
	if len(maps) == 0 {
		return nil
	}

	builder := psql().
		Insert(mapTableName).Columns(mapColumns...)

	for _, m := range maps {
		m.CreatedAt = now
		builder = builder.Values(m.ProjectID, m.CategoryID, m.Answer1, m.Answer2, m.Answer3, m.CreatedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert maps query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateCategory
		}
		if isForeignKeyViolation(err) {
			return types.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to insert category maps: %w", err)
	}

	return nil
}
