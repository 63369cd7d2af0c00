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

const projectTableName = "failmarket.projects"

var projectColumns = utils.StructTagValues(types.Project{})

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Project(ctx context.Context, projectID int64) (*types.Project, error) {
	query, args, err := psql().
		Select(projectColumns...).
		From(projectTableName).
		Where(sq.Eq{"project_id": projectID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project query: %w", err)
	}

	var project types.Project
	err = pgxscan.Get(ctx, r.db, &project, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	return &project, nil
}

func (r *ProjectRepository) ProjectsByUser(ctx context.Context, userID int64) ([]*types.Project, error) {
	query, args, err := psql().
		Select(projectColumns...).
		From(projectTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate projects-by-user query: %w", err)
	}

	projects := make([]*types.Project, 0)
	err = pgxscan.Select(ctx, r.db, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects by user: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) PopularProjects(ctx context.Context, limit uint64) ([]*types.Project, error) {
	query, args, err := psql().
		Select(projectColumns...).
		From(projectTableName).
		OrderBy("helpful_count DESC", "project_id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate popular projects query: %w", err)
	}

	projects := make([]*types.Project, 0)
	err = pgxscan.Select(ctx, r.db, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular projects: %w", err)
	}

	return projects, nil
}

// CreateProject inserts the project and its category mappings as one atomic
// unit. The mappings' ProjectID fields are filled from the generated id.
func (r *ProjectRepository) CreateProject(ctx context.Context, project *types.Project, maps []*types.ProjectCategoryMap) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	projectMap := utils.StructToMap(project)
	delete(projectMap, "project_id")

	query, args, err := psql().
		Insert(projectTableName).
		SetMap(projectMap).
		Suffix("RETURNING project_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert project query: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := tx.QueryRow(ctx, query, args...).Scan(&project.ProjectID); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, m := range maps {
		m.ProjectID = project.ProjectID
	}

	if err := insertCategoryMaps(ctx, tx, maps, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ProjectRepository) UpdateProject(ctx context.Context, projectID int64, update types.ProjectUpdate) error {
	changes := projectUpdateMap(update)
	if len(changes) == 0 {
		return nil
	}
	changes["updated_at"] = time.Now()

	query, args, err := psql().
		Update(projectTableName).
		SetMap(changes).
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update project query for project %d: %w", projectID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrProjectNotFound
	}

	return nil
}

// DeleteProject removes the project together with its helpful marks,
// purchases and category mappings in one transaction, dependents first.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	dependents := []string{helpfulTableName, purchaseTableName, mapTableName}
	for _, table := range dependents {
		query, args, err := psql().
			Delete(table).
			Where(sq.Eq{"project_id": projectID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete query for %s: %w", table, err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete project dependents from %s: %w", table, err)
		}
	}

	query, args, err := psql().
		Delete(projectTableName).
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete project query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrProjectNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func projectUpdateMap(update types.ProjectUpdate) map[string]any {
	changes := make(map[string]any)

	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Period != nil {
		changes["period"] = *update.Period
	}
	if update.Personnel != nil {
		changes["personnel"] = *update.Personnel
	}
	if update.Intent != nil {
		changes["intent"] = *update.Intent
	}
	if update.MyRole != nil {
		changes["my_role"] = *update.MyRole
	}
	if update.SaleStatus != nil {
		changes["sale_status"] = *update.SaleStatus
	}
	if update.IsFree != nil {
		changes["is_free"] = *update.IsFree
	}
	if update.Price != nil {
		changes["price"] = *update.Price
	}
	if update.ResultURL != nil {
		changes["result_url"] = *update.ResultURL
	}
	if update.GrowthPoint != nil {
		changes["growth_point"] = *update.GrowthPoint
	}
	if update.Image != nil {
		changes["image"] = *update.Image
	}

	return changes
}
