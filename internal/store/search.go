package store

import (
	"context"
	"fmt"
	"strings"

	"failmarket/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// SearchRepository builds AND-combined predicate sets for project and user
// discovery. Keyword matching is a case-insensitive substring match; each
// requested category adds its own EXISTS predicate, so a project must carry
// every named category to match.
type SearchRepository struct {
	db DB
}

func NewSearchRepository(db DB) *SearchRepository {
	return &SearchRepository{db: db}
}

func (r *SearchRepository) SearchProjects(ctx context.Context, keyword string, categories []string) ([]*types.Project, error) {
	query, args, err := projectSearchQuery(keyword, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to generate project search query: %w", err)
	}

	projects := make([]*types.Project, 0)
	err = pgxscan.Select(ctx, r.db, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}

	return projects, nil
}

func (r *SearchRepository) SearchUsers(ctx context.Context, keyword string) ([]*types.User, error) {
	query, args, err := userSearchQuery(keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user search query: %w", err)
	}

	users := make([]*types.User, 0)
	err = pgxscan.Select(ctx, r.db, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

func projectSearchQuery(keyword string, categories []string) (string, []any, error) {
	builder := psql().
		Select(projectColumns...).
		From(projectTableName)

	if !matchAll(keyword) {
		builder = builder.Where(sq.ILike{"name": "%" + escapeLike(keyword) + "%"})
	}

	for _, category := range categories {
		builder = builder.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM "+mapTableName+" m JOIN "+categoryTableName+" c ON c.category_id = m.category_id WHERE m.project_id = "+projectTableName+".project_id AND c.name = ?)",
			category,
		))
	}

	return builder.
		OrderBy("created_at DESC", "project_id DESC").
		ToSql()
}

func userSearchQuery(keyword string) (string, []any, error) {
	builder := psql().
		Select(userColumns...).
		From(userTableName)

	if !matchAll(keyword) {
		pattern := "%" + escapeLike(keyword) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"nickname": pattern},
		})
	}

	return builder.
		OrderBy("created_at DESC", "user_id DESC").
		ToSql()
}

func matchAll(keyword string) bool {
	return keyword == "" || keyword == types.SearchMatchAll
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so the keyword matches as a
// literal substring.
func escapeLike(keyword string) string {
	return likeEscaper.Replace(keyword)
}
