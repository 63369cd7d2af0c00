package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"failmarket/internal/utils"
	"failmarket/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const userTableName = "failmarket.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) User(ctx context.Context, userID int64) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) UserByAuthSubject(ctx context.Context, subject string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"auth_subject": subject}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user-by-subject query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by subject: %w", err)
	}

	return &user, nil
}

// UpsertIdentity maps an identity-provider subject onto a user row, creating
// it on first login. The nickname defaults to the display name.
func (r *UserRepository) UpsertIdentity(ctx context.Context, subject, email, name string) (*types.User, error) {
	now := time.Now()

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		trimmedName = displayNameFromEmail(email)
	}

	query, args, err := psql().
		Insert(userTableName).
		Columns("auth_subject", "name", "nickname", "email", "balance", "created_at", "updated_at").
		Values(subject, trimmedName, trimmedName, nullable(strings.TrimSpace(email)), 0, now, now).
		Suffix("ON CONFLICT (auth_subject) DO UPDATE SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate upsert identity query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user identity: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, userID int64, update types.UserUpdate) error {
	changes := make(map[string]any)
	if update.Nickname != nil {
		changes["nickname"] = *update.Nickname
	}
	if update.ProfileImage != nil {
		changes["profile_image"] = *update.ProfileImage
	}
	if len(changes) == 0 {
		return nil
	}
	changes["updated_at"] = time.Now()

	query, args, err := psql().
		Update(userTableName).
		SetMap(changes).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

func displayNameFromEmail(email string) string {
	name, _, found := strings.Cut(email, "@")
	if !found || name == "" {
		return "user"
	}
	return name
}
