package store

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the single injected store handle shared by every repository. It is
// opened once at process start and closed at shutdown. *pgxpool.Pool
// satisfies it; tests substitute a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// Callers translate these into the matching conflict error so that a racing
// insert surfaces as a domain condition, never as a raw storage fault.
func isUniqueViolation(err error) bool {
	return isPgCode(err, pgCodeUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return isPgCode(err, pgCodeForeignKeyViolation)
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
