package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"failmarket/pkg/types"
)

func TestAddHelpful(t *testing.T) {
	t.Run("inserts the mark and bumps the counter in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO failmarket.user_helpfuls").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), int64(1), int64(20)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("UPDATE failmarket.projects SET helpful_count = helpful_count").
			WithArgs(int64(1), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		repo := NewHelpfulRepository(mock)

		helpful, err := repo.AddHelpful(context.Background(), 20, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(20), helpful.UserID)
		assert.Equal(t, int64(1), helpful.ProjectID)
		assert.NotEmpty(t, helpful.HelpfulID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation becomes ErrAlreadyMarked", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO failmarket.user_helpfuls").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), int64(1), int64(20)).
			WillReturnError(&pgconn.PgError{Code: pgCodeUniqueViolation})
		mock.ExpectRollback()

		repo := NewHelpfulRepository(mock)

		_, err = repo.AddHelpful(context.Background(), 20, 1)
		assert.ErrorIs(t, err, types.ErrAlreadyMarked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign key violation becomes ErrProjectNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO failmarket.user_helpfuls").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), int64(999), int64(20)).
			WillReturnError(&pgconn.PgError{Code: pgCodeForeignKeyViolation})
		mock.ExpectRollback()

		repo := NewHelpfulRepository(mock)

		_, err = repo.AddHelpful(context.Background(), 20, 999)
		assert.ErrorIs(t, err, types.ErrProjectNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRemoveHelpful(t *testing.T) {
	t.Run("deletes the mark and decrements the counter", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM failmarket.user_helpfuls").
			WithArgs(int64(1), int64(20)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec("UPDATE failmarket.projects SET helpful_count = helpful_count").
			WithArgs(int64(-1), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		repo := NewHelpfulRepository(mock)

		require.NoError(t, repo.RemoveHelpful(context.Background(), 20, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row means ErrHelpfulNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM failmarket.user_helpfuls").
			WithArgs(int64(1), int64(20)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		repo := NewHelpfulRepository(mock)

		err = repo.RemoveHelpful(context.Background(), 20, 1)
		assert.ErrorIs(t, err, types.ErrHelpfulNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
