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

func TestReplaceMaps(t *testing.T) {
	maps := []*types.ProjectCategoryMap{
		{CategoryID: 1, Answer1: "a1", Answer2: "a2", Answer3: "a3"},
		{CategoryID: 2, Answer1: "b1", Answer2: "b2", Answer3: "b3"},
	}

	t.Run("deletes the old set and inserts the new one in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM failmarket.project_category_maps").
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec("INSERT INTO failmarket.project_category_maps").
			WithArgs(
				int64(7), int64(1), "a1", "a2", "a3", pgxmock.AnyArg(),
				int64(7), int64(2), "b1", "b2", "b3", pgxmock.AnyArg(),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 2))
		mock.ExpectCommit()

		repo := NewCategoryMapRepository(mock)

		require.NoError(t, repo.ReplaceMaps(context.Background(), 7, maps))
		for _, m := range maps {
			assert.Equal(t, int64(7), m.ProjectID)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replacing with an empty set only deletes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM failmarket.project_category_maps").
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectCommit()

		repo := NewCategoryMapRepository(mock)

		require.NoError(t, repo.ReplaceMaps(context.Background(), 7, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation on insert rolls the delete back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM failmarket.project_category_maps").
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec("INSERT INTO failmarket.project_category_maps").
			WithArgs(
				int64(7), int64(1), "a1", "a2", "a3", pgxmock.AnyArg(),
				int64(7), int64(2), "b1", "b2", "b3", pgxmock.AnyArg(),
			).
			WillReturnError(&pgconn.PgError{Code: pgCodeUniqueViolation})
		mock.ExpectRollback()

		repo := NewCategoryMapRepository(mock)

		err = repo.ReplaceMaps(context.Background(), 7, maps)
		assert.ErrorIs(t, err, types.ErrDuplicateCategory)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign key violation becomes ErrCategoryNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM failmarket.project_category_maps").
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec("INSERT INTO failmarket.project_category_maps").
			WithArgs(
				int64(7), int64(1), "a1", "a2", "a3", pgxmock.AnyArg(),
				int64(7), int64(2), "b1", "b2", "b3", pgxmock.AnyArg(),
			).
			WillReturnError(&pgconn.PgError{Code: pgCodeForeignKeyViolation})
		mock.ExpectRollback()

		repo := NewCategoryMapRepository(mock)

		err = repo.ReplaceMaps(context.Background(), 7, maps)
		assert.ErrorIs(t, err, types.ErrCategoryNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
