package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"failmarket/pkg/types"
)

func TestProjectSearchQuery(t *testing.T) {
	t.Run("keyword and categories combine with AND", func(t *testing.T) {
		query, args, err := projectSearchQuery("mvp", []string{"Planning", "Execution"})
		require.NoError(t, err)

		assert.Contains(t, query, "name ILIKE $1")
		assert.Equal(t, 2, strings.Count(query, "EXISTS (SELECT 1 FROM "+mapTableName))
		assert.Contains(t, query, "ORDER BY created_at DESC, project_id DESC")
		assert.Equal(t, []any{"%mvp%", "Planning", "Execution"}, args)
	})

	t.Run("LIKE metacharacters in the keyword match literally", func(t *testing.T) {
		query, args, err := projectSearchQuery(`100%_done\`, nil)
		require.NoError(t, err)

		assert.Contains(t, query, "name ILIKE $1")
		assert.Equal(t, []any{`%100\%\_done\\%`}, args)
	})

	t.Run("match-all sentinel skips the keyword predicate", func(t *testing.T) {
		query, args, err := projectSearchQuery(types.SearchMatchAll, nil)
		require.NoError(t, err)

		assert.NotContains(t, query, "ILIKE")
		assert.NotContains(t, query, "WHERE")
		assert.Empty(t, args)
	})

	t.Run("empty keyword matches everything", func(t *testing.T) {
		query, args, err := projectSearchQuery("", []string{"Team"})
		require.NoError(t, err)

		assert.NotContains(t, query, "ILIKE")
		assert.Contains(t, query, "c.name = $1")
		assert.Equal(t, []any{"Team"}, args)
	})
}

func TestUserSearchQuery(t *testing.T) {
	t.Run("keyword matches name or nickname", func(t *testing.T) {
		query, args, err := userSearchQuery("ava")
		require.NoError(t, err)

		assert.Contains(t, query, "name ILIKE $1 OR nickname ILIKE $2")
		assert.Contains(t, query, "ORDER BY created_at DESC, user_id DESC")
		assert.Equal(t, []any{"%ava%", "%ava%"}, args)
	})

	t.Run("keyword with a wildcard matches literally", func(t *testing.T) {
		_, args, err := userSearchQuery("a_va")
		require.NoError(t, err)

		assert.Equal(t, []any{`%a\_va%`, `%a\_va%`}, args)
	})

	t.Run("match-all sentinel lists everyone", func(t *testing.T) {
		query, args, err := userSearchQuery(types.SearchMatchAll)
		require.NoError(t, err)

		assert.NotContains(t, query, "WHERE")
		assert.Empty(t, args)
	})
}
