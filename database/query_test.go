package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilderRendering(t *testing.T) {
	q := newQuery("notes", "id, title").
		where("owner_id = ?", "u1").
		deletedState(false, false).
		whereAny([]string{"title LIKE ?", "content LIKE ?"}, "%x%", "%x%")

	sql, args := q.selectSQL("updated_at", true, 10, 5)
	assert.Equal(t,
		"SELECT id, title FROM notes WHERE owner_id = ? AND is_deleted = 0 AND (title LIKE ? OR content LIKE ?) ORDER BY updated_at DESC LIMIT ? OFFSET ?",
		sql)
	assert.Equal(t, []any{"u1", "%x%", "%x%", 10, 5}, args)

	t.Run("count renders from the same predicates", func(t *testing.T) {
		countSQL, countArgs := q.countSQL()
		assert.Equal(t,
			"SELECT COUNT(*) FROM notes WHERE owner_id = ? AND is_deleted = 0 AND (title LIKE ? OR content LIKE ?)",
			countSQL)
		assert.Equal(t, []any{"u1", "%x%", "%x%"}, countArgs)
	})
}

func TestQueryBuilderNoPredicates(t *testing.T) {
	q := newQuery("folders", folderColumns)

	sql, args := q.selectSQL("created_at", false, 30, 0)
	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{30, 0}, args)

	countSQL, countArgs := q.countSQL()
	assert.Equal(t, "SELECT COUNT(*) FROM folders", countSQL)
	assert.Nil(t, countArgs)
}

func TestQueryBuilderDeletedStates(t *testing.T) {
	t.Run("default excludes deleted rows", func(t *testing.T) {
		sql, _ := newQuery("notes", "id").deletedState(false, false).countSQL()
		assert.Contains(t, sql, "is_deleted = 0")
	})
	t.Run("includeDeleted lifts the restriction", func(t *testing.T) {
		sql, _ := newQuery("notes", "id").deletedState(true, false).countSQL()
		assert.NotContains(t, sql, "is_deleted")
	})
	t.Run("onlyDeleted inverts it", func(t *testing.T) {
		sql, _ := newQuery("notes", "id").deletedState(false, true).countSQL()
		assert.Contains(t, sql, "is_deleted = 1")
	})
	t.Run("onlyDeleted wins over includeDeleted", func(t *testing.T) {
		sql, _ := newQuery("notes", "id").deletedState(true, true).countSQL()
		assert.Contains(t, sql, "is_deleted = 1")
	})
}

func TestOrderColumnWhitelist(t *testing.T) {
	assert.Equal(t, "views", orderColumn("views", noteOrderColumns, "updated_at"))
	assert.Equal(t, "updated_at", orderColumn("password", noteOrderColumns, "updated_at"))
	assert.Equal(t, "updated_at", orderColumn("", noteOrderColumns, "updated_at"))
	assert.Equal(t, "updated_at", orderColumn("views; DROP TABLE notes", noteOrderColumns, "updated_at"))
}

func TestEmptyWhereAnyIsIgnored(t *testing.T) {
	q := newQuery("notes", "id").whereAny(nil)
	sql, _ := q.countSQL()
	assert.Equal(t, "SELECT COUNT(*) FROM notes", sql)
}
