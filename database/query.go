package database

import (
	"fmt"
	"strings"
)

// predicate is one typed WHERE clause plus its bind arguments. Queries
// are assembled from an ordered predicate list so the paginated SELECT
// and its COUNT are always rendered from the same clauses and cannot
// drift apart.
type predicate struct {
	expr string
	args []any
}

type queryBuilder struct {
	table   string
	columns string
	preds   []predicate
}

func newQuery(table, columns string) *queryBuilder {
	return &queryBuilder{table: table, columns: columns}
}

// where appends one conjunct. Predicates are ANDed in insertion order.
func (q *queryBuilder) where(expr string, args ...any) *queryBuilder {
	q.preds = append(q.preds, predicate{expr: expr, args: args})
	return q
}

// whereAny appends a single conjunct formed by ORing the given
// sub-expressions. Used for substring search across columns and for
// tag containment ("contains at least one of").
func (q *queryBuilder) whereAny(exprs []string, args ...any) *queryBuilder {
	if len(exprs) == 0 {
		return q
	}
	q.preds = append(q.preds, predicate{
		expr: "(" + strings.Join(exprs, " OR ") + ")",
		args: args,
	})
	return q
}

func (q *queryBuilder) whereSQL() (string, []any) {
	if len(q.preds) == 0 {
		return "", nil
	}
	exprs := make([]string, 0, len(q.preds))
	var args []any
	for _, p := range q.preds {
		exprs = append(exprs, p.expr)
		args = append(args, p.args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// selectSQL renders the paginated data query.
func (q *queryBuilder) selectSQL(orderBy string, desc bool, limit, offset int) (string, []any) {
	where, args := q.whereSQL()
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s LIMIT ? OFFSET ?",
		q.columns, q.table, where, orderBy, dir)
	return sql, append(args, limit, offset)
}

// countSQL renders the matching COUNT query from the same predicates.
func (q *queryBuilder) countSQL() (string, []any) {
	where, args := q.whereSQL()
	return "SELECT COUNT(*) FROM " + q.table + where, args
}

// orderColumn maps a caller-chosen sort column onto the repository's
// whitelist; anything unknown falls back. Column names are the only
// non-parameterized caller input, so they never reach SQL unchecked.
func orderColumn(requested string, allowed map[string]bool, fallback string) string {
	if allowed[requested] {
		return requested
	}
	return fallback
}

// deletedState appends the deleted-state predicate: by default only
// live rows, includeDeleted lifts the restriction, onlyDeleted inverts
// it to show exclusively trashed rows.
func (q *queryBuilder) deletedState(includeDeleted, onlyDeleted bool) *queryBuilder {
	switch {
	case onlyDeleted:
		q.where("is_deleted = 1")
	case !includeDeleted:
		q.where("is_deleted = 0")
	}
	return q
}
