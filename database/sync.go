package database

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"notekeep/models"
)

// SyncFailure describes one failed element of a bulk-sync batch. It is
// the side channel for per-item diagnostics; the aggregate count is the
// primary result.
type SyncFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// SyncResult aggregates a bulk-sync run. Synced + len(Failures) == Total.
type SyncResult struct {
	Total    int           `json:"total"`
	Synced   int           `json:"synced"`
	Failures []SyncFailure `json:"failures,omitempty"`
}

// fanOut applies fn to every item concurrently. A failing item never
// aborts its siblings and there is no collective transaction, so a
// client can safely resubmit a whole batch after a partial failure:
// already-applied items are idempotently re-applied.
func fanOut[T any](items []T, id func(T) string, fn func(T) error) SyncResult {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	res := SyncResult{Total: len(items)}

	for _, item := range items {
		wg.Add(1)
		go func(item T) {
			defer wg.Done()
			err := fn(item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, SyncFailure{ID: id(item), Error: err.Error()})
				return
			}
			res.Synced++
		}(item)
	}
	wg.Wait()
	return res
}

// runPaged executes the data query and its matching COUNT concurrently,
// both rendered from the same predicate set, so Total always reflects
// the filter the page was drawn from.
func runPaged[T any](db *DB, q *queryBuilder, orderBy string, desc bool, limit, offset int, scan func(rowScanner) (*T, error)) (*models.Page[T], error) {
	page := models.Page[T]{Limit: limit, Offset: offset}

	var g errgroup.Group
	g.Go(func() error {
		query, args := q.selectSQL(orderBy, desc, limit, offset)
		rows, err := db.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		data := make([]T, 0)
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				return err
			}
			data = append(data, *v)
		}
		page.Data = data
		return rows.Err()
	})
	g.Go(func() error {
		query, args := q.countSQL()
		return db.QueryRow(query, args...).Scan(&page.Total)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &page, nil
}
