package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"sync/atomic"
)

// queryRows runs query lazily and yields one scanned value per row. The
// sequence is single pass: ranging over it again yields ErrCursorConsumed.
// The store read lock and the connection are held until the range ends, so
// the consumer must not call back into the store while iterating.
func queryRows[T any](ctx context.Context, s *SQLiteStore, scan func(*sql.Rows) (T, error), query string, args ...any) iter.Seq2[T, error] {
	var used atomic.Bool

	return func(yield func(T, error) bool) {
		var zero T
		if !used.CompareAndSwap(false, true) {
			yield(zero, ErrCursorConsumed)
			return
		}

		s.mu.RLock()
		defer s.mu.RUnlock()

		if s.closed {
			yield(zero, ErrClosed)
			return
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(zero, fmt.Errorf("query failed: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				yield(zero, fmt.Errorf("failed to scan row: %w", err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, fmt.Errorf("row iteration failed: %w", err))
		}
	}
}
