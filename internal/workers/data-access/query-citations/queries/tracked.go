// internal/workers/data-access/query-citations/queries/tracked.go
package queries

import (
	"context"
	"database/sql"
	"time"

	"citation-intelligence/internal/models"
)

// TrackedQueries loads the active tracked queries, optionally one category.
func TrackedQueries(ctx context.Context, db *sql.DB, params Params) (*Result, error) {
	start := time.Now()

	var (
		rows *sql.Rows
		err  error
	)
	if params.Category != "" {
		rows, err = db.QueryContext(ctx, `
			SELECT id, query_text, COALESCE(category, ''), COALESCE(priority, 'medium'), is_active
			FROM queries
			WHERE is_active = TRUE AND category = $1
			ORDER BY created_at
			LIMIT $2`, params.Category, params.limit())
	} else {
		rows, err = db.QueryContext(ctx, `
			SELECT id, query_text, COALESCE(category, ''), COALESCE(priority, 'medium'), is_active
			FROM queries
			WHERE is_active = TRUE
			ORDER BY created_at
			LIMIT $1`, params.limit())
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracked := make([]models.TrackedQuery, 0)
	for rows.Next() {
		var q models.TrackedQuery
		var priority string
		if err := rows.Scan(&q.ID, &q.QueryText, &q.Category, &priority, &q.IsActive); err != nil {
			return nil, err
		}
		q.Priority = models.Priority(priority)
		tracked = append(tracked, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{
		TrackedQueries: tracked,
		RowCount:       len(tracked),
		ExecutionTime:  time.Since(start).Milliseconds(),
	}, nil
}
