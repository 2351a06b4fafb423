// internal/workers/data-access/query-citations/queries/citations.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"citation-intelligence/internal/models"

	"github.com/lib/pq"
)

const citationColumns = `
		SELECT c.id, c.engine, q.query_text, c.url,
		       COALESCE(c.title, ''), COALESCE(c.snippet, ''), COALESCE(c.position, 0),
		       COALESCE(c.citation_type, 'unknown'), COALESCE(c.source_domain, ''),
		       COALESCE(c.prominence_score, 0), c.metadata, c.created_at
		FROM citations c
		JOIN queries q ON q.id = c.query_id`

// CitationsByQueries requires Params.Queries.
func CitationsByQueries(ctx context.Context, db *sql.DB, params Params) (*Result, error) {
	if len(params.Queries) == 0 {
		return nil, fmt.Errorf("%w: queries", ErrMissingParam)
	}
	return selectCitations(ctx, db, citationColumns+`
		WHERE q.query_text = ANY($1)
		ORDER BY c.created_at
		LIMIT $2`, pq.Array(params.Queries), params.limit())
}

// CitationsByDomains requires Params.Domains.
func CitationsByDomains(ctx context.Context, db *sql.DB, params Params) (*Result, error) {
	if len(params.Domains) == 0 {
		return nil, fmt.Errorf("%w: domains", ErrMissingParam)
	}
	return selectCitations(ctx, db, citationColumns+`
		WHERE c.source_domain = ANY($1)
		ORDER BY c.created_at
		LIMIT $2`, pq.Array(params.Domains), params.limit())
}

// CitationsInWindow requires Params.Since; Until defaults to now.
func CitationsInWindow(ctx context.Context, db *sql.DB, params Params) (*Result, error) {
	if params.Since == nil {
		return nil, fmt.Errorf("%w: since", ErrMissingParam)
	}
	until := time.Now().UTC()
	if params.Until != nil {
		until = *params.Until
	}
	return selectCitations(ctx, db, citationColumns+`
		WHERE c.created_at >= $1 AND c.created_at < $2
		ORDER BY c.created_at
		LIMIT $3`, *params.Since, until, params.limit())
}

func selectCitations(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*Result, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	citations := make([]models.CitationRecord, 0)
	for rows.Next() {
		var rec models.CitationRecord
		var engine, citationType string
		var metadata []byte
		err := rows.Scan(
			&rec.ID, &engine, &rec.Query, &rec.URL,
			&rec.Title, &rec.Snippet, &rec.Position,
			&citationType, &rec.SourceDomain,
			&rec.ProminenceScore, &metadata, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.Engine = models.Engine(engine)
		rec.CitationType = models.CitationType(citationType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("citation %s metadata: %w", rec.ID, err)
			}
		}
		citations = append(citations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Citations:     citations,
		RowCount:      len(citations),
		ExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}
