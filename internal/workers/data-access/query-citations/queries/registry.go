// internal/workers/data-access/query-citations/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"citation-intelligence/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

const (
	DefaultLimit = 1000
	MaxLimit     = 10000
)

// Params are the filters a stored query may read. Each query documents the
// ones it requires.
type Params struct {
	Queries  []string   `json:"queries,omitempty"`
	Domains  []string   `json:"domains,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
	Category string     `json:"category,omitempty"`
	Limit    int        `json:"limit,omitempty"`
}

func (p Params) limit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Result holds whatever a query loaded; exactly one of the slices is set.
type Result struct {
	Citations      []models.CitationRecord
	TrackedQueries []models.TrackedQuery
	RowCount       int
	ExecutionTime  int64 // milliseconds
}

type QueryFunc func(ctx context.Context, db *sql.DB, params Params) (*Result, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeCitationsByQueries: CitationsByQueries,
	models.QueryTypeCitationsByDomains: CitationsByDomains,
	models.QueryTypeCitationsInWindow:  CitationsInWindow,
	models.QueryTypeTrackedQueries:     TrackedQueries,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params Params) (*Result, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}
