// internal/workers/data-access/query-citations/models.go
package querycitations

import (
	"citation-intelligence/internal/models"
	"citation-intelligence/internal/workers/data-access/query-citations/queries"
)

type Input struct {
	QueryType string         `json:"queryType"`
	Params    queries.Params `json:"params"`
}

// Output feeds the analysis workers directly: citations for the citation
// queries, trackedQueries for tracked_queries.
type Output struct {
	Citations          []models.CitationRecord `json:"citations"`
	TrackedQueries     []string                `json:"trackedQueries"`
	RowCount           int                     `json:"rowCount"`
	QueryExecutionTime int64                   `json:"queryExecutionTime"` // milliseconds
}
