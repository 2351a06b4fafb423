// internal/workers/data-access/search-citations/models.go
package searchcitations

import (
	"citation-intelligence/internal/models"
	"citation-intelligence/internal/workers/data-access/search-citations/queries"
)

type Input struct {
	SearchType string         `json:"searchType"`
	Params     queries.Params `json:"params"`
}

type Output struct {
	Citations []models.CitationRecord `json:"citations"`
	Total     int64                   `json:"total"`
	MaxScore  float64                 `json:"maxScore"`
	Took      int64                   `json:"took"` // milliseconds
}
