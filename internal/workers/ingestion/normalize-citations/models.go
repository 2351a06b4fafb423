// internal/workers/ingestion/normalize-citations/models.go
package normalizecitations

import (
	"citation-intelligence/internal/citation"
	"citation-intelligence/internal/models"
)

// Input is one collector run. Enrichment is keyed by cited URL, either as the
// collector reported it or after tracking parameters were stripped.
type Input struct {
	Engine       string                         `json:"engine"`
	RawCitations []citation.RawCitation         `json:"rawCitations"`
	Enrichment   map[string]citation.Enrichment `json:"enrichment,omitempty"`
}

type Output struct {
	Citations       []models.CitationRecord `json:"citations"`
	NormalizedCount int                     `json:"normalizedCount"`
	EnrichedCount   int                     `json:"enrichedCount"`
	Issues          []citation.Issue        `json:"issues"`
}
