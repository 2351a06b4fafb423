// internal/workers/analysis/analyze-citation-patterns/models.go
package analyzecitationpatterns

import "citation-intelligence/internal/models"

type Input struct {
	Citations []models.CitationRecord `json:"citations"`
}

type Output struct {
	Patterns     []models.CitationPattern `json:"patterns"`
	Insights     models.Insights          `json:"insights"`
	PatternCount int                      `json:"patternCount"`
	Cached       bool                     `json:"cached"`
}
