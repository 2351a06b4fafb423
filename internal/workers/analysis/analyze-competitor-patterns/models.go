// internal/workers/analysis/analyze-competitor-patterns/models.go
package analyzecompetitorpatterns

import "citation-intelligence/internal/models"

type Input struct {
	Citations         []models.CitationRecord `json:"citations"`
	CompetitorDomains []string                `json:"competitorDomains"`
}

// Output lists a profile for every competitor that was cited at least once;
// competitorCount is the number of profiles, not of requested domains.
type Output struct {
	CompetitorPatterns []models.CompetitorPattern `json:"competitorPatterns"`
	CompetitorCount    int                        `json:"competitorCount"`
}
