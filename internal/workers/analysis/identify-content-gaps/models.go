// internal/workers/analysis/identify-content-gaps/models.go
package identifycontentgaps

import "citation-intelligence/internal/models"

type Input struct {
	Citations            []models.CitationRecord `json:"citations"`
	TrackedQueries       []string                `json:"trackedQueries"`
	CompetitorDomains    []string                `json:"competitorDomains,omitempty"`
	IncludeTopicClusters bool                    `json:"includeTopicClusters,omitempty"`
}

type Output struct {
	Gaps          []models.ContentGap   `json:"gaps"`
	Report        models.GapReport      `json:"report"`
	GapCount      int                   `json:"gapCount"`
	TopicClusters []models.TopicCluster `json:"topicClusters,omitempty"`
	Cached        bool                  `json:"cached"`
}
