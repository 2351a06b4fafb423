package gaps

import "citation-intelligence/internal/common/config"

// Config holds the gap engine thresholds.
type Config struct {
	// MinOpportunityScore marks the floor of an actionable gap in logs.
	MinOpportunityScore      float64
	HighOpportunityThreshold float64
	// MinClusterQueries is the tracked-query count below which topic
	// clustering is skipped.
	MinClusterQueries int
	RelatedSimilarity float64
	MaxFeatures       int
	ClusterSeed       int64
}

func DefaultConfig() Config {
	return Config{
		MinOpportunityScore:      0.3,
		HighOpportunityThreshold: 0.7,
		MinClusterQueries:        10,
		RelatedSimilarity:        0.3,
		MaxFeatures:              100,
		ClusterSeed:              42,
	}
}

// ConfigFrom converts the loaded application config, keeping defaults for
// unset fields.
func ConfigFrom(c config.GapAnalysisConfig) Config {
	cfg := DefaultConfig()
	if c.MinOpportunityScore > 0 {
		cfg.MinOpportunityScore = c.MinOpportunityScore
	}
	if c.HighOpportunityThreshold > 0 {
		cfg.HighOpportunityThreshold = c.HighOpportunityThreshold
	}
	if c.MinClusterQueries > 0 {
		cfg.MinClusterQueries = c.MinClusterQueries
	}
	if c.RelatedSimilarity > 0 {
		cfg.RelatedSimilarity = c.RelatedSimilarity
	}
	if c.ClusterSeed != 0 {
		cfg.ClusterSeed = c.ClusterSeed
	}
	return cfg
}
