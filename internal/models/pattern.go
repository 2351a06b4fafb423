// internal/models/pattern.go
package models

type PatternType string

const (
	PatternDomainFrequency         PatternType = "domain_frequency"
	PatternDomainProminence        PatternType = "domain_prominence"
	PatternContentTypePerformance  PatternType = "content_type_performance"
	PatternPositionConsistency     PatternType = "position_consistency"
	PatternTemporalSpikes          PatternType = "temporal_spikes"
	PatternWeeklyVariation         PatternType = "weekly_variation"
	PatternEngineContentPreference PatternType = "engine_content_preference"
	PatternContentFeatures         PatternType = "content_features"
	PatternQuerySimilarity         PatternType = "query_similarity"
)

// CitationPattern is a statistically notable regularity found in a citation batch.
type CitationPattern struct {
	PatternID       string           `json:"patternId"`
	PatternType     PatternType      `json:"patternType"`
	Description     string           `json:"description"`
	Frequency       int              `json:"frequency"`
	Strength        float64          `json:"strength"`
	Examples        []PatternExample `json:"examples"`
	Characteristics Characteristics  `json:"characteristics"`
	Engines         []Engine         `json:"engines"`
	Domains         []string         `json:"domains"`
	ContentTypes    []CitationType   `json:"contentTypes"`
	TimeRange       TimeRange        `json:"timeRange"`
}

// PatternExample is one supporting observation. Only the fields relevant to
// the pattern type are set.
type PatternExample struct {
	Domain        string       `json:"domain,omitempty"`
	ContentType   CitationType `json:"contentType,omitempty"`
	Query         string       `json:"query,omitempty"`
	Feature       string       `json:"feature,omitempty"`
	Date          string       `json:"date,omitempty"`
	Day           string       `json:"day,omitempty"`
	Count         int          `json:"count"`
	AvgProminence float64      `json:"avgProminence,omitempty"`
	AvgPosition   float64      `json:"avgPosition,omitempty"`
}

// Characteristics summarises a pattern numerically.
type Characteristics struct {
	Values        map[string]float64        `json:"values,omitempty"`
	Labels        map[string]string         `json:"labels,omitempty"`
	Distributions map[string]map[string]int `json:"distributions,omitempty"`
}

// TimingPatterns holds a competitor's capture-time histograms.
type TimingPatterns struct {
	HourlyDistribution map[int]int    `json:"hourlyDistribution"`
	DailyDistribution  map[string]int `json:"dailyDistribution"`
}

// CompetitorPattern profiles how one competitor domain gets cited.
type CompetitorPattern struct {
	CompetitorDomain       string             `json:"competitorDomain"`
	CitationCount          int                `json:"citationCount"`
	CitationFrequency      float64            `json:"citationFrequency"`
	PreferredContentTypes  []CitationType     `json:"preferredContentTypes"`
	StrongTopics           []string           `json:"strongTopics"`
	CitationTimingPatterns TimingPatterns     `json:"citationTimingPatterns"`
	AveragePosition        float64            `json:"averagePosition"`
	EnginesDominance       map[Engine]float64 `json:"enginesDominance"`
}

type InsightType string

const (
	InsightContentPartnership  InsightType = "content_partnership"
	InsightContentOptimization InsightType = "content_optimization"
	InsightEngineOptimization  InsightType = "engine_optimization"
	InsightTimingOptimization  InsightType = "timing_optimization"
	InsightCompetitorDominance InsightType = "competitor_dominance"
)

type InsightItem struct {
	Type        InsightType `json:"type"`
	Description string      `json:"description"`
	Priority    Priority    `json:"priority"`
}

// Insights is the actionable summary derived from a set of patterns.
type Insights struct {
	TotalPatterns        int                 `json:"totalPatterns"`
	PatternTypes         map[PatternType]int `json:"patternTypes"`
	HighStrengthPatterns []CitationPattern   `json:"highStrengthPatterns"`
	Recommendations      []InsightItem       `json:"recommendations"`
	Opportunities        []InsightItem       `json:"opportunities"`
	Threats              []InsightItem       `json:"threats"`
}
