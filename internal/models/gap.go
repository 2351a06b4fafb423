// internal/models/gap.go
package models

type GapType string

const (
	GapNoCitations         GapType = "no_citations"
	GapWeakCitations       GapType = "weak_citations"
	GapCompetitorDominated GapType = "competitor_dominated"
	GapTopicCluster        GapType = "topic_cluster_gap"
	GapQuestionVariation   GapType = "question_variation"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PriorityForScore maps a final opportunity score onto its priority band.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 0.8:
		return PriorityHigh
	case score >= 0.5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Level grades effort and impact.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ContentType is the format suggested for filling a gap.
type ContentType string

const (
	ContentTutorialGuide        ContentType = "tutorial_guide"
	ContentExplainerArticle     ContentType = "explainer_article"
	ContentComparisonReview     ContentType = "comparison_review"
	ContentInteractiveTool      ContentType = "interactive_tool"
	ContentFAQArticle           ContentType = "faq_article"
	ContentComprehensiveArticle ContentType = "comprehensive_article"
	ContentAnalyticalArticle    ContentType = "analytical_article"
	ContentTimingGuide          ContentType = "timing_guide"
	ContentDirectoryArticle     ContentType = "directory_article"
	ContentSelectionGuide       ContentType = "selection_guide"
	ContentComparisonArticle    ContentType = "comparison_article"
)

// ContentGap is a tracked query judged under-served by current citations.
type ContentGap struct {
	GapID                   string      `json:"gapId"`
	QueryText               string      `json:"queryText"`
	GapType                 GapType     `json:"gapType"`
	OpportunityScore        float64     `json:"opportunityScore"`
	SuggestedContentType    ContentType `json:"suggestedContentType"`
	SuggestedTopics         []string    `json:"suggestedTopics"`
	CompetingDomains        []string    `json:"competingDomains"`
	SearchVolumeEstimate    int         `json:"searchVolumeEstimate"`
	DifficultyScore         float64     `json:"difficultyScore"`
	Priority                Priority    `json:"priority"`
	Reasoning               string      `json:"reasoning"`
	RelatedQueries          []string    `json:"relatedQueries"`
	ContentAngleSuggestions []string    `json:"contentAngleSuggestions"`
	EstimatedEffort         Level       `json:"estimatedEffort"`
	PotentialImpact         Level       `json:"potentialImpact"`
}

// TopicCluster groups tracked queries that read alike.
type TopicCluster struct {
	ClusterID           string         `json:"clusterId"`
	RepresentativeQuery string         `json:"representativeQuery"`
	RelatedQueries      []string       `json:"relatedQueries"`
	TotalCitations      int            `json:"totalCitations"`
	AvgCitationStrength float64        `json:"avgCitationStrength"`
	DominantDomains     []string       `json:"dominantDomains"`
	ContentTypes        []CitationType `json:"contentTypes"`
	GapOpportunities    []string       `json:"gapOpportunities"`
}

type GapSummary struct {
	Query                string      `json:"query"`
	OpportunityScore     float64     `json:"opportunityScore"`
	GapType              GapType     `json:"gapType"`
	Priority             Priority    `json:"priority"`
	SuggestedContentType ContentType `json:"suggestedContentType"`
	Reasoning            string      `json:"reasoning"`
}

type QuickWin struct {
	Query            string  `json:"query"`
	OpportunityScore float64 `json:"opportunityScore"`
	EstimatedEffort  Level   `json:"estimatedEffort"`
}

type ContentTypeCount struct {
	ContentType ContentType `json:"contentType"`
	Count       int         `json:"count"`
}

// GapReport summarises a ranked gap list.
type GapReport struct {
	TotalGaps               int                `json:"totalGaps"`
	GapTypes                map[GapType]int    `json:"gapTypes,omitempty"`
	PriorityDistribution    map[Priority]int   `json:"priorityDistribution,omitempty"`
	AverageOpportunityScore float64            `json:"averageOpportunityScore"`
	HighOpportunityGaps     int                `json:"highOpportunityGaps"`
	SuggestedContentTypes   []ContentTypeCount `json:"suggestedContentTypes,omitempty"`
	EffortDistribution      map[Level]int      `json:"effortDistribution,omitempty"`
	TopOpportunities        []GapSummary       `json:"topOpportunities,omitempty"`
	QuickWins               []QuickWin         `json:"quickWins,omitempty"`
	Summary                 string             `json:"summary"`
}
