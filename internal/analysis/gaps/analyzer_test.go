package gaps

import (
	"errors"
	"fmt"
	"testing"

	"citation-intelligence/internal/common/config"
	"citation-intelligence/internal/common/idgen"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestAnalyzer(t *testing.T) *Analyzer {
	return NewAnalyzer(DefaultConfig(), logger.NewTestLogger(t))
}

func cite(query, domain string, prom float64) models.CitationRecord {
	return models.CitationRecord{
		Engine:          models.EngineGoogle,
		Query:           query,
		URL:             "https://" + domain + "/page",
		Position:        3,
		CitationType:    models.CitationTypeOrganic,
		SourceDomain:    domain,
		ProminenceScore: prom,
	}
}

func repeat(r models.CitationRecord, n int) []models.CitationRecord {
	out := make([]models.CitationRecord, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func ofType(gs []models.ContentGap, gt models.GapType) []models.ContentGap {
	var out []models.ContentGap
	for _, g := range gs {
		if g.GapType == gt {
			out = append(out, g)
		}
	}
	return out
}

func forQuery(gs []models.ContentGap, q string) []models.ContentGap {
	var out []models.ContentGap
	for _, g := range gs {
		if g.QueryText == q {
			out = append(out, g)
		}
	}
	return out
}

var (
	coffeeQueries = []string{"espresso coffee beans", "coffee beans roast", "espresso coffee roast", "coffee beans grind"}
	gardenQueries = []string{"garden tomato soil", "tomato soil compost", "garden tomato compost", "tomato soil water"}
)

// clusterFixture has two disjoint topics; every coffee query but the last is
// cited five times and the garden topic is never cited.
func clusterFixture() ([]models.CitationRecord, []string) {
	var records []models.CitationRecord
	for _, q := range coffeeQueries[:3] {
		records = append(records, repeat(cite(q, "beans.com", 0.9), 5)...)
	}
	tracked := append(append([]string{}, coffeeQueries...), gardenQueries...)
	return records, tracked
}

func clusterAnalyzer(t *testing.T) *Analyzer {
	cfg := DefaultConfig()
	cfg.MinClusterQueries = 8
	return NewAnalyzer(cfg, logger.NewTestLogger(t))
}

// ==========================
// IdentifyContentGaps
// ==========================

func TestIdentifyContentGaps_EmptyInput(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.IdentifyContentGaps(nil, []string{"coffee grinder settings"}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = a.IdentifyContentGaps([]models.CitationRecord{cite("x", "a.com", 0.5)}, nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIdentifyContentGaps_UncitedTrackedQueries(t *testing.T) {
	tracked := []string{"coffee grinder settings", "espresso machine cleaning", "milk frothing temperature"}
	records := []models.CitationRecord{cite("unrelated subject", "a.com", 0.9)}

	got := ofType(newTestAnalyzer(t).IdentifyContentGaps(records, tracked, nil), models.GapNoCitations)

	require.Len(t, got, len(tracked))
	for _, g := range got {
		assert.Contains(t, tracked, g.QueryText)
		assert.InDelta(t, 0.8, g.OpportunityScore, 1e-9)
		assert.InDelta(t, 0.2, g.DifficultyScore, 1e-9)
		assert.Equal(t, models.PriorityHigh, g.Priority)
		assert.Equal(t, models.LevelHigh, g.PotentialImpact)
		assert.Equal(t, idgen.Stable("no_citations", g.QueryText), g.GapID)
	}
}

func TestIdentifyContentGaps_DuplicateTrackedQueriesReportedOnce(t *testing.T) {
	tracked := []string{"coffee grinder settings", "espresso machine cleaning", "coffee grinder settings"}

	got := ofType(newTestAnalyzer(t).IdentifyContentGaps(nil, tracked, nil), models.GapNoCitations)

	require.Len(t, got, 2)
	assert.Len(t, forQuery(got, "coffee grinder settings"), 1)
}

func TestIdentifyContentGaps_WellCitedQueryHasNoCoverageGap(t *testing.T) {
	records := repeat(cite("best ai tool", "a.com", 0.9), 5)

	got := forQuery(newTestAnalyzer(t).IdentifyContentGaps(records, []string{"best ai tool"}, nil), "best ai tool")

	for _, g := range got {
		assert.NotEqual(t, models.GapNoCitations, g.GapType)
		assert.NotEqual(t, models.GapWeakCitations, g.GapType)
	}
}

func TestIdentifyContentGaps_ScoresWithinBandsAndIdempotent(t *testing.T) {
	records, tracked := clusterFixture()
	records = append(records,
		cite("how to buy cheap espresso", "rival.com", 0.2),
		cite("how to buy cheap espresso", "rival.com", 0.3),
		cite("how to buy cheap espresso", "other.com", 0.1),
	)
	tracked = append(tracked, "how to buy cheap espresso", "what is cold brew")
	a := clusterAnalyzer(t)

	first := a.IdentifyContentGaps(records, tracked, []string{"rival.com"})
	second := a.IdentifyContentGaps(records, tracked, []string{"rival.com"})

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	for i, g := range first {
		assert.GreaterOrEqual(t, g.OpportunityScore, 0.0)
		assert.LessOrEqual(t, g.OpportunityScore, 1.0)
		assert.Equal(t, models.PriorityForScore(g.OpportunityScore), g.Priority, g.GapID)
		if i > 0 {
			assert.GreaterOrEqual(t, first[i-1].OpportunityScore, g.OpportunityScore)
		}
	}
}

func TestIdentifyContentGaps_FailingFinderIsIsolated(t *testing.T) {
	a := newTestAnalyzer(t)
	a.finders = append([]finder{
		{"explodes", func(*Analyzer, *input) ([]models.ContentGap, error) { panic("boom") }},
		{"errors", func(*Analyzer, *input) ([]models.ContentGap, error) { return nil, errors.New("bad input") }},
	}, defaultFinders...)

	var got []models.ContentGap
	assert.NotPanics(t, func() {
		got = a.IdentifyContentGaps([]models.CitationRecord{cite("other", "a.com", 0.9)}, []string{"coffee grinder settings"}, nil)
	})
	assert.Len(t, ofType(got, models.GapNoCitations), 1)
}

// ==========================
// Finders
// ==========================

func TestFindCoverageGaps_WeakCitations(t *testing.T) {
	a := newTestAnalyzer(t)
	records := []models.CitationRecord{
		cite("coffee grinder settings", "a.com", 0.9),
		cite("coffee grinder settings", "b.com", 0.9),
	}

	got, err := a.findCoverageGaps(newInput(records, []string{"coffee grinder settings"}, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.GapWeakCitations, got[0].GapType)
	assert.InDelta(t, 0.7, got[0].OpportunityScore, 1e-9)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	assert.Equal(t, []string{"a.com", "b.com"}, got[0].CompetingDomains)
	assert.Equal(t, "Only 2 citations for 'coffee grinder settings' - opportunity to dominate", got[0].Reasoning)

	// the scoring pass re-derives priority from the final score
	final := ofType(a.IdentifyContentGaps(records, []string{"coffee grinder settings"}, nil), models.GapWeakCitations)
	require.NotEmpty(t, final)
	assert.Equal(t, models.PriorityMedium, final[0].Priority)
}

func TestFindLowProminenceGaps(t *testing.T) {
	records := []models.CitationRecord{
		cite("garden hose", "a.com", 0.1),
		cite("garden hose", "b.com", 0.3),
		cite("lawn mower", "a.com", 0.9),
		cite("lawn mower", "a.com", 0.7),
		cite("single", "a.com", 0.0),
	}

	got, err := newTestAnalyzer(t).findLowProminenceGaps(newInput(records, nil, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	g := got[0]
	assert.Equal(t, "garden hose", g.QueryText)
	assert.Equal(t, models.GapWeakCitations, g.GapType)
	assert.Equal(t, idgen.Stable("low_prominence", "garden hose"), g.GapID)
	assert.InDelta(t, 0.9, g.OpportunityScore, 1e-9)
	assert.InDelta(t, 0.48, g.DifficultyScore, 1e-9)
	assert.Equal(t, models.PriorityMedium, g.Priority)
	assert.Contains(t, g.ContentAngleSuggestions, "More detailed analysis than existing content")
}

func TestFindCompetitorDominatedGaps(t *testing.T) {
	a := newTestAnalyzer(t)

	t.Run("fully held", func(t *testing.T) {
		records := []models.CitationRecord{
			cite("crm software", "c1.com", 0.9),
			cite("crm software", "c2.com", 0.9),
			cite("crm software", "c1.com", 0.9),
		}
		got, err := a.findCompetitorDominatedGaps(newInput(records, nil, []string{" C1.com", "c2.com"}))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.GreaterOrEqual(t, got[0].DifficultyScore, 0.6)
		assert.InDelta(t, 0.9, got[0].DifficultyScore, 1e-9)
		assert.InDelta(t, 0.3, got[0].OpportunityScore, 1e-9)
		assert.Equal(t, models.PriorityLow, got[0].Priority)
		assert.Equal(t, models.LevelMedium, got[0].PotentialImpact)
		assert.Equal(t, models.LevelHigh, got[0].EstimatedEffort)
		assert.Equal(t, []string{"c1.com", "c2.com"}, got[0].CompetingDomains)
		assert.Equal(t, "Competitors control 100.0% of citations for 'crm software' - challenging but potential for disruption", got[0].Reasoning)
	})

	t.Run("mostly held", func(t *testing.T) {
		records := []models.CitationRecord{
			cite("crm software", "c1.com", 0.9),
			cite("crm software", "c1.com", 0.9),
			cite("crm software", "c1.com", 0.9),
			cite("crm software", "mine.com", 0.9),
		}
		got, err := a.findCompetitorDominatedGaps(newInput(records, nil, []string{"c1.com"}))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 0.35, got[0].OpportunityScore, 1e-9)
		assert.Equal(t, models.PriorityMedium, got[0].Priority)
		assert.Equal(t, models.LevelHigh, got[0].PotentialImpact)
	})

	t.Run("too few citations or no competitors", func(t *testing.T) {
		records := []models.CitationRecord{cite("crm software", "c1.com", 0.9), cite("crm software", "c1.com", 0.9)}
		got, err := a.findCompetitorDominatedGaps(newInput(records, nil, []string{"c1.com"}))
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = a.findCompetitorDominatedGaps(newInput(repeat(records[0], 4), nil, nil))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFindTopicClusterGaps(t *testing.T) {
	records, tracked := clusterFixture()

	got, err := clusterAnalyzer(t).findTopicClusterGaps(newInput(records, tracked, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	g := got[0]
	assert.Equal(t, "coffee beans grind", g.QueryText)
	assert.Equal(t, models.GapTopicCluster, g.GapType)
	assert.InDelta(t, 0.6, g.OpportunityScore, 1e-9)
	assert.InDelta(t, 0.4, g.DifficultyScore, 1e-9)
	assert.Equal(t, coffeeQueries[:3], g.RelatedQueries)
}

func TestFindTopicClusterGaps_TooFewQueries(t *testing.T) {
	records, tracked := clusterFixture()

	got, err := newTestAnalyzer(t).findTopicClusterGaps(newInput(records, tracked, nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindQuestionVariationGaps(t *testing.T) {
	a := newTestAnalyzer(t)
	records := repeat(cite("how to brew coffee", "a.com", 0.9), 4)

	got, err := a.findQuestionVariationGaps(newInput(records, []string{"how to brew coffee"}, nil))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "What is brew coffee?", got[0].QueryText)
	assert.Equal(t, models.ContentExplainerArticle, got[0].SuggestedContentType)
	assert.Equal(t, "Best brew coffee", got[1].QueryText)
	assert.Equal(t, models.ContentComparisonReview, got[1].SuggestedContentType)
	for _, g := range got {
		assert.Equal(t, models.GapQuestionVariation, g.GapType)
		assert.InDelta(t, 0.62, g.OpportunityScore, 1e-9)
		assert.InDelta(t, 0.3, g.DifficultyScore, 1e-9)
		assert.Equal(t, 200, g.SearchVolumeEstimate)
		assert.Equal(t, []string{"brew_coffee"}, g.SuggestedTopics)
		assert.Equal(t, []string{"how to brew coffee"}, g.RelatedQueries)
	}
}

func TestFindQuestionVariationGaps_MixedTypesSkipped(t *testing.T) {
	got, err := newTestAnalyzer(t).findQuestionVariationGaps(newInput(nil, []string{"what is espresso", "espresso"}, nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ==========================
// Scoring pass
// ==========================

func TestScoreAndPrioritize(t *testing.T) {
	gaps := []models.ContentGap{
		{GapID: "plain", QueryText: "garden hose", OpportunityScore: 0.45},
		{GapID: "boosted", QueryText: "best garden hose", OpportunityScore: 0.45},
		{GapID: "both", QueryText: "how to buy a bike", OpportunityScore: 0.8, PotentialImpact: models.LevelLow},
		{GapID: "tie", QueryText: "lawn mower", OpportunityScore: 0.45},
	}

	scoreAndPrioritize(gaps)

	ids := make([]string, len(gaps))
	for i, g := range gaps {
		ids[i] = g.GapID
	}
	assert.Equal(t, []string{"both", "boosted", "plain", "tie"}, ids)
	assert.InDelta(t, 1.0, gaps[0].OpportunityScore, 1e-9)
	assert.Equal(t, models.PriorityHigh, gaps[0].Priority)
	assert.Equal(t, models.LevelHigh, gaps[0].PotentialImpact)
	assert.InDelta(t, 0.55, gaps[1].OpportunityScore, 1e-9)
	assert.Equal(t, models.PriorityMedium, gaps[1].Priority)
	assert.Equal(t, models.PriorityLow, gaps[2].Priority)
}

// ==========================
// Topic clusters
// ==========================

func TestTopicClusters(t *testing.T) {
	records, tracked := clusterFixture()

	got, err := clusterAnalyzer(t).TopicClusters(records, tracked)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byRep := make(map[string]models.TopicCluster)
	for _, c := range got {
		byRep[c.RepresentativeQuery] = c
	}
	coffee, ok := byRep["espresso coffee beans"]
	require.True(t, ok)
	assert.Equal(t, 15, coffee.TotalCitations)
	assert.InDelta(t, 0.9, coffee.AvgCitationStrength, 1e-9)
	assert.Equal(t, []string{"beans.com"}, coffee.DominantDomains)
	assert.Equal(t, []models.CitationType{models.CitationTypeOrganic}, coffee.ContentTypes)
	assert.Equal(t, []string{"coffee beans grind"}, coffee.GapOpportunities)
	assert.ElementsMatch(t, coffeeQueries[1:], coffee.RelatedQueries)

	garden, ok := byRep["garden tomato soil"]
	require.True(t, ok)
	assert.Zero(t, garden.TotalCitations)
	assert.Empty(t, garden.GapOpportunities)
	assert.Empty(t, garden.DominantDomains)
}

// ==========================
// Heuristics
// ==========================

func TestSuggestContentType(t *testing.T) {
	cases := map[string]models.ContentType{
		"how to bake bread":     models.ContentTutorialGuide,
		"what is sourdough":     models.ContentExplainerArticle,
		"best stand mixer":      models.ContentComparisonReview,
		"mortgage calculator":   models.ContentInteractiveTool,
		"why does dough rise":   models.ContentFAQArticle,
		"sourdough starter tip": models.ContentComprehensiveArticle,
	}
	for q, want := range cases {
		assert.Equal(t, want, suggestContentType(q), q)
	}
}

func TestEstimateSearchVolume(t *testing.T) {
	assert.Equal(t, 2000, estimateSearchVolume("how to bake bread"))
	assert.Equal(t, 1500, estimateSearchVolume("best laptops 2026"))
	assert.Equal(t, 300, estimateSearchVolume("cheap light fast quiet reliable long lasting notebooks"))
	assert.Equal(t, 3000, estimateSearchVolume("notebooks"))
	assert.Equal(t, 1000, estimateSearchVolume("cheap fast reliable notebooks"))
}

func TestEstimateEffort(t *testing.T) {
	assert.Equal(t, models.LevelHigh, estimateEffort("enterprise api gateway"))
	assert.Equal(t, models.LevelHigh, estimateEffort("laptop comparison"))
	assert.Equal(t, models.LevelMedium, estimateEffort("how to bake bread"))
	assert.Equal(t, models.LevelLow, estimateEffort("what is sourdough"))
	assert.Equal(t, models.LevelMedium, estimateEffort("sourdough starter"))
}

func TestExtractTopics(t *testing.T) {
	assert.Equal(t, []string{"best", "crm", "small", "business"}, extractTopics("What is the best CRM for small business?"))
	assert.Empty(t, extractTopics("how to do it"))
}

func TestClassifyQuestionAndTopicKey(t *testing.T) {
	assert.Equal(t, QuestionWhatIs, classifyQuestion("What is a CRM"))
	assert.Equal(t, QuestionHowTo, classifyQuestion("how can I export contacts"))
	assert.Equal(t, QuestionBest, classifyQuestion("best crm"))
	assert.Equal(t, QuestionVsComparison, classifyQuestion("hubspot vs salesforce"))
	assert.Equal(t, QuestionGeneral, classifyQuestion("crm pricing"))

	assert.Equal(t, "i export contacts", topicKey("How do I export contacts from hubspot"))
	assert.Equal(t, "", topicKey("what is the"))
}

func TestRelatedQueries(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.relatedQueries("coffee beans roast", []string{"coffee beans roast", "coffee beans grind", "garden tomato soil"})
	assert.Equal(t, []string{"coffee beans grind"}, got)

	assert.Empty(t, a.relatedQueries("coffee beans roast", []string{"coffee beans roast"}))
	assert.NotNil(t, a.relatedQueries("coffee beans roast", nil))
}

// ==========================
// Report
// ==========================

func TestGenerateGapReport_Empty(t *testing.T) {
	got := newTestAnalyzer(t).GenerateGapReport(nil)
	assert.Equal(t, 0, got.TotalGaps)
	assert.Equal(t, "No content gaps identified", got.Summary)
}

func TestGenerateGapReport(t *testing.T) {
	gaps := []models.ContentGap{
		{QueryText: "q1", GapType: models.GapNoCitations, OpportunityScore: 0.9, Priority: models.PriorityHigh, EstimatedEffort: models.LevelLow, SuggestedContentType: models.ContentExplainerArticle},
		{QueryText: "q2", GapType: models.GapWeakCitations, OpportunityScore: 0.7, Priority: models.PriorityMedium, EstimatedEffort: models.LevelLow, SuggestedContentType: models.ContentExplainerArticle},
		{QueryText: "q3", GapType: models.GapCompetitorDominated, OpportunityScore: 0.5, Priority: models.PriorityMedium, EstimatedEffort: models.LevelHigh, SuggestedContentType: models.ContentComparisonReview},
		{QueryText: "q4", GapType: models.GapQuestionVariation, OpportunityScore: 0.3, Priority: models.PriorityLow, EstimatedEffort: models.LevelMedium, SuggestedContentType: models.ContentTutorialGuide},
	}

	got := newTestAnalyzer(t).GenerateGapReport(gaps)

	assert.Equal(t, 4, got.TotalGaps)
	assert.Equal(t, 1, got.GapTypes[models.GapCompetitorDominated])
	assert.Equal(t, 2, got.PriorityDistribution[models.PriorityMedium])
	assert.InDelta(t, 0.6, got.AverageOpportunityScore, 1e-9)
	assert.Equal(t, 2, got.HighOpportunityGaps)
	assert.Equal(t, []models.ContentTypeCount{
		{ContentType: models.ContentExplainerArticle, Count: 2},
		{ContentType: models.ContentComparisonReview, Count: 1},
		{ContentType: models.ContentTutorialGuide, Count: 1},
	}, got.SuggestedContentTypes)
	assert.Equal(t, map[models.Level]int{models.LevelLow: 2, models.LevelHigh: 1, models.LevelMedium: 1}, got.EffortDistribution)
	require.Len(t, got.TopOpportunities, 4)
	assert.Equal(t, "q1", got.TopOpportunities[0].Query)
	require.Len(t, got.QuickWins, 2)
	assert.Equal(t, "q2", got.QuickWins[1].Query)
	assert.Equal(t, "Identified 4 content gaps with 2 high-opportunity targets", got.Summary)
}

func TestGenerateGapReport_RanksUnsortedInput(t *testing.T) {
	gaps := []models.ContentGap{{QueryText: "first-tie", OpportunityScore: 0.6, EstimatedEffort: models.LevelLow}}
	for i := 1; i <= 12; i++ {
		gaps = append(gaps, models.ContentGap{
			QueryText:        fmt.Sprintf("q%02d", i),
			OpportunityScore: float64(i) / 20,
			EstimatedEffort:  models.LevelLow,
		})
	}

	got := newTestAnalyzer(t).GenerateGapReport(gaps)

	require.Len(t, got.TopOpportunities, 10)
	assert.Equal(t, "first-tie", got.TopOpportunities[0].Query)
	assert.Equal(t, "q12", got.TopOpportunities[1].Query)
	assert.Equal(t, "q04", got.TopOpportunities[9].Query)
	for i := 1; i < len(got.TopOpportunities); i++ {
		assert.GreaterOrEqual(t, got.TopOpportunities[i-1].OpportunityScore, got.TopOpportunities[i].OpportunityScore)
	}

	require.Len(t, got.QuickWins, 2)
	assert.Equal(t, "first-tie", got.QuickWins[0].Query)
	assert.Equal(t, "q12", got.QuickWins[1].Query)

	// caller's slice keeps its order
	assert.Equal(t, "first-tie", gaps[0].QueryText)
	assert.Equal(t, "q01", gaps[1].QueryText)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.GapAnalysisConfig{MinClusterQueries: 12, RelatedSimilarity: 0.4})
	assert.Equal(t, 12, cfg.MinClusterQueries)
	assert.InDelta(t, 0.4, cfg.RelatedSimilarity, 1e-9)
	assert.InDelta(t, 0.7, cfg.HighOpportunityThreshold, 1e-9)
	assert.Equal(t, int64(42), cfg.ClusterSeed)
}
