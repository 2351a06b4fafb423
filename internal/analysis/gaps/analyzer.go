// Package gaps finds tracked queries that current citations under-serve and
// ranks them as content opportunities.
package gaps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/metrics"
	"citation-intelligence/internal/models"
)

const engineName = "gaps"

// input is the shared read-only view handed to every finder.
type input struct {
	records     []models.CitationRecord
	tracked     []string
	competitors map[string]bool
	// byQuery groups records under their exact query text; queries keeps
	// the distinct queries in order of first appearance.
	byQuery map[string][]models.CitationRecord
	queries []string
}

func newInput(records []models.CitationRecord, tracked, competitors []string) *input {
	in := &input{
		records:     records,
		competitors: make(map[string]bool),
		byQuery:     make(map[string][]models.CitationRecord),
	}
	seen := make(map[string]bool)
	for _, q := range tracked {
		if seen[q] {
			continue
		}
		seen[q] = true
		in.tracked = append(in.tracked, q)
	}
	for _, c := range competitors {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			in.competitors[c] = true
		}
	}
	for _, r := range records {
		if _, ok := in.byQuery[r.Query]; !ok {
			in.queries = append(in.queries, r.Query)
		}
		in.byQuery[r.Query] = append(in.byQuery[r.Query], r)
	}
	return in
}

type finder struct {
	name string
	run  func(a *Analyzer, in *input) ([]models.ContentGap, error)
}

var defaultFinders = []finder{
	{"coverage", (*Analyzer).findCoverageGaps},
	{"low_prominence", (*Analyzer).findLowProminenceGaps},
	{"competitor_dominated", (*Analyzer).findCompetitorDominatedGaps},
	{"topic_cluster", (*Analyzer).findTopicClusterGaps},
	{"question_variation", (*Analyzer).findQuestionVariationGaps},
}

// Analyzer is the gap identification engine. It holds only read-only
// configuration and is safe for concurrent use.
type Analyzer struct {
	cfg     Config
	logger  logger.Logger
	finders []finder
}

func NewAnalyzer(cfg Config, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Analyzer{
		cfg:     cfg,
		logger:  log.WithFields(map[string]interface{}{"engine": engineName}),
		finders: defaultFinders,
	}
}

// IdentifyContentGaps runs every finder and returns the scored gaps, best
// first. Gap ids depend only on the finding, so equal input gives equal
// output. A failing finder is logged and contributes nothing.
func (a *Analyzer) IdentifyContentGaps(records []models.CitationRecord, trackedQueries, competitorDomains []string) []models.ContentGap {
	out := make([]models.ContentGap, 0)
	if len(records) == 0 || len(trackedQueries) == 0 {
		return out
	}

	in := newInput(records, trackedQueries, competitorDomains)
	for _, f := range a.finders {
		found, err := a.runFinder(f, in)
		if err != nil {
			a.logger.Error("gap finder failed", map[string]interface{}{
				"scan":  f.name,
				"error": err,
			})
			continue
		}
		out = append(out, found...)
	}

	scoreAndPrioritize(out)

	actionable := 0
	for _, g := range out {
		metrics.AnalysisGapsEmitted.WithLabelValues(string(g.GapType)).Inc()
		if g.OpportunityScore >= a.cfg.MinOpportunityScore {
			actionable++
		}
	}
	a.logger.Info("content gaps identified", map[string]interface{}{
		"records":        len(records),
		"trackedQueries": len(in.tracked),
		"gaps":           len(out),
		"actionable":     actionable,
	})
	return out
}

func (a *Analyzer) runFinder(f finder, in *input) (found []models.ContentGap, err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			found, err = nil, fmt.Errorf("panic: %v", r)
		}
		metrics.ObserveScan(engineName, f.name, started, err != nil)
	}()
	return f.run(a, in)
}

// scoreAndPrioritize applies keyword boosts, clamps scores to [0,1], derives
// priority from the final score and orders gaps best first. Equal scores
// keep discovery order.
func scoreAndPrioritize(gaps []models.ContentGap) {
	for i := range gaps {
		g := &gaps[i]
		q := strings.ToLower(g.QueryText)
		if containsAny(q, "how to", "best", "guide", "tutorial") {
			g.OpportunityScore += 0.1
		}
		if containsAny(q, "buy", "price", "cost", "review", "comparison") {
			g.OpportunityScore += 0.15
			g.PotentialImpact = models.LevelHigh
		}
		g.OpportunityScore = clamp01(g.OpportunityScore)
		g.Priority = models.PriorityForScore(g.OpportunityScore)
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].OpportunityScore > gaps[j].OpportunityScore
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// newGap fills the query-derived fields every finder shares.
func newGap(id, query string, gt models.GapType) models.ContentGap {
	return models.ContentGap{
		GapID:                   id,
		QueryText:               query,
		GapType:                 gt,
		SuggestedContentType:    suggestContentType(query),
		SuggestedTopics:         extractTopics(query),
		CompetingDomains:        []string{},
		SearchVolumeEstimate:    estimateSearchVolume(query),
		RelatedQueries:          []string{},
		ContentAngleSuggestions: []string{},
		EstimatedEffort:         estimateEffort(query),
	}
}

func distinctDomains(records []models.CitationRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		if r.SourceDomain == "" || seen[r.SourceDomain] {
			continue
		}
		seen[r.SourceDomain] = true
		out = append(out, r.SourceDomain)
	}
	return out
}
