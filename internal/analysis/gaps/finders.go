package gaps

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"citation-intelligence/internal/common/idgen"
	"citation-intelligence/internal/models"

	"gonum.org/v1/gonum/stat"
)

// findCoverageGaps flags tracked queries with no citations or only one or two.
func (a *Analyzer) findCoverageGaps(in *input) ([]models.ContentGap, error) {
	var out []models.ContentGap
	for _, q := range in.tracked {
		cited := in.byQuery[q]
		switch n := len(cited); {
		case n == 0:
			g := newGap(idgen.Stable(string(models.GapNoCitations), q), q, models.GapNoCitations)
			g.OpportunityScore = 0.8
			g.DifficultyScore = 0.2
			g.Priority = models.PriorityHigh
			g.Reasoning = fmt.Sprintf("No citations found for '%s' - clear opportunity for original content", q)
			g.RelatedQueries = a.relatedQueries(q, in.tracked)
			g.ContentAngleSuggestions = contentAngles(q, angleContext{})
			g.PotentialImpact = models.LevelHigh
			out = append(out, g)

		case n <= 2:
			g := newGap(idgen.Stable(string(models.GapWeakCitations), q), q, models.GapWeakCitations)
			g.OpportunityScore = 0.7
			g.DifficultyScore = 0.3
			g.Priority = models.PriorityHigh
			g.CompetingDomains = distinctDomains(cited)
			g.Reasoning = fmt.Sprintf("Only %d citations for '%s' - opportunity to dominate", n, q)
			g.RelatedQueries = a.relatedQueries(q, in.tracked)
			g.ContentAngleSuggestions = contentAngles(q, angleContext{})
			g.PotentialImpact = models.LevelHigh
			out = append(out, g)
		}
	}
	return out, nil
}

// findLowProminenceGaps flags batch queries whose citations sit in weak
// slots on average.
func (a *Analyzer) findLowProminenceGaps(in *input) ([]models.ContentGap, error) {
	queries := append([]string(nil), in.queries...)
	sort.Strings(queries)

	var out []models.ContentGap
	for _, q := range queries {
		cited := in.byQuery[q]
		if len(cited) < 2 {
			continue
		}
		scores := make([]float64, len(cited))
		for i, r := range cited {
			scores[i] = r.ProminenceScore
		}
		mean := stat.Mean(scores, nil)
		if mean >= 0.5 {
			continue
		}

		g := newGap(idgen.Stable("low_prominence", q), q, models.GapWeakCitations)
		g.OpportunityScore = 0.6 + (0.5 - mean)
		g.DifficultyScore = 0.4 + mean*0.4
		g.Priority = models.PriorityMedium
		g.CompetingDomains = distinctDomains(cited)
		g.Reasoning = fmt.Sprintf("Low average prominence (%.2f) for '%s' - opportunity to create higher-quality content", mean, q)
		g.ContentAngleSuggestions = contentAngles(q, angleContext{improveExisting: true})
		g.PotentialImpact = models.LevelMedium
		out = append(out, g)
	}
	return out, nil
}

// findCompetitorDominatedGaps flags batch queries where competitor domains
// hold at least 60% of three or more citations.
func (a *Analyzer) findCompetitorDominatedGaps(in *input) ([]models.ContentGap, error) {
	if len(in.competitors) == 0 {
		return nil, nil
	}
	var out []models.ContentGap
	for _, q := range in.queries {
		cited := in.byQuery[q]
		if len(cited) < 3 {
			continue
		}
		held := 0
		for _, r := range cited {
			if in.competitors[r.SourceDomain] {
				held++
			}
		}
		share := float64(held) / float64(len(cited))
		if share < 0.6 {
			continue
		}

		g := newGap(idgen.Stable(string(models.GapCompetitorDominated), q), q, models.GapCompetitorDominated)
		g.OpportunityScore = 0.5 - share*0.2
		g.DifficultyScore = 0.6 + share*0.3
		g.Priority = models.PriorityMedium
		g.PotentialImpact = models.LevelHigh
		if share > 0.8 {
			g.Priority = models.PriorityLow
			g.PotentialImpact = models.LevelMedium
		}
		g.CompetingDomains = distinctDomains(cited)
		g.Reasoning = fmt.Sprintf("Competitors control %.1f%% of citations for '%s' - challenging but potential for disruption", share*100, q)
		g.RelatedQueries = a.relatedQueries(q, in.queries)
		g.ContentAngleSuggestions = contentAngles(q, angleContext{differentiate: true})
		g.EstimatedEffort = models.LevelHigh
		out = append(out, g)
	}
	return out, nil
}

// findTopicClusterGaps flags tracked queries cited far less than their
// topic-cluster peers.
func (a *Analyzer) findTopicClusterGaps(in *input) ([]models.ContentGap, error) {
	clusters, err := a.clusterTracked(in.tracked)
	if err != nil {
		return nil, err
	}

	var out []models.ContentGap
	for _, c := range clusters {
		avg := c.avgCitations(in)
		for _, q := range c.queries {
			if !c.isUnderRepresented(in, q, avg) {
				continue
			}
			peers := make([]string, 0, 3)
			for _, p := range c.queries {
				if p != q && len(peers) < 3 {
					peers = append(peers, p)
				}
			}

			g := newGap(idgen.Stable(string(models.GapTopicCluster), strconv.Itoa(c.id), q), q, models.GapTopicCluster)
			g.OpportunityScore = 0.6
			g.DifficultyScore = 0.4
			g.Priority = models.PriorityMedium
			g.Reasoning = fmt.Sprintf("Under-represented in topic cluster - other similar queries have %.1f avg citations", avg)
			g.RelatedQueries = peers
			g.ContentAngleSuggestions = contentAngles(q, angleContext{cluster: true})
			g.EstimatedEffort = models.LevelMedium
			g.PotentialImpact = models.LevelMedium
			out = append(out, g)
		}
	}
	return out, nil
}

type topicVariations struct {
	topic string
	types []QuestionType
	byTyp map[QuestionType][]string
}

// findQuestionVariationGaps suggests the missing high-value phrasings for
// topics that are only ever asked one way.
func (a *Analyzer) findQuestionVariationGaps(in *input) ([]models.ContentGap, error) {
	var topics []*topicVariations
	index := make(map[string]*topicVariations)
	for _, q := range in.tracked {
		topic := topicKey(q)
		if topic == "" {
			continue
		}
		tv, ok := index[topic]
		if !ok {
			tv = &topicVariations{topic: topic, byTyp: make(map[QuestionType][]string)}
			index[topic] = tv
			topics = append(topics, tv)
		}
		qt := classifyQuestion(q)
		if _, ok := tv.byTyp[qt]; !ok {
			tv.types = append(tv.types, qt)
		}
		tv.byTyp[qt] = append(tv.byTyp[qt], q)
	}

	var out []models.ContentGap
	for _, tv := range topics {
		if len(tv.types) != 1 {
			continue
		}
		existing := tv.types[0]
		queries := tv.byTyp[existing]
		total := 0
		for _, q := range queries {
			total += len(in.byQuery[q])
		}
		related := queries
		if len(related) > 3 {
			related = related[:3]
		}

		for _, missing := range highValueQuestions {
			if missing == existing {
				continue
			}
			g := newGap(
				idgen.Stable(string(models.GapQuestionVariation), string(missing), tv.topic),
				questionVariation(tv.topic, missing),
				models.GapQuestionVariation,
			)
			g.OpportunityScore = 0.5 + float64(min(total, 10))*0.03
			g.SuggestedContentType = questionContentType(missing)
			g.SuggestedTopics = []string{strings.ReplaceAll(tv.topic, " ", "_")}
			g.SearchVolumeEstimate = max(100, total*50)
			g.DifficultyScore = 0.3
			g.Priority = models.PriorityMedium
			g.Reasoning = fmt.Sprintf("Missing '%s' variation for topic '%s' - related queries show interest", missing, tv.topic)
			g.RelatedQueries = append([]string{}, related...)
			g.ContentAngleSuggestions = questionAngles(missing, tv.topic)
			g.EstimatedEffort = models.LevelMedium
			g.PotentialImpact = models.LevelMedium
			out = append(out, g)
		}
	}
	return out, nil
}
