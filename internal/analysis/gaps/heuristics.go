package gaps

import (
	"strings"

	"citation-intelligence/internal/analysis/textmining"
	"citation-intelligence/internal/models"
)

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func suggestContentType(query string) models.ContentType {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "how to", "how do", "tutorial", "guide", "step"):
		return models.ContentTutorialGuide
	case containsAny(q, "what is", "definition", "meaning"):
		return models.ContentExplainerArticle
	case containsAny(q, "best", "top", "review", "comparison", "vs"):
		return models.ContentComparisonReview
	case containsAny(q, "tool", "calculator", "generator"):
		return models.ContentInteractiveTool
	case strings.Contains(query, "?") || containsAny(q, "why", "when", "where"):
		return models.ContentFAQArticle
	default:
		return models.ContentComprehensiveArticle
	}
}

var topicStopWords = map[string]bool{
	"what": true, "is": true, "how": true, "to": true, "do": true, "can": true, "why": true,
	"when": true, "where": true, "which": true, "the": true, "a": true, "an": true, "and": true,
	"or": true, "but": true, "in": true, "on": true, "at": true, "by": true, "for": true,
	"with": true, "about": true,
}

// extractTopics keeps up to five distinct content words of a query.
func extractTopics(query string) []string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(query), "?", ""))
	seen := make(map[string]bool)
	out := make([]string, 0, 5)
	for _, w := range words {
		if len(w) <= 2 || topicStopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func estimateSearchVolume(query string) int {
	volume := 1000.0
	q := strings.ToLower(query)
	words := len(strings.Fields(query))
	switch {
	case containsAny(q, "how to", "tutorial"):
		volume *= 2
	case containsAny(q, "best", "top", "review"):
		volume *= 1.5
	case words > 6:
		volume *= 0.3
	case words <= 2:
		volume *= 3
	}
	return int(volume)
}

func estimateEffort(query string) models.Level {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "api", "code", "programming", "technical", "advanced", "enterprise"):
		return models.LevelHigh
	case containsAny(q, "best", "comparison", "review", "vs", "analysis"):
		return models.LevelHigh
	case containsAny(q, "how to", "tutorial", "guide", "step"):
		return models.LevelMedium
	case containsAny(q, "what is", "definition", "meaning"):
		return models.LevelLow
	default:
		return models.LevelMedium
	}
}

// relatedQueries returns up to five of candidates that read like query. The
// query itself is never returned. When the candidates carry no usable terms
// it falls back to two or more shared words.
func (a *Analyzer) relatedQueries(query string, candidates []string) []string {
	out := make([]string, 0)
	if len(candidates) < 2 {
		return out
	}
	others := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != query {
			others = append(others, c)
		}
	}
	if len(others) == 0 {
		return out
	}

	similar, err := textmining.Similar(query, others, a.cfg.RelatedSimilarity, 5)
	if err == nil {
		return append(out, similar...)
	}

	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		words[w] = true
	}
	for _, other := range others {
		shared := 0
		seen := make(map[string]bool)
		for _, w := range strings.Fields(strings.ToLower(other)) {
			if words[w] && !seen[w] {
				shared++
				seen[w] = true
			}
		}
		if shared >= 2 {
			out = append(out, other)
			if len(out) == 5 {
				break
			}
		}
	}
	return out
}

type angleContext struct {
	improveExisting bool
	differentiate   bool
	cluster         bool
}

func contentAngles(query string, ctx angleContext) []string {
	q := strings.ToLower(query)
	var angles []string
	switch {
	case strings.Contains(q, "how"):
		angles = append(angles,
			"Step-by-step tutorial with screenshots",
			"Video walkthrough with examples",
			"Common mistakes to avoid guide")
	case strings.Contains(q, "what"):
		angles = append(angles,
			"Comprehensive definition with examples",
			"Visual infographic explanation",
			"Comparison with similar concepts")
	case strings.Contains(q, "best"):
		angles = append(angles,
			"Data-driven comparison with pros/cons",
			"User review aggregation",
			"Expert recommendations with reasoning")
	}
	if ctx.improveExisting {
		angles = append(angles,
			"More detailed analysis than existing content",
			"Recent data and updated information",
			"Original research or case studies")
	}
	if ctx.differentiate {
		angles = append(angles,
			"Unique perspective or contrarian viewpoint",
			"Personal experience or case study approach",
			"Interactive elements or tools")
	}
	if ctx.cluster {
		angles = append(angles, "Comprehensive resource covering related topics")
	}
	if len(angles) > 5 {
		angles = angles[:5]
	}
	if angles == nil {
		angles = []string{}
	}
	return angles
}
