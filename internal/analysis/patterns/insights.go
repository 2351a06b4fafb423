package patterns

import (
	"fmt"
	"strings"

	"citation-intelligence/internal/models"
)

const highStrength = 0.8

// GeneratePatternInsights turns patterns into counts plus recommendations,
// opportunities and threats.
func GeneratePatternInsights(patterns []models.CitationPattern) models.Insights {
	insights := models.Insights{
		TotalPatterns:        len(patterns),
		PatternTypes:         make(map[models.PatternType]int),
		HighStrengthPatterns: make([]models.CitationPattern, 0),
		Recommendations:      make([]models.InsightItem, 0),
		Opportunities:        make([]models.InsightItem, 0),
		Threats:              make([]models.InsightItem, 0),
	}

	for _, p := range patterns {
		insights.PatternTypes[p.PatternType]++
		if p.Strength >= highStrength {
			insights.HighStrengthPatterns = append(insights.HighStrengthPatterns, p)
		}

		switch {
		case p.PatternType == models.PatternDomainFrequency && p.Strength >= 0.7:
			priority := models.PriorityMedium
			if p.Strength >= highStrength {
				priority = models.PriorityHigh
			}
			insights.Recommendations = append(insights.Recommendations, models.InsightItem{
				Type:        models.InsightContentPartnership,
				Description: "Consider partnerships or guest content with high-frequency domains: " + strings.Join(firstN(p.Domains, 3), ", "),
				Priority:    priority,
			})

		case p.PatternType == models.PatternContentTypePerformance && p.Strength >= 0.7:
			var best []string
			for i := 0; i < len(p.Examples) && i < 2; i++ {
				best = append(best, string(p.Examples[i].ContentType))
			}
			insights.Opportunities = append(insights.Opportunities, models.InsightItem{
				Type:        models.InsightContentOptimization,
				Description: fmt.Sprintf("Focus on creating %s content types for better citation potential", strings.Join(best, " and ")),
				Priority:    models.PriorityHigh,
			})

		case p.PatternType == models.PatternEngineContentPreference:
			engine, ctype := "unknown", "unknown"
			if len(p.Engines) > 0 {
				engine = string(p.Engines[0])
			}
			if len(p.ContentTypes) > 0 {
				ctype = string(p.ContentTypes[0])
			}
			insights.Opportunities = append(insights.Opportunities, models.InsightItem{
				Type:        models.InsightEngineOptimization,
				Description: fmt.Sprintf("Optimize content for %s by focusing on %s format", engine, ctype),
				Priority:    models.PriorityMedium,
			})

		case p.PatternType == models.PatternTemporalSpikes && p.Strength >= 0.6:
			insights.Opportunities = append(insights.Opportunities, models.InsightItem{
				Type:        models.InsightTimingOptimization,
				Description: "Schedule content publication during high-activity periods identified in pattern",
				Priority:    models.PriorityMedium,
			})
		}
	}

	for _, p := range patterns {
		if p.PatternType == models.PatternDomainFrequency && p.Strength >= highStrength {
			insights.Threats = append(insights.Threats, models.InsightItem{
				Type:        models.InsightCompetitorDominance,
				Description: "High competitor dominance in citation space: " + strings.Join(firstN(p.Domains, 3), ", "),
				Priority:    models.PriorityHigh,
			})
		}
	}
	return insights
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
