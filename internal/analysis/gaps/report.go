package gaps

import (
	"fmt"
	"math"
	"sort"

	"citation-intelligence/internal/models"
)

// GenerateGapReport summarises gaps. Top opportunities and quick wins are
// taken by descending opportunity score whatever order gaps arrive in.
func (a *Analyzer) GenerateGapReport(gaps []models.ContentGap) models.GapReport {
	if len(gaps) == 0 {
		return models.GapReport{Summary: "No content gaps identified"}
	}

	report := models.GapReport{
		TotalGaps:            len(gaps),
		GapTypes:             make(map[models.GapType]int),
		PriorityDistribution: make(map[models.Priority]int),
		EffortDistribution:   make(map[models.Level]int),
		TopOpportunities:     make([]models.GapSummary, 0, min(10, len(gaps))),
		QuickWins:            make([]models.QuickWin, 0),
	}

	var total float64
	typeCounts := make(map[models.ContentType]int)
	var typeOrder []models.ContentType
	for _, g := range gaps {
		report.GapTypes[g.GapType]++
		report.PriorityDistribution[g.Priority]++
		report.EffortDistribution[g.EstimatedEffort]++
		total += g.OpportunityScore
		if g.OpportunityScore >= a.cfg.HighOpportunityThreshold {
			report.HighOpportunityGaps++
		}
		if _, ok := typeCounts[g.SuggestedContentType]; !ok {
			typeOrder = append(typeOrder, g.SuggestedContentType)
		}
		typeCounts[g.SuggestedContentType]++
	}
	report.AverageOpportunityScore = math.Round(total/float64(len(gaps))*100) / 100

	sort.SliceStable(typeOrder, func(i, j int) bool {
		return typeCounts[typeOrder[i]] > typeCounts[typeOrder[j]]
	})
	for _, ct := range typeOrder {
		report.SuggestedContentTypes = append(report.SuggestedContentTypes, models.ContentTypeCount{
			ContentType: ct,
			Count:       typeCounts[ct],
		})
	}

	ranked := append([]models.ContentGap(nil), gaps...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OpportunityScore > ranked[j].OpportunityScore
	})

	for _, g := range ranked[:min(10, len(ranked))] {
		report.TopOpportunities = append(report.TopOpportunities, models.GapSummary{
			Query:                g.QueryText,
			OpportunityScore:     g.OpportunityScore,
			GapType:              g.GapType,
			Priority:             g.Priority,
			SuggestedContentType: g.SuggestedContentType,
			Reasoning:            g.Reasoning,
		})
	}

	for _, g := range ranked {
		if g.EstimatedEffort != models.LevelLow || g.OpportunityScore < 0.6 {
			continue
		}
		report.QuickWins = append(report.QuickWins, models.QuickWin{
			Query:            g.QueryText,
			OpportunityScore: g.OpportunityScore,
			EstimatedEffort:  g.EstimatedEffort,
		})
		if len(report.QuickWins) == 5 {
			break
		}
	}

	report.Summary = fmt.Sprintf("Identified %d content gaps with %d high-opportunity targets",
		report.TotalGaps, report.HighOpportunityGaps)
	return report
}
