package patterns

import (
	"math"
	"strings"

	"citation-intelligence/internal/models"

	"gonum.org/v1/gonum/stat"
)

var questionWords = map[string]bool{
	"what": true, "how": true, "why": true, "when": true, "where": true, "who": true, "which": true,
}

// AnalyzeCompetitorPatterns profiles each competitor domain found in records.
// Domains are matched case-insensitively; those with no citations are
// skipped.
func (a *Analyzer) AnalyzeCompetitorPatterns(records []models.CitationRecord, competitors []string) []models.CompetitorPattern {
	out := make([]models.CompetitorPattern, 0)
	if len(records) == 0 || len(competitors) == 0 {
		return out
	}

	loc := a.cfg.location()
	span := models.SpanOf(records)
	hasTimes := !span.Start.IsZero()
	days := 1.0
	if hasTimes {
		days = math.Max(1, math.Floor(span.End.Sub(span.Start).Hours()/24))
	}

	for _, domain := range competitors {
		want := strings.ToLower(strings.TrimSpace(domain))
		var matched []models.CitationRecord
		for _, r := range records {
			if r.SourceDomain == want {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			continue
		}

		p := models.CompetitorPattern{
			CompetitorDomain:      domain,
			CitationCount:         len(matched),
			CitationFrequency:     float64(len(matched)) / days,
			PreferredContentTypes: preferredTypes(matched),
			StrongTopics:          strongTopics(matched),
			CitationTimingPatterns: models.TimingPatterns{
				HourlyDistribution: make(map[int]int),
				DailyDistribution:  make(map[string]int),
			},
			EnginesDominance: make(map[models.Engine]float64),
		}

		positions := make([]float64, len(matched))
		engineCounts := make(map[models.Engine]int)
		for i, r := range matched {
			positions[i] = float64(r.Position)
			engineCounts[r.Engine]++
			if r.HasTimestamp() {
				t := r.CreatedAt.In(loc)
				p.CitationTimingPatterns.HourlyDistribution[t.Hour()]++
				p.CitationTimingPatterns.DailyDistribution[t.Weekday().String()]++
			}
		}
		for engine, c := range engineCounts {
			p.EnginesDominance[engine] = float64(c) / float64(len(matched))
		}
		p.AveragePosition = stat.Mean(positions, nil)
		out = append(out, p)
	}

	a.logger.Info("competitor patterns analyzed", map[string]interface{}{
		"competitors": len(competitors),
		"profiled":    len(out),
	})
	return out
}

func preferredTypes(records []models.CitationRecord) []models.CitationType {
	types := group(records, typeKey, nil)
	byCountDesc(types, lessType)
	out := make([]models.CitationType, 0, 3)
	for i := 0; i < len(types) && i < 3; i++ {
		out = append(out, types[i].key)
	}
	return out
}

// strongTopics takes the ten most common query words (first occurrence
// breaks ties), then drops short and question words and keeps five.
func strongTopics(records []models.CitationRecord) []string {
	var words []string
	for _, r := range records {
		words = append(words, strings.Fields(strings.ToLower(r.Query))...)
	}
	counts := group(words, func(w string) (string, bool) { return w, true }, nil)
	byCountDesc(counts, func(string, string) bool { return false })

	out := make([]string, 0, 5)
	for i := 0; i < len(counts) && i < 10; i++ {
		w := counts[i].key
		if len(w) <= 3 || questionWords[w] {
			continue
		}
		out = append(out, w)
		if len(out) == 5 {
			break
		}
	}
	return out
}
