package patterns

import (
	"fmt"
	"math"
	"strconv"

	"citation-intelligence/internal/analysis/textmining"
	"citation-intelligence/internal/models"

	"gonum.org/v1/gonum/stat"
)

func domainKey(r models.CitationRecord) (string, bool) {
	return r.SourceDomain, r.SourceDomain != ""
}

func typeKey(r models.CitationRecord) (models.CitationType, bool) {
	return r.CitationType, r.CitationType != ""
}

func prominence(r models.CitationRecord) float64 { return r.ProminenceScore }

func position(r models.CitationRecord) float64 { return float64(r.Position) }

func sampleStdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func scanDomainFrequency(cfg Config, b *batch) ([]models.CitationPattern, error) {
	all := group(b.records, domainKey, nil)
	if len(all) == 0 {
		return nil, nil
	}
	var frequent []*tally[string]
	for _, t := range all {
		if t.count >= cfg.MinPatternFrequency {
			frequent = append(frequent, t)
		}
	}
	if len(frequent) == 0 {
		return nil, nil
	}
	byCountDesc(frequent, lessString)

	counts := make([]float64, len(frequent))
	domains := make([]string, len(frequent))
	var examples []models.PatternExample
	for i, t := range frequent {
		counts[i] = float64(t.count)
		domains[i] = t.key
		if i < 5 {
			examples = append(examples, models.PatternExample{Domain: t.key, Count: t.count})
		}
	}

	return []models.CitationPattern{{
		PatternType: models.PatternDomainFrequency,
		Description: fmt.Sprintf("Domains with high citation frequency (≥%d citations)", cfg.MinPatternFrequency),
		Frequency:   len(frequent),
		Strength:    math.Min(1, float64(len(frequent))/10),
		Examples:    examples,
		Characteristics: models.Characteristics{Values: map[string]float64{
			"avg_citations_per_domain": stat.Mean(counts, nil),
			"max_citations":            counts[0],
			"domain_concentration":     float64(len(frequent)) / float64(len(all)),
		}},
		Engines:      b.engines(),
		Domains:      domains,
		ContentTypes: b.contentTypes(),
		TimeRange:    b.timeRange(),
	}}, nil
}

func scanDomainProminence(_ Config, b *batch) ([]models.CitationPattern, error) {
	groups := group(b.records, domainKey, prominence)
	byKey(groups, lessString)

	var means []float64
	var domains []string
	var examples []models.PatternExample
	for _, t := range groups {
		mean := stat.Mean(t.values, nil)
		if mean < 0.7 || t.count < 2 {
			continue
		}
		means = append(means, mean)
		domains = append(domains, t.key)
		if len(examples) < 5 {
			examples = append(examples, models.PatternExample{Domain: t.key, AvgProminence: mean, Count: t.count})
		}
	}
	if len(domains) == 0 {
		return nil, nil
	}

	avg := stat.Mean(means, nil)
	return []models.CitationPattern{{
		PatternType: models.PatternDomainProminence,
		Description: "Domains with consistently high prominence scores",
		Frequency:   len(domains),
		Strength:    avg,
		Examples:    examples,
		Characteristics: models.Characteristics{Values: map[string]float64{
			"avg_prominence":         avg,
			"prominence_consistency": sampleStdDev(means),
		}},
		Engines:      b.engines(),
		Domains:      domains,
		ContentTypes: b.contentTypes(),
		TimeRange:    b.timeRange(),
	}}, nil
}

func scanContentTypePerformance(_ Config, b *batch) ([]models.CitationPattern, error) {
	groups := group(b.records, typeKey, prominence)
	byKey(groups, lessType)

	values := make(map[string]float64, len(groups))
	distribution := make(map[string]int, len(groups))
	var means []float64
	var types []models.CitationType
	var examples []models.PatternExample
	frequency := 0
	for _, t := range groups {
		mean := round(stat.Mean(t.values, nil), 3)
		values["avg_prominence:"+string(t.key)] = mean
		distribution[string(t.key)] = t.count
		if mean < 0.6 || t.count < 3 {
			continue
		}
		means = append(means, mean)
		types = append(types, t.key)
		frequency += t.count
		examples = append(examples, models.PatternExample{ContentType: t.key, AvgProminence: mean, Count: t.count})
	}
	if len(types) == 0 {
		return nil, nil
	}

	return []models.CitationPattern{{
		PatternType: models.PatternContentTypePerformance,
		Description: "Content types with high average prominence scores",
		Frequency:   frequency,
		Strength:    stat.Mean(means, nil),
		Examples:    examples,
		Characteristics: models.Characteristics{
			Values:        values,
			Distributions: map[string]map[string]int{"type_distribution": distribution},
		},
		Engines:      b.engines(),
		Domains:      b.domains(),
		ContentTypes: types,
		TimeRange:    b.timeRange(),
	}}, nil
}

type domainType struct {
	domain string
	ctype  models.CitationType
}

func scanPositionConsistency(cfg Config, b *batch) ([]models.CitationPattern, error) {
	var top []models.CitationRecord
	for _, r := range b.records {
		if r.Position <= 3 {
			top = append(top, r)
		}
	}
	if len(top) < cfg.MinPatternFrequency {
		return nil, nil
	}

	groups := group(top, func(r models.CitationRecord) (domainType, bool) {
		return domainType{r.SourceDomain, r.CitationType}, true
	}, position)
	byKey(groups, func(a, b domainType) bool {
		if a.domain != b.domain {
			return a.domain < b.domain
		}
		return a.ctype < b.ctype
	})

	var means []float64
	var examples []models.PatternExample
	frequency := 0
	for _, t := range groups {
		if t.count < 2 {
			continue
		}
		mean := stat.Mean(t.values, nil)
		means = append(means, mean)
		frequency += t.count
		if len(examples) < 5 {
			examples = append(examples, models.PatternExample{
				Domain:      t.key.domain,
				ContentType: t.key.ctype,
				AvgPosition: mean,
				Count:       t.count,
			})
		}
	}
	if len(means) == 0 {
		return nil, nil
	}

	positions := make([]float64, len(top))
	distribution := make(map[string]int)
	for i, r := range top {
		positions[i] = float64(r.Position)
		distribution[strconv.Itoa(r.Position)]++
	}

	return []models.CitationPattern{{
		PatternType: models.PatternPositionConsistency,
		Description: "Domain-content type combinations consistently ranking in top 3 positions",
		Frequency:   frequency,
		Strength:    1 - stat.Mean(means, nil)/10,
		Examples:    examples,
		Characteristics: models.Characteristics{
			Values:        map[string]float64{"avg_top_position": stat.Mean(positions, nil)},
			Distributions: map[string]map[string]int{"top_position_distribution": distribution},
		},
		Engines:      b.engines(),
		Domains:      b.domains(),
		ContentTypes: b.contentTypes(),
		TimeRange:    b.timeRange(),
	}}, nil
}

func scanTemporalSpikes(_ Config, b *batch) ([]models.CitationPattern, error) {
	stamped := b.stamped()
	days := group(stamped, func(r models.CitationRecord) (string, bool) {
		return r.CreatedAt.In(b.loc).Format("2006-01-02"), true
	}, nil)
	if len(days) < 7 {
		return nil, nil
	}
	byKey(days, lessString)

	counts := make([]float64, len(days))
	for i, d := range days {
		counts[i] = float64(d.count)
	}
	avg := stat.Mean(counts, nil)

	var high []*tally[string]
	for _, d := range days {
		if float64(d.count) > avg*1.5 {
			high = append(high, d)
		}
	}
	if len(high) < 2 {
		return nil, nil
	}

	var examples []models.PatternExample
	for i := 0; i < len(high) && i < 5; i++ {
		examples = append(examples, models.PatternExample{Date: high[i].key, Count: high[i].count})
	}
	peak := 0.0
	for _, c := range counts {
		peak = math.Max(peak, c)
	}

	return []models.CitationPattern{{
		PatternType: models.PatternTemporalSpikes,
		Description: "Days with significantly higher citation activity",
		Frequency:   len(high),
		Strength:    math.Min(1, float64(len(high))/float64(len(days))),
		Examples:    examples,
		Characteristics: models.Characteristics{Values: map[string]float64{
			"avg_daily_citations":  avg,
			"peak_daily_citations": peak,
			"citation_volatility":  sampleStdDev(counts) / avg,
		}},
		Engines:      b.engines(),
		Domains:      b.domains(),
		ContentTypes: b.contentTypes(),
		TimeRange:    b.timeRange(),
	}}, nil
}

func scanWeeklyVariation(_ Config, b *batch) ([]models.CitationPattern, error) {
	stamped := b.stamped()
	days := group(stamped, func(r models.CitationRecord) (string, bool) {
		return r.CreatedAt.In(b.loc).Weekday().String(), true
	}, nil)
	if len(days) == 0 {
		return nil, nil
	}
	byKey(days, lessString)

	counts := make([]float64, len(days))
	maxDay, minDay := days[0], days[0]
	var examples []models.PatternExample
	for i, d := range days {
		counts[i] = float64(d.count)
		if d.count > maxDay.count {
			maxDay = d
		}
		if d.count < minDay.count {
			minDay = d
		}
		examples = append(examples, models.PatternExample{Day: d.key, Count: d.count})
	}
	if float64(maxDay.count)/float64(minDay.count) <= 1.5 {
		return nil, nil
	}
	mean := stat.Mean(counts, nil)

	return []models.CitationPattern{{
		PatternType: models.PatternWeeklyVariation,
		Description: fmt.Sprintf("Strong weekly pattern: peak on %s, low on %s", maxDay.key, minDay.key),
		Frequency:   len(stamped),
		Strength:    math.Min(1, float64(maxDay.count-minDay.count)/mean),
		Examples:    examples,
		Characteristics: models.Characteristics{
			Values: map[string]float64{"weekly_variation_coefficient": sampleStdDev(counts) / mean},
			Labels: map[string]string{"peak_day": maxDay.key, "low_day": minDay.key},
		},
		Engines:      b.engines(),
		Domains:      b.domains(),
		ContentTypes: b.contentTypes(),
		TimeRange:    b.timeRange(),
	}}, nil
}

func scanEngineContentPreference(_ Config, b *batch) ([]models.CitationPattern, error) {
	var out []models.CitationPattern
	for _, engine := range b.engines() {
		var records []models.CitationRecord
		for _, r := range b.records {
			if r.Engine == engine {
				records = append(records, r)
			}
		}
		types := group(records, typeKey, nil)
		if len(types) == 0 {
			continue
		}
		byCountDesc(types, lessType)

		share := float64(types[0].count) / float64(len(records))
		if share <= 0.6 {
			continue
		}
		dominant := types[0].key

		var examples []models.PatternExample
		for i := 0; i < len(types) && i < 3; i++ {
			examples = append(examples, models.PatternExample{ContentType: types[i].key, Count: types[i].count})
		}
		sub := newBatch(records, b.loc)
		out = append(out, models.CitationPattern{
			PatternType: models.PatternEngineContentPreference,
			Description: fmt.Sprintf("%s shows strong preference for %s citations", engine, dominant),
			Frequency:   types[0].count,
			Strength:    share,
			Examples:    examples,
			Characteristics: models.Characteristics{
				Values: map[string]float64{
					"preference_strength": share,
					"type_diversity":      float64(len(types)),
				},
				Labels: map[string]string{"dominant_type": string(dominant)},
			},
			Engines:      []models.Engine{engine},
			Domains:      sub.domains(),
			ContentTypes: []models.CitationType{dominant},
			TimeRange:    b.timeRange(),
		})
	}
	return out, nil
}

func scanContentFeatures(cfg Config, b *batch) ([]models.CitationPattern, error) {
	counts := make(map[string]int)
	for _, r := range b.records {
		for _, k := range r.Metadata.Keys() {
			v := r.Metadata[k]
			if !v.IsScalar() {
				continue
			}
			counts[k+":"+v.String()]++
		}
	}
	if len(counts) == 0 {
		return nil, nil
	}

	var frequent []*tally[string]
	frequency := 0
	for feature, c := range counts {
		if c >= cfg.MinPatternFrequency {
			frequent = append(frequent, &tally[string]{key: feature, count: c})
			frequency += c
		}
	}
	if len(frequent) == 0 {
		return nil, nil
	}
	byCountDesc(frequent, lessString)

	var examples []models.PatternExample
	for i := 0; i < len(frequent) && i < maxExamples; i++ {
		examples = append(examples, models.PatternExample{Feature: frequent[i].key, Count: frequent[i].count})
	}

	return []models.CitationPattern{{
		PatternType: models.PatternContentFeatures,
		Description: "Common content features in cited content",
		Frequency:   frequency,
		Strength:    float64(len(frequent)) / float64(len(counts)),
		Examples:    examples,
		Characteristics: models.Characteristics{Values: map[string]float64{
			"total_unique_features":   float64(len(counts)),
			"frequent_features_count": float64(len(frequent)),
		}},
		Engines:      b.engines(),
		Domains:      b.domains(),
		ContentTypes: b.contentTypes(),
		TimeRange:    b.timeRange(),
	}}, nil
}

func scanQuerySimilarity(cfg Config, b *batch) ([]models.CitationPattern, error) {
	n := len(b.records)
	if n < 10 {
		return nil, nil
	}
	k := n / 3
	if k > 5 {
		k = 5
	}
	if k < 2 {
		return nil, nil
	}

	queries := make([]string, n)
	for i, r := range b.records {
		queries[i] = r.Query
	}
	labels, err := textmining.ClusterTexts(queries, k, cfg.MaxFeatures, cfg.ClusterSeed)
	if err != nil {
		return nil, fmt.Errorf("cluster queries: %w", err)
	}

	var out []models.CitationPattern
	for cluster := 0; cluster < k; cluster++ {
		var members []models.CitationRecord
		for i, r := range b.records {
			if labels[i] == cluster {
				members = append(members, r)
			}
		}
		if len(members) < cfg.MinPatternFrequency {
			continue
		}

		perQuery := make(map[string]int)
		for _, r := range members {
			perQuery[r.Query]++
		}
		var examples []models.PatternExample
		for i := 0; i < len(members) && i < 5; i++ {
			q := members[i].Query
			examples = append(examples, models.PatternExample{Query: q, Count: perQuery[q]})
		}

		domains := group(members, domainKey, nil)
		byCountDesc(domains, lessString)
		if len(domains) > 3 {
			domains = domains[:3]
		}
		common := make(map[string]int, len(domains))
		names := make([]string, len(domains))
		for i, d := range domains {
			common[d.key] = d.count
			names[i] = d.key
		}

		prom := make([]float64, len(members))
		for i, r := range members {
			prom[i] = r.ProminenceScore
		}
		sub := newBatch(members, b.loc)
		out = append(out, models.CitationPattern{
			PatternType: models.PatternQuerySimilarity,
			Description: fmt.Sprintf("Similar queries (cluster %d) with common citation patterns", cluster),
			Frequency:   len(members),
			Strength:    float64(len(members)) / float64(n),
			Examples:    examples,
			Characteristics: models.Characteristics{
				Values: map[string]float64{
					"cluster_size":   float64(len(members)),
					"avg_prominence": stat.Mean(prom, nil),
				},
				Distributions: map[string]map[string]int{"common_domains": common},
			},
			Engines:      sub.engines(),
			Domains:      names,
			ContentTypes: sub.contentTypes(),
			TimeRange:    b.timeRange(),
		})
	}
	return out, nil
}
