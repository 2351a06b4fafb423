package patterns

import (
	"sort"
	"time"

	"citation-intelligence/internal/models"
)

// batch is the read-only view every scan receives.
type batch struct {
	records []models.CitationRecord
	loc     *time.Location
}

func newBatch(records []models.CitationRecord, loc *time.Location) *batch {
	return &batch{records: records, loc: loc}
}

// engines lists distinct engines in order of first appearance.
func (b *batch) engines() []models.Engine {
	return distinct(b.records, func(r models.CitationRecord) (models.Engine, bool) {
		return r.Engine, r.Engine != ""
	})
}

func (b *batch) domains() []string {
	return distinct(b.records, func(r models.CitationRecord) (string, bool) {
		return r.SourceDomain, r.SourceDomain != ""
	})
}

func (b *batch) contentTypes() []models.CitationType {
	return distinct(b.records, func(r models.CitationRecord) (models.CitationType, bool) {
		return r.CitationType, r.CitationType != ""
	})
}

func (b *batch) timeRange() models.TimeRange {
	return models.SpanOf(b.records)
}

// stamped returns the records that carry a capture time.
func (b *batch) stamped() []models.CitationRecord {
	out := make([]models.CitationRecord, 0, len(b.records))
	for _, r := range b.records {
		if r.HasTimestamp() {
			out = append(out, r)
		}
	}
	return out
}

func distinct[T any, K comparable](items []T, key func(T) (K, bool)) []K {
	seen := make(map[K]bool)
	out := make([]K, 0)
	for _, it := range items {
		k, ok := key(it)
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// tally is one group of a count-by, carrying the values observed for it.
type tally[K comparable] struct {
	key    K
	count  int
	values []float64
}

// group counts items per key in order of first appearance, collecting
// value(item) for each.
func group[T any, K comparable](items []T, key func(T) (K, bool), value func(T) float64) []*tally[K] {
	index := make(map[K]*tally[K])
	var out []*tally[K]
	for _, it := range items {
		k, ok := key(it)
		if !ok {
			continue
		}
		t, exists := index[k]
		if !exists {
			t = &tally[K]{key: k}
			index[k] = t
			out = append(out, t)
		}
		t.count++
		if value != nil {
			t.values = append(t.values, value(it))
		}
	}
	return out
}

// byCountDesc orders tallies by count, largest first, then by less on keys.
func byCountDesc[K comparable](ts []*tally[K], less func(a, b K) bool) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].count != ts[j].count {
			return ts[i].count > ts[j].count
		}
		return less(ts[i].key, ts[j].key)
	})
}

// byKey orders tallies by key alone.
func byKey[K comparable](ts []*tally[K], less func(a, b K) bool) {
	sort.SliceStable(ts, func(i, j int) bool { return less(ts[i].key, ts[j].key) })
}

func lessString(a, b string) bool { return a < b }

func lessType(a, b models.CitationType) bool { return a < b }

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
