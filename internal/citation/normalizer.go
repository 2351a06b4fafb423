// Package citation turns raw collector payloads into CitationRecords the
// analysis engines can trust.
package citation

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"citation-intelligence/internal/models"
)

const (
	MaxTitleLength   = 200
	MaxSnippetLength = 500
)

var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "ref", "source",
}

// RawCitation is a citation as a collector reported it, in the collectors'
// snake_case wire format.
type RawCitation struct {
	Query           string          `json:"query"`
	URL             string          `json:"url"`
	Title           string          `json:"title"`
	Snippet         string          `json:"snippet"`
	Position        int             `json:"position"`
	CitationType    string          `json:"citation_type"`
	SourceDomain    string          `json:"source_domain"`
	ProminenceScore float64         `json:"prominence_score"`
	Metadata        models.Metadata `json:"metadata,omitempty"`
	CapturedAt      *time.Time      `json:"created_at,omitempty"`
}

// Issue is a correction applied while normalizing one record.
type Issue struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Normalizer struct {
	now func() time.Time
}

type Option func(*Normalizer)

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize cleans one raw citation. It never fails; every correction it had
// to make is returned as an issue with Index 0.
func (n *Normalizer) Normalize(raw RawCitation, engine models.Engine) (models.CitationRecord, []Issue) {
	var issues []Issue
	note := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	rec := models.CitationRecord{
		Engine:          models.Engine(strings.ToLower(strings.TrimSpace(string(engine)))),
		Query:           strings.Join(strings.Fields(raw.Query), " "),
		Title:           CleanText(raw.Title, MaxTitleLength),
		Snippet:         CleanText(raw.Snippet, MaxSnippetLength),
		Position:        raw.Position,
		CitationType:    models.CitationType(strings.ToLower(strings.TrimSpace(raw.CitationType))),
		ProminenceScore: raw.ProminenceScore,
		Metadata:        raw.Metadata,
	}

	cleaned, err := CleanURL(raw.URL)
	if err != nil {
		note("url", "kept unparseable url: %v", err)
		cleaned = strings.TrimSpace(raw.URL)
	}
	rec.URL = cleaned

	rec.SourceDomain = strings.ToLower(strings.TrimSpace(raw.SourceDomain))
	if rec.SourceDomain == "" && rec.URL != "" {
		if domain, err := ExtractDomain(rec.URL); err == nil {
			rec.SourceDomain = domain
		}
	}

	if rec.CitationType == "" {
		rec.CitationType = models.CitationTypeUnknown
	} else if !rec.CitationType.IsKnown() {
		note("citationType", "unrecognised citation type %q", rec.CitationType)
	}

	if rec.Position < 0 {
		note("position", "negative position %d set to 0", rec.Position)
		rec.Position = 0
	}

	// NaN fails both bounds and would survive min/max
	if p := rec.ProminenceScore; !(p >= 0 && p <= 1) {
		if math.IsNaN(p) {
			rec.ProminenceScore = 0
		} else {
			rec.ProminenceScore = max(0, min(1, p))
		}
		note("prominenceScore", "%.3f clamped to %.1f", p, rec.ProminenceScore)
	}

	if raw.CapturedAt != nil && !raw.CapturedAt.IsZero() {
		rec.CreatedAt = raw.CapturedAt.UTC()
	} else {
		rec.CreatedAt = n.now().UTC()
	}
	return rec, issues
}

// NormalizeBatch normalizes every raw citation in order. Records are never
// dropped; issues carry the index of the record they belong to.
func (n *Normalizer) NormalizeBatch(raws []RawCitation, engine models.Engine) ([]models.CitationRecord, []Issue) {
	records := make([]models.CitationRecord, 0, len(raws))
	var issues []Issue
	for i, raw := range raws {
		rec, found := n.Normalize(raw, engine)
		for _, is := range found {
			is.Index = i
			issues = append(issues, is)
		}
		records = append(records, rec)
	}
	return records, issues
}

// CleanURL removes tracking query parameters. Empty input yields "".
func CleanURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.RawQuery != "" {
		q := parsed.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		parsed.RawQuery = q.Encode()
	}
	return parsed.String(), nil
}

// ExtractDomain returns the lower-case host of a URL without port or a
// leading "www.".
func ExtractDomain(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www."), nil
}

// CleanText collapses whitespace and truncates to maxLen runes at the last
// word boundary, marking the cut with "...".
func CleanText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	cut := string(runes[:maxLen])
	if i := strings.LastIndex(cut, " "); i >= 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
