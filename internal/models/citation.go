// internal/models/citation.go
package models

import (
	"time"
)

// Engine identifies the AI search surface that produced a citation.
type Engine string

const (
	EngineGoogle     Engine = "google"
	EnginePerplexity Engine = "perplexity"
	EngineChatGPT    Engine = "chatgpt"
	EngineBing       Engine = "bing"
	EngineGemini     Engine = "gemini"
)

// CitationType is the slot a citation occupied on the engine's result surface.
type CitationType string

const (
	CitationTypeAIOverview           CitationType = "ai_overview"
	CitationTypeFeaturedSnippet      CitationType = "featured_snippet"
	CitationTypePeopleAlsoAsk        CitationType = "people_also_ask"
	CitationTypeKnowledgePanel       CitationType = "knowledge_panel"
	CitationTypeKnowledgePanelSource CitationType = "knowledge_panel_source"
	CitationTypeOrganic              CitationType = "organic"
	CitationTypeDirectAnswer         CitationType = "direct_answer"
	CitationTypeInlineCitation       CitationType = "inline_citation"
	CitationTypeRelatedQuestion      CitationType = "related_question"
	CitationTypeUnknown              CitationType = "unknown"
)

var knownCitationTypes = map[CitationType]bool{
	CitationTypeAIOverview:           true,
	CitationTypeFeaturedSnippet:      true,
	CitationTypePeopleAlsoAsk:        true,
	CitationTypeKnowledgePanel:       true,
	CitationTypeKnowledgePanelSource: true,
	CitationTypeOrganic:              true,
	CitationTypeDirectAnswer:         true,
	CitationTypeInlineCitation:       true,
	CitationTypeRelatedQuestion:      true,
	CitationTypeUnknown:              true,
}

// IsKnown reports whether t is one of the citation types emitted by the collectors.
func (t CitationType) IsKnown() bool {
	return knownCitationTypes[t]
}

// CitationRecord is one normalized citation observed for a query on an engine.
//
// ProminenceScore is always within [0,1], Position is never negative and
// SourceDomain is lower-case or empty.
type CitationRecord struct {
	ID              string       `json:"id,omitempty"`
	Engine          Engine       `json:"engine"`
	Query           string       `json:"query"`
	URL             string       `json:"url"`
	Title           string       `json:"title"`
	Snippet         string       `json:"snippet"`
	Position        int          `json:"position"`
	CitationType    CitationType `json:"citationType"`
	SourceDomain    string       `json:"sourceDomain"`
	ProminenceScore float64      `json:"prominenceScore"`
	Metadata        Metadata     `json:"metadata,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// HasTimestamp reports whether the record carries a capture time.
func (r CitationRecord) HasTimestamp() bool {
	return !r.CreatedAt.IsZero()
}

// TimeRange is the closed interval spanned by a set of records.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SpanOf returns the earliest and latest capture times among records that
// have one. The zero TimeRange is returned when none do.
func SpanOf(records []CitationRecord) TimeRange {
	var tr TimeRange
	for _, r := range records {
		if !r.HasTimestamp() {
			continue
		}
		if tr.Start.IsZero() || r.CreatedAt.Before(tr.Start) {
			tr.Start = r.CreatedAt
		}
		if tr.End.IsZero() || r.CreatedAt.After(tr.End) {
			tr.End = r.CreatedAt
		}
	}
	return tr
}
