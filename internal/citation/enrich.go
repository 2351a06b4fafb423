package citation

import (
	"citation-intelligence/internal/models"
)

// Enrichment carries page-level features a parser extracted for a cited URL.
type Enrichment struct {
	AuthoritySignals map[string]interface{} `json:"authoritySignals,omitempty"`
	FreshnessSignals map[string]interface{} `json:"freshnessSignals,omitempty"`
	ContentFeatures  map[string]interface{} `json:"contentFeatures,omitempty"`
}

// Enrich returns rec with the scalar enrichment entries folded into its
// metadata as authority.*, freshness.* and content.* keys. Nested values are
// skipped and existing keys are overwritten. rec itself is not modified.
func Enrich(rec models.CitationRecord, e Enrichment) models.CitationRecord {
	md := rec.Metadata.Clone()
	fold(md, "authority", e.AuthoritySignals)
	fold(md, "freshness", e.FreshnessSignals)
	fold(md, "content", e.ContentFeatures)
	rec.Metadata = md
	return rec
}

func fold(md models.Metadata, prefix string, values map[string]interface{}) {
	for k, raw := range values {
		v, err := models.FromInterface(raw)
		if err != nil || !v.IsScalar() {
			continue
		}
		md[prefix+"."+k] = v
	}
}
