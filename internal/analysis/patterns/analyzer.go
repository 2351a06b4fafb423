// Package patterns finds statistically notable regularities in a batch of
// citation records.
package patterns

import (
	"fmt"
	"time"

	"citation-intelligence/internal/common/idgen"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/metrics"
	"citation-intelligence/internal/models"
)

const engineName = "patterns"

const maxExamples = 10

// scanner is one stateless sub-scan over the whole batch.
type scanner struct {
	name string
	run  func(cfg Config, b *batch) ([]models.CitationPattern, error)
}

// defaultScanners run in this order on every batch.
var defaultScanners = []scanner{
	{"domain_frequency", scanDomainFrequency},
	{"domain_prominence", scanDomainProminence},
	{"content_type_performance", scanContentTypePerformance},
	{"position_consistency", scanPositionConsistency},
	{"temporal_spikes", scanTemporalSpikes},
	{"weekly_variation", scanWeeklyVariation},
	{"engine_content_preference", scanEngineContentPreference},
	{"content_features", scanContentFeatures},
	{"query_similarity", scanQuerySimilarity},
}

// Analyzer is the pattern recognition engine. It holds only read-only
// configuration and is safe for concurrent use.
type Analyzer struct {
	cfg      Config
	logger   logger.Logger
	ids      idgen.Generator
	scanners []scanner
}

type Option func(*Analyzer)

// WithIDGenerator replaces the random pattern id source.
func WithIDGenerator(g idgen.Generator) Option {
	return func(a *Analyzer) { a.ids = g }
}

func NewAnalyzer(cfg Config, log logger.Logger, opts ...Option) *Analyzer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	a := &Analyzer{
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"engine": engineName}),
		ids:      idgen.UUID{},
		scanners: defaultScanners,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeCitationPatterns runs every sub-scan over records. A failing scan is
// logged and contributes nothing; the call itself never fails.
func (a *Analyzer) AnalyzeCitationPatterns(records []models.CitationRecord) []models.CitationPattern {
	out := make([]models.CitationPattern, 0)
	if len(records) == 0 {
		return out
	}

	b := newBatch(records, a.cfg.location())
	for _, s := range a.scanners {
		found, err := a.runScan(s, b)
		if err != nil {
			a.logger.Error("pattern scan failed", map[string]interface{}{
				"scan":    s.name,
				"records": len(records),
				"error":   err,
			})
			continue
		}
		for _, p := range found {
			p.PatternID = a.ids.New(string(p.PatternType))
			p.Strength = clamp01(p.Strength)
			if len(p.Examples) > maxExamples {
				p.Examples = p.Examples[:maxExamples]
			}
			metrics.AnalysisPatternsEmitted.WithLabelValues(string(p.PatternType)).Inc()
			out = append(out, p)
		}
	}

	strong := 0
	for _, p := range out {
		if p.Strength >= a.cfg.MinPatternStrength {
			strong++
		}
	}
	a.logger.Info("citation patterns identified", map[string]interface{}{
		"records":        len(records),
		"patterns":       len(out),
		"strongPatterns": strong,
	})
	return out
}

func (a *Analyzer) runScan(s scanner, b *batch) (found []models.CitationPattern, err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			found, err = nil, fmt.Errorf("panic: %v", r)
		}
		metrics.ObserveScan(engineName, s.name, started, err != nil)
	}()
	return s.run(a.cfg, b)
}
