// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citation-intelligence/internal/analysis/gaps"
	"citation-intelligence/internal/analysis/patterns"
	"citation-intelligence/internal/cache"
	"citation-intelligence/internal/citation"
	"citation-intelligence/internal/common/config"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/validation"
	"citation-intelligence/internal/models"
	"citation-intelligence/pkg/registry"

	acp "citation-intelligence/internal/workers/analysis/analyze-citation-patterns"
	acmp "citation-intelligence/internal/workers/analysis/analyze-competitor-patterns"
	icg "citation-intelligence/internal/workers/analysis/identify-content-gaps"
	qc "citation-intelligence/internal/workers/data-access/query-citations"
	qcq "citation-intelligence/internal/workers/data-access/query-citations/queries"
	sc "citation-intelligence/internal/workers/data-access/search-citations"
	scq "citation-intelligence/internal/workers/data-access/search-citations/queries"
	nc "citation-intelligence/internal/workers/ingestion/normalize-citations"
)

var capturedAt = time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC)

type pipeline struct {
	validator *validation.Validator
	cache     *cache.ResultCache
	redis     *miniredis.Miniredis
	log       logger.Logger
}

func newPipeline(t *testing.T) *pipeline {
	reg, err := registry.Embedded()
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	log := logger.NewTestLogger(t)
	rc := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		config.CacheConfig{Enabled: true, TTL: 300, KeyPrefix: "e2e"}, log)

	return &pipeline{validator: v, cache: rc, redis: mr, log: log}
}

// rawBatch is what a collector would report for the Perplexity engine.
func rawBatch() []citation.RawCitation {
	var out []citation.RawCitation
	add := func(query, url, ct string, pos int, prom float64, n int) {
		for i := 0; i < n; i++ {
			at := capturedAt.Add(time.Duration(i) * 24 * time.Hour)
			out = append(out, citation.RawCitation{
				Query:           query,
				URL:             fmt.Sprintf("%s?utm_source=perplexity&n=%d", url, i),
				Title:           "  " + query + "  guide ",
				Position:        pos,
				CitationType:    ct,
				ProminenceScore: prom,
				CapturedAt:      &at,
			})
		}
	}
	add("best crm for startups", "https://www.salesforce.com/crm", "inline_citation", 1, 0.9, 4)
	add("best crm for startups", "https://hubspot.com/startups", "inline_citation", 2, 0.7, 2)
	add("crm pricing comparison", "https://www.salesforce.com/pricing", "inline_citation", 1, 0.8, 3)
	add("how to migrate crm data", "https://blog.example.com/migrate", "organic", 6, 0.2, 1)
	return out
}

func TestCitationPipeline(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	// 1. Normalize the collector payload.
	normalizer := nc.NewHandler(nc.LoadConfig(config.WorkerConfig{}), citation.NewNormalizer(), p.validator, nil, p.log)
	normalized, err := normalizer.Execute(ctx, &nc.Input{Engine: "perplexity", RawCitations: rawBatch()})
	require.NoError(t, err)
	require.Equal(t, 10, normalized.NormalizedCount)
	assert.Empty(t, normalized.Issues)
	for _, c := range normalized.Citations {
		assert.NotContains(t, c.URL, "utm_source")
		assert.NotEqual(t, "www.salesforce.com", c.SourceDomain)
	}

	// 2. Load tracked queries from Postgres.
	tracked := loadTrackedQueries(t, p)
	require.Len(t, tracked, 4)

	// 3. Read the indexed citations back through Elasticsearch.
	citations := searchByEngine(t, p, normalized.Citations)
	require.Len(t, citations, len(normalized.Citations))

	// 4. Pattern recognition, served from cache on the second run.
	patternEngine := patterns.NewAnalyzer(patterns.DefaultConfig(), p.log)
	patternWorker := acp.NewHandler(acp.LoadConfig(config.WorkerConfig{}), patternEngine, p.cache, p.validator, nil, p.log)

	found, err := patternWorker.Execute(ctx, &acp.Input{Citations: citations})
	require.NoError(t, err)
	assert.False(t, found.Cached)
	assert.NotZero(t, found.PatternCount)

	again, err := patternWorker.Execute(ctx, &acp.Input{Citations: citations})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, found.PatternCount, again.PatternCount)

	// 5. Competitor profiles.
	competitorWorker := acmp.NewHandler(acmp.LoadConfig(config.WorkerConfig{}), patternEngine, p.validator, nil, p.log)
	competitors, err := competitorWorker.Execute(ctx, &acmp.Input{
		Citations:         citations,
		CompetitorDomains: []string{"salesforce.com", "pipedrive.com"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, competitors.CompetitorCount)
	assert.Equal(t, 7, competitors.CompetitorPatterns[0].CitationCount)

	// 6. Gap identification.
	gapWorker := icg.NewHandler(icg.LoadConfig(config.WorkerConfig{}), gaps.NewAnalyzer(gaps.DefaultConfig(), p.log), p.cache, p.validator, nil, p.log)
	result, err := gapWorker.Execute(ctx, &icg.Input{
		Citations:         citations,
		TrackedQueries:    tracked,
		CompetitorDomains: []string{"salesforce.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, result.GapCount, result.Report.TotalGaps)

	byQuery := map[string][]models.GapType{}
	for _, g := range result.Gaps {
		byQuery[g.QueryText] = append(byQuery[g.QueryText], g.GapType)
	}
	assert.Contains(t, byQuery["crm onboarding checklist"], models.GapNoCitations)
	assert.Contains(t, byQuery["how to migrate crm data"], models.GapWeakCitations)
	assert.Contains(t, byQuery["crm pricing comparison"], models.GapCompetitorDominated)
	assert.NotContains(t, byQuery["best crm for startups"], models.GapNoCitations)

	assert.Len(t, p.redis.Keys(), 2)
}

func loadTrackedQueries(t *testing.T, p *pipeline) []string {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "query_text", "category", "priority", "is_active"}).
		AddRow("q1", "best crm for startups", "crm", "high", true).
		AddRow("q2", "crm pricing comparison", "crm", "high", true).
		AddRow("q3", "how to migrate crm data", "crm", "medium", true).
		AddRow("q4", "crm onboarding checklist", "crm", "low", true)
	mock.ExpectQuery(`FROM queries`).WithArgs("crm", qcq.DefaultLimit).WillReturnRows(rows)

	h := qc.NewHandler(qc.LoadConfig(config.WorkerConfig{}), db, p.validator, nil, p.log)
	out, err := h.Execute(context.Background(), &qc.Input{
		QueryType: string(models.QueryTypeTrackedQueries),
		Params:    qcq.Params{Category: "crm"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	return out.TrackedQueries
}

func searchByEngine(t *testing.T, p *pipeline, indexed []models.CitationRecord) []models.CitationRecord {
	type hit struct {
		ID     string                `json:"_id"`
		Source models.CitationRecord `json:"_source"`
	}
	hits := make([]hit, len(indexed))
	for i, c := range indexed {
		hits[i] = hit{ID: fmt.Sprintf("doc-%d", i), Source: c}
	}
	body, err := json.Marshal(map[string]interface{}{
		"took": 1,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": len(hits)},
			"max_score": nil,
			"hits":      hits,
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	h := sc.NewHandler(sc.LoadConfig(config.WorkerConfig{}, config.ElasticsearchConfig{}), es, p.validator, nil, p.log)
	out, err := h.Execute(context.Background(), &sc.Input{
		SearchType: string(models.SearchTypeCitationsByEngine),
		Params:     scq.Params{Engine: "perplexity"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(indexed)), out.Total)
	return out.Citations
}
