package searchcitations

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"citation-intelligence/internal/common/config"
	"citation-intelligence/internal/common/errors"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/models"
	"citation-intelligence/internal/workers/data-access/search-citations/queries"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type capturedRequest struct {
	path string
	body map[string]interface{}
}

// createTestServer answers every search with status and body and records the
// last request it saw.
func createTestServer(t *testing.T, status int, body string) (*elasticsearch.Client, *capturedRequest) {
	seen := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path = r.URL.Path
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &seen.body)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, seen
}

func createTestHandler(t *testing.T, client *elasticsearch.Client) *Handler {
	cfg := LoadConfig(config.WorkerConfig{Timeout: 5000}, config.ElasticsearchConfig{CitationIndex: "citations-test"})
	return NewHandler(cfg, client, nil, nil, logger.NewTestLogger(t))
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

const twoHits = `{
	"took": 3,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"max_score": 4.2,
		"hits": [
			{"_id": "doc-1", "_score": 4.2, "_source": {
				"engine": "perplexity", "query": "best crm", "url": "https://hubspot.com/crm",
				"citationType": "inline_citation", "sourceDomain": "hubspot.com",
				"position": 1, "prominenceScore": 0.8, "createdAt": "2026-10-14T08:00:00Z"}},
			{"_id": "doc-2", "_score": 1.1, "_source": {
				"id": "c-2", "engine": "perplexity", "query": "crm pricing", "url": "https://zoho.com",
				"citationType": "organic", "sourceDomain": "zoho.com",
				"position": 4, "prominenceScore": 0.2, "createdAt": "2026-10-14T09:00:00Z"}}
		]
	}
}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CitationsByText(t *testing.T) {
	client, seen := createTestServer(t, http.StatusOK, twoHits)
	h := createTestHandler(t, client)

	out, err := h.Execute(context.Background(), &Input{
		SearchType: string(models.SearchTypeCitationsByText),
		Params:     queries.Params{Text: "crm", Engine: "perplexity"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/citations-test/_search", seen.path)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, 4.2, out.MaxScore)
	require.Len(t, out.Citations, 2)
	assert.Equal(t, "doc-1", out.Citations[0].ID)
	assert.Equal(t, "c-2", out.Citations[1].ID)
	assert.Equal(t, models.EnginePerplexity, out.Citations[0].Engine)
	assert.Equal(t, time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC), out.Citations[0].CreatedAt.UTC())

	boolQuery := seen.body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, boolQuery, "must")
	assert.Len(t, boolQuery["filter"], 1)
}

func TestHandler_Execute_CitationsByEngine(t *testing.T) {
	client, seen := createTestServer(t, http.StatusOK, `{"hits": {"total": {"value": 0}, "max_score": null, "hits": []}}`)
	h := createTestHandler(t, client)
	since := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

	out, err := h.Execute(context.Background(), &Input{
		SearchType: string(models.SearchTypeCitationsByEngine),
		Params:     queries.Params{Engine: "google", Since: &since},
	})
	require.NoError(t, err)
	assert.NotNil(t, out.Citations)
	assert.Empty(t, out.Citations)
	assert.Zero(t, out.MaxScore)

	filters := seen.body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 2)
	rng := filters[0].(map[string]interface{})["range"].(map[string]interface{})["createdAt"].(map[string]interface{})
	assert.Equal(t, "2026-10-01T00:00:00Z", rng["gte"])
	assert.NotContains(t, rng, "lt")
	assert.Contains(t, seen.body, "sort")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		input  *Input
		want   errors.ErrorCode
	}{
		{
			name:   "missing index",
			status: http.StatusNotFound,
			body:   `{"error": {"type": "index_not_found_exception"}, "status": 404}`,
			input:  &Input{SearchType: "citations_by_engine", Params: queries.Params{Engine: "bing"}},
			want:   errors.ErrCodeIndexNotFound,
		},
		{
			name:   "cluster failure",
			status: http.StatusInternalServerError,
			body:   `{"error": {"type": "search_phase_execution_exception"}, "status": 500}`,
			input:  &Input{SearchType: "citations_by_text", Params: queries.Params{Text: "crm"}},
			want:   errors.ErrCodeCitationSearchFailed,
		},
		{
			name:  "unknown search type",
			input: &Input{SearchType: "citations_by_vector"},
			want:  errors.ErrCodeInvalidQueryType,
		},
		{
			name:  "text search without text",
			input: &Input{SearchType: "citations_by_text"},
			want:  errors.ErrCodeCitationBatchInvalid,
		},
		{
			name: "nil input",
			want: errors.ErrCodeCitationBatchInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			if status == 0 {
				status = http.StatusOK
			}
			client, _ := createTestServer(t, status, tt.body)
			_, err := createTestHandler(t, client).Execute(context.Background(), tt.input)
			requireCode(t, err, tt.want)
		})
	}
}

func TestBuildRequest_ClampsSize(t *testing.T) {
	req, err := queries.BuildRequest(queries.CitationSearch{
		Index:      "citations",
		SearchType: models.SearchTypeCitationsByEngine,
		Params:     queries.Params{Engine: "google", Size: 50000},
	})
	require.NoError(t, err)
	assert.Equal(t, queries.MaxSize, *req.Size)

	_, err = queries.BuildRequest(queries.CitationSearch{SearchType: models.SearchTypeCitationsByEngine})
	assert.ErrorIs(t, err, queries.ErrMissingIndex)
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.WorkerConfig{}, config.ElasticsearchConfig{})
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "citations", cfg.Index)
}
