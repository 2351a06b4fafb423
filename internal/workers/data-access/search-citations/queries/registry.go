// internal/workers/data-access/search-citations/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"citation-intelligence/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ErrIndexNotFound is returned when the cluster answers 404 for the index.
var ErrIndexNotFound = errors.New("index not found")

type Result struct {
	Citations []models.CitationRecord
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                `json:"_id"`
			Source models.CitationRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Execute runs cs and decodes the hit sources as citation records. A hit
// without an id in its source takes the document id.
func Execute(ctx context.Context, client *elasticsearch.Client, cs CitationSearch) (*Result, error) {
	req, err := BuildRequest(cs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, cs.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	citations := make([]models.CitationRecord, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		rec := hit.Source
		if rec.ID == "" {
			rec.ID = hit.ID
		}
		citations = append(citations, rec)
	}

	result := &Result{
		Citations: citations,
		TotalHits: r.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	return result, nil
}
