// internal/workers/data-access/search-citations/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"citation-intelligence/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownSearchType = errors.New("unknown search type")
	ErrMissingIndex      = errors.New("index name is required")
	ErrMissingParam      = errors.New("missing required parameter")
)

const (
	DefaultSize = 100
	MaxSize     = 10000
)

// Params are the search filters. Text is required by citations_by_text and
// Engine by citations_by_engine; the rest narrow either search.
type Params struct {
	Text   string     `json:"text,omitempty"`
	Engine string     `json:"engine,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
	Until  *time.Time `json:"until,omitempty"`
	Size   int        `json:"size,omitempty"`
}

func (p Params) size() int {
	switch {
	case p.Size <= 0:
		return DefaultSize
	case p.Size > MaxSize:
		return MaxSize
	default:
		return p.Size
	}
}

// CitationSearch is one search against the citation index.
type CitationSearch struct {
	Index      string
	SearchType models.SearchType
	Params     Params
}

// BuildRequest turns a CitationSearch into an esapi request.
func BuildRequest(cs CitationSearch) (*esapi.SearchRequest, error) {
	if cs.Index == "" {
		return nil, ErrMissingIndex
	}

	var body map[string]interface{}
	switch cs.SearchType {
	case models.SearchTypeCitationsByText:
		if cs.Params.Text == "" {
			return nil, fmt.Errorf("%w: text", ErrMissingParam)
		}
		body = buildTextQuery(cs.Params)
	case models.SearchTypeCitationsByEngine:
		if cs.Params.Engine == "" {
			return nil, fmt.Errorf("%w: engine", ErrMissingParam)
		}
		body = buildEngineQuery(cs.Params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSearchType, cs.SearchType)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	size := cs.Params.size()
	return &esapi.SearchRequest{
		Index:          []string{cs.Index},
		Body:           bytes.NewReader(data),
		Size:           &size,
		TrackTotalHits: true,
	}, nil
}

func buildTextQuery(p Params) map[string]interface{} {
	filters := timeFilters(p)
	if p.Engine != "" {
		filters = append(filters, term("engine", p.Engine))
	}
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  p.Text,
					"fields": []string{"title^2", "snippet", "query^3"},
					"type":   "best_fields",
				},
			},
		},
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

func buildEngineQuery(p Params) map[string]interface{} {
	filters := append(timeFilters(p), term("engine", p.Engine))
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []map[string]interface{}{{"createdAt": "asc"}},
	}
}

func timeFilters(p Params) []interface{} {
	if p.Since == nil && p.Until == nil {
		return nil
	}
	bounds := map[string]interface{}{}
	if p.Since != nil {
		bounds["gte"] = p.Since.UTC().Format(time.RFC3339)
	}
	if p.Until != nil {
		bounds["lt"] = p.Until.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		map[string]interface{}{"range": map[string]interface{}{"createdAt": bounds}},
	}
}

func term(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}
