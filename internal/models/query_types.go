// internal/models/query_types.go
package models

// QueryType names a stored citation query served by the data-access workers.
type QueryType string

const (
	QueryTypeCitationsByQueries QueryType = "citations_by_queries"
	QueryTypeCitationsByDomains QueryType = "citations_by_domains"
	QueryTypeCitationsInWindow  QueryType = "citations_in_window"
	QueryTypeTrackedQueries     QueryType = "tracked_queries"
)

// SearchType names an Elasticsearch citation search.
type SearchType string

const (
	SearchTypeCitationsByText   SearchType = "citations_by_text"
	SearchTypeCitationsByEngine SearchType = "citations_by_engine"
)

// TrackedQuery is a query the platform monitors across engines.
type TrackedQuery struct {
	ID        string   `json:"id"`
	QueryText string   `json:"queryText"`
	Category  string   `json:"category,omitempty"`
	Priority  Priority `json:"priority"`
	IsActive  bool     `json:"isActive"`
}
