// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCitationBatchInvalid        ErrorCode = "CITATION_BATCH_INVALID"
	ErrCodeCitationNormalizationFailed ErrorCode = "CITATION_NORMALIZATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCitationQueryFailed      ErrorCode = "CITATION_QUERY_FAILED"
	ErrCodeCitationQueryTimeout     ErrorCode = "CITATION_QUERY_TIMEOUT"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeTrackedQueriesMissing    ErrorCode = "TRACKED_QUERIES_MISSING"

	ErrCodeCitationSearchFailed  ErrorCode = "CITATION_SEARCH_FAILED"
	ErrCodeCitationSearchTimeout ErrorCode = "CITATION_SEARCH_TIMEOUT"
	ErrCodeIndexNotFound         ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeAnalysisFailed   ErrorCode = "ANALYSIS_FAILED"
	ErrCodeAnalysisTimeout  ErrorCode = "ANALYSIS_TIMEOUT"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewCitationBatchInvalidError reports job input that failed schema or shape checks.
func NewCitationBatchInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitationBatchInvalid,
		Message:   "Citation batch failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCitationNormalizationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitationNormalizationFailed,
		Message:   "Raw citations could not be normalized",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCitationQueryFailedError creates a retryable query execution error.
func NewCitationQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitationQueryFailed,
		Message:   "Citation query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCitationQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitationQueryTimeout,
		Message:   "Citation query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTypeError creates a non-retryable invalid query type error.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryType,
		Message:   "Unsupported query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTrackedQueriesMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTrackedQueriesMissing,
		Message:   "No tracked queries supplied",
		Details:   "gap identification needs at least one tracked query",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCitationSearchFailedError creates a retryable search error.
func NewCitationSearchFailedError(searchType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitationSearchFailed,
		Message:   "Elasticsearch citation search error",
		Details:   fmt.Sprintf("searchType: %s, error: %s", searchType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCitationSearchTimeoutError(searchType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitationSearchTimeout,
		Message:   "Elasticsearch citation search timeout",
		Details:   fmt.Sprintf("searchType: %s", searchType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisFailedError wraps an unexpected failure around an analysis run.
func NewAnalysisFailedError(analysis string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   fmt.Sprintf("Analysis '%s' failed", analysis),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewAnalysisTimeoutError(analysis string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisTimeout,
		Message:   fmt.Sprintf("Analysis '%s' timed out", analysis),
		Details:   "analysis exceeded the worker timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError is logged, never thrown: a cache miss path still completes the job.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCitationBatchInvalid:        "CITATION_BATCH_INVALID",
	ErrCodeCitationNormalizationFailed: "CITATION_NORMALIZATION_FAILED",
	ErrCodeDatabaseConnectionFailed:    "DATABASE_CONNECTION_FAILED",
	ErrCodeCitationQueryFailed:         "CITATION_QUERY_FAILED",
	ErrCodeCitationQueryTimeout:        "CITATION_QUERY_TIMEOUT",
	ErrCodeInvalidQueryType:            "INVALID_QUERY_TYPE",
	ErrCodeTrackedQueriesMissing:       "TRACKED_QUERIES_MISSING",
	ErrCodeCitationSearchFailed:        "CITATION_SEARCH_FAILED",
	ErrCodeCitationSearchTimeout:       "CITATION_SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:               "INDEX_NOT_FOUND",
	ErrCodeAnalysisFailed:              "ANALYSIS_FAILED",
	ErrCodeAnalysisTimeout:             "ANALYSIS_TIMEOUT",
	ErrCodeCacheUnavailable:            "CACHE_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeCitationQueryFailed,
		ErrCodeCitationSearchFailed,
		ErrCodeCacheUnavailable,
		ErrCodeExternalService:
		return 3 // Retryable technical errors

	case ErrCodeCitationQueryTimeout,
		ErrCodeCitationSearchTimeout,
		ErrCodeAnalysisTimeout,
		ErrCodeTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeAnalysisFailed:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BATCH") || strings.Contains(codeStr, "NORMALIZATION"):
		return "INPUT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "ANALYSIS"):
		return "ANALYSIS"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
