package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCitationQueryFailedError("citations_by_queries", fmt.Errorf("connection reset"))
	bpmn := ConvertToBPMNError(stdErr)

	assert.Equal(t, "CITATION_QUERY_FAILED", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "CITATION_QUERY_FAILED", vars["errorCode"])
	assert.Equal(t, "CITATION_QUERY_FAILED", vars["originalErrorCode"])
	assert.Contains(t, vars["errorDetails"], "connection reset")
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	bpmn := ConvertToBPMNError(NewCitationBatchInvalidError("citations: required"))
	assert.False(t, bpmn.Retryable)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeCitationSearchFailed, 3},
		{ErrCodeCitationQueryTimeout, 2},
		{ErrCodeAnalysisTimeout, 2},
		{ErrCodeAnalysisFailed, 1},
		{ErrCodeInvalidQueryType, 0},
		{ErrCodeTrackedQueriesMissing, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodeCitationBatchInvalid))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeCitationQueryFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "ANALYSIS", GetErrorCategory(ErrCodeAnalysisFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("loading batch: %w", NewIndexNotFoundError("citations"))
	got := Normalize(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeIndexNotFound, got.Code)

	got = Normalize(fmt.Errorf("scan: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeAnalysisTimeout, got.Code)

	got = Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "boom", got.Details)
	assert.False(t, got.Retryable)
}

func TestStandardError_WithMetadata(t *testing.T) {
	err := NewAnalysisFailedError("patterns", fmt.Errorf("nan")).WithMetadata("records", 12)
	assert.Equal(t, 12, err.Metadata["records"])
	assert.Equal(t, "StandardError[ANALYSIS_FAILED]: Analysis 'patterns' failed", err.Error())
}
