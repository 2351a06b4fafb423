package analyzecompetitorpatterns

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"citation-intelligence/internal/analysis/patterns"
	"citation-intelligence/internal/common/config"
	"citation-intelligence/internal/common/errors"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/validation"
	"citation-intelligence/internal/models"
	"citation-intelligence/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	reg, err := registry.Embedded()
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)
	analyzer := patterns.NewAnalyzer(patterns.DefaultConfig(), logger.NewTestLogger(t))
	return NewHandler(LoadConfig(config.WorkerConfig{}), analyzer, v, nil, logger.NewTestLogger(t))
}

func cite(domain string, engine models.Engine, pos int) models.CitationRecord {
	return models.CitationRecord{
		Engine:          engine,
		Query:           "best crm software",
		Position:        pos,
		CitationType:    models.CitationTypeOrganic,
		SourceDomain:    domain,
		ProminenceScore: 0.5,
		CreatedAt:       time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Execute_ProfilesCitedCompetitors(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Citations: []models.CitationRecord{
			cite("salesforce.com", models.EngineGoogle, 1),
			cite("salesforce.com", models.EnginePerplexity, 3),
			cite("hubspot.com", models.EngineGoogle, 2),
		},
		CompetitorDomains: []string{"salesforce.com", "pipedrive.com"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, out.CompetitorCount)
	p := out.CompetitorPatterns[0]
	assert.Equal(t, "salesforce.com", p.CompetitorDomain)
	assert.Equal(t, 2, p.CitationCount)
	assert.InDelta(t, 2.0, p.AveragePosition, 1e-9)
	assert.InDelta(t, 0.5, p.EnginesDominance[models.EngineGoogle], 1e-9)
}

func TestHandler_Run_ValidatesInput(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.run(context.Background(), `{"citations": [], "competitorDomains": ["a.com"]}`)
	require.NoError(t, err)
	assert.NotNil(t, out.CompetitorPatterns)
	assert.Zero(t, out.CompetitorCount)

	_, err = h.run(context.Background(), `{"citations": []}`)
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeCitationBatchInvalid, stdErr.Code)

	_, err = h.run(context.Background(), `{"citations": [], "competitorDomains": [""]}`)
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeCitationBatchInvalid, stdErr.Code)
}

func TestHandler_Execute_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := createTestHandler(t).Execute(ctx, &Input{CompetitorDomains: []string{"a.com"}})
	assert.Equal(t, errors.ErrCodeAnalysisTimeout, errors.Normalize(err).Code)
}
