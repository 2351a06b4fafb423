package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app:
  name: citation-intelligence
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: citations
    user: ${TEST_CITATION_DB_USER}
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
workers:
  identify-content-gaps:
    enabled: true
    timeout: 60000
analysis:
  patterns:
    min_pattern_frequency: 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_CITATION_DB_USER", "analyst")

	cfg, err := LoadFromFile(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "analyst", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "citations", cfg.Database.Elasticsearch.CitationIndex)

	assert.Equal(t, 4, cfg.Analysis.Patterns.MinPatternFrequency)
	assert.Equal(t, 0.6, cfg.Analysis.Patterns.MinPatternStrength)
	assert.Equal(t, 100, cfg.Analysis.Patterns.MaxFeatures)
	assert.Equal(t, int64(42), cfg.Analysis.Patterns.ClusterSeed)
	assert.Equal(t, 0.3, cfg.Analysis.Gaps.MinOpportunityScore)
	assert.Equal(t, 0.7, cfg.Analysis.Gaps.HighOpportunityThreshold)
	assert.Equal(t, 10, cfg.Analysis.Gaps.MinClusterQueries)

	assert.Equal(t, 15*time.Minute, cfg.Cache.TTLDuration())

	w := GetWorkerConfig(cfg, "identify-content-gaps")
	assert.Equal(t, 60000, w.Timeout)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("TEST_CITATION_DB_USER", "analyst")
	t.Setenv("ANALYSIS_GAPS_MIN_CLUSTER_QUERIES", "12")

	cfg, err := LoadFromFile(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Analysis.Gaps.MinClusterQueries)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Camunda.BrokerAddress = "localhost:26500"
		cfg.Database.Postgres.Host = "localhost"
		cfg.Database.Postgres.Database = "citations"
		cfg.Database.Postgres.User = "analyst"
		cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
		cfg.Database.Redis.Address = "localhost:6379"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "camunda.broker_address"},
		{"missing redis", func(c *Config) { c.Database.Redis.Address = "" }, "database.redis.address"},
		{"strength above one", func(c *Config) { c.Analysis.Patterns.MinPatternStrength = 1.5 }, "min_pattern_strength"},
		{"bad timezone", func(c *Config) { c.Analysis.Patterns.Timezone = "Mars/Olympus" }, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"search-citations": {Enabled: false}}}
	assert.False(t, IsWorkerEnabled(cfg, "search-citations"))
	assert.True(t, IsWorkerEnabled(cfg, "query-citations"))
}

func TestPatternLocation(t *testing.T) {
	assert.Equal(t, time.UTC, PatternAnalysisConfig{}.Location())
	assert.Equal(t, time.UTC, PatternAnalysisConfig{Timezone: "nowhere"}.Location())
}
