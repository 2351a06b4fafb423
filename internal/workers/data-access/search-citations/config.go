// internal/workers/data-access/search-citations/config.go
package searchcitations

import (
	"time"

	"citation-intelligence/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig(wc config.WorkerConfig, es config.ElasticsearchConfig) *Config {
	cfg := &Config{
		Timeout: config.GetDuration(wc.Timeout),
		Index:   es.CitationIndex,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Index == "" {
		cfg.Index = "citations"
	}
	return cfg
}
