// internal/workers/analysis/analyze-competitor-patterns/config.go
package analyzecompetitorpatterns

import (
	"time"

	"citation-intelligence/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Config{Timeout: timeout}
}
