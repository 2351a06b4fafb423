package patterns

import (
	"time"

	"citation-intelligence/internal/common/config"
)

// Config holds the pattern engine thresholds.
type Config struct {
	MinPatternFrequency int
	MinPatternStrength  float64
	MaxFeatures         int
	ClusterSeed         int64
	// Location is the calendar used for daily and weekday grouping.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		MinPatternFrequency: 3,
		MinPatternStrength:  0.6,
		MaxFeatures:         100,
		ClusterSeed:         42,
		Location:            time.UTC,
	}
}

// ConfigFrom converts the loaded application config, keeping defaults for
// unset fields.
func ConfigFrom(c config.PatternAnalysisConfig) Config {
	cfg := DefaultConfig()
	if c.MinPatternFrequency > 0 {
		cfg.MinPatternFrequency = c.MinPatternFrequency
	}
	if c.MinPatternStrength > 0 {
		cfg.MinPatternStrength = c.MinPatternStrength
	}
	if c.MaxFeatures > 0 {
		cfg.MaxFeatures = c.MaxFeatures
	}
	if c.ClusterSeed != 0 {
		cfg.ClusterSeed = c.ClusterSeed
	}
	cfg.Location = c.Location()
	return cfg
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
