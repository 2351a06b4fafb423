// Package cache keeps analysis results in Redis keyed by a fingerprint of
// the batch they were computed from.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"citation-intelligence/internal/common/config"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "citation-intel"
	defaultTTL    = time.Hour
)

// ResultCache is a cache-aside store for JSON-encodable analysis results.
// A nil client, a nil cache or a disabled config turns every call into a
// miss.
type ResultCache struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	enabled bool
	logger  logger.Logger
}

func New(client redis.Cmdable, cfg config.CacheConfig, log logger.Logger) *ResultCache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if rc, ok := client.(*redis.Client); ok && rc == nil {
		client = nil
	}
	c := &ResultCache{
		client:  client,
		prefix:  cfg.KeyPrefix,
		ttl:     cfg.TTLDuration(),
		enabled: cfg.Enabled && client != nil,
		logger:  log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
	if c.prefix == "" {
		c.prefix = defaultPrefix
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	return c
}

// Fingerprint hashes the JSON encoding of parts. Equal inputs give equal
// fingerprints across processes.
func Fingerprint(parts ...interface{}) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("fingerprint part %d: %w", i, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Key namespaces a fingerprint under the analysis kind.
func (c *ResultCache) Key(kind, fingerprint string) string {
	return c.prefix + ":" + kind + ":" + fingerprint
}

// Get decodes the cached value at key into dst. It reports false on a miss;
// Redis failures are returned so the caller can fall back to computing.
func (c *ResultCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.AnalysisCacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	case err != nil:
		metrics.AnalysisCacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		// a corrupt entry is a miss; the fresh result overwrites it
		metrics.AnalysisCacheLookups.WithLabelValues("miss").Inc()
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return false, nil
	}
	metrics.AnalysisCacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Enabled reports whether lookups can ever hit.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.enabled
}
