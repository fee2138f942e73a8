// Package resultcache keeps recommendation results in a key-value store,
// keyed by catalog version, pass mode and the preference itself.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/db"
	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
	"github.com/kailas-cloud/lapmatch/internal/domain/recommendation"
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores recommendation results with a TTL. Failures are logged and
// treated as misses.
type Cache struct {
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		prefix:     keyPrefix + "result:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached result for p against the given catalog version.
func (c *Cache) Get(ctx context.Context, version uint64, relaxed bool, p *preference.Preference) (recommendation.Result, bool) {
	key, ok := c.key(version, relaxed, p)
	if !ok {
		return recommendation.Result{}, false
	}

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return recommendation.Result{}, false
	}

	var res recommendation.Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("Failed to parse cached result", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return recommendation.Result{}, false
	}
	c.inc("hit")
	return res, true
}

// Put stores res for p against the given catalog version.
func (c *Cache) Put(ctx context.Context, version uint64, relaxed bool, p *preference.Preference, res recommendation.Result) {
	key, ok := c.key(version, relaxed, p)
	if !ok {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to encode result", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// key hashes the canonical JSON of p. Struct field order makes the encoding
// stable, so equal preferences share a key.
func (c *Cache) key(version uint64, relaxed bool, p *preference.Preference) (string, bool) {
	body, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("Failed to encode preference", zap.Error(err))
		return "", false
	}
	h := sha256.New()
	h.Write([]byte(strconv.FormatUint(version, 10)))
	h.Write([]byte(strconv.FormatBool(relaxed)))
	h.Write(body)
	return c.prefix + hex.EncodeToString(h.Sum(nil)), true
}
