package organizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.uber.org/zap"

	"acordex/internal/domain"
	"acordex/internal/port"
)

// Cached serves repeated organizer inputs from a ResultCache. Cache
// failures are logged and never fail the call.
type Cached struct {
	next      port.Organizer
	cache     port.ResultCache
	namespace string
	logger    *zap.Logger
}

// NewCached wraps next. namespace separates entries of different
// providers and models.
func NewCached(next port.Organizer, cache port.ResultCache, namespace string, logger *zap.Logger) *Cached {
	return &Cached{next: next, cache: cache, namespace: namespace, logger: logger}
}

// CacheKey derives the cache key for input.
func CacheKey(namespace string, input port.OrganizeInput) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(input.Mode))
	h.Write([]byte{0})
	h.Write([]byte(BuildPrompt(input)))
	return "organizer:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) Organize(ctx context.Context, input port.OrganizeInput) (*domain.OrganizedResult, error) {
	if input.IsEmpty() {
		return c.next.Organize(ctx, input)
	}
	key := CacheKey(c.namespace, input)

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("organizer cache read failed", zap.Error(err))
	}
	if ok {
		var res domain.OrganizedResult
		if err := json.Unmarshal(raw, &res); err == nil {
			// a cached answer spent no tokens on this request
			res.TokensUsed = domain.TokenUsage{}
			if res.AdditionalFields == nil {
				res.AdditionalFields = map[string]string{}
			}
			return &res, nil
		}
		c.logger.Warn("discarding unreadable organizer cache entry", zap.String("key", key))
	}

	res, err := c.next.Organize(ctx, input)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(res); err == nil {
		if err := c.cache.Set(ctx, key, payload); err != nil {
			c.logger.Warn("organizer cache write failed", zap.Error(err))
		}
	}
	return res, nil
}
