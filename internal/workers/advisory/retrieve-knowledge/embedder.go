// internal/workers/advisory/retrieve-knowledge/embedder.go
package retrieveknowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"advisory-workers/internal/common/database"
	"advisory-workers/internal/common/logger"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder memoises embeddings in Redis keyed by model and text hash.
// Cache errors never fail the call.
type CachedEmbedder struct {
	inner  Embedder
	cache  *database.RedisClient
	model  string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedEmbedder(inner Embedder, cache *database.RedisClient, model string, ttl time.Duration, log logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, model: model, ttl: ttl, logger: log}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.cache == nil {
		return c.inner.Embed(ctx, text)
	}

	key := c.key(text)
	var vec []float32
	err := c.cache.GetJSON(ctx, key, &vec)
	if err == nil && len(vec) > 0 {
		return vec, nil
	}
	if err != nil && !errors.Is(err, database.ErrCacheMiss) {
		c.logger.Warn("embedding cache read failed", map[string]interface{}{"error": err})
	}

	vec, err = c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, vec, c.ttl); err != nil {
		c.logger.Warn("embedding cache write failed", map[string]interface{}{"error": err})
	}
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}
