package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whisper/sentinel/internal/pipeline"
)

const (
	// CachePrefix is the Redis key prefix for cached verdicts.
	CachePrefix = "verdict:"

	// DefaultCacheTTL bounds how long a cached verdict is served before the
	// backend is consulted again.
	DefaultCacheTTL = 1 * time.Hour
)

// Cache is a read-through Redis cache over any Classifier backend.
// Verdicts are keyed by the SHA-256 of the content, so identical
// submissions skip the (network-bound) backend call. Redis errors fail
// open: the backend is consulted and the run proceeds.
type Cache struct {
	client  *redis.Client
	backend pipeline.Classifier
	ttl     time.Duration
}

// NewCache wraps backend with a Redis verdict cache. A zero ttl uses
// DefaultCacheTTL.
func NewCache(client *redis.Client, backend pipeline.Classifier, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, backend: backend, ttl: ttl}
}

// Classify serves a cached verdict when one exists, otherwise delegates to
// the backend and stores the result. Only successful, in-contract verdicts
// are cached; failures always propagate uncached so transient backend
// errors are not pinned for the TTL.
func (c *Cache) Classify(ctx context.Context, content, metadataSummary string) (pipeline.Classification, error) {
	key := cacheKey(content)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached pipeline.Classification
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil && cached.Severity.Valid() {
			return cached, nil
		}
		// Unreadable or out-of-contract cache entry: drop it and reclassify.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[classifier] cache read error key=%s: %v (falling through)", key, err)
	}

	verdict, err := c.backend.Classify(ctx, content, metadataSummary)
	if err != nil {
		return pipeline.Classification{}, err
	}

	if data, err := json.Marshal(verdict); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("[classifier] cache write error key=%s: %v", key, err)
		}
	}

	return verdict, nil
}

// cacheKey derives the Redis key for a content string.
func cacheKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return CachePrefix + hex.EncodeToString(sum[:])
}
