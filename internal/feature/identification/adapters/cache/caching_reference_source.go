// Package cache provides a Redis cache for reference image descriptors.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"cardlens/internal/feature/identification/domain/entity"
	"cardlens/internal/feature/identification/usecase"
)

// CachingReferenceSource decorates a ReferenceSource with Redis caching.
// Keys include the file size and modification time, so an edited reference image
// is re-extracted without explicit invalidation.
type CachingReferenceSource struct {
	inner     usecase.ReferenceSource
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ReferenceSource = (*CachingReferenceSource)(nil)

// NewCachingReferenceSource decorates a ReferenceSource with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "corpus".
func NewCachingReferenceSource(rdb *redis.Client, ttl time.Duration, inner usecase.ReferenceSource, namespace string) *CachingReferenceSource {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if namespace == "" {
		namespace = "corpus"
	}
	return &CachingReferenceSource{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Descriptors returns the descriptors of a reference image, checking the cache first.
func (c *CachingReferenceSource) Descriptors(ctx context.Context, file usecase.ReferenceFile, maxFeatures int) ([]entity.Descriptor, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Descriptors(ctx, file, maxFeatures)
	}

	key := c.cacheKey(file, maxFeatures)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if len(b)%entity.DescriptorSize == 0 {
			return entity.DescriptorsFromBytes(b), nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to extraction
	ds, err := c.inner.Descriptors(ctx, file, maxFeatures)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if len(ds) > 0 {
		if err := c.rdb.Set(ctx, key, entity.DescriptorsToBytes(ds), c.ttl).Err(); err != nil {
			slog.Warn("failed to cache reference descriptors", "file", file.Path, "error", err)
		}
	}
	return ds, nil
}

// Purge deletes every cached descriptor set in the namespace using SCAN.
func (c *CachingReferenceSource) Purge(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, c.namespace+":*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// cacheKey generates a cache key for one version of a reference image.
func (c *CachingReferenceSource) cacheKey(file usecase.ReferenceFile, maxFeatures int) string {
	return fmt.Sprintf("%s:%s:%d:%d:%d",
		c.namespace,
		safe(file.ID),
		file.Size,
		file.ModTime.UnixNano(),
		maxFeatures,
	)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
