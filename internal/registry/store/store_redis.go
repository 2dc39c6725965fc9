package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"xcmkit/internal/registry/metrics"
	"xcmkit/internal/registry/models"
	"xcmkit/pkg/requestcontext"
)

const foreignAssetKeyPrefix = "xcmkit:foreign-assets:"

// RedisCache stores each chain's foreign assets in one hash whose expiry is
// refreshed on every write.
type RedisCache struct {
	client   *redis.Client
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewRedisCache constructs a Redis-backed foreign-asset cache.
func NewRedisCache(client *redis.Client, cacheTTL time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL, metrics: m}
}

func (c *RedisCache) Save(ctx context.Context, specName string, asset models.ForeignAsset) error {
	return c.SaveMany(ctx, specName, []models.ForeignAsset{asset})
}

func (c *RedisCache) SaveMany(ctx context.Context, specName string, assets []models.ForeignAsset) error {
	if len(assets) == 0 {
		return nil
	}
	start := time.Now()
	now := requestcontext.Now(ctx)
	key := foreignAssetKeyPrefix + specName

	pipe := c.client.TxPipeline()
	for _, a := range assets {
		if a.Key == "" {
			continue
		}
		if a.CachedAt.IsZero() {
			a.CachedAt = now
		}
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal foreign asset: %w", err)
		}
		pipe.HSet(ctx, key, a.Key, payload)
	}
	if c.cacheTTL > 0 {
		pipe.Expire(ctx, key, c.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save foreign assets: %w", err)
	}
	c.metrics.ObserveCacheDuration("redis", "save", time.Since(start).Seconds())
	return nil
}

func (c *RedisCache) List(ctx context.Context, specName string) ([]models.ForeignAsset, error) {
	start := time.Now()
	fields, err := c.client.HGetAll(ctx, foreignAssetKeyPrefix+specName).Result()
	if err != nil {
		return nil, fmt.Errorf("list foreign assets: %w", err)
	}
	c.metrics.ObserveCacheDuration("redis", "list", time.Since(start).Seconds())
	if len(fields) == 0 {
		c.metrics.RecordCacheMiss("redis")
		return nil, nil
	}
	c.metrics.RecordCacheHit("redis")

	out := make([]models.ForeignAsset, 0, len(fields))
	for _, raw := range fields {
		var a models.ForeignAsset
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode foreign asset: %w", err)
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
