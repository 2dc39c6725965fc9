package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"xcmkit/internal/registry/models"
	"xcmkit/pkg/requestcontext"
)

type cachedForeignAsset struct {
	asset    models.ForeignAsset
	storedAt time.Time
}

// InMemoryCache keeps foreign assets in process memory with TTL expiration.
type InMemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]map[string]cachedForeignAsset
	cacheTTL time.Duration
}

// NewInMemoryCache creates an in-memory cache. A zero TTL never expires.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries:  make(map[string]map[string]cachedForeignAsset),
		cacheTTL: cacheTTL,
	}
}

func (c *InMemoryCache) Save(ctx context.Context, specName string, asset models.ForeignAsset) error {
	return c.SaveMany(ctx, specName, []models.ForeignAsset{asset})
}

func (c *InMemoryCache) SaveMany(ctx context.Context, specName string, assets []models.ForeignAsset) error {
	now := requestcontext.Now(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	chain, ok := c.entries[specName]
	if !ok {
		chain = make(map[string]cachedForeignAsset)
		c.entries[specName] = chain
	}
	for _, a := range assets {
		if a.Key == "" {
			continue
		}
		if a.CachedAt.IsZero() {
			a.CachedAt = now
		}
		chain[a.Key] = cachedForeignAsset{asset: a, storedAt: now}
	}
	return nil
}

// List returns unexpired entries ordered by key.
func (c *InMemoryCache) List(ctx context.Context, specName string) ([]models.ForeignAsset, error) {
	now := requestcontext.Now(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ForeignAsset, 0, len(c.entries[specName]))
	for _, cached := range c.entries[specName] {
		if c.cacheTTL > 0 && now.Sub(cached.storedAt) >= c.cacheTTL {
			continue
		}
		out = append(out, cached.asset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
