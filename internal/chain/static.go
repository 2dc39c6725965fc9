package chain

import (
	"context"
	"sync"

	"xcmkit/internal/xcm"
)

// StaticClient answers from fixed in-memory state. It backs the CLI and
// tests where no node is reachable.
type StaticClient struct {
	mu            sync.RWMutex
	version       RuntimeVersion
	assets        map[uint32]struct{}
	foreignAssets map[string]struct{}
}

// StaticOption configures a StaticClient.
type StaticOption func(*StaticClient)

// WithAssets marks ids as registered in the Assets pallet.
func WithAssets(ids ...uint32) StaticOption {
	return func(c *StaticClient) {
		for _, id := range ids {
			c.assets[id] = struct{}{}
		}
	}
}

// WithForeignAssets marks locations as registered in the ForeignAssets pallet.
func WithForeignAssets(locs ...xcm.Location) StaticOption {
	return func(c *StaticClient) {
		for _, loc := range locs {
			c.foreignAssets[loc.Canonical()] = struct{}{}
		}
	}
}

func NewStaticClient(version RuntimeVersion, opts ...StaticOption) *StaticClient {
	c := &StaticClient{
		version:       version,
		assets:        make(map[uint32]struct{}),
		foreignAssets: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StaticClient) RuntimeVersion(context.Context) (RuntimeVersion, error) {
	return c.version, nil
}

func (c *StaticClient) AssetExists(_ context.Context, id uint32) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.assets[id]
	return ok, nil
}

func (c *StaticClient) ForeignAssetExists(_ context.Context, loc xcm.Location) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.foreignAssets[loc.Canonical()]
	return ok, nil
}
