// Package chain defines the live chain-state collaborator used while building
// transfer directives, together with a static implementation for offline use
// and a Substrate RPC implementation.
package chain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"xcmkit/internal/xcm"
)

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Client,Provider

// RuntimeVersion is the subset of a chain's runtime version the service reads.
type RuntimeVersion struct {
	SpecName    string
	SpecVersion uint32
}

// Client answers chain-state questions for one chain. Implementations return
// sentinel.ErrUnavailable (wrapped) when the chain cannot be reached.
type Client interface {
	RuntimeVersion(ctx context.Context) (RuntimeVersion, error)
	// AssetExists reports whether id is registered in the Assets pallet.
	AssetExists(ctx context.Context, id uint32) (bool, error)
	// ForeignAssetExists reports whether loc is registered in the
	// ForeignAssets pallet.
	ForeignAssetExists(ctx context.Context, loc xcm.Location) (bool, error)
}

// Provider hands out the client for a chain, keyed by spec name.
type Provider interface {
	ClientFor(specName string) (Client, bool)
}

// Set is a Provider backed by a map of registered clients.
type Set struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewSet() *Set {
	return &Set{clients: make(map[string]Client)}
}

// Register adds c under specName. Spec names are case-insensitive.
func (s *Set) Register(specName string, c Client) error {
	key := strings.ToLower(specName)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[key]; exists {
		return fmt.Errorf("chain client %s already registered", key)
	}
	s.clients[key] = c
	return nil
}

func (s *Set) ClientFor(specName string) (Client, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[strings.ToLower(specName)]
	return c, ok
}

// SpecNames lists registered chains in sorted order.
func (s *Set) SpecNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.clients))
	for name := range s.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered client that holds a connection.
func (s *Set) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if closer, ok := c.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
