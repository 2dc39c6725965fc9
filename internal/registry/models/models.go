// Package models holds the registry's data types as they are loaded from
// registry files and persisted by the foreign-asset caches.
package models

import (
	"encoding/json"
	"time"
)

// File is the on-disk registry document.
type File struct {
	Chains       []ChainInfo   `json:"chains"`
	BridgeAssets []BridgeAsset `json:"bridgeAssets,omitempty"`
}

// ChainInfo describes one chain. SpecName is unique across relays; ID is only
// unique within a relay.
type ChainInfo struct {
	ID                   string         `json:"id"`
	SpecName             string         `json:"specName"`
	Relay                string         `json:"relay"`
	Tokens               []string       `json:"tokens"`
	AssetsPalletInstance uint8          `json:"assetsPalletInstance,omitempty"`
	Assets               []LocalAsset   `json:"assets,omitempty"`
	ForeignAssets        []ForeignAsset `json:"foreignAssets,omitempty"`
	XCAssets             []XCAsset      `json:"xcAssets,omitempty"`
}

// PrimaryToken is the chain's first native token.
func (c ChainInfo) PrimaryToken() string {
	if len(c.Tokens) == 0 {
		return ""
	}
	return c.Tokens[0]
}

// LocalAsset is an entry of a system chain's assets pallet.
type LocalAsset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// ForeignAsset is an entry of a system chain's foreign-assets pallet. The
// location is relative to the chain holding the pallet. Key is the
// location's canonical form and identifies the entry in caches.
type ForeignAsset struct {
	Key      string          `json:"key,omitempty"`
	Symbol   string          `json:"symbol"`
	Location json.RawMessage `json:"location"`
	CachedAt time.Time       `json:"cachedAt,omitempty"`
}

// XCAsset is a cross-chain asset known to a parachain. The location is
// relative to that parachain.
type XCAsset struct {
	Symbol   string          `json:"symbol"`
	AssetID  string          `json:"assetId"`
	Location json.RawMessage `json:"location"`
}

// BridgeAsset maps an asset sent from Origin to a bridged Destination onto
// its location in the destination consensus system.
type BridgeAsset struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	AssetID     string          `json:"assetId"`
	Symbol      string          `json:"symbol,omitempty"`
	Location    json.RawMessage `json:"location"`
}
