package handler

import (
	"encoding/json"

	"xcmkit/internal/registry"
	"xcmkit/internal/registry/models"
)

// ChainResponse is the HTTP response for GET /v1/registry/chains/{specName}.
type ChainResponse struct {
	ID                   string                 `json:"id"`
	SpecName             string                 `json:"specName"`
	Relay                string                 `json:"relay"`
	Tokens               []string               `json:"tokens"`
	AssetsPalletInstance uint8                  `json:"assetsPalletInstance,omitempty"`
	Assets               []models.LocalAsset    `json:"assets,omitempty"`
	ForeignAssets        []ForeignAssetResponse `json:"foreignAssets,omitempty"`
	XCAssets             []string               `json:"xcAssets,omitempty"`
}

// ForeignAssetResponse is a foreign asset with its rendered location.
type ForeignAssetResponse struct {
	Symbol   string          `json:"symbol,omitempty"`
	Location json.RawMessage `json:"location"`
}

// FromChain converts chain info and its foreign assets to a response.
func FromChain(info models.ChainInfo, foreign []registry.ForeignAsset) (*ChainResponse, error) {
	resp := &ChainResponse{
		ID:                   info.ID,
		SpecName:             info.SpecName,
		Relay:                info.Relay,
		Tokens:               info.Tokens,
		AssetsPalletInstance: info.AssetsPalletInstance,
		Assets:               info.Assets,
	}
	for _, fa := range foreign {
		loc, err := renderLocation(fa.Location)
		if err != nil {
			return nil, err
		}
		resp.ForeignAssets = append(resp.ForeignAssets, ForeignAssetResponse{Symbol: fa.Symbol, Location: loc})
	}
	for _, xc := range info.XCAssets {
		resp.XCAssets = append(resp.XCAssets, xc.Symbol)
	}
	return resp, nil
}
