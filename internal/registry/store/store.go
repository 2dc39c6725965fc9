// Package store persists foreign assets discovered on live chain state so
// later lookups can skip the chain query.
package store

import (
	"context"

	"xcmkit/internal/registry/models"
)

// ForeignAssetCache is implemented by every cache backend. Entries are
// immutable facts keyed by (specName, asset key); writes are last-write-wins.
type ForeignAssetCache interface {
	Save(ctx context.Context, specName string, asset models.ForeignAsset) error
	SaveMany(ctx context.Context, specName string, assets []models.ForeignAsset) error
	List(ctx context.Context, specName string) ([]models.ForeignAsset, error)
}
