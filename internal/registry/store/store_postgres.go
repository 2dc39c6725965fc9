package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"xcmkit/internal/registry/metrics"
	"xcmkit/internal/registry/models"
	txcontext "xcmkit/pkg/platform/tx"
	"xcmkit/pkg/requestcontext"
)

// Schema creates the foreign-asset cache table.
const Schema = `
CREATE TABLE IF NOT EXISTS foreign_asset_cache (
	spec_name    TEXT        NOT NULL,
	location_key TEXT        NOT NULL,
	symbol       TEXT        NOT NULL,
	location     JSONB       NOT NULL,
	cached_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (spec_name, location_key)
)`

// PostgresCache persists foreign assets in PostgreSQL.
type PostgresCache struct {
	db       *sql.DB
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewPostgresCache constructs a PostgreSQL-backed foreign-asset cache.
func NewPostgresCache(db *sql.DB, cacheTTL time.Duration, m *metrics.Metrics) *PostgresCache {
	return &PostgresCache{db: db, cacheTTL: cacheTTL, metrics: m}
}

// EnsureSchema creates the cache table when it does not exist.
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create foreign asset cache table: %w", err)
	}
	return nil
}

func (c *PostgresCache) Save(ctx context.Context, specName string, asset models.ForeignAsset) error {
	return c.SaveMany(ctx, specName, []models.ForeignAsset{asset})
}

// SaveMany upserts all assets in one statement.
func (c *PostgresCache) SaveMany(ctx context.Context, specName string, assets []models.ForeignAsset) error {
	if len(assets) == 0 {
		return nil
	}
	start := time.Now()
	now := requestcontext.Now(ctx)

	keys := make([]string, 0, len(assets))
	symbols := make([]string, 0, len(assets))
	locations := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.Key == "" {
			continue
		}
		keys = append(keys, a.Key)
		symbols = append(symbols, a.Symbol)
		locations = append(locations, string(a.Location))
	}

	query := `
		INSERT INTO foreign_asset_cache (spec_name, location_key, symbol, location, cached_at)
		SELECT $1, t.location_key, t.symbol, t.location::jsonb, $5
		FROM unnest($2::text[], $3::text[], $4::text[]) AS t(location_key, symbol, location)
		ON CONFLICT (spec_name, location_key) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			location = EXCLUDED.location,
			cached_at = EXCLUDED.cached_at
	`
	if _, err := txcontext.Exec(ctx, c.db).ExecContext(ctx, query, specName, pq.Array(keys), pq.Array(symbols), pq.Array(locations), now); err != nil {
		return fmt.Errorf("save foreign assets: %w", err)
	}
	c.metrics.ObserveCacheDuration("postgres", "save", time.Since(start).Seconds())
	return nil
}

// List returns entries newer than the cache TTL ordered by key.
func (c *PostgresCache) List(ctx context.Context, specName string) ([]models.ForeignAsset, error) {
	start := time.Now()
	cutoff := time.Time{}
	if c.cacheTTL > 0 {
		cutoff = requestcontext.Now(ctx).Add(-c.cacheTTL)
	}
	query := `
		SELECT location_key, symbol, location, cached_at
		FROM foreign_asset_cache
		WHERE spec_name = $1 AND cached_at > $2
		ORDER BY location_key
	`
	rows, err := txcontext.Exec(ctx, c.db).QueryContext(ctx, query, specName, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list foreign assets: %w", err)
	}
	defer rows.Close()

	var out []models.ForeignAsset
	for rows.Next() {
		var a models.ForeignAsset
		var location []byte
		if err := rows.Scan(&a.Key, &a.Symbol, &location, &a.CachedAt); err != nil {
			return nil, fmt.Errorf("scan foreign asset: %w", err)
		}
		a.Location = location
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign assets: %w", err)
	}

	c.metrics.ObserveCacheDuration("postgres", "list", time.Since(start).Seconds())
	if len(out) == 0 {
		c.metrics.RecordCacheMiss("postgres")
	} else {
		c.metrics.RecordCacheHit("postgres")
	}
	return out, nil
}
