package bucket

import (
	"context"
	"time"

	"xcmkit/internal/ratelimit/models"
)

// Store counts requests per key over a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (models.Result, error)
}
