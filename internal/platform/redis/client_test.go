package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcmkit/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	c, err := New(context.Background(), config.Redis{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.Redis{URL: "http://localhost:6379"})
	assert.ErrorContains(t, err, "parse redis url")
}

func TestOptionsApplyOverrides(t *testing.T) {
	opts, err := options(config.Redis{
		URL:         "redis://localhost:6379/2",
		PoolSize:    16,
		ReadTimeout: 750 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 16, opts.PoolSize)
	assert.Equal(t, 750*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 0, opts.MinIdleConns)
}
