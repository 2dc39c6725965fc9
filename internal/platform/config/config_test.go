package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcmkit/internal/direction"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, CacheMemory, cfg.Registry.CacheBackend)
	assert.Equal(t, AuditMemory, cfg.Audit.Sink)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, xcm.V4, cfg.DefaultVersion())

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.True(t, policy.Disabled[direction.ParaToRelay])
	assert.Equal(t, uint32(direction.DefaultMinSystemToRelaySpecVersion), policy.MinSystemToRelaySpecVersion)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("XCMKIT_SERVER_ADDR", ":9090")
	t.Setenv("XCMKIT_REGISTRY_CACHE_BACKEND", "redis")
	t.Setenv("XCMKIT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("XCMKIT_DIRECTIVE_DEFAULT_VERSION", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, CacheRedis, cfg.Registry.CacheBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, xcm.V3, cfg.DefaultVersion())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xcmkit.yaml")
	doc := `
server:
  addr: ":7000"
log:
  format: text
chains:
  endpoints:
    statemine: wss://kusama-asset-hub-rpc.polkadot.io
directive:
  disabled_legs: []
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "wss://kusama-asset-hub-rpc.polkadot.io", cfg.Chains.Endpoints["statemine"])

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.False(t, policy.Disabled[direction.ParaToRelay])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"short admin secret", func(c *Config) { c.Server.AdminJWTSecret = "short" }},
		{"hostname trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"lb.internal"} }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"unknown cache backend", func(c *Config) { c.Registry.CacheBackend = "disk" }},
		{"redis without url", func(c *Config) { c.Registry.CacheBackend = CacheRedis }},
		{"postgres without dsn", func(c *Config) { c.Registry.CacheBackend = CachePostgres }},
		{"kafka without brokers", func(c *Config) { c.Audit.Sink = AuditKafka }},
		{"unknown audit sink", func(c *Config) { c.Audit.Sink = "stdout" }},
		{"http chain endpoint", func(c *Config) { c.Chains.Endpoints = map[string]string{"polkadot": "http://node"} }},
		{"unknown rate limit backend", func(c *Config) { c.RateLimit.Backend = "memcached" }},
		{"redis rate limit without url", func(c *Config) { c.RateLimit.Backend = CacheRedis }},
		{"zero rate limit window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"unsupported version", func(c *Config) { c.Directive.DefaultVersion = 1 }},
		{"unknown leg", func(c *Config) { c.Directive.DisabledLegs = []string{"ParaToMoon"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.NotEqual(t, dErrors.CodeInternal, dErrors.CodeOf(err))
		})
	}
}

func TestLoadNormalizesLists(t *testing.T) {
	t.Setenv("XCMKIT_AUDIT_SINK", "kafka")
	t.Setenv("XCMKIT_KAFKA_BROKERS", "k1:9092, k2:9092,k1:9092")
	t.Setenv("XCMKIT_DIRECTIVE_DISABLED_LEGS", "ParaToRelay,paratorelay,ParaToSystem")
	t.Setenv("XCMKIT_SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10,10.0.0.0/8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"ParaToRelay", "ParaToSystem"}, cfg.Directive.DisabledLegs)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.Server.TrustedProxies)
}
