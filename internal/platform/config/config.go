// Package config loads server configuration from defaults, an optional
// config file and XCMKIT_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"xcmkit/internal/direction"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/middleware/request"
	xstrings "xcmkit/pkg/platform/strings"
)

const envPrefix = "XCMKIT"

// Cache backends for the foreign-asset cache.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Audit sinks.
const (
	AuditMemory   = "memory"
	AuditPostgres = "postgres"
	AuditKafka    = "kafka"
)

// Config is the full server configuration.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
	Registry  Registry  `mapstructure:"registry"`
	Redis     Redis     `mapstructure:"redis"`
	Postgres  Postgres  `mapstructure:"postgres"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Audit     Audit     `mapstructure:"audit"`
	RateLimit RateLimit `mapstructure:"rate_limit"`
	Chains    Chains    `mapstructure:"chains"`
	Directive Directive `mapstructure:"directive"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	AdminJWTSecret  string        `mapstructure:"admin_jwt_secret"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies are the IPs or CIDR ranges whose X-Forwarded-For and
	// X-Real-IP headers name the client. Empty trusts no proxy.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Registry configures the chain registry and its foreign-asset cache.
type Registry struct {
	SeedFile     string        `mapstructure:"seed_file"`
	CacheBackend string        `mapstructure:"cache_backend"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type Redis struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Postgres struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Audit selects the audit sink and the publisher's buffering.
type Audit struct {
	Sink       string `mapstructure:"sink"`
	Async      bool   `mapstructure:"async"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// RateLimit bounds requests per client IP. A zero request budget leaves
// that endpoint class unlimited.
type RateLimit struct {
	Enabled           bool          `mapstructure:"enabled"`
	Backend           string        `mapstructure:"backend"`
	DirectiveRequests int           `mapstructure:"directive_requests"`
	RegistryRequests  int           `mapstructure:"registry_requests"`
	Window            time.Duration `mapstructure:"window"`
}

// Chains maps registry spec names to node websocket endpoints. Chains
// without an endpoint are served from the registry alone.
type Chains struct {
	Endpoints        map[string]string `mapstructure:"endpoints"`
	RequestTimeout   time.Duration     `mapstructure:"request_timeout"`
	FailureThreshold int               `mapstructure:"failure_threshold"`
	SuccessThreshold int               `mapstructure:"success_threshold"`
	Cooldown         time.Duration     `mapstructure:"cooldown"`
}

type Directive struct {
	DefaultVersion              int      `mapstructure:"default_version"`
	DisabledLegs                []string `mapstructure:"disabled_legs"`
	MinSystemToRelaySpecVersion uint32   `mapstructure:"min_system_to_relay_spec_version"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("registry.cache_backend", CacheMemory)
	v.SetDefault("registry.cache_ttl", 24*time.Hour)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("kafka.topic", "xcmkit.directive-audit")
	v.SetDefault("audit.sink", AuditMemory)
	v.SetDefault("audit.async", true)
	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.backend", CacheMemory)
	v.SetDefault("rate_limit.directive_requests", 120)
	v.SetDefault("rate_limit.registry_requests", 600)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("chains.request_timeout", 10*time.Second)
	v.SetDefault("chains.failure_threshold", 5)
	v.SetDefault("chains.success_threshold", 2)
	v.SetDefault("chains.cooldown", 30*time.Second)
	v.SetDefault("directive.default_version", int(xcm.DefaultVersion))
	v.SetDefault("directive.disabled_legs", []string{string(direction.ParaToRelay)})
	v.SetDefault("directive.min_system_to_relay_spec_version", direction.DefaultMinSystemToRelaySpecVersion)
}

// Load reads configuration from path (optional) and the environment, then
// validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = xstrings.Normalize(cfg.Kafka.Brokers)
	cfg.Server.TrustedProxies = xstrings.Normalize(cfg.Server.TrustedProxies)
	cfg.Directive.DisabledLegs = xstrings.NormalizeFold(cfg.Directive.DisabledLegs)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnv registers keys without defaults so AutomaticEnv sees them during
// Unmarshal.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.admin_jwt_secret",
		"registry.seed_file",
		"redis.url",
		"postgres.dsn",
		"kafka.brokers",
		"server.trusted_proxies",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return dErrors.New(dErrors.CodeValidation, "server.addr is required")
	}
	if len(c.Server.AdminJWTSecret) > 0 && len(c.Server.AdminJWTSecret) < 32 {
		return dErrors.New(dErrors.CodeValidation, "server.admin_jwt_secret must be at least 32 bytes")
	}
	if _, err := request.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "server.trusted_proxies must list IP addresses or CIDR ranges")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return dErrors.Newf(dErrors.CodeValidation, "log.format must be json or text, got %q", c.Log.Format)
	}

	switch c.Registry.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.Redis.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "redis.url is required for the redis cache backend")
		}
	case CachePostgres:
		if c.Postgres.DSN == "" {
			return dErrors.New(dErrors.CodeValidation, "postgres.dsn is required for the postgres cache backend")
		}
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown registry.cache_backend %q", c.Registry.CacheBackend)
	}

	switch c.Audit.Sink {
	case AuditMemory:
	case AuditPostgres:
		if c.Postgres.DSN == "" {
			return dErrors.New(dErrors.CodeValidation, "postgres.dsn is required for the postgres audit sink")
		}
	case AuditKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return dErrors.New(dErrors.CodeValidation, "kafka.brokers and kafka.topic are required for the kafka audit sink")
		}
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown audit.sink %q", c.Audit.Sink)
	}
	if c.Audit.BufferSize < 0 {
		return dErrors.New(dErrors.CodeValidation, "audit.buffer_size must not be negative")
	}

	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case CacheMemory:
		case CacheRedis:
			if c.Redis.URL == "" {
				return dErrors.New(dErrors.CodeValidation, "redis.url is required for the redis rate limit backend")
			}
		default:
			return dErrors.Newf(dErrors.CodeValidation, "unknown rate_limit.backend %q", c.RateLimit.Backend)
		}
		if c.RateLimit.Window <= 0 {
			return dErrors.New(dErrors.CodeValidation, "rate_limit.window must be positive")
		}
	}

	for spec, url := range c.Chains.Endpoints {
		if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
			return dErrors.Newf(dErrors.CodeValidation, "chains.endpoints.%s must be a ws:// or wss:// url", spec)
		}
	}

	if _, err := xcm.ParseVersion(c.Directive.DefaultVersion); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the leg policy from the directive section.
func (c *Config) Policy() (direction.Policy, error) {
	return direction.NewPolicy(c.Directive.DisabledLegs, c.Directive.MinSystemToRelaySpecVersion)
}

// DefaultVersion returns the configured default XCM version.
func (c *Config) DefaultVersion() xcm.Version {
	v, err := xcm.ParseVersion(c.Directive.DefaultVersion)
	if err != nil {
		return xcm.DefaultVersion
	}
	return v
}
