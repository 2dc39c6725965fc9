package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"

	"xcmkit/internal/chain"
	chainmetrics "xcmkit/internal/chain/metrics"
	"xcmkit/internal/directive"
	directivemetrics "xcmkit/internal/directive/metrics"
	"xcmkit/internal/platform/config"
	"xcmkit/internal/platform/kafka"
	platformmetrics "xcmkit/internal/platform/metrics"
	"xcmkit/internal/platform/postgres"
	"xcmkit/internal/platform/redis"
	ratemetrics "xcmkit/internal/ratelimit/metrics"
	ratemw "xcmkit/internal/ratelimit/middleware"
	ratemodels "xcmkit/internal/ratelimit/models"
	"xcmkit/internal/ratelimit/store/bucket"
	"xcmkit/internal/registry"
	registrymetrics "xcmkit/internal/registry/metrics"
	"xcmkit/internal/registry/store"
	"xcmkit/internal/resolver"
	audit "xcmkit/pkg/platform/audit"
	"xcmkit/pkg/platform/audit/publisher"
	auditkafka "xcmkit/pkg/platform/audit/store/kafka"
	auditmemory "xcmkit/pkg/platform/audit/store/memory"
	auditpostgres "xcmkit/pkg/platform/audit/store/postgres"
	"xcmkit/pkg/platform/circuit"
	"xcmkit/pkg/platform/middleware/request"
)

// app owns every long-lived dependency of the server.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	promRegistry    *prometheus.Registry
	httpMetrics     *platformmetrics.Metrics
	registryMetrics *registrymetrics.Metrics

	redis *redis.Client
	db    *sql.DB
	kafka *kgo.Client

	chains    *chain.Set
	registry  *registry.Registry
	publisher *publisher.Publisher
	service   *directive.Service
	limiter   *ratemw.Middleware
	proxies   *request.TrustedProxies
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log, promRegistry: prometheus.NewRegistry()}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	a.promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.httpMetrics = platformmetrics.New(a.promRegistry)
	a.registryMetrics = registrymetrics.New(a.promRegistry)

	if err := a.connect(ctx); err != nil {
		return err
	}

	cache, err := a.foreignAssetCache(ctx)
	if err != nil {
		return err
	}
	if a.registry, err = a.loadRegistry(cache); err != nil {
		return err
	}
	if a.chains, err = dialChains(cfg.Chains, chainmetrics.New(a.promRegistry), log); err != nil {
		return err
	}

	auditStore, err := a.auditStore(ctx)
	if err != nil {
		return err
	}
	pubOpts := []publisher.Option{publisher.WithLogger(log)}
	if cfg.Audit.Async {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.Audit.BufferSize))
	}
	a.publisher = publisher.NewPublisher(auditStore, pubOpts...)

	a.limiter = a.rateLimiter(ctx)
	if a.proxies, err = request.ParseTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	res := resolver.New(a.registry, resolver.WithLogger(log), resolver.WithChains(a.chains))
	a.service = directive.NewService(a.registry, res,
		directive.WithLogger(log),
		directive.WithMetrics(directivemetrics.New(a.promRegistry)),
		directive.WithChains(a.chains),
		directive.WithPolicy(policy),
		directive.WithDefaultVersion(cfg.DefaultVersion()),
		directive.WithAuditor(a.publisher),
	)
	return nil
}

// connect opens the backing stores that the configuration selects.
func (a *app) connect(ctx context.Context) error {
	cfg := a.cfg
	if cfg.Registry.CacheBackend == config.CacheRedis || (cfg.RateLimit.Enabled && cfg.RateLimit.Backend == config.CacheRedis) {
		c, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.redis = c
	}
	if cfg.Registry.CacheBackend == config.CachePostgres || cfg.Audit.Sink == config.AuditPostgres {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		a.db = db
	}
	if cfg.Audit.Sink == config.AuditKafka {
		client, err := kafka.New(cfg.Kafka)
		if err != nil {
			return err
		}
		a.kafka = client
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, 1); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) foreignAssetCache(ctx context.Context) (store.ForeignAssetCache, error) {
	ttl := a.cfg.Registry.CacheTTL
	m := a.registryMetrics
	switch a.cfg.Registry.CacheBackend {
	case config.CacheRedis:
		return store.NewRedisCache(a.redis.Client, ttl, m), nil
	case config.CachePostgres:
		c := store.NewPostgresCache(a.db, ttl, m)
		if err := c.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("foreign asset cache schema: %w", err)
		}
		return c, nil
	default:
		return store.NewInMemoryCache(ttl), nil
	}
}

func (a *app) loadRegistry(cache store.ForeignAssetCache) (*registry.Registry, error) {
	f, err := registry.Seed()
	if err != nil {
		return nil, err
	}
	if path := a.cfg.Registry.SeedFile; path != "" {
		overlay, err := registry.LoadFile(path)
		if err != nil {
			return nil, err
		}
		f = registry.Merge(f, overlay)
	}
	return registry.New(f,
		registry.WithCache(cache),
		registry.WithLogger(a.logger),
		registry.WithMetrics(a.registryMetrics),
	)
}

func (a *app) auditStore(ctx context.Context) (audit.Store, error) {
	switch a.cfg.Audit.Sink {
	case config.AuditPostgres:
		s := auditpostgres.New(a.db)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		return s, nil
	case config.AuditKafka:
		return auditkafka.New(a.kafka, a.cfg.Kafka.Topic), nil
	default:
		return auditmemory.NewInMemoryStore(), nil
	}
}

// rateLimiter builds the per-IP limiter. The in-memory store is swept once
// per window until ctx ends.
func (a *app) rateLimiter(ctx context.Context) *ratemw.Middleware {
	rl := a.cfg.RateLimit
	limits := map[ratemodels.Class]ratemodels.Limit{
		ratemodels.ClassDirective: {Requests: rl.DirectiveRequests, Window: rl.Window},
		ratemodels.ClassRegistry:  {Requests: rl.RegistryRequests, Window: rl.Window},
	}
	opts := []ratemw.Option{
		ratemw.WithMetrics(ratemetrics.New(a.promRegistry)),
		ratemw.WithDisabled(!rl.Enabled),
	}

	var buckets bucket.Store
	if rl.Enabled && rl.Backend == config.CacheRedis {
		buckets = bucket.NewRedisBucketStore(a.redis.Client)
	} else {
		mem := bucket.NewInMemoryBucketStore()
		if rl.Enabled {
			go sweep(ctx, mem, rl.Window)
		}
		buckets = mem
	}
	return ratemw.New(buckets, limits, a.logger, opts...)
}

func sweep(ctx context.Context, store *bucket.InMemoryBucketStore, window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep(window)
		}
	}
}

// dialChains connects a live client for every configured endpoint. Each
// client gets its own breaker so one unreachable node does not trip others.
func dialChains(cfg config.Chains, m *chainmetrics.Metrics, log *slog.Logger) (*chain.Set, error) {
	set := chain.NewSet()
	for specName, url := range cfg.Endpoints {
		breaker := circuit.New(specName,
			circuit.WithFailureThreshold(cfg.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.SuccessThreshold),
			circuit.WithCooldown(cfg.Cooldown),
		)
		c, err := chain.Dial(specName, url,
			chain.WithLogger(log),
			chain.WithMetrics(m),
			chain.WithTimeout(cfg.RequestTimeout),
			chain.WithBreaker(breaker),
		)
		if err != nil {
			set.Close()
			return nil, err
		}
		if err := set.Register(specName, c); err != nil {
			c.Close()
			set.Close()
			return nil, err
		}
		log.Info("chain client connected", "spec_name", specName)
	}
	return set, nil
}

// Close releases connections in reverse dependency order.
func (a *app) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.chains != nil {
		a.chains.Close()
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

