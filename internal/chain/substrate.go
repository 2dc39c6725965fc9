package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"xcmkit/internal/chain/metrics"
	"xcmkit/internal/encoding"
	"xcmkit/internal/xcm"
	"xcmkit/pkg/platform/circuit"
	"xcmkit/pkg/platform/sentinel"
)

var tracer = otel.Tracer("xcmkit/internal/chain")

// stateRPC is the part of the Substrate state RPC the client calls.
type stateRPC interface {
	GetRuntimeVersionLatest() (*types.RuntimeVersion, error)
	GetMetadataLatest() (*types.Metadata, error)
	GetStorageRawLatest(key types.StorageKey) (*types.StorageDataRaw, error)
}

// SubstrateClient queries a Substrate node over JSON-RPC. Identical
// in-flight queries are collapsed and a circuit breaker stops calls to a
// node that keeps failing.
type SubstrateClient struct {
	specName string
	state    stateRPC
	closeFn  func()

	breaker *circuit.Breaker
	group   singleflight.Group
	timeout time.Duration

	// ForeignAssets storage is keyed by a location in this version.
	foreignKeyVersion xcm.Version

	metaMu sync.Mutex
	meta   *types.Metadata

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a SubstrateClient.
type Option func(*SubstrateClient)

func WithLogger(logger *slog.Logger) Option {
	return func(c *SubstrateClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *SubstrateClient) {
		c.metrics = m
	}
}

// WithTimeout bounds every RPC call.
func WithTimeout(d time.Duration) Option {
	return func(c *SubstrateClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *SubstrateClient) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithForeignAssetKeyVersion sets the location layout ForeignAssets storage
// keys use on this chain. Defaults to V4.
func WithForeignAssetKeyVersion(v xcm.Version) Option {
	return func(c *SubstrateClient) {
		if v.Valid() {
			c.foreignKeyVersion = v
		}
	}
}

// Dial connects to the node at url.
func Dial(specName, url string, opts ...Option) (*SubstrateClient, error) {
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, fmt.Errorf("connect to %s at %s: %w: %v", specName, url, sentinel.ErrUnavailable, err)
	}
	c := newSubstrateClient(specName, api.RPC.State, opts...)
	c.closeFn = api.Client.Close
	return c, nil
}

func newSubstrateClient(specName string, state stateRPC, opts ...Option) *SubstrateClient {
	c := &SubstrateClient{
		specName:          specName,
		state:             state,
		timeout:           10 * time.Second,
		foreignKeyVersion: xcm.V4,
		logger:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuit.New(specName)
	}
	return c
}

func (c *SubstrateClient) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

func (c *SubstrateClient) RuntimeVersion(ctx context.Context) (RuntimeVersion, error) {
	v, err := c.call(ctx, "state_getRuntimeVersion", "runtime_version", func() (any, error) {
		rv, err := c.state.GetRuntimeVersionLatest()
		if err != nil {
			return nil, err
		}
		return RuntimeVersion{SpecName: string(rv.SpecName), SpecVersion: uint32(rv.SpecVersion)}, nil
	})
	if err != nil {
		return RuntimeVersion{}, err
	}
	return v.(RuntimeVersion), nil
}

func (c *SubstrateClient) AssetExists(ctx context.Context, id uint32) (bool, error) {
	key := "assets:" + strconv.FormatUint(uint64(id), 10)
	v, err := c.call(ctx, "state_getStorage", key, func() (any, error) {
		arg, err := codec.Encode(types.NewU32(id))
		if err != nil {
			return nil, err
		}
		return c.storageExists("Assets", "Asset", arg)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *SubstrateClient) ForeignAssetExists(ctx context.Context, loc xcm.Location) (bool, error) {
	arg, err := encoding.Location(c.foreignKeyVersion, loc)
	if err != nil {
		return false, err
	}
	v, err := c.call(ctx, "state_getStorage", "foreign_assets:"+loc.Canonical(), func() (any, error) {
		return c.storageExists("ForeignAssets", "Asset", arg)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *SubstrateClient) storageExists(pallet, item string, arg []byte) (bool, error) {
	meta, err := c.metadata()
	if err != nil {
		return false, err
	}
	key, err := types.CreateStorageKey(meta, pallet, item, arg)
	if err != nil {
		return false, fmt.Errorf("storage key %s.%s: %w", pallet, item, err)
	}
	raw, err := c.state.GetStorageRawLatest(key)
	if err != nil {
		return false, err
	}
	return raw != nil && len(*raw) > 0, nil
}

// metadata is fetched once per client and reused for storage keys.
func (c *SubstrateClient) metadata() (*types.Metadata, error) {
	c.metaMu.Lock()
	defer c.metaMu.Unlock()
	if c.meta != nil {
		return c.meta, nil
	}
	meta, err := c.state.GetMetadataLatest()
	if err != nil {
		return nil, err
	}
	c.meta = meta
	return meta, nil
}

// call runs fn through the breaker and the singleflight group, bounded by
// ctx and the client timeout.
func (c *SubstrateClient) call(ctx context.Context, method, key string, fn func() (any, error)) (any, error) {
	ctx, span := tracer.Start(ctx, "chain."+method)
	defer span.End()
	span.SetAttributes(
		attribute.String("chain.spec_name", c.specName),
		attribute.String("chain.key", key),
	)

	if !c.breaker.Allow() {
		err := fmt.Errorf("%s: circuit open: %w", c.specName, sentinel.ErrUnavailable)
		span.SetStatus(codes.Error, "circuit open")
		c.metrics.ObserveRequest(c.specName, method, "rejected", 0)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	ch := c.group.DoChan(key, fn)
	select {
	case <-ctx.Done():
		c.recordFailure()
		c.metrics.ObserveRequest(c.specName, method, "timeout", time.Since(start))
		span.SetStatus(codes.Error, "timeout")
		return nil, fmt.Errorf("%s %s: %w: %v", c.specName, method, sentinel.ErrUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			c.recordFailure()
			c.metrics.ObserveRequest(c.specName, method, "error", time.Since(start))
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "rpc failed")
			c.logger.WarnContext(ctx, "chain rpc failed",
				"chain", c.specName,
				"method", method,
				"error", res.Err,
			)
			return nil, fmt.Errorf("%s %s: %w: %v", c.specName, method, sentinel.ErrUnavailable, res.Err)
		}
		c.recordSuccess()
		c.metrics.ObserveRequest(c.specName, method, "ok", time.Since(start))
		span.SetAttributes(attribute.Bool("chain.shared", res.Shared))
		return res.Val, nil
	}
}

func (c *SubstrateClient) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.SetBreakerOpen(c.specName, true)
		c.logger.Warn("chain circuit opened", "chain", c.specName)
	}
}

func (c *SubstrateClient) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.SetBreakerOpen(c.specName, false)
		c.logger.Info("chain circuit closed", "chain", c.specName)
	}
}
