// Package directive builds transfer directives: it classifies the leg,
// resolves and canonicalizes the assets and assembles the destination,
// beneficiary, fee asset index and weight limit for the encoder.
package directive

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"xcmkit/internal/chain"
	"xcmkit/internal/direction"
	"xcmkit/internal/directive/metrics"
	"xcmkit/internal/encoding"
	"xcmkit/internal/registry/models"
	"xcmkit/internal/resolver"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/audit"
	"xcmkit/pkg/platform/sentinel"
	"xcmkit/pkg/requestcontext"
)

var tracer = otel.Tracer("xcmkit/internal/directive")

// Registry is the chain metadata the service reads.
type Registry interface {
	Chain(specName string) (models.ChainInfo, error)
}

// AssetResolver turns specifiers into locations relative to the origin.
type AssetResolver interface {
	Resolve(ctx context.Context, origin, specifier string, foreign bool) (resolver.Resolved, error)
	ResolveBridge(ctx context.Context, origin, destinationKey, specifier string) (resolver.Resolved, error)
}

// Service builds transfer directives. It holds no per-call state; the
// registry and resolver own every cache.
type Service struct {
	registry       Registry
	resolver       AssetResolver
	chains         chain.Provider
	policy         direction.Policy
	defaultVersion xcm.Version
	auditor        audit.Emitter
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithChains sets the provider used for runtime version checks.
func WithChains(p chain.Provider) Option {
	return func(s *Service) {
		s.chains = p
	}
}

func WithPolicy(p direction.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithDefaultVersion sets the version used when a request does not pin one.
func WithDefaultVersion(v xcm.Version) Option {
	return func(s *Service) {
		if v.Valid() {
			s.defaultVersion = v
		}
	}
}

func WithAuditor(e audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = e
	}
}

// NewService constructs a Service with the default leg policy.
func NewService(reg Registry, res AssetResolver, opts ...Option) *Service {
	s := &Service{
		registry:       reg,
		resolver:       res,
		policy:         direction.DefaultPolicy(),
		defaultVersion: xcm.DefaultVersion,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildTransferDirective classifies the transfer and builds its directive.
// Construction is all-or-nothing: any failure returns no directive.
func (s *Service) BuildTransferDirective(ctx context.Context, req Request) (*TransferDirective, error) {
	ctx, span := tracer.Start(ctx, "directive.BuildTransferDirective")
	defer span.End()
	span.SetAttributes(
		attribute.String("origin", req.Origin),
		attribute.String("destination", req.Destination),
		attribute.Int("asset_count", len(req.Assets)),
		attribute.Int("xcm_version", req.Options.Version),
	)
	start := time.Now()

	d, err := s.build(ctx, req)
	s.metrics.ObserveBuildDuration(time.Since(start))
	if err != nil {
		code := dErrors.CodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		s.metrics.IncrementFailure(string(code))
		s.emit(ctx, audit.Event{
			Action:      string(audit.EventDirectiveFailed),
			Subject:     req.Origin,
			Destination: req.Destination,
			XcmVersion:  req.Options.Version,
			AssetCount:  len(req.Assets),
			Reason:      string(code),
		})
		return nil, err
	}

	span.SetAttributes(
		attribute.String("direction", d.Direction.String()),
		attribute.String("kind", string(d.Kind)),
	)
	s.metrics.IncrementBuilt(d.Direction.String(), d.Version.String())

	fingerprint, err := d.Fingerprint()
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fingerprint directive", "error", err)
	}
	s.emit(ctx, audit.Event{
		Action:      string(audit.EventDirectiveBuilt),
		Subject:     d.Origin,
		Destination: d.Destination,
		Direction:   d.Direction.String(),
		XcmVersion:  int(d.Version),
		AssetCount:  len(d.Assets),
		Fingerprint: fingerprint,
	})
	s.logger.InfoContext(ctx, "transfer directive built",
		"request_id", requestcontext.RequestID(ctx),
		"origin", d.Origin,
		"dest", d.Destination,
		"direction", d.Direction,
		"xcm_version", int(d.Version),
		"asset_count", len(d.Assets),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return d, nil
}

// Encode builds the directive and SCALE encodes its call arguments.
func (s *Service) Encode(ctx context.Context, req Request) (*Encoded, error) {
	d, err := s.BuildTransferDirective(ctx, req)
	if err != nil {
		return nil, err
	}
	args, err := encoding.EncodeCallArgs(encoding.CallArgs{
		Version:      d.Version,
		Destination:  d.Dest,
		Beneficiary:  d.Beneficiary,
		Assets:       d.Assets,
		FeeAssetItem: d.FeeAssetItem,
		WeightLimit:  d.WeightLimit,
	})
	if err != nil {
		return nil, err
	}
	return &Encoded{Directive: d, CallArgs: args}, nil
}

// Classify reports the leg a transfer would take and whether the policy
// allows building it.
func (s *Service) Classify(ctx context.Context, origin, destination string) (*Classification, error) {
	info, role, err := s.origin(origin)
	if err != nil {
		return nil, err
	}
	dest, err := direction.ParseDestination(destination)
	if err != nil {
		return nil, err
	}
	dir, err := direction.ClassifyDestination(role, info.ID, dest)
	if err != nil {
		return nil, err
	}
	l, err := legFor(dir)
	if err != nil {
		return nil, err
	}

	c := &Classification{
		Origin:      info.SpecName,
		Destination: destination,
		Direction:   dir,
		Kind:        l.kind,
		Enabled:     true,
	}
	if err := s.checkPolicy(ctx, info.SpecName, dir); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnsupportedDirection) {
			return nil, err
		}
		c.Enabled = false
		c.Reason = err.Error()
	}
	return c, nil
}

func (s *Service) build(ctx context.Context, req Request) (*TransferDirective, error) {
	version, err := s.version(req.Options.Version)
	if err != nil {
		return nil, err
	}
	adapter, err := xcm.AdapterFor(version)
	if err != nil {
		return nil, err
	}

	info, role, err := s.origin(req.Origin)
	if err != nil {
		return nil, err
	}
	dest, err := direction.ParseDestination(req.Destination)
	if err != nil {
		return nil, err
	}
	dir, err := direction.ClassifyDestination(role, info.ID, dest)
	if err != nil {
		return nil, err
	}
	if err := s.checkPolicy(ctx, info.SpecName, dir); err != nil {
		return nil, err
	}
	l, err := legFor(dir)
	if err != nil {
		return nil, err
	}

	destLoc, err := l.dest(adapter, dest)
	if err != nil {
		return nil, err
	}
	beneficiary, err := beneficiaryFor(adapter, dest, req.Recipient)
	if err != nil {
		return nil, err
	}
	assets, allRelayNative, err := s.createAssets(ctx, adapter, info, role, dir, dest, req)
	if err != nil {
		return nil, err
	}
	feeItem, err := s.createFeeAssetItem(ctx, info, dir, dest, assets, req.Options)
	if err != nil {
		return nil, err
	}
	weight, err := weightLimit(req.Options)
	if err != nil {
		return nil, err
	}

	kind := l.kindFor(allRelayNative)
	return &TransferDirective{
		Origin:       info.SpecName,
		Destination:  req.Destination,
		Direction:    dir,
		Version:      version,
		Kind:         kind,
		Pallet:       palletFor(role),
		Call:         callFor(dir, kind),
		Dest:         destLoc,
		Beneficiary:  beneficiary,
		Assets:       assets,
		FeeAssetItem: feeItem,
		WeightLimit:  weight,
		KeepAlive:    req.Options.KeepAlive,
	}, nil
}

func (s *Service) version(n int) (xcm.Version, error) {
	if n == 0 {
		return s.defaultVersion, nil
	}
	return xcm.ParseVersion(n)
}

func (s *Service) origin(specName string) (models.ChainInfo, direction.Role, error) {
	info, err := s.registry.Chain(strings.TrimSpace(specName))
	if err != nil {
		return models.ChainInfo{}, "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "origin chain "+strconv.Quote(specName)+" is not registered")
	}
	role, err := direction.RoleOf(info.ID)
	if err != nil {
		return models.ChainInfo{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "registry holds an invalid chain id for "+info.SpecName)
	}
	return info, role, nil
}

// checkPolicy applies the leg policy. The origin runtime version is only
// fetched when the policy depends on it and a client is configured.
func (s *Service) checkPolicy(ctx context.Context, specName string, dir direction.Direction) error {
	var specVersion uint32
	if s.policy.NeedsRuntimeVersion(dir) {
		if client, ok := s.client(specName); ok {
			rv, err := client.RuntimeVersion(ctx)
			if err != nil {
				return chainError(err)
			}
			specVersion = rv.SpecVersion
		}
	}
	return s.policy.Check(dir, specVersion)
}

// beneficiaryFor builds the recipient location. Any destination on an
// Ethereum network needs a 20-byte key, whichever leg reaches it.
func beneficiaryFor(a xcm.Adapter, dest direction.Destination, recipient string) (xcm.Location, error) {
	recipient = strings.TrimSpace(recipient)
	network, bridged := dest.Network()
	if bridged && network.Kind == xcm.NetworkEthereum && !xcm.IsEthereumAddress(recipient) {
		return xcm.Location{}, dErrors.Newf(dErrors.CodeInvalidInput,
			"ethereum beneficiaries must be 20-byte hex addresses, got %q", recipient)
	}
	return a.Beneficiary(recipient)
}

// createAssets resolves every specifier, pairs it with its amount and
// returns the canonical list. It also reports whether every asset is the
// relay token.
func (s *Service) createAssets(ctx context.Context, a xcm.Adapter, info models.ChainInfo, role direction.Role,
	dir direction.Direction, dest direction.Destination, req Request) ([]xcm.Asset, bool, error) {
	if len(req.Amounts) == 0 {
		return nil, false, dErrors.New(dErrors.CodeInvalidInput, "at least one amount is required")
	}
	specs := req.Assets
	if len(specs) == 0 {
		if len(req.Amounts) != 1 {
			return nil, false, dErrors.Newf(dErrors.CodeInvalidInput,
				"native asset transfers take exactly one amount, got %d", len(req.Amounts))
		}
		specs = []string{nativeSpecifier(info, role)}
	}
	if len(specs) != len(req.Amounts) {
		return nil, false, dErrors.Newf(dErrors.CodeInvalidInput,
			"got %d assets and %d amounts, they must pair up", len(specs), len(req.Amounts))
	}

	assets := make([]xcm.Asset, 0, len(specs))
	allRelayNative := true
	for i, spec := range specs {
		amount, err := xcm.ParseAmount(req.Amounts[i])
		if err != nil {
			return nil, false, err
		}
		if amount.IsZero() {
			return nil, false, dErrors.Newf(dErrors.CodeInvalidInput, "amount for asset %q must be greater than zero", spec)
		}
		res, err := s.resolve(ctx, info, dir, dest, spec, req.Options.TransferForeignAssets)
		if err != nil {
			return nil, false, err
		}
		asset, err := a.FungibleAsset(amount, res.Location, req.Options.AmountKind)
		if err != nil {
			return nil, false, err
		}
		allRelayNative = allRelayNative && res.RelayNative
		assets = append(assets, asset)
	}
	return xcm.CanonicalizeAssets(assets), allRelayNative, nil
}

// createFeeAssetItem is zero unless the caller names a fee asset.
func (s *Service) createFeeAssetItem(ctx context.Context, info models.ChainInfo, dir direction.Direction,
	dest direction.Destination, assets []xcm.Asset, opts Options) (uint32, error) {
	spec := strings.TrimSpace(opts.PayFeeWith)
	if spec == "" {
		return 0, nil
	}
	res, err := s.resolve(ctx, info, dir, dest, spec, opts.TransferForeignAssets)
	if err != nil {
		return 0, err
	}
	return FeeAssetIndex(assets, spec, res)
}

func (s *Service) resolve(ctx context.Context, info models.ChainInfo, dir direction.Direction,
	dest direction.Destination, spec string, foreign bool) (resolver.Resolved, error) {
	var (
		res resolver.Resolved
		err error
	)
	if dir == direction.ParaToEthereum {
		res, err = s.resolver.ResolveBridge(ctx, info.SpecName, dest.Key(), spec)
	} else {
		res, err = s.resolver.Resolve(ctx, info.SpecName, spec, foreign)
	}
	if err != nil {
		return resolver.Resolved{}, err
	}
	s.metrics.IncrementResolution(string(res.Source))
	return res, nil
}

// nativeSpecifier is what an empty asset list sends: the parachain's own
// token from sovereign parachains, the relay token everywhere else.
func nativeSpecifier(info models.ChainInfo, role direction.Role) string {
	if role == direction.RolePara {
		return info.PrimaryToken()
	}
	return ""
}

func (s *Service) client(specName string) (chain.Client, bool) {
	if s.chains == nil {
		return nil, false
	}
	return s.chains.ClientFor(specName)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func chainError(err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "origin runtime version is unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "origin runtime version query failed")
}
