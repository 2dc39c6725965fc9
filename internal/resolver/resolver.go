// Package resolver turns caller asset specifiers (symbols, asset ids or
// serialized locations) into locations relative to the origin chain.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"xcmkit/internal/chain"
	"xcmkit/internal/direction"
	"xcmkit/internal/registry/models"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/sentinel"
)

var tracer = otel.Tracer("xcmkit/internal/resolver")

// Source records where a resolution came from.
type Source string

const (
	SourceNative     Source = "native"
	SourceLocal      Source = "local"
	SourceXCAsset    Source = "xc_asset"
	SourceForeign    Source = "foreign"
	SourceBridge     Source = "bridge"
	SourceLocation   Source = "location"
	SourceChain      Source = "chain"
	SourceUnverified Source = "unverified"
)

// Resolved is a specifier resolved to a location relative to the origin.
type Resolved struct {
	Location xcm.Location
	Source   Source
	// AssetID is the assets-pallet id for local assets.
	AssetID string
	// RelayNative marks the relay chain's native token.
	RelayNative bool
}

// Registry is the registry surface the resolver reads and caches into.
type Registry interface {
	Chain(specName string) (models.ChainInfo, error)
	SymbolToAssetID(specName, symbol string) (string, error)
	HasLocalAsset(specName, id string) bool
	AssetsPalletInstance(specName string) (uint8, bool)
	IsRelayNativeSymbol(specName, symbol string) bool
	NativeAssetLocation(specName string) (xcm.Location, error)
	XCAssetLocation(specName, specifier string) (xcm.Location, bool)
	HasForeignAsset(ctx context.Context, specName string, loc xcm.Location) (bool, error)
	ForeignAssetBySymbol(ctx context.Context, specName, symbol string) (xcm.Location, error)
	CacheForeignAsset(ctx context.Context, specName, symbol string, loc xcm.Location) error
	BridgeAssetLocation(originSpecName, destination, asset string) (xcm.Location, error)
}

// Resolver resolves asset specifiers. Chain clients are optional; without
// one, ids and locations the registry does not know are accepted unverified.
type Resolver struct {
	registry Registry
	chains   chain.Provider
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithChains sets the live chain-state provider.
func WithChains(p chain.Provider) Option {
	return func(r *Resolver) {
		r.chains = p
	}
}

func New(reg Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves specifier against origin. With foreign set, system chain
// origins resolve through the foreign-assets pallet instead of the local
// assets pallet.
func (r *Resolver) Resolve(ctx context.Context, origin, specifier string, foreign bool) (Resolved, error) {
	ctx, span := tracer.Start(ctx, "resolver.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("origin", origin),
		attribute.String("specifier", specifier),
		attribute.Bool("foreign", foreign),
	)

	res, err := r.resolve(ctx, origin, specifier, foreign)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return Resolved{}, err
	}
	span.SetAttributes(attribute.String("source", string(res.Source)))
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, origin, specifier string, foreign bool) (Resolved, error) {
	info, role, err := r.origin(origin)
	if err != nil {
		return Resolved{}, err
	}

	spec := strings.TrimSpace(specifier)
	switch {
	case spec == "" || strings.EqualFold(spec, "here"):
		return r.relayNative(origin)
	case strings.HasPrefix(spec, "{"):
		return r.resolveLocation(ctx, info, role, spec, foreign)
	case r.registry.IsRelayNativeSymbol(origin, spec):
		return r.relayNative(origin)
	}

	switch role {
	case direction.RoleSystem:
		if foreign {
			return r.resolveForeignSymbol(ctx, info, spec)
		}
		return r.resolveLocal(ctx, info, spec)
	case direction.RolePara:
		return r.resolveXCAsset(info, spec)
	default:
		return Resolved{}, assetNotFound(info.SpecName, spec)
	}
}

// ResolveBridge resolves an asset leaving a parachain for a bridged
// consensus system. The parachain's primary token resolves to its own Here
// location; everything else must be registered for the bridge.
func (r *Resolver) ResolveBridge(ctx context.Context, origin, destinationKey, specifier string) (Resolved, error) {
	_, span := tracer.Start(ctx, "resolver.ResolveBridge")
	defer span.End()
	span.SetAttributes(
		attribute.String("origin", origin),
		attribute.String("destination", destinationKey),
		attribute.String("specifier", specifier),
	)

	info, _, err := r.origin(origin)
	if err != nil {
		return Resolved{}, err
	}
	spec := strings.TrimSpace(specifier)
	if spec == "" || strings.EqualFold(spec, info.PrimaryToken()) {
		return Resolved{Location: xcm.Here(0), Source: SourceNative}, nil
	}
	loc, err := r.registry.BridgeAssetLocation(info.SpecName, destinationKey, spec)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Resolved{}, dErrors.Wrap(err, dErrors.CodeAssetNotFound,
				"asset "+strconv.Quote(spec)+" is not registered for transfers from "+info.SpecName+" to "+destinationKey)
		}
		return Resolved{}, dErrors.Wrap(err, dErrors.CodeInternal, "bridge asset lookup failed")
	}
	return Resolved{Location: loc, Source: SourceBridge}, nil
}

func (r *Resolver) origin(origin string) (models.ChainInfo, direction.Role, error) {
	info, err := r.registry.Chain(origin)
	if err != nil {
		return models.ChainInfo{}, "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "origin chain "+strconv.Quote(origin)+" is not registered")
	}
	role, err := direction.RoleOf(info.ID)
	if err != nil {
		return models.ChainInfo{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "registry holds an invalid chain id for "+info.SpecName)
	}
	return info, role, nil
}

func (r *Resolver) relayNative(origin string) (Resolved, error) {
	loc, err := r.registry.NativeAssetLocation(origin)
	if err != nil {
		return Resolved{}, dErrors.Wrap(err, dErrors.CodeInternal, "native asset location lookup failed")
	}
	return Resolved{Location: loc, Source: SourceNative, RelayNative: true}, nil
}

func (r *Resolver) resolveLocation(ctx context.Context, info models.ChainInfo, role direction.Role, spec string, foreign bool) (Resolved, error) {
	loc, err := xcm.ParseLocation([]byte(spec))
	if err != nil {
		return Resolved{}, err
	}
	if loc.IsHere() {
		return r.resolveHere(info, role, loc)
	}
	if !foreign || role != direction.RoleSystem {
		return Resolved{Location: loc, Source: SourceLocation}, nil
	}

	known, err := r.registry.HasForeignAsset(ctx, info.SpecName, loc)
	if err != nil {
		return Resolved{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "foreign asset lookup failed")
	}
	if known {
		return Resolved{Location: loc, Source: SourceForeign}, nil
	}

	client, ok := r.client(info.SpecName)
	if !ok {
		r.logger.DebugContext(ctx, "accepting unregistered foreign asset without chain client",
			"origin", info.SpecName,
			"location", loc.String(),
		)
		return Resolved{Location: loc, Source: SourceUnverified}, nil
	}
	exists, err := client.ForeignAssetExists(ctx, loc)
	if err != nil {
		return Resolved{}, chainError(err)
	}
	if !exists {
		return Resolved{}, dErrors.Newf(dErrors.CodeAssetNotFound, "foreign asset %s not found on %s", loc.String(), info.SpecName)
	}
	if err := r.registry.CacheForeignAsset(ctx, info.SpecName, "", loc); err != nil {
		r.logger.WarnContext(ctx, "failed to cache foreign asset",
			"origin", info.SpecName,
			"location", loc.String(),
			"error", err,
		)
	}
	return Resolved{Location: loc, Source: SourceChain}, nil
}

// resolveHere accepts only the Here anchors that exist for the origin's
// role: the relay's own token at parents 0, the relay token at parents 1
// from system chains, and either from parachains.
func (r *Resolver) resolveHere(info models.ChainInfo, role direction.Role, loc xcm.Location) (Resolved, error) {
	switch {
	case role == direction.RoleRelay && loc.Parents == 0,
		role == direction.RoleSystem && loc.Parents == 1,
		role == direction.RolePara && loc.Parents == 1:
		return r.relayNative(info.SpecName)
	case role == direction.RolePara && loc.Parents == 0:
		return Resolved{Location: loc, Source: SourceNative}, nil
	}
	return Resolved{}, dErrors.Newf(dErrors.CodeInvalidLocation,
		"%s is not a native asset location from %s chain %s", loc.String(), role, info.SpecName)
}

func (r *Resolver) resolveForeignSymbol(ctx context.Context, info models.ChainInfo, spec string) (Resolved, error) {
	loc, err := r.registry.ForeignAssetBySymbol(ctx, info.SpecName, spec)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Resolved{}, assetNotFound(info.SpecName, spec)
		}
		return Resolved{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "foreign asset lookup failed")
	}
	return Resolved{Location: loc, Source: SourceForeign}, nil
}

func (r *Resolver) resolveLocal(ctx context.Context, info models.ChainInfo, spec string) (Resolved, error) {
	source := SourceLocal
	id := spec
	if isInteger(spec) {
		if _, err := strconv.ParseUint(spec, 10, 32); err != nil {
			return Resolved{}, dErrors.Newf(dErrors.CodeAssetNotFound, "asset id %s is outside the assets pallet id range of %s", spec, info.SpecName)
		}
		if !r.registry.HasLocalAsset(info.SpecName, spec) {
			var err error
			source, err = r.verifyAssetID(ctx, info.SpecName, spec)
			if err != nil {
				return Resolved{}, err
			}
		}
	} else {
		var err error
		id, err = r.registry.SymbolToAssetID(info.SpecName, spec)
		if err != nil {
			return Resolved{}, assetNotFound(info.SpecName, spec)
		}
	}

	pallet, ok := r.registry.AssetsPalletInstance(info.SpecName)
	if !ok {
		return Resolved{}, dErrors.Newf(dErrors.CodeInternal, "chain %s has no assets pallet registered", info.SpecName)
	}
	n, _ := strconv.ParseUint(id, 10, 64)
	return Resolved{
		Location: xcm.NewLocation(0, xcm.PalletInstance(pallet), xcm.NewGeneralIndex(n)),
		Source:   source,
		AssetID:  id,
	}, nil
}

// verifyAssetID checks an id the registry does not list against live chain
// state when a client is configured.
func (r *Resolver) verifyAssetID(ctx context.Context, specName, id string) (Source, error) {
	client, ok := r.client(specName)
	if !ok {
		r.logger.DebugContext(ctx, "accepting unregistered asset id without chain client",
			"origin", specName,
			"asset_id", id,
		)
		return SourceUnverified, nil
	}
	n, _ := strconv.ParseUint(id, 10, 32)
	exists, err := client.AssetExists(ctx, uint32(n))
	if err != nil {
		return "", chainError(err)
	}
	if !exists {
		return "", dErrors.Newf(dErrors.CodeAssetNotFound, "asset id %s not found on %s", id, specName)
	}
	return SourceChain, nil
}

func (r *Resolver) resolveXCAsset(info models.ChainInfo, spec string) (Resolved, error) {
	if strings.EqualFold(spec, info.PrimaryToken()) {
		return Resolved{Location: xcm.Here(0), Source: SourceNative}, nil
	}
	loc, ok := r.registry.XCAssetLocation(info.SpecName, spec)
	if !ok {
		return Resolved{}, assetNotFound(info.SpecName, spec)
	}
	return Resolved{
		Location:    loc,
		Source:      SourceXCAsset,
		RelayNative: loc.IsHere() && loc.Parents == 1,
	}, nil
}

func (r *Resolver) client(specName string) (chain.Client, bool) {
	if r.chains == nil {
		return nil, false
	}
	return r.chains.ClientFor(specName)
}

func chainError(err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "chain state is unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "chain state query failed")
}

func assetNotFound(specName, symbol string) error {
	return dErrors.Newf(dErrors.CodeAssetNotFound, "asset %s not found on %s", symbol, specName)
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
