// Package registry is the static chain-metadata registry plus the
// foreign-asset cache the resolver writes into. A Registry is an explicit
// instance; flows that need isolated caches construct their own.
package registry

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"xcmkit/internal/registry/metrics"
	"xcmkit/internal/registry/models"
	"xcmkit/internal/registry/store"
	"xcmkit/internal/xcm"
	"xcmkit/pkg/platform/sentinel"
)

//go:embed seed.json
var seedJSON []byte

// RelayChainID is the id every relay chain is registered under.
const RelayChainID = "0"

// ForeignAsset is a foreign asset with its parsed location.
type ForeignAsset struct {
	Symbol   string
	Location xcm.Location
}

type chainEntry struct {
	info       models.ChainInfo
	relayToken string
	assetBySym map[string]string
	assetIDs   map[string]struct{}
	foreign    []ForeignAsset
	xcBySymbol map[string]xcm.Location
	xcByID     map[string]xcm.Location
}

type bridgeKey struct {
	origin, destination, asset string
}

// Registry answers chain and asset lookups. Static data is immutable after
// construction; the foreign-asset cache is the only mutable state.
type Registry struct {
	chains  map[string]*chainEntry
	bridges map[bridgeKey]xcm.Location
	cache   store.ForeignAssetCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithCache sets the foreign-asset cache backend.
func WithCache(cache store.ForeignAssetCache) Option {
	return func(r *Registry) {
		r.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// Seed returns the embedded registry document.
func Seed() (models.File, error) {
	var f models.File
	if err := json.Unmarshal(seedJSON, &f); err != nil {
		return models.File{}, fmt.Errorf("decode seed registry: %w", err)
	}
	return f, nil
}

// LoadFile reads a registry document from disk.
func LoadFile(path string) (models.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.File{}, fmt.Errorf("read registry file: %w", err)
	}
	var f models.File
	if err := json.Unmarshal(raw, &f); err != nil {
		return models.File{}, fmt.Errorf("decode registry file %s: %w", path, err)
	}
	return f, nil
}

// Merge overlays chains and bridge assets onto base. Chains are replaced by
// spec name; bridge assets are appended.
func Merge(base, overlay models.File) models.File {
	out := models.File{BridgeAssets: append(append([]models.BridgeAsset{}, base.BridgeAssets...), overlay.BridgeAssets...)}
	replaced := make(map[string]models.ChainInfo, len(overlay.Chains))
	for _, c := range overlay.Chains {
		replaced[strings.ToLower(c.SpecName)] = c
	}
	for _, c := range base.Chains {
		if o, ok := replaced[strings.ToLower(c.SpecName)]; ok {
			out.Chains = append(out.Chains, o)
			delete(replaced, strings.ToLower(c.SpecName))
			continue
		}
		out.Chains = append(out.Chains, c)
	}
	for _, c := range overlay.Chains {
		if _, ok := replaced[strings.ToLower(c.SpecName)]; ok {
			out.Chains = append(out.Chains, c)
		}
	}
	return out
}

// NewDefault builds a registry from the embedded seed.
func NewDefault(opts ...Option) (*Registry, error) {
	f, err := Seed()
	if err != nil {
		return nil, err
	}
	return New(f, opts...)
}

// New builds a registry from a document. Every location in the document is
// parsed up front.
func New(f models.File, opts ...Option) (*Registry, error) {
	r := &Registry{
		chains:  make(map[string]*chainEntry, len(f.Chains)),
		bridges: make(map[bridgeKey]xcm.Location, len(f.BridgeAssets)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = store.NewInMemoryCache(0)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	relayTokens := make(map[string]string)
	for _, c := range f.Chains {
		if c.ID == RelayChainID {
			relayTokens[strings.ToLower(c.Relay)] = c.PrimaryToken()
		}
	}

	for _, c := range f.Chains {
		if c.SpecName == "" {
			return nil, fmt.Errorf("registry chain %q has no spec name", c.ID)
		}
		entry, err := newChainEntry(c, relayTokens[strings.ToLower(c.Relay)])
		if err != nil {
			return nil, err
		}
		r.chains[strings.ToLower(c.SpecName)] = entry
	}

	for _, b := range f.BridgeAssets {
		loc, err := xcm.ParseLocation(b.Location)
		if err != nil {
			return nil, fmt.Errorf("bridge asset %s from %s: %w", b.AssetID, b.Origin, err)
		}
		origin, dest := strings.ToLower(b.Origin), strings.ToLower(b.Destination)
		r.bridges[bridgeKey{origin, dest, strings.ToLower(b.AssetID)}] = loc
		if b.Symbol != "" {
			r.bridges[bridgeKey{origin, dest, strings.ToLower(b.Symbol)}] = loc
		}
	}
	return r, nil
}

func newChainEntry(c models.ChainInfo, relayToken string) (*chainEntry, error) {
	e := &chainEntry{
		info:       c,
		relayToken: relayToken,
		assetBySym: make(map[string]string),
		assetIDs:   make(map[string]struct{}),
		xcBySymbol: make(map[string]xcm.Location),
		xcByID:     make(map[string]xcm.Location),
	}

	assets := append([]models.LocalAsset(nil), c.Assets...)
	sort.SliceStable(assets, func(i, j int) bool { return lessNumeric(assets[i].ID, assets[j].ID) })
	for _, a := range assets {
		e.assetIDs[a.ID] = struct{}{}
		sym := strings.ToLower(a.Symbol)
		if _, taken := e.assetBySym[sym]; !taken && sym != "" {
			e.assetBySym[sym] = a.ID
		}
	}

	for _, fa := range c.ForeignAssets {
		loc, err := xcm.ParseLocation(fa.Location)
		if err != nil {
			return nil, fmt.Errorf("foreign asset %s on %s: %w", fa.Symbol, c.SpecName, err)
		}
		e.foreign = append(e.foreign, ForeignAsset{Symbol: fa.Symbol, Location: loc})
	}

	for _, xa := range c.XCAssets {
		loc, err := xcm.ParseLocation(xa.Location)
		if err != nil {
			return nil, fmt.Errorf("xc asset %s on %s: %w", xa.Symbol, c.SpecName, err)
		}
		if sym := strings.ToLower(xa.Symbol); sym != "" {
			if _, taken := e.xcBySymbol[sym]; !taken {
				e.xcBySymbol[sym] = loc
			}
		}
		if xa.AssetID != "" {
			e.xcByID[xa.AssetID] = loc
		}
	}
	return e, nil
}

func (r *Registry) entry(specName string) (*chainEntry, error) {
	e, ok := r.chains[strings.ToLower(specName)]
	if !ok {
		r.metrics.RecordLookup("chain", false)
		return nil, fmt.Errorf("chain %q: %w", specName, sentinel.ErrNotFound)
	}
	return e, nil
}

// Chain returns the chain registered under specName.
func (r *Registry) Chain(specName string) (models.ChainInfo, error) {
	e, err := r.entry(specName)
	if err != nil {
		return models.ChainInfo{}, err
	}
	return e.info, nil
}

// Chains returns every registered chain ordered by relay then id.
func (r *Registry) Chains() []models.ChainInfo {
	out := make([]models.ChainInfo, 0, len(r.chains))
	for _, e := range r.chains {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Relay != out[j].Relay {
			return out[i].Relay < out[j].Relay
		}
		return lessNumeric(out[i].ID, out[j].ID)
	})
	return out
}

// LookupChainIDBySpecName returns the chain id registered under specName.
func (r *Registry) LookupChainIDBySpecName(specName string) (string, error) {
	e, err := r.entry(specName)
	if err != nil {
		return "", err
	}
	return e.info.ID, nil
}

// SymbolToAssetID maps a symbol to the lowest local asset id carrying it.
func (r *Registry) SymbolToAssetID(specName, symbol string) (string, error) {
	e, err := r.entry(specName)
	if err != nil {
		return "", err
	}
	id, ok := e.assetBySym[strings.ToLower(symbol)]
	r.metrics.RecordLookup("symbol", ok)
	if !ok {
		return "", fmt.Errorf("symbol %s on %s: %w", symbol, specName, sentinel.ErrNotFound)
	}
	return id, nil
}

// HasLocalAsset reports whether id is a known local asset of specName.
func (r *Registry) HasLocalAsset(specName, id string) bool {
	e, err := r.entry(specName)
	if err != nil {
		return false
	}
	_, ok := e.assetIDs[id]
	r.metrics.RecordLookup("asset_id", ok)
	return ok
}

// AssetsPalletInstance returns the assets pallet index of a system chain.
func (r *Registry) AssetsPalletInstance(specName string) (uint8, bool) {
	e, err := r.entry(specName)
	if err != nil || e.info.AssetsPalletInstance == 0 {
		return 0, false
	}
	return e.info.AssetsPalletInstance, true
}

// RelayToken returns the native token of the relay specName belongs to.
func (r *Registry) RelayToken(specName string) string {
	e, err := r.entry(specName)
	if err != nil {
		return ""
	}
	return e.relayToken
}

// IsRelayNativeSymbol reports whether symbol is the relay token seen from
// specName.
func (r *Registry) IsRelayNativeSymbol(specName, symbol string) bool {
	token := r.RelayToken(specName)
	return token != "" && strings.EqualFold(token, strings.TrimSpace(symbol))
}

// IsNativeToken reports whether symbol is one of specName's own tokens.
func (r *Registry) IsNativeToken(specName, symbol string) bool {
	e, err := r.entry(specName)
	if err != nil {
		return false
	}
	for _, t := range e.info.Tokens {
		if strings.EqualFold(t, strings.TrimSpace(symbol)) {
			return true
		}
	}
	return false
}

// NativeAssetLocation is the relay-native asset location seen from specName.
func (r *Registry) NativeAssetLocation(specName string) (xcm.Location, error) {
	e, err := r.entry(specName)
	if err != nil {
		return xcm.Location{}, err
	}
	if e.info.ID == RelayChainID {
		return xcm.Here(0), nil
	}
	return xcm.Here(1), nil
}

// XCAssetLocation finds a parachain's cross-chain asset by symbol or id.
func (r *Registry) XCAssetLocation(specName, specifier string) (xcm.Location, bool) {
	e, err := r.entry(specName)
	if err != nil {
		return xcm.Location{}, false
	}
	if loc, ok := e.xcByID[specifier]; ok {
		r.metrics.RecordLookup("xc_asset", true)
		return loc, true
	}
	loc, ok := e.xcBySymbol[strings.ToLower(specifier)]
	r.metrics.RecordLookup("xc_asset", ok)
	return loc, ok
}

// ForeignAssetLocations returns static and cached foreign assets of
// specName, static entries first, without duplicates.
func (r *Registry) ForeignAssetLocations(ctx context.Context, specName string) ([]ForeignAsset, error) {
	e, err := r.entry(specName)
	if err != nil {
		return nil, err
	}
	out := append([]ForeignAsset(nil), e.foreign...)
	seen := make(map[string]struct{}, len(out))
	for _, fa := range out {
		seen[fa.Location.Canonical()] = struct{}{}
	}

	cached, err := r.cache.List(ctx, e.info.SpecName)
	if err != nil {
		return nil, fmt.Errorf("list cached foreign assets: %w", err)
	}
	for _, c := range cached {
		loc, err := xcm.ParseLocation(c.Location)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping unparseable cached foreign asset",
				"spec_name", specName,
				"key", c.Key,
				"error", err,
			)
			continue
		}
		if _, dup := seen[loc.Canonical()]; dup {
			continue
		}
		seen[loc.Canonical()] = struct{}{}
		out = append(out, ForeignAsset{Symbol: c.Symbol, Location: loc})
	}
	return out, nil
}

// HasForeignAsset reports whether loc is a known foreign asset of specName.
func (r *Registry) HasForeignAsset(ctx context.Context, specName string, loc xcm.Location) (bool, error) {
	assets, err := r.ForeignAssetLocations(ctx, specName)
	if err != nil {
		return false, err
	}
	for _, fa := range assets {
		if fa.Location.Equal(loc) {
			r.metrics.RecordLookup("foreign_asset", true)
			return true, nil
		}
	}
	r.metrics.RecordLookup("foreign_asset", false)
	return false, nil
}

// ForeignAssetBySymbol finds a foreign asset of specName by symbol.
func (r *Registry) ForeignAssetBySymbol(ctx context.Context, specName, symbol string) (xcm.Location, error) {
	assets, err := r.ForeignAssetLocations(ctx, specName)
	if err != nil {
		return xcm.Location{}, err
	}
	for _, fa := range assets {
		if strings.EqualFold(fa.Symbol, symbol) {
			return fa.Location, nil
		}
	}
	return xcm.Location{}, fmt.Errorf("foreign asset %s on %s: %w", symbol, specName, sentinel.ErrNotFound)
}

// CacheForeignAsset records a foreign asset confirmed on live chain state.
func (r *Registry) CacheForeignAsset(ctx context.Context, specName, symbol string, loc xcm.Location) error {
	e, err := r.entry(specName)
	if err != nil {
		return err
	}
	asset, err := foreignAssetModel(symbol, loc)
	if err != nil {
		return err
	}
	if err := r.cache.Save(ctx, e.info.SpecName, asset); err != nil {
		return fmt.Errorf("cache foreign asset: %w", err)
	}
	r.metrics.IncForeignAssetsCached()
	r.logger.DebugContext(ctx, "foreign asset cached",
		"spec_name", e.info.SpecName,
		"symbol", symbol,
		"location", asset.Key,
	)
	return nil
}

// CacheForeignAssets records several foreign assets in one cache write.
func (r *Registry) CacheForeignAssets(ctx context.Context, specName string, assets []ForeignAsset) error {
	e, err := r.entry(specName)
	if err != nil {
		return err
	}
	batch := make([]models.ForeignAsset, 0, len(assets))
	for _, a := range assets {
		m, err := foreignAssetModel(a.Symbol, a.Location)
		if err != nil {
			return err
		}
		batch = append(batch, m)
	}
	if err := r.cache.SaveMany(ctx, e.info.SpecName, batch); err != nil {
		return fmt.Errorf("cache foreign assets: %w", err)
	}
	for range batch {
		r.metrics.IncForeignAssetsCached()
	}
	return nil
}

// BridgeAssetLocation looks up an asset's location in a bridged consensus
// system, keyed by origin spec name, destination key and asset id or symbol.
func (r *Registry) BridgeAssetLocation(originSpecName, destination, asset string) (xcm.Location, error) {
	key := bridgeKey{strings.ToLower(originSpecName), strings.ToLower(destination), strings.ToLower(asset)}
	loc, ok := r.bridges[key]
	r.metrics.RecordLookup("bridge_asset", ok)
	if !ok {
		return xcm.Location{}, fmt.Errorf("bridge asset %s from %s to %s: %w", asset, originSpecName, destination, sentinel.ErrNotFound)
	}
	return loc, nil
}

func foreignAssetModel(symbol string, loc xcm.Location) (models.ForeignAsset, error) {
	adapter, err := xcm.AdapterFor(xcm.V4)
	if err != nil {
		return models.ForeignAsset{}, err
	}
	raw, err := adapter.MarshalLocation(loc)
	if err != nil {
		return models.ForeignAsset{}, err
	}
	return models.ForeignAsset{Key: loc.Canonical(), Symbol: symbol, Location: raw}, nil
}

func lessNumeric(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
