package xcm

import (
	"encoding/json"
	"regexp"

	dErrors "xcmkit/pkg/domain-errors"
)

var ethereumAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsEthereumAddress reports whether account is a 0x-prefixed 20-byte key.
func IsEthereumAddress(account string) bool {
	return ethereumAddress.MatchString(account)
}

// Adapter builds and renders version-correct XCM structures. One
// implementation exists per supported version.
type Adapter interface {
	Version() Version
	// Beneficiary returns the account location at parents 0. Ethereum-style
	// addresses become AccountKey20, everything else AccountId32.
	Beneficiary(accountID string) (Location, error)
	ParachainDest(paraID uint32, parents uint8) Location
	HereDest(parents uint8) Location
	FungibleAsset(amount Amount, id Location, kind AmountKind) (Asset, error)
	// ResolveMultiLocation parses JSON and checks it is representable at
	// this version.
	ResolveMultiLocation(raw []byte) (Location, error)
	MarshalLocation(loc Location) (json.RawMessage, error)
	MarshalAssets(assets []Asset) (json.RawMessage, error)
	MarshalWeightLimit(w WeightLimit) (json.RawMessage, error)
}

var adapters = map[Version]Adapter{
	V2: v2Adapter{shared{v: V2}},
	V3: v3Adapter{shared{v: V3}},
	V4: v4Adapter{shared{v: V4}},
	V5: v5Adapter{shared{v: V5}},
}

// AdapterFor returns the adapter for v.
func AdapterFor(v Version) (Adapter, error) {
	a, ok := adapters[v]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidXcmVersion, "xcm version %d is not supported, expected 2 to 5", uint8(v))
	}
	return a, nil
}

// shared carries the behaviour common to every version; each adapter embeds
// it with its own version tag.
type shared struct {
	v Version
}

func (s shared) Version() Version { return s.v }

func (s shared) ParachainDest(paraID uint32, parents uint8) Location {
	return NewLocation(parents, Parachain(paraID))
}

func (s shared) HereDest(parents uint8) Location {
	return Here(parents)
}

func (s shared) beneficiary(accountID string, network *NetworkID) (Location, error) {
	if accountID == "" {
		return Location{}, dErrors.New(dErrors.CodeInvalidInput, "beneficiary account is required")
	}
	if IsEthereumAddress(accountID) {
		j, err := NewAccountKey20(network, accountID)
		if err != nil {
			return Location{}, err
		}
		return NewLocation(0, j), nil
	}
	j, err := NewAccountID32(network, accountID)
	if err != nil {
		return Location{}, err
	}
	return NewLocation(0, j), nil
}

func (s shared) FungibleAsset(amount Amount, id Location, kind AmountKind) (Asset, error) {
	if err := s.representable(id); err != nil {
		return Asset{}, err
	}
	return Asset{ID: id, Amount: amount, Kind: kind}, nil
}

func (s shared) ResolveMultiLocation(raw []byte) (Location, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return Location{}, err
	}
	if err := s.representable(loc); err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (s shared) MarshalLocation(loc Location) (json.RawMessage, error) {
	rendered, err := renderLocation(s.v, loc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rendered)
}

func (s shared) MarshalAssets(assets []Asset) (json.RawMessage, error) {
	items := make([]any, len(assets))
	for i, a := range assets {
		rendered, err := renderAsset(s.v, a)
		if err != nil {
			return nil, err
		}
		items[i] = rendered
	}
	return json.Marshal(items)
}

func (s shared) MarshalWeightLimit(w WeightLimit) (json.RawMessage, error) {
	return json.Marshal(renderWeightLimit(s.v, w))
}

// representable renders loc at this version and reports the first junction
// or network that the version cannot carry.
func (s shared) representable(loc Location) error {
	_, err := renderLocation(s.v, loc)
	return err
}

// MarshalVersioned wraps a rendered payload under its version key.
func MarshalVersioned(v Version, payload json.RawMessage) (json.RawMessage, error) {
	return json.Marshal(map[string]json.RawMessage{v.String(): payload})
}
