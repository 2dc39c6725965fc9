package directive

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"xcmkit/internal/xcm"
)

// Render produces the versioned JSON form of d. Locations and assets are
// wrapped under their version key; the weight limit is not versioned.
func (d *TransferDirective) Render() (*Rendered, error) {
	a, err := xcm.AdapterFor(d.Version)
	if err != nil {
		return nil, err
	}
	dest, err := versioned(d.Version, a.MarshalLocation, d.Dest)
	if err != nil {
		return nil, err
	}
	beneficiary, err := versioned(d.Version, a.MarshalLocation, d.Beneficiary)
	if err != nil {
		return nil, err
	}
	assets, err := a.MarshalAssets(d.Assets)
	if err != nil {
		return nil, err
	}
	assets, err = xcm.MarshalVersioned(d.Version, assets)
	if err != nil {
		return nil, err
	}
	weight, err := a.MarshalWeightLimit(d.WeightLimit)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Origin:       d.Origin,
		Destination:  d.Destination,
		Direction:    d.Direction.String(),
		XcmVersion:   int(d.Version),
		Kind:         d.Kind,
		Pallet:       d.Pallet,
		Call:         d.Call,
		Dest:         dest,
		Beneficiary:  beneficiary,
		Assets:       assets,
		FeeAssetItem: d.FeeAssetItem,
		WeightLimit:  weight,
		KeepAlive:    d.KeepAlive,
	}, nil
}

func versioned(v xcm.Version, marshal func(xcm.Location) (json.RawMessage, error), loc xcm.Location) (json.RawMessage, error) {
	raw, err := marshal(loc)
	if err != nil {
		return nil, err
	}
	return xcm.MarshalVersioned(v, raw)
}

// Fingerprint is the hex blake2b-256 of the rendered directive.
func (d *TransferDirective) Fingerprint() (string, error) {
	rendered, err := d.Render()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(rendered)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
