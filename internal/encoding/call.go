package encoding

import (
	"xcmkit/internal/xcm"
)

// CallArgs are the arguments shared by the XCM pallet transfer calls
// (limited_reserve_transfer_assets, limited_teleport_assets, transfer_assets).
type CallArgs struct {
	Version      xcm.Version
	Destination  xcm.Location
	Beneficiary  xcm.Location
	Assets       []xcm.Asset
	FeeAssetItem uint32
	WeightLimit  xcm.WeightLimit
}

// EncodeCallArgs encodes args in call order:
// dest, beneficiary, assets, fee_asset_item, weight_limit.
func EncodeCallArgs(args CallArgs) ([]byte, error) {
	dest, err := VersionedLocation(args.Version, args.Destination)
	if err != nil {
		return nil, err
	}
	beneficiary, err := VersionedLocation(args.Version, args.Beneficiary)
	if err != nil {
		return nil, err
	}
	assets, err := VersionedAssets(args.Version, args.Assets)
	if err != nil {
		return nil, err
	}

	w := newWriter()
	w.raw(dest)
	w.raw(beneficiary)
	w.raw(assets)
	w.u32(args.FeeAssetItem)
	writeWeightLimit(w, args.Version, args.WeightLimit)
	return w.bytes()
}
