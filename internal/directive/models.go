package directive

import (
	"encoding/json"

	"xcmkit/internal/direction"
	"xcmkit/internal/xcm"
)

// Kind is the transfer mechanism a directive is built for.
type Kind string

const (
	KindTeleport        Kind = "teleport"
	KindReserveTransfer Kind = "reserve_transfer"
)

// Pallet and call names the encoder targets.
const (
	PalletXcm      = "xcmPallet"
	PalletPolkaXcm = "polkadotXcm"

	CallLimitedTeleport        = "limited_teleport_assets"
	CallLimitedReserveTransfer = "limited_reserve_transfer_assets"
	CallTransferAssets         = "transfer_assets"
)

// Weight is a caller supplied weight limit in decimal strings.
type Weight struct {
	RefTime   string
	ProofSize string
}

// Options tune how a directive is built.
type Options struct {
	// Version is the XCM version to build for. Zero selects the service
	// default.
	Version     int
	IsLimited   bool
	WeightLimit *Weight
	// PayFeeWith names the asset the destination charges fees in.
	PayFeeWith string
	KeepAlive  bool
	// TransferForeignAssets resolves System* assets through the foreign
	// assets pallet.
	TransferForeignAssets bool
	AmountKind            xcm.AmountKind
}

// Request is a transfer to build a directive for.
type Request struct {
	// Origin is the spec name of the sending chain.
	Origin string
	// Destination is a chain id or a JSON GlobalConsensus location.
	Destination string
	Recipient   string
	// Assets are symbols, asset ids or JSON locations. Empty with a single
	// amount sends the origin's native asset.
	Assets  []string
	Amounts []string
	Options Options
}

// TransferDirective is everything the encoder needs to build the call.
type TransferDirective struct {
	Origin      string
	Destination string
	Direction   direction.Direction
	Version     xcm.Version
	Kind        Kind
	Pallet      string
	Call        string
	Dest        xcm.Location
	Beneficiary xcm.Location
	// Assets are sorted and de-duplicated.
	Assets       []xcm.Asset
	FeeAssetItem uint32
	WeightLimit  xcm.WeightLimit
	KeepAlive    bool
}

// Rendered is the versioned JSON form of a TransferDirective.
type Rendered struct {
	Origin       string          `json:"origin"`
	Destination  string          `json:"destination"`
	Direction    string          `json:"direction"`
	XcmVersion   int             `json:"xcmVersion"`
	Kind         Kind            `json:"kind"`
	Pallet       string          `json:"pallet"`
	Call         string          `json:"call"`
	Dest         json.RawMessage `json:"dest"`
	Beneficiary  json.RawMessage `json:"beneficiary"`
	Assets       json.RawMessage `json:"assets"`
	FeeAssetItem uint32          `json:"feeAssetItem"`
	WeightLimit  json.RawMessage `json:"weightLimit"`
	KeepAlive    bool            `json:"keepAlive,omitempty"`
}

// Classification is a classified leg and whether it may be built.
type Classification struct {
	Origin      string
	Destination string
	Direction   direction.Direction
	Kind        Kind
	Enabled     bool
	// Reason explains why a classified leg is disabled.
	Reason string
}

// Encoded is a directive together with its SCALE call arguments.
type Encoded struct {
	Directive *TransferDirective
	CallArgs  []byte
}
