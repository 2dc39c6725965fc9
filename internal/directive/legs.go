package directive

import (
	"xcmkit/internal/direction"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

// destFunc builds the destination location of a leg.
type destFunc func(a xcm.Adapter, dest direction.Destination) (xcm.Location, error)

// leg is the per-direction strategy. Every leg composes the version adapter
// selected for the call.
type leg struct {
	kind Kind
	dest destFunc
	// teleportRelayNative upgrades a reserve transfer to a teleport when
	// every asset is the relay token.
	teleportRelayNative bool
}

func relayDest(a xcm.Adapter, _ direction.Destination) (xcm.Location, error) {
	return a.HereDest(1), nil
}

// siblingDest addresses a parachain one hop up through the relay.
func siblingDest(a xcm.Adapter, dest direction.Destination) (xcm.Location, error) {
	return a.ParachainDest(dest.ParaID, 1), nil
}

// childDest addresses a parachain of the relay the call originates on.
func childDest(a xcm.Adapter, dest direction.Destination) (xcm.Location, error) {
	return a.ParachainDest(dest.ParaID, 0), nil
}

// bridgeDest uses the caller's GlobalConsensus location as given.
func bridgeDest(a xcm.Adapter, dest direction.Destination) (xcm.Location, error) {
	if a.Version() < xcm.V3 {
		return xcm.Location{}, dErrors.Newf(dErrors.CodeInvalidXcmVersion,
			"bridge transfers require xcm version 3 or later, got %d", uint8(a.Version()))
	}
	if dest.Location == nil {
		return xcm.Location{}, dErrors.New(dErrors.CodeInternal, "bridge destination has no location")
	}
	if err := xcm.CheckRepresentable(a.Version(), *dest.Location); err != nil {
		return xcm.Location{}, err
	}
	return *dest.Location, nil
}

var legs = map[direction.Direction]leg{
	direction.SystemToRelay:  {kind: KindTeleport, dest: relayDest},
	direction.SystemToPara:   {kind: KindReserveTransfer, dest: siblingDest},
	direction.SystemToSystem: {kind: KindReserveTransfer, dest: siblingDest, teleportRelayNative: true},
	direction.SystemToBridge: {kind: KindReserveTransfer, dest: bridgeDest},
	direction.RelayToPara:    {kind: KindReserveTransfer, dest: childDest},
	direction.RelayToSystem:  {kind: KindTeleport, dest: childDest},
	direction.RelayToBridge:  {kind: KindReserveTransfer, dest: bridgeDest},
	direction.ParaToRelay:    {kind: KindReserveTransfer, dest: relayDest},
	direction.ParaToSystem:   {kind: KindReserveTransfer, dest: siblingDest},
	direction.ParaToPara:     {kind: KindReserveTransfer, dest: siblingDest},
	direction.ParaToEthereum: {kind: KindReserveTransfer, dest: bridgeDest},
}

func legFor(d direction.Direction) (leg, error) {
	l, ok := legs[d]
	if !ok {
		return leg{}, dErrors.Newf(dErrors.CodeUnsupportedDirection, "no handler for %s", d)
	}
	return l, nil
}

// kindFor resolves the transfer kind once the assets are known.
func (l leg) kindFor(allRelayNative bool) Kind {
	if l.teleportRelayNative && allRelayNative {
		return KindTeleport
	}
	return l.kind
}

// palletFor names the XCM pallet of the origin chain.
func palletFor(originRole direction.Role) string {
	if originRole == direction.RoleRelay {
		return PalletXcm
	}
	return PalletPolkaXcm
}

// callFor names the extrinsic the directive is arguments for.
func callFor(d direction.Direction, kind Kind) string {
	switch {
	case d.IsBridge():
		return CallTransferAssets
	case kind == KindTeleport:
		return CallLimitedTeleport
	default:
		return CallLimitedReserveTransfer
	}
}

// weightLimit builds the destination weight limit. A limited request
// without a weight falls back to Unlimited.
func weightLimit(opts Options) (xcm.WeightLimit, error) {
	if !opts.IsLimited || opts.WeightLimit == nil {
		return xcm.Unlimited(), nil
	}
	return xcm.ParseWeight(opts.WeightLimit.RefTime, opts.WeightLimit.ProofSize)
}
