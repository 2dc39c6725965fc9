// Package direction classifies a transfer by the roles of its origin and
// destination chains and decides whether that leg is enabled.
package direction

import (
	"strconv"
	"strings"

	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

// Direction names a transfer leg.
type Direction string

const (
	SystemToRelay  Direction = "SystemToRelay"
	SystemToPara   Direction = "SystemToPara"
	SystemToSystem Direction = "SystemToSystem"
	SystemToBridge Direction = "SystemToBridge"
	RelayToPara    Direction = "RelayToPara"
	RelayToSystem  Direction = "RelayToSystem"
	RelayToBridge  Direction = "RelayToBridge"
	ParaToRelay    Direction = "ParaToRelay"
	ParaToSystem   Direction = "ParaToSystem"
	ParaToPara     Direction = "ParaToPara"
	ParaToEthereum Direction = "ParaToEthereum"
)

// All lists every direction in declaration order.
var All = []Direction{
	SystemToRelay, SystemToPara, SystemToSystem, SystemToBridge,
	RelayToPara, RelayToSystem, RelayToBridge,
	ParaToRelay, ParaToSystem, ParaToPara, ParaToEthereum,
}

// Parse validates a direction name.
func Parse(s string) (Direction, error) {
	for _, d := range All {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown direction %q", s)
}

func (d Direction) String() string { return string(d) }

// IsBridge reports whether the leg leaves the origin's consensus system.
func (d Direction) IsBridge() bool {
	return d == SystemToBridge || d == RelayToBridge || d == ParaToEthereum
}

// Role is the position of a chain in the relay topology.
type Role string

const (
	RoleRelay  Role = "relay"
	RoleSystem Role = "system"
	RolePara   Role = "para"
)

// MaxSystemParaID is the upper bound of the reserved system parachain range.
const MaxSystemParaID = 1999

// IsSystemParachain reports whether id falls in the system parachain range.
func IsSystemParachain(id uint32) bool {
	return id >= 1 && id <= MaxSystemParaID
}

// RoleOf derives the role of a chain from its id. Ids are compared by
// numeric value, so "00" is the relay.
func RoleOf(chainID string) (Role, error) {
	id, err := parseChainID(chainID)
	if err != nil {
		return "", err
	}
	return roleOfID(id), nil
}

func parseChainID(chainID string) (uint32, error) {
	id, err := strconv.ParseUint(chainID, 10, 32)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid chain id %q", chainID)
	}
	return uint32(id), nil
}

func roleOfID(id uint32) Role {
	switch {
	case id == 0:
		return RoleRelay
	case IsSystemParachain(id):
		return RoleSystem
	default:
		return RolePara
	}
}

// Destination is a parsed destination chain id: either a numeric chain id or
// a bridged consensus location given as JSON.
type Destination struct {
	ChainID  string
	ParaID   uint32
	Role     Role
	Location *xcm.Location
}

// Network returns the bridged consensus system for bridge destinations.
func (d Destination) Network() (xcm.NetworkID, bool) {
	if d.Location == nil {
		return xcm.NetworkID{}, false
	}
	for _, j := range d.Location.Interior {
		if gc, ok := j.(xcm.GlobalConsensus); ok {
			return gc.Network, true
		}
	}
	return xcm.NetworkID{}, false
}

// Key identifies the destination in registry lookups.
func (d Destination) Key() string {
	if n, ok := d.Network(); ok {
		return n.Key()
	}
	return d.ChainID
}

// ParseDestination parses a numeric chain id or a JSON location whose
// interior names a GlobalConsensus.
func ParseDestination(destChainID string) (Destination, error) {
	s := strings.TrimSpace(destChainID)
	if s == "" {
		return Destination{}, dErrors.New(dErrors.CodeInvalidInput, "destination chain id is required")
	}
	if strings.HasPrefix(s, "{") {
		loc, err := xcm.ParseLocation([]byte(s))
		if err != nil {
			return Destination{}, err
		}
		d := Destination{ChainID: s, Location: &loc}
		if _, ok := d.Network(); !ok {
			return Destination{}, dErrors.New(dErrors.CodeInvalidLocation, "location destinations must name a GlobalConsensus")
		}
		return d, nil
	}
	id, err := parseChainID(s)
	if err != nil {
		return Destination{}, err
	}
	return Destination{ChainID: strconv.FormatUint(uint64(id), 10), ParaID: id, Role: roleOfID(id)}, nil
}

// Classify maps an origin role and a destination to a direction. The relay
// sending to itself and a parachain sending to itself are unsupported.
func Classify(originRole Role, originChainID, destChainID string) (Direction, error) {
	dest, err := ParseDestination(destChainID)
	if err != nil {
		return "", err
	}
	return ClassifyDestination(originRole, originChainID, dest)
}

// ClassifyDestination is Classify for an already parsed destination.
func ClassifyDestination(originRole Role, originChainID string, dest Destination) (Direction, error) {
	if dest.Location != nil {
		network, _ := dest.Network()
		switch originRole {
		case RoleSystem:
			return SystemToBridge, nil
		case RoleRelay:
			return RelayToBridge, nil
		case RolePara:
			if network.Kind == xcm.NetworkEthereum {
				return ParaToEthereum, nil
			}
		}
		return "", unsupported(originRole, dest.Key())
	}

	if dest.ChainID == originChainID {
		return "", unsupported(originRole, dest.ChainID)
	}

	switch originRole {
	case RoleRelay:
		switch dest.Role {
		case RoleSystem:
			return RelayToSystem, nil
		case RolePara:
			return RelayToPara, nil
		}
	case RoleSystem:
		switch dest.Role {
		case RoleRelay:
			return SystemToRelay, nil
		case RoleSystem:
			return SystemToSystem, nil
		case RolePara:
			return SystemToPara, nil
		}
	case RolePara:
		switch dest.Role {
		case RoleRelay:
			return ParaToRelay, nil
		case RoleSystem:
			return ParaToSystem, nil
		case RolePara:
			return ParaToPara, nil
		}
	}
	return "", unsupported(originRole, dest.ChainID)
}

func unsupported(origin Role, dest string) error {
	return dErrors.Newf(dErrors.CodeUnsupportedDirection, "transfers from a %s chain to %s are not supported", origin, dest)
}
