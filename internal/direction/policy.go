package direction

import (
	dErrors "xcmkit/pkg/domain-errors"
)

// DefaultMinSystemToRelaySpecVersion is the lowest system chain runtime that
// accepts teleports back to the relay.
const DefaultMinSystemToRelaySpecVersion = 9430

// Policy decides which classified legs may be built.
type Policy struct {
	Disabled                    map[Direction]bool
	MinSystemToRelaySpecVersion uint32
}

// DefaultPolicy disables ParaToRelay and gates SystemToRelay on runtime
// version.
func DefaultPolicy() Policy {
	return Policy{
		Disabled:                    map[Direction]bool{ParaToRelay: true},
		MinSystemToRelaySpecVersion: DefaultMinSystemToRelaySpecVersion,
	}
}

// NewPolicy builds a policy from configured direction names.
func NewPolicy(disabled []string, minSystemToRelay uint32) (Policy, error) {
	p := Policy{Disabled: make(map[Direction]bool, len(disabled)), MinSystemToRelaySpecVersion: minSystemToRelay}
	for _, name := range disabled {
		d, err := Parse(name)
		if err != nil {
			return Policy{}, err
		}
		p.Disabled[d] = true
	}
	return p, nil
}

// Check fails with UnsupportedDirection when d is disabled. originSpecVersion
// is zero when the origin runtime version is unknown, in which case the
// runtime gate is skipped.
func (p Policy) Check(d Direction, originSpecVersion uint32) error {
	if p.Disabled[d] {
		return dErrors.Newf(dErrors.CodeUnsupportedDirection, "%s transfers are not supported", d)
	}
	if d == SystemToRelay && originSpecVersion != 0 && originSpecVersion < p.MinSystemToRelaySpecVersion {
		return dErrors.Newf(dErrors.CodeUnsupportedDirection,
			"SystemToRelay requires runtime %d or later, origin runs %d", p.MinSystemToRelaySpecVersion, originSpecVersion)
	}
	return nil
}

// NeedsRuntimeVersion reports whether Check depends on the origin runtime.
func (p Policy) NeedsRuntimeVersion(d Direction) bool {
	return d == SystemToRelay && p.MinSystemToRelaySpecVersion > 0 && !p.Disabled[d]
}
