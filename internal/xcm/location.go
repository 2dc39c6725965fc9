package xcm

import (
	"encoding/json"
	"fmt"

	dErrors "xcmkit/pkg/domain-errors"
)

// MaxJunctions is the deepest interior a location can carry (X8).
const MaxJunctions = 8

// Location is a relative path to a consensus entity: climb Parents levels,
// then descend through Interior. An empty interior is Here.
type Location struct {
	Parents  uint8
	Interior []Junction
}

// Here returns the location with an empty interior.
func Here(parents uint8) Location {
	return Location{Parents: parents}
}

// NewLocation builds a location from a parents count and interior junctions.
func NewLocation(parents uint8, junctions ...Junction) Location {
	return Location{Parents: parents, Interior: junctions}
}

// IsHere reports whether the interior is empty.
func (l Location) IsHere() bool {
	return len(l.Interior) == 0
}

// Arity is the number of interior junctions.
func (l Location) Arity() int {
	return len(l.Interior)
}

// InteriorTag returns "Here" or "X1".."X8".
func (l Location) InteriorTag() string {
	if l.IsHere() {
		return "Here"
	}
	return fmt.Sprintf("X%d", len(l.Interior))
}

// First returns the first interior junction, if any.
func (l Location) First() (Junction, bool) {
	if l.IsHere() {
		return nil, false
	}
	return l.Interior[0], true
}

// Validate checks structural limits.
func (l Location) Validate() error {
	if len(l.Interior) > MaxJunctions {
		return dErrors.Newf(dErrors.CodeInvalidLocation, "interior has %d junctions, at most %d allowed", len(l.Interior), MaxJunctions)
	}
	for i, j := range l.Interior {
		if j == nil {
			return dErrors.Newf(dErrors.CodeInvalidLocation, "interior junction %d is empty", i)
		}
	}
	return nil
}

// Canonical is a version-independent serialization. Two locations are equal
// exactly when their canonical forms are equal.
func (l Location) Canonical() string {
	rendered, err := renderLocation(canonical, l)
	if err != nil {
		return fmt.Sprintf("invalid:%d:%s", l.Parents, l.InteriorTag())
	}
	// render rejects malformed Plurality JSON, the only payload that could
	// fail here.
	b, err := json.Marshal(rendered)
	if err != nil {
		return fmt.Sprintf("invalid:%d:%s", l.Parents, l.InteriorTag())
	}
	return string(b)
}

// Equal compares parents and interior structurally.
func (l Location) Equal(o Location) bool {
	return l.Canonical() == o.Canonical()
}

// InteriorEqual compares interiors only.
func (l Location) InteriorEqual(o Location) bool {
	return Here(0).withInterior(l.Interior).Equal(Here(0).withInterior(o.Interior))
}

// WithParents returns a copy anchored at a different parents count.
func (l Location) WithParents(parents uint8) Location {
	return Location{Parents: parents, Interior: l.Interior}
}

// Append returns a copy with junctions appended to the interior.
func (l Location) Append(junctions ...Junction) Location {
	interior := make([]Junction, 0, len(l.Interior)+len(junctions))
	interior = append(interior, l.Interior...)
	interior = append(interior, junctions...)
	return Location{Parents: l.Parents, Interior: interior}
}

func (l Location) withInterior(interior []Junction) Location {
	return Location{Parents: l.Parents, Interior: interior}
}

// String is the canonical form, used in logs and error messages.
func (l Location) String() string {
	return l.Canonical()
}

func renderLocation(v Version, l Location) (map[string]any, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	interior, err := renderInterior(v, l.Interior)
	if err != nil {
		return nil, err
	}
	return map[string]any{"parents": l.Parents, "interior": interior}, nil
}

func renderInterior(v Version, junctions []Junction) (any, error) {
	if len(junctions) == 0 {
		return "Here", nil
	}
	items := make([]any, len(junctions))
	for i, j := range junctions {
		rendered, err := j.render(v)
		if err != nil {
			return nil, err
		}
		items[i] = rendered
	}
	tag := fmt.Sprintf("X%d", len(junctions))
	if len(items) == 1 && !v.listInterior() {
		return map[string]any{tag: items[0]}, nil
	}
	return map[string]any{tag: items}, nil
}

// CheckRepresentable reports the first junction or network of loc that
// version v cannot carry.
func CheckRepresentable(v Version, loc Location) error {
	if !v.Valid() {
		return dErrors.Newf(dErrors.CodeInvalidXcmVersion, "unsupported XCM version %d", uint8(v))
	}
	_, err := renderLocation(v, loc)
	return err
}
