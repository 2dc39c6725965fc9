package xcm

import (
	"fmt"

	dErrors "xcmkit/pkg/domain-errors"
)

// Version is an XCM protocol version. Only V2..V5 are produced.
type Version uint8

const (
	V2 Version = 2
	V3 Version = 3
	V4 Version = 4
	V5 Version = 5
)

// DefaultVersion is used when a caller does not pin a version.
const DefaultVersion = V4

// canonical is the internal rendering used for equality and ordering. It is
// never exposed as a protocol version.
const canonical Version = 0

// ParseVersion validates n as a supported protocol version.
func ParseVersion(n int) (Version, error) {
	if n < int(V2) || n > int(V5) {
		return 0, dErrors.Newf(dErrors.CodeInvalidXcmVersion, "xcm version %d is not supported, expected 2 to 5", n)
	}
	return Version(n), nil
}

// Valid reports whether v is a supported protocol version.
func (v Version) Valid() bool {
	return v >= V2 && v <= V5
}

// String returns the versioned-enum key, e.g. "V3".
func (v Version) String() string {
	return fmt.Sprintf("V%d", uint8(v))
}

// listInterior reports whether single-junction interiors are rendered as a
// one-element list rather than a bare junction.
func (v Version) listInterior() bool {
	return v == canonical || v >= V4
}

// wrapsConcrete reports whether asset ids are wrapped under "Concrete".
func (v Version) wrapsConcrete() bool {
	return v == V2 || v == V3
}
