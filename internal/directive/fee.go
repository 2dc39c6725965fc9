package directive

import (
	"strings"

	"xcmkit/internal/resolver"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

// FeeAssetIndex finds the position of the resolved fee asset in a
// canonical asset list. An exact location match wins; otherwise interiors
// are compared, and the relay token matches any Here entry.
func FeeAssetIndex(assets []xcm.Asset, specifier string, fee resolver.Resolved) (uint32, error) {
	for i, a := range assets {
		if a.ID.Equal(fee.Location) {
			return uint32(i), nil
		}
	}
	for i, a := range assets {
		if fee.RelayNative && a.ID.IsHere() {
			return uint32(i), nil
		}
		if !fee.RelayNative && a.ID.InteriorEqual(fee.Location) {
			return uint32(i), nil
		}
	}
	return 0, dErrors.Newf(dErrors.CodeInvalidInput,
		"fee asset %q does not match any asset in [%s]", specifier, describeAssets(assets))
}

func describeAssets(assets []xcm.Asset) string {
	parts := make([]string, len(assets))
	for i, a := range assets {
		parts[i] = a.ID.String()
	}
	return strings.Join(parts, ", ")
}
