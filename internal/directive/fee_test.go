package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcmkit/internal/resolver"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

func TestFeeAssetIndex(t *testing.T) {
	rmrk := xcm.NewLocation(0, xcm.PalletInstance(50), xcm.NewGeneralIndex(8))
	assets := []xcm.Asset{
		{ID: xcm.Here(1), Amount: xcm.NewAmount(100)},
		{ID: rmrk, Amount: xcm.NewAmount(100)},
	}

	tests := []struct {
		name      string
		specifier string
		fee       resolver.Resolved
		want      uint32
	}{
		{"local asset by location", "rmrk", resolver.Resolved{Location: rmrk}, 1},
		{"relay token", "ksm", resolver.Resolved{Location: xcm.Here(1), RelayNative: true}, 0},
		{"relay token from another anchor", "", resolver.Resolved{Location: xcm.Here(0), RelayNative: true}, 0},
		{"interior match", "rmrk", resolver.Resolved{Location: rmrk.WithParents(1)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FeeAssetIndex(assets, tt.specifier, tt.fee)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Less(t, int(got), len(assets))
		})
	}

	t.Run("unmatched specifier", func(t *testing.T) {
		_, err := FeeAssetIndex(assets, "usdt", resolver.Resolved{
			Location: xcm.NewLocation(0, xcm.PalletInstance(50), xcm.NewGeneralIndex(1984)),
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), `"usdt"`)
		assert.Contains(t, err.Error(), rmrk.String())
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := FeeAssetIndex(nil, "ksm", resolver.Resolved{Location: xcm.Here(1), RelayNative: true})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
