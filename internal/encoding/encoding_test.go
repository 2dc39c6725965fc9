package encoding

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

const (
	aliceSS58 = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	aliceHex  = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
)

func TestVersionedLocation(t *testing.T) {
	dest := xcm.NewLocation(1, xcm.Parachain(2000))

	b, err := VersionedLocation(xcm.V3, dest)
	require.NoError(t, err)
	assert.Equal(t, "030101 00411f", spaced(b))

	b, err = VersionedLocation(xcm.V2, dest)
	require.NoError(t, err)
	assert.Equal(t, "010101 01411f", spaced(b))

	b, err = VersionedLocation(xcm.V4, xcm.Here(0))
	require.NoError(t, err)
	assert.Equal(t, "040000", hex.EncodeToString(b))
}

func TestVersionedLocation_RejectsGlobalConsensusAtV2(t *testing.T) {
	loc := xcm.NewLocation(2, xcm.GlobalConsensus{Network: xcm.Named(xcm.NetworkKusama)})
	_, err := VersionedLocation(xcm.V2, loc)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidLocation))

	b, err := VersionedLocation(xcm.V4, loc)
	require.NoError(t, err)
	assert.Equal(t, "0402010903", hex.EncodeToString(b))
}

func TestVersionedAssets(t *testing.T) {
	asset := xcm.Asset{
		ID:     xcm.NewLocation(0, xcm.PalletInstance(50), xcm.NewGeneralIndex(1984)),
		Amount: xcm.NewAmount(100),
	}

	b, err := VersionedAssets(xcm.V4, []xcm.Asset{asset})
	require.NoError(t, err)
	assert.Equal(t, "04"+"04"+"0002043205011f"+"009101", hex.EncodeToString(b))

	b, err = VersionedAssets(xcm.V3, []xcm.Asset{asset})
	require.NoError(t, err)
	assert.Equal(t, "03"+"04"+"00"+"0002043205011f"+"009101", hex.EncodeToString(b))
}

func TestWeightLimit(t *testing.T) {
	b, err := WeightLimit(xcm.V3, xcm.Unlimited())
	require.NoError(t, err)
	assert.Equal(t, "00", hex.EncodeToString(b))

	b, err = WeightLimit(xcm.V3, xcm.Limited(1000, 2000))
	require.NoError(t, err)
	assert.Equal(t, "01a10f411f", hex.EncodeToString(b))

	b, err = WeightLimit(xcm.V2, xcm.Limited(1000, 2000))
	require.NoError(t, err)
	assert.Equal(t, "01a10f", hex.EncodeToString(b))
}

func TestEncodeCallArgs(t *testing.T) {
	args := CallArgs{
		Version:     xcm.V3,
		Destination: xcm.NewLocation(1, xcm.Parachain(2000)),
		Beneficiary: xcm.NewLocation(0, xcm.AccountID32{ID: aliceSS58}),
		Assets: []xcm.Asset{{
			ID:     xcm.Here(1),
			Amount: xcm.NewAmount(100),
		}},
		FeeAssetItem: 0,
		WeightLimit:  xcm.Unlimited(),
	}

	b, err := EncodeCallArgs(args)
	require.NoError(t, err)

	want := "0301010041 1f" +
		"0300010100" + aliceHex +
		"0304000100009101" +
		"00000000" +
		"00"
	assert.Equal(t, nospace(want), hex.EncodeToString(b))
}

func TestEncodeCallArgs_InvalidBeneficiary(t *testing.T) {
	args := CallArgs{
		Version:     xcm.V4,
		Destination: xcm.Here(1),
		Beneficiary: xcm.NewLocation(0, xcm.AccountID32{ID: "not-an-account"}),
		WeightLimit: xcm.Unlimited(),
	}
	_, err := EncodeCallArgs(args)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func spaced(b []byte) string {
	s := hex.EncodeToString(b)
	return s[:6] + " " + s[6:]
}

func nospace(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
