package xcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "xcmkit/pkg/domain-errors"
)

func TestParseLocation(t *testing.T) {
	t.Run("parses a bare location with a list interior", func(t *testing.T) {
		loc, err := ParseLocation([]byte(`{"parents":0,"interior":{"X2":[{"PalletInstance":50},{"GeneralIndex":"1984"}]}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(0, PalletInstance(50), NewGeneralIndex(1984)), loc)
	})

	t.Run("accepts a single junction without a list", func(t *testing.T) {
		loc, err := ParseLocation([]byte(`{"parents":1,"interior":{"X1":{"Parachain":2000}}}`))
		require.NoError(t, err)
		assert.True(t, loc.Equal(NewLocation(1, Parachain(2000))))
	})

	t.Run("unwraps versioned and stale wrappers", func(t *testing.T) {
		for _, raw := range []string{
			`{"v1":{"parents":"1","interior":{"x1":{"parachain":"2,000"}}}}`,
			`{"V3":{"parents":1,"interior":{"X1":{"Parachain":2000}}}}`,
			`{"V4":{"parents":1,"interior":{"X1":[{"Parachain":"2000"}]}}}`,
		} {
			loc, err := ParseLocation([]byte(raw))
			require.NoError(t, err, raw)
			assert.True(t, loc.Equal(NewLocation(1, Parachain(2000))), raw)
		}
	})

	t.Run("parses Here in string and object form", func(t *testing.T) {
		for _, raw := range []string{
			`{"parents":1,"interior":"Here"}`,
			`{"parents":1,"interior":{"Here":null}}`,
			`{"parents":1,"interior":{"here":""}}`,
		} {
			loc, err := ParseLocation([]byte(raw))
			require.NoError(t, err, raw)
			assert.True(t, loc.IsHere(), raw)
			assert.Equal(t, uint8(1), loc.Parents)
		}
	})

	t.Run("parses global consensus networks", func(t *testing.T) {
		loc, err := ParseLocation([]byte(`{"parents":2,"interior":{"X1":{"GlobalConsensus":{"Ethereum":{"chainId":1}}}}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(2, GlobalConsensus{Network: Ethereum(1)}), loc)

		loc, err = ParseLocation([]byte(`{"parents":2,"interior":{"X1":[{"GlobalConsensus":"Kusama"}]}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(2, GlobalConsensus{Network: Named(NetworkKusama)}), loc)
	})

	t.Run("parses account junctions with and without network", func(t *testing.T) {
		loc, err := ParseLocation([]byte(`{"parents":0,"interior":{"X1":{"AccountId32":{"network":"Any","id":"` + alice + `"}}}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(0, AccountID32{Network: &NetworkID{Kind: NetworkAny}, ID: "0x" + aliceHex}), loc)

		loc, err = ParseLocation([]byte(`{"parents":0,"interior":{"X1":{"AccountKey20":{"key":"0xC02AAA39B223FE8D0A0E5C4F27EAD9083C756CC2"}}}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(0, AccountKey20{Key: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}), loc)
	})

	t.Run("parses general keys in both shapes", func(t *testing.T) {
		loc, err := ParseLocation([]byte(`{"parents":0,"interior":{"X1":{"GeneralKey":"0x0102"}}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(0, GeneralKey{Data: []byte{1, 2}}), loc)

		loc, err = ParseLocation([]byte(`{"parents":0,"interior":{"X1":{"GeneralKey":{"length":2,"data":"0x0102000000000000000000000000000000000000000000000000000000000000"}}}}`))
		require.NoError(t, err)
		assert.Equal(t, NewLocation(0, GeneralKey{Data: []byte{1, 2}}), loc)
	})
}

func TestParseLocationErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not an object", `"Here"`},
		{"invalid json", `{"parents":`},
		{"missing parents", `{"interior":"Here"}`},
		{"missing interior", `{"parents":1}`},
		{"neither field", `{"foo":1}`},
		{"arity mismatch", `{"parents":0,"interior":{"X2":[{"Parachain":1}]}}`},
		{"unknown junction", `{"parents":0,"interior":{"X1":{"Teleporter":1}}}`},
		{"unknown interior", `{"parents":0,"interior":{"X9":[]}}`},
		{"parents out of range", `{"parents":300,"interior":"Here"}`},
		{"negative parachain", `{"parents":1,"interior":{"X1":{"Parachain":-1}}}`},
		{"pallet out of range", `{"parents":0,"interior":{"X1":{"PalletInstance":256}}}`},
		{"unknown network", `{"parents":1,"interior":{"X1":{"GlobalConsensus":"Mars"}}}`},
		{"short account key", `{"parents":0,"interior":{"X1":{"AccountKey20":{"key":"0xabc"}}}}`},
		{"short account id", `{"parents":0,"interior":{"X1":{"AccountId32":{"id":"0x01"}}}}`},
		{"bad ss58 checksum", `{"parents":0,"interior":{"X1":{"AccountId32":{"id":"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ"}}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLocation([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidLocation), "got %v", err)
		})
	}
}

func TestResolveMultiLocationRoundTrip(t *testing.T) {
	locations := []Location{
		Here(1),
		NewLocation(1, Parachain(2000)),
		NewLocation(0, PalletInstance(50), NewGeneralIndex(1984)),
		NewLocation(1, Parachain(2023), PalletInstance(10)),
		NewLocation(0, AccountID32{Network: &NetworkID{Kind: NetworkPolkadot}, ID: "0x" + aliceHex}),
		NewLocation(1, Parachain(2030), GeneralKey{Data: []byte{0, 1}}),
	}
	for _, v := range []Version{V2, V3, V4, V5} {
		adapter, err := AdapterFor(v)
		require.NoError(t, err)
		for _, loc := range locations {
			raw, err := adapter.MarshalLocation(loc)
			require.NoError(t, err)
			wrapped, err := MarshalVersioned(v, raw)
			require.NoError(t, err)

			parsed, err := adapter.ResolveMultiLocation(wrapped)
			require.NoError(t, err, string(wrapped))
			assert.True(t, parsed.Equal(loc), "%s: %s", v, wrapped)
		}
	}
}

func TestResolveMultiLocationVersionLimits(t *testing.T) {
	raw := []byte(`{"parents":2,"interior":{"X1":{"GlobalConsensus":"Kusama"}}}`)

	v2, _ := AdapterFor(V2)
	_, err := v2.ResolveMultiLocation(raw)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidLocation))

	v3, _ := AdapterFor(V3)
	_, err = v3.ResolveMultiLocation(raw)
	require.NoError(t, err)

	westend := []byte(`{"parents":2,"interior":{"X1":{"GlobalConsensus":"Westend"}}}`)
	v5, _ := AdapterFor(V5)
	_, err = v5.ResolveMultiLocation(westend)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidLocation))
}
