package xcm

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	dErrors "xcmkit/pkg/domain-errors"
)

// JunctionKind identifies a junction variant. The declaration order is the
// cross-variant ordering used when sorting assets.
type JunctionKind uint8

const (
	KindParachain JunctionKind = iota
	KindAccountID32
	KindAccountIndex64
	KindAccountKey20
	KindPalletInstance
	KindGeneralIndex
	KindGeneralKey
	KindOnlyChild
	KindPlurality
	KindGlobalConsensus
)

var junctionNames = [...]string{
	KindParachain:       "Parachain",
	KindAccountID32:     "AccountId32",
	KindAccountIndex64:  "AccountIndex64",
	KindAccountKey20:    "AccountKey20",
	KindPalletInstance:  "PalletInstance",
	KindGeneralIndex:    "GeneralIndex",
	KindGeneralKey:      "GeneralKey",
	KindOnlyChild:       "OnlyChild",
	KindPlurality:       "Plurality",
	KindGlobalConsensus: "GlobalConsensus",
}

func (k JunctionKind) String() string {
	if int(k) < len(junctionNames) {
		return junctionNames[k]
	}
	return fmt.Sprintf("JunctionKind(%d)", uint8(k))
}

// Junction is one step of a location's interior path.
type Junction interface {
	Kind() JunctionKind
	// numeric returns the integer payload of numeric junctions.
	numeric() (uint256.Int, bool)
	render(v Version) (any, error)
}

// Parachain addresses a parachain by id.
type Parachain uint32

// AccountID32 addresses a 32-byte substrate account. ID is the key in
// lowercase 0x hex; build it with NewAccountID32.
type AccountID32 struct {
	Network *NetworkID
	ID      string
}

// AccountIndex64 addresses an account by its u64 index.
type AccountIndex64 struct {
	Network *NetworkID
	Index   uint64
}

// AccountKey20 addresses a 20-byte Ethereum-style account. Key is lowercase
// 0x hex; build it with NewAccountKey20.
type AccountKey20 struct {
	Network *NetworkID
	Key     string
}

// PalletInstance addresses a pallet by its runtime index.
type PalletInstance uint8

// GeneralIndex addresses an entity by u128 index, typically an asset id.
type GeneralIndex struct {
	Index uint256.Int
}

// NewGeneralIndex returns a GeneralIndex junction for n.
func NewGeneralIndex(n uint64) GeneralIndex {
	var gi GeneralIndex
	gi.Index.SetUint64(n)
	return gi
}

// GeneralKey addresses an entity by an opaque key of at most 32 bytes.
type GeneralKey struct {
	Data []byte
}

// OnlyChild addresses the sole child of a context.
type OnlyChild struct{}

// Plurality addresses a body. ID and Part are kept as compact JSON.
type Plurality struct {
	ID   json.RawMessage
	Part json.RawMessage
}

// GlobalConsensus addresses a whole consensus system.
type GlobalConsensus struct {
	Network NetworkID
}

func (Parachain) Kind() JunctionKind       { return KindParachain }
func (AccountID32) Kind() JunctionKind     { return KindAccountID32 }
func (AccountIndex64) Kind() JunctionKind  { return KindAccountIndex64 }
func (AccountKey20) Kind() JunctionKind    { return KindAccountKey20 }
func (PalletInstance) Kind() JunctionKind  { return KindPalletInstance }
func (GeneralIndex) Kind() JunctionKind    { return KindGeneralIndex }
func (GeneralKey) Kind() JunctionKind      { return KindGeneralKey }
func (OnlyChild) Kind() JunctionKind       { return KindOnlyChild }
func (Plurality) Kind() JunctionKind       { return KindPlurality }
func (GlobalConsensus) Kind() JunctionKind { return KindGlobalConsensus }

func (j Parachain) numeric() (uint256.Int, bool) {
	return *uint256.NewInt(uint64(j)), true
}

func (j AccountIndex64) numeric() (uint256.Int, bool) {
	return *uint256.NewInt(j.Index), true
}

func (j PalletInstance) numeric() (uint256.Int, bool) {
	return *uint256.NewInt(uint64(j)), true
}

func (j GeneralIndex) numeric() (uint256.Int, bool) {
	return j.Index, true
}

func (AccountID32) numeric() (uint256.Int, bool)     { return uint256.Int{}, false }
func (AccountKey20) numeric() (uint256.Int, bool)    { return uint256.Int{}, false }
func (GeneralKey) numeric() (uint256.Int, bool)      { return uint256.Int{}, false }
func (OnlyChild) numeric() (uint256.Int, bool)       { return uint256.Int{}, false }
func (Plurality) numeric() (uint256.Int, bool)       { return uint256.Int{}, false }
func (GlobalConsensus) numeric() (uint256.Int, bool) { return uint256.Int{}, false }

func (j Parachain) render(Version) (any, error) {
	return map[string]any{"Parachain": uint32(j)}, nil
}

func (j AccountID32) render(v Version) (any, error) {
	body, err := accountBody(v, j.Network, "id", j.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"AccountId32": body}, nil
}

func (j AccountIndex64) render(v Version) (any, error) {
	body, err := accountBody(v, j.Network, "index", j.Index)
	if err != nil {
		return nil, err
	}
	return map[string]any{"AccountIndex64": body}, nil
}

func (j AccountKey20) render(v Version) (any, error) {
	body, err := accountBody(v, j.Network, "key", j.Key)
	if err != nil {
		return nil, err
	}
	return map[string]any{"AccountKey20": body}, nil
}

func (j PalletInstance) render(Version) (any, error) {
	return map[string]any{"PalletInstance": uint8(j)}, nil
}

func (j GeneralIndex) render(Version) (any, error) {
	return map[string]any{"GeneralIndex": j.Index.Dec()}, nil
}

func (j GeneralKey) render(v Version) (any, error) {
	if len(j.Data) > 32 {
		return nil, dErrors.New(dErrors.CodeInvalidLocation, "general key exceeds 32 bytes")
	}
	if v == V2 || v == canonical {
		return map[string]any{"GeneralKey": "0x" + hex.EncodeToString(j.Data)}, nil
	}
	var padded [32]byte
	copy(padded[:], j.Data)
	return map[string]any{"GeneralKey": map[string]any{
		"length": len(j.Data),
		"data":   "0x" + hex.EncodeToString(padded[:]),
	}}, nil
}

func (OnlyChild) render(Version) (any, error) {
	return map[string]any{"OnlyChild": nil}, nil
}

func (j Plurality) render(Version) (any, error) {
	for _, raw := range []json.RawMessage{j.ID, j.Part} {
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "plurality body is not valid JSON")
		}
	}
	return map[string]any{"Plurality": map[string]any{"id": j.ID, "part": j.Part}}, nil
}

func (j GlobalConsensus) render(v Version) (any, error) {
	if v == V2 {
		return nil, dErrors.New(dErrors.CodeInvalidLocation, "GlobalConsensus requires XCM V3 or later")
	}
	network, err := j.Network.render(v)
	if err != nil {
		return nil, err
	}
	return map[string]any{"GlobalConsensus": network}, nil
}

// accountBody renders the {network, <field>} body shared by account junctions.
// V2 always carries a network and defaults it to Any; later versions omit it
// when unset.
func accountBody(v Version, network *NetworkID, field string, value any) (map[string]any, error) {
	body := map[string]any{field: value}
	n := network
	if n == nil && v == V2 {
		n = &NetworkID{Kind: NetworkAny}
	}
	if n == nil {
		return body, nil
	}
	rendered, err := n.render(v)
	if err != nil {
		return nil, err
	}
	if rendered != nil {
		body["network"] = rendered
	}
	return body, nil
}

// junctionKey is the canonical textual form of a junction.
func junctionKey(j Junction) string {
	rendered, err := j.render(canonical)
	if err != nil {
		return j.Kind().String()
	}
	b, err := json.Marshal(rendered)
	if err != nil {
		return j.Kind().String()
	}
	return string(b)
}
