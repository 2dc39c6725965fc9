// Package encoding turns transfer directive fields into their SCALE byte
// representation, the form the XCM pallet extrinsics take them in.
package encoding

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
)

// Versioned enum indices shared by VersionedLocation and VersionedAssets.
var versionIndex = map[xcm.Version]byte{
	xcm.V2: 1,
	xcm.V3: 3,
	xcm.V4: 4,
	xcm.V5: 5,
}

// writer accumulates the first encoding error so call sites stay linear.
type writer struct {
	buf bytes.Buffer
	enc *scale.Encoder
	err error
}

func newWriter() *writer {
	w := &writer{}
	w.enc = scale.NewEncoder(&w.buf)
	return w
}

func (w *writer) byte(b byte) {
	if w.err == nil {
		w.err = w.enc.PushByte(b)
	}
}

func (w *writer) raw(b []byte) {
	if w.err == nil {
		w.err = w.enc.Write(b)
	}
}

func (w *writer) compact(n *big.Int) {
	if w.err == nil {
		w.err = w.enc.EncodeUintCompact(*n)
	}
}

func (w *writer) compactUint(n uint64) {
	w.compact(new(big.Int).SetUint64(n))
}

func (w *writer) u32(n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	w.raw(b[:])
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Location encodes an unversioned location in the layout of v.
func Location(v xcm.Version, loc xcm.Location) ([]byte, error) {
	if err := xcm.CheckRepresentable(v, loc); err != nil {
		return nil, err
	}
	w := newWriter()
	writeLocation(w, v, loc)
	return w.bytes()
}

// VersionedLocation encodes loc wrapped in the VersionedLocation enum.
func VersionedLocation(v xcm.Version, loc xcm.Location) ([]byte, error) {
	if err := xcm.CheckRepresentable(v, loc); err != nil {
		return nil, err
	}
	w := newWriter()
	w.byte(versionIndex[v])
	writeLocation(w, v, loc)
	return w.bytes()
}

// VersionedAssets encodes assets wrapped in the VersionedAssets enum. The
// list is written in the order given; callers canonicalize first.
func VersionedAssets(v xcm.Version, assets []xcm.Asset) ([]byte, error) {
	for _, a := range assets {
		if err := xcm.CheckRepresentable(v, a.ID); err != nil {
			return nil, err
		}
	}
	w := newWriter()
	w.byte(versionIndex[v])
	w.compactUint(uint64(len(assets)))
	for _, a := range assets {
		if v == xcm.V2 || v == xcm.V3 {
			w.byte(0) // Concrete
		}
		writeLocation(w, v, a.ID)
		w.byte(0) // Fungible
		w.compact(a.Amount.Big())
	}
	return w.bytes()
}

// WeightLimit encodes w in the layout of v.
func WeightLimit(v xcm.Version, wl xcm.WeightLimit) ([]byte, error) {
	if !v.Valid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidXcmVersion, "unsupported XCM version %d", uint8(v))
	}
	w := newWriter()
	writeWeightLimit(w, v, wl)
	return w.bytes()
}

func writeWeightLimit(w *writer, v xcm.Version, wl xcm.WeightLimit) {
	if !wl.Limited {
		w.byte(0)
		return
	}
	w.byte(1)
	w.compactUint(wl.RefTime)
	if v != xcm.V2 {
		w.compactUint(wl.ProofSize)
	}
}

func writeLocation(w *writer, v xcm.Version, loc xcm.Location) {
	w.byte(loc.Parents)
	w.byte(byte(loc.Arity()))
	for _, j := range loc.Interior {
		if v == xcm.V2 {
			writeJunctionV2(w, j)
		} else {
			writeJunction(w, j)
		}
	}
}

func writeJunction(w *writer, j xcm.Junction) {
	switch j := j.(type) {
	case xcm.Parachain:
		w.byte(0)
		w.compactUint(uint64(j))
	case xcm.AccountID32:
		w.byte(1)
		writeOptionalNetwork(w, j.Network)
		writeAccountID32(w, j.ID)
	case xcm.AccountIndex64:
		w.byte(2)
		writeOptionalNetwork(w, j.Network)
		w.compactUint(j.Index)
	case xcm.AccountKey20:
		w.byte(3)
		writeOptionalNetwork(w, j.Network)
		writeAccountKey20(w, j.Key)
	case xcm.PalletInstance:
		w.byte(4)
		w.byte(byte(j))
	case xcm.GeneralIndex:
		w.byte(5)
		w.compact(j.Index.ToBig())
	case xcm.GeneralKey:
		w.byte(6)
		var padded [32]byte
		copy(padded[:], j.Data)
		w.byte(byte(len(j.Data)))
		w.raw(padded[:])
	case xcm.OnlyChild:
		w.byte(7)
	case xcm.Plurality:
		w.byte(8)
		writePlurality(w, j, false)
	case xcm.GlobalConsensus:
		w.byte(9)
		writeNetwork(w, j.Network)
	default:
		w.fail(dErrors.Newf(dErrors.CodeInvalidLocation, "junction %T cannot be encoded", j))
	}
}

func writeJunctionV2(w *writer, j xcm.Junction) {
	switch j := j.(type) {
	case xcm.Parachain:
		w.byte(1)
		w.compactUint(uint64(j))
	case xcm.AccountID32:
		w.byte(2)
		writeNetworkV2(w, j.Network)
		writeAccountID32(w, j.ID)
	case xcm.AccountIndex64:
		w.byte(3)
		writeNetworkV2(w, j.Network)
		w.compactUint(j.Index)
	case xcm.AccountKey20:
		w.byte(4)
		writeNetworkV2(w, j.Network)
		writeAccountKey20(w, j.Key)
	case xcm.PalletInstance:
		w.byte(5)
		w.byte(byte(j))
	case xcm.GeneralIndex:
		w.byte(6)
		w.compact(j.Index.ToBig())
	case xcm.GeneralKey:
		w.byte(7)
		w.compactUint(uint64(len(j.Data)))
		w.raw(j.Data)
	case xcm.OnlyChild:
		w.byte(8)
	case xcm.Plurality:
		w.byte(9)
		writePlurality(w, j, true)
	default:
		w.fail(dErrors.Newf(dErrors.CodeInvalidLocation, "junction %s cannot be encoded in XCM V2", j.Kind()))
	}
}

func writeAccountID32(w *writer, account string) {
	key, err := xcm.DecodeAccountID32(account)
	if err != nil {
		w.fail(err)
		return
	}
	w.raw(key[:])
}

func writeAccountKey20(w *writer, account string) {
	key, err := xcm.DecodeAccountKey20(account)
	if err != nil {
		w.fail(err)
		return
	}
	w.raw(key[:])
}

var networkIndex = map[xcm.NetworkKind]byte{
	xcm.NetworkByGenesis:        0,
	xcm.NetworkPolkadot:         2,
	xcm.NetworkKusama:           3,
	xcm.NetworkWestend:          4,
	xcm.NetworkRococo:           5,
	xcm.NetworkWococo:           6,
	xcm.NetworkEthereum:         7,
	xcm.NetworkBitcoinCore:      8,
	xcm.NetworkBitcoinCash:      9,
	xcm.NetworkPolkadotBulletin: 10,
}

// writeOptionalNetwork writes Option<NetworkId>; Any is None.
func writeOptionalNetwork(w *writer, n *xcm.NetworkID) {
	if n == nil || n.Kind == xcm.NetworkAny {
		w.byte(0)
		return
	}
	w.byte(1)
	writeNetwork(w, *n)
}

func writeNetwork(w *writer, n xcm.NetworkID) {
	idx, ok := networkIndex[n.Kind]
	if !ok {
		w.fail(dErrors.Newf(dErrors.CodeInvalidLocation, "network %s cannot be encoded", n.Kind))
		return
	}
	w.byte(idx)
	switch n.Kind {
	case xcm.NetworkByGenesis:
		w.raw(n.Genesis[:])
	case xcm.NetworkEthereum:
		w.compactUint(n.ChainID)
	}
}

func writeNetworkV2(w *writer, n *xcm.NetworkID) {
	if n == nil {
		w.byte(0)
		return
	}
	switch n.Kind {
	case xcm.NetworkAny:
		w.byte(0)
	case xcm.NetworkPolkadot:
		w.byte(2)
	case xcm.NetworkKusama:
		w.byte(3)
	default:
		w.fail(dErrors.Newf(dErrors.CodeInvalidLocation, "network %s cannot be encoded in XCM V2", n.Kind))
	}
}

var bodyIDIndex = map[string]byte{
	"unit":           0,
	"executive":      3,
	"technical":      4,
	"legislative":    5,
	"judicial":       6,
	"defense":        7,
	"administration": 8,
	"treasury":       9,
}

var bodyPartIndex = map[string]byte{
	"voice":              0,
	"members":            1,
	"fraction":           2,
	"atleastproportion":  3,
	"morethanproportion": 4,
}

// writePlurality covers the payload-free body ids, Index bodies and every
// body part. Named and Moniker bodies are rejected.
func writePlurality(w *writer, p xcm.Plurality, v2 bool) {
	name, body, err := variant(p.ID)
	if err != nil {
		w.fail(err)
		return
	}
	if idx, ok := bodyIDIndex[name]; ok {
		w.byte(idx)
	} else if name == "index" {
		n, err := jsonUint(body)
		if err != nil {
			w.fail(err)
			return
		}
		w.byte(2)
		w.compactUint(n)
	} else {
		w.fail(dErrors.Newf(dErrors.CodeInvalidLocation, "plurality body %q cannot be encoded", name))
		return
	}

	name, body, err = variant(p.Part)
	if err != nil {
		w.fail(err)
		return
	}
	idx, ok := bodyPartIndex[name]
	if !ok {
		w.fail(dErrors.Newf(dErrors.CodeInvalidLocation, "plurality part %q cannot be encoded", name))
		return
	}
	w.byte(idx)
	switch name {
	case "voice":
	case "members":
		var m struct {
			Count json.Number `json:"count"`
		}
		if err := json.Unmarshal(body, &m); err != nil {
			w.fail(dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid plurality members part"))
			return
		}
		n, err := jsonUint(json.RawMessage(m.Count))
		if err != nil {
			w.fail(err)
			return
		}
		w.compactUint(n)
	default:
		var f struct {
			Nom   json.Number `json:"nom"`
			Denom json.Number `json:"denom"`
		}
		if err := json.Unmarshal(body, &f); err != nil {
			w.fail(dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid plurality fraction part"))
			return
		}
		nom, err := jsonUint(json.RawMessage(f.Nom))
		if err != nil {
			w.fail(err)
			return
		}
		denom, err := jsonUint(json.RawMessage(f.Denom))
		if err != nil {
			w.fail(err)
			return
		}
		w.compactUint(nom)
		w.compactUint(denom)
	}
}

// variant reads "Name", {"Name": null} or {"Name": body}.
func variant(raw json.RawMessage) (string, json.RawMessage, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return strings.ToLower(name), nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) != 1 {
		return "", nil, dErrors.New(dErrors.CodeInvalidLocation, "plurality fields must name exactly one variant")
	}
	for k, v := range obj {
		return strings.ToLower(k), v, nil
	}
	return "", nil, nil
}

func jsonUint(raw json.RawMessage) (uint64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, dErrors.Newf(dErrors.CodeInvalidLocation, "expected an integer, got %s", string(raw))
		}
		n = json.Number(s)
	}
	v, ok := new(big.Int).SetString(n.String(), 10)
	if !ok || !v.IsUint64() {
		return 0, dErrors.Newf(dErrors.CodeInvalidLocation, "expected an integer, got %s", string(raw))
	}
	return v.Uint64(), nil
}
