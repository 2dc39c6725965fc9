package xcm

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	dErrors "xcmkit/pkg/domain-errors"
)

var (
	versionKey  = regexp.MustCompile(`^[vV][0-9]+$`)
	interiorKey = regexp.MustCompile(`^[xX]([1-8])$`)
)

// ParseLocation decodes a JSON location. It accepts a bare
// {"parents", "interior"} object or one wrapped in a versioned key such as
// {"V3": {...}} or the stale {"v1": {...}}; single junctions may appear bare
// or as a one-element list, and numbers may be JSON numbers or decimal
// strings with thousands separators.
func ParseLocation(raw []byte) (Location, error) {
	return parseLocation(raw, 0)
}

func parseLocation(raw []byte, depth int) (Location, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Location{}, dErrors.New(dErrors.CodeInvalidLocation, "location must be a JSON object")
	}

	parentsRaw, hasParents := lookupFold(fields, "parents")
	interiorRaw, hasInterior := lookupFold(fields, "interior")
	if !hasParents && !hasInterior {
		if len(fields) == 1 && depth == 0 {
			for key, inner := range fields {
				if versionKey.MatchString(key) {
					return parseLocation(inner, depth+1)
				}
			}
		}
		return Location{}, dErrors.New(dErrors.CodeInvalidLocation, "location must define parents and interior")
	}
	if !hasParents {
		return Location{}, dErrors.New(dErrors.CodeInvalidLocation, "location is missing parents")
	}
	if !hasInterior {
		return Location{}, dErrors.New(dErrors.CodeInvalidLocation, "location is missing interior")
	}

	parents, err := parseUint64(parentsRaw)
	if err != nil {
		return Location{}, err
	}
	if parents > 255 {
		return Location{}, dErrors.Newf(dErrors.CodeInvalidLocation, "parents %d out of range", parents)
	}
	interior, err := parseInterior(interiorRaw)
	if err != nil {
		return Location{}, err
	}
	loc := Location{Parents: uint8(parents), Interior: interior}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

func parseInterior(raw json.RawMessage) ([]Junction, error) {
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		if strings.EqualFold(tag, "Here") {
			return nil, nil
		}
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "unknown interior %q", tag)
	}

	key, value, err := singleKey(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid interior")
	}
	if strings.EqualFold(key, "Here") {
		return nil, nil
	}
	m := interiorKey.FindStringSubmatch(key)
	if m == nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "unknown interior %q", key)
	}
	arity, _ := strconv.Atoi(m[1])

	var items []json.RawMessage
	if trimmed := bytes.TrimSpace(value); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(value, &items); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid interior junction list")
		}
	} else {
		items = []json.RawMessage{value}
	}
	if len(items) != arity {
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "interior %s carries %d junctions", strings.ToUpper(key), len(items))
	}

	junctions := make([]Junction, 0, arity)
	for _, item := range items {
		j, err := parseJunction(item)
		if err != nil {
			return nil, err
		}
		junctions = append(junctions, j)
	}
	return junctions, nil
}

func parseJunction(raw json.RawMessage) (Junction, error) {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && strings.EqualFold(bare, "OnlyChild") {
		return OnlyChild{}, nil
	}

	key, value, err := singleKey(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid junction")
	}
	kind, ok := junctionKindByName(key)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "unknown junction %q", key)
	}

	switch kind {
	case KindParachain:
		n, err := parseUint64(value)
		if err != nil {
			return nil, err
		}
		if n > 1<<32-1 {
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "parachain id %d out of range", n)
		}
		return Parachain(n), nil
	case KindPalletInstance:
		n, err := parseUint64(value)
		if err != nil {
			return nil, err
		}
		if n > 255 {
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "pallet instance %d out of range", n)
		}
		return PalletInstance(n), nil
	case KindGeneralIndex:
		n, err := parseUint256(value)
		if err != nil {
			return nil, err
		}
		if n.Gt(maxU128) {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "general index exceeds u128")
		}
		return GeneralIndex{Index: *n}, nil
	case KindAccountID32:
		network, id, err := parseAccount(value, "id")
		if err != nil {
			return nil, err
		}
		var s string
		if err := json.Unmarshal(id, &s); err != nil || s == "" {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "AccountId32 requires an id")
		}
		j, err := NewAccountID32(network, s)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid AccountId32 id")
		}
		return j, nil
	case KindAccountKey20:
		network, key, err := parseAccount(value, "key")
		if err != nil {
			return nil, err
		}
		var s string
		if err := json.Unmarshal(key, &s); err != nil || s == "" {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "AccountKey20 requires a key")
		}
		j, err := NewAccountKey20(network, s)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid AccountKey20 key")
		}
		return j, nil
	case KindAccountIndex64:
		network, index, err := parseAccount(value, "index")
		if err != nil {
			return nil, err
		}
		n, err := parseUint64(index)
		if err != nil {
			return nil, err
		}
		return AccountIndex64{Network: network, Index: n}, nil
	case KindGeneralKey:
		return parseGeneralKey(value)
	case KindOnlyChild:
		return OnlyChild{}, nil
	case KindPlurality:
		var body map[string]json.RawMessage
		if err := json.Unmarshal(value, &body); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid plurality")
		}
		id, _ := lookupFold(body, "id")
		part, _ := lookupFold(body, "part")
		return Plurality{ID: compact(id), Part: compact(part)}, nil
	case KindGlobalConsensus:
		network, err := parseNetwork(value)
		if err != nil {
			return nil, err
		}
		if network == nil {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "GlobalConsensus requires a network")
		}
		return GlobalConsensus{Network: *network}, nil
	}
	return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "unsupported junction %s", kind)
}

func parseAccount(raw json.RawMessage, field string) (*NetworkID, json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid account junction")
	}
	value, ok := lookupFold(body, field)
	if !ok {
		return nil, nil, dErrors.Newf(dErrors.CodeInvalidLocation, "account junction is missing %s", field)
	}
	networkRaw, _ := lookupFold(body, "network")
	network, err := parseNetwork(networkRaw)
	if err != nil {
		return nil, nil, err
	}
	return network, value, nil
}

func parseGeneralKey(raw json.RawMessage) (Junction, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		b, err := decodeHex(s)
		if err != nil || len(b) > 32 {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "general key must be at most 32 hex bytes")
		}
		return GeneralKey{Data: b}, nil
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid general key")
	}
	lengthRaw, ok := lookupFold(body, "length")
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidLocation, "general key is missing length")
	}
	length, err := parseUint64(lengthRaw)
	if err != nil || length > 32 {
		return nil, dErrors.New(dErrors.CodeInvalidLocation, "general key length must be at most 32")
	}
	dataRaw, _ := lookupFold(body, "data")
	var data string
	if err := json.Unmarshal(dataRaw, &data); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidLocation, "general key data must be hex")
	}
	b, err := decodeHex(data)
	if err != nil || len(b) < int(length) {
		return nil, dErrors.New(dErrors.CodeInvalidLocation, "general key data is shorter than its length")
	}
	return GeneralKey{Data: b[:length]}, nil
}

// singleKey decodes an object that must carry exactly one key.
func singleKey(raw json.RawMessage) (string, json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, dErrors.Newf(dErrors.CodeInvalidLocation, "expected a single-key object, got %d keys", len(obj))
	}
	for k, v := range obj {
		return k, v, nil
	}
	return "", nil, nil
}

func lookupFold(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func junctionKindByName(name string) (JunctionKind, bool) {
	for i, n := range junctionNames {
		if strings.EqualFold(n, name) {
			return JunctionKind(i), true
		}
	}
	return 0, false
}

// numberText extracts the textual digits of a JSON number or string.
func numberText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", dErrors.New(dErrors.CodeInvalidLocation, "expected a number")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid number")
		}
		trimmed = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidLocation, "expected a number")
	}
	return trimmed, nil
}

func parseUint64(raw json.RawMessage) (uint64, error) {
	text, err := numberText(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeInvalidLocation, "invalid unsigned integer %q", text)
	}
	return n, nil
}

func parseUint256(raw json.RawMessage) (*uint256.Int, error) {
	text, err := numberText(raw)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		n, err := uint256.FromHex("0x" + strings.TrimLeft(text[2:], "0"))
		if err != nil {
			if strings.TrimLeft(text[2:], "0") == "" {
				return uint256.NewInt(0), nil
			}
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "invalid hex integer %q", text)
		}
		return n, nil
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "invalid unsigned integer %q", text)
		}
	}
	n, err := uint256.FromDecimal(text)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "invalid unsigned integer %q", text)
	}
	return n, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

func compact(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
