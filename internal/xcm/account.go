package xcm

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	dErrors "xcmkit/pkg/domain-errors"
)

var ss58Prefix = []byte("SS58PRE")

// NewAccountID32 returns an AccountId32 junction for an SS58 address or a
// 0x-prefixed hex key. The id is stored as lowercase hex so every spelling
// of one account compares equal.
func NewAccountID32(network *NetworkID, account string) (AccountID32, error) {
	key, err := DecodeAccountID32(account)
	if err != nil {
		return AccountID32{}, err
	}
	return AccountID32{Network: network, ID: "0x" + hex.EncodeToString(key[:])}, nil
}

// NewAccountKey20 returns an AccountKey20 junction with its key in lowercase
// hex.
func NewAccountKey20(network *NetworkID, account string) (AccountKey20, error) {
	key, err := DecodeAccountKey20(account)
	if err != nil {
		return AccountKey20{}, err
	}
	return AccountKey20{Network: network, Key: "0x" + hex.EncodeToString(key[:])}, nil
}

// DecodeAccountID32 returns the 32-byte public key behind an SS58 address or
// a 0x-prefixed hex key.
func DecodeAccountID32(account string) ([32]byte, error) {
	var out [32]byte
	account = strings.TrimSpace(account)
	if hasHexPrefix(account) {
		raw, err := hex.DecodeString(account[2:])
		if err != nil || len(raw) != 32 {
			return out, dErrors.Newf(dErrors.CodeInvalidInput, "account %q is not a 32-byte hex key", account)
		}
		copy(out[:], raw)
		return out, nil
	}
	key, _, err := DecodeSS58(account)
	if err != nil {
		return out, err
	}
	if len(key) != 32 {
		return out, dErrors.Newf(dErrors.CodeInvalidInput, "account %q does not carry a 32-byte key", account)
	}
	copy(out[:], key)
	return out, nil
}

// DecodeAccountKey20 decodes a 0x-prefixed 20-byte key in either case.
func DecodeAccountKey20(account string) ([20]byte, error) {
	var out [20]byte
	account = strings.TrimSpace(account)
	if len(account) != 42 || !hasHexPrefix(account) {
		return out, dErrors.Newf(dErrors.CodeInvalidInput, "account %q is not a 20-byte hex key", account)
	}
	raw, err := hex.DecodeString(account[2:])
	if err != nil {
		return out, dErrors.Newf(dErrors.CodeInvalidInput, "account %q is not a 20-byte hex key", account)
	}
	copy(out[:], raw)
	return out, nil
}

// DecodeSS58 splits an SS58 address into its payload and network prefix after
// verifying the checksum.
func DecodeSS58(address string) ([]byte, uint16, error) {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) < 3 {
		return nil, 0, dErrors.Newf(dErrors.CodeInvalidInput, "account %q is not a valid SS58 address", address)
	}

	var prefix uint16
	prefixLen := 1
	switch {
	case raw[0] < 64:
		prefix = uint16(raw[0])
	case raw[0] < 128:
		if len(raw) < 4 {
			return nil, 0, dErrors.Newf(dErrors.CodeInvalidInput, "account %q is not a valid SS58 address", address)
		}
		lower := (raw[0]&0x3f)<<2 | raw[1]>>6
		upper := raw[1] & 0x3f
		prefix = uint16(lower) | uint16(upper)<<8
		prefixLen = 2
	default:
		return nil, 0, dErrors.Newf(dErrors.CodeInvalidInput, "account %q uses a reserved SS58 prefix", address)
	}

	body := raw[:len(raw)-2]
	checksum := raw[len(raw)-2:]
	h, _ := blake2b.New512(nil)
	h.Write(ss58Prefix)
	h.Write(body)
	if !bytes.Equal(h.Sum(nil)[:2], checksum) {
		return nil, 0, dErrors.Newf(dErrors.CodeInvalidInput, "account %q has an invalid SS58 checksum", address)
	}
	return body[prefixLen:], prefix, nil
}

func hasHexPrefix(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}
