package xcm

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	dErrors "xcmkit/pkg/domain-errors"
)

// NetworkKind enumerates consensus systems a location can name.
type NetworkKind uint8

const (
	NetworkAny NetworkKind = iota
	NetworkByGenesis
	NetworkPolkadot
	NetworkKusama
	NetworkWestend
	NetworkRococo
	NetworkWococo
	NetworkEthereum
	NetworkBitcoinCore
	NetworkBitcoinCash
	NetworkPolkadotBulletin
)

var networkNames = map[NetworkKind]string{
	NetworkAny:              "Any",
	NetworkByGenesis:        "ByGenesis",
	NetworkPolkadot:         "Polkadot",
	NetworkKusama:           "Kusama",
	NetworkWestend:          "Westend",
	NetworkRococo:           "Rococo",
	NetworkWococo:           "Wococo",
	NetworkEthereum:         "Ethereum",
	NetworkBitcoinCore:      "BitcoinCore",
	NetworkBitcoinCash:      "BitcoinCash",
	NetworkPolkadotBulletin: "PolkadotBulletin",
}

func (k NetworkKind) String() string {
	if name, ok := networkNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NetworkKind(%d)", uint8(k))
}

// NetworkID names a consensus system. ChainID is set for Ethereum networks and
// Genesis for ByGenesis networks.
type NetworkID struct {
	Kind    NetworkKind
	ChainID uint64
	Genesis [32]byte
}

// Named returns a payload-free network id.
func Named(kind NetworkKind) NetworkID {
	return NetworkID{Kind: kind}
}

// Ethereum returns the Ethereum network with the given EVM chain id.
func Ethereum(chainID uint64) NetworkID {
	return NetworkID{Kind: NetworkEthereum, ChainID: chainID}
}

// Key is a stable textual form used in registry keys and log lines.
func (n NetworkID) Key() string {
	switch n.Kind {
	case NetworkEthereum:
		return fmt.Sprintf("Ethereum:%d", n.ChainID)
	case NetworkByGenesis:
		return "ByGenesis:0x" + hex.EncodeToString(n.Genesis[:])
	default:
		return n.Kind.String()
	}
}

// render returns the JSON shape of the network for v, or nil when the network
// is omitted at that version.
func (n NetworkID) render(v Version) (any, error) {
	switch v {
	case V2:
		switch n.Kind {
		case NetworkAny, NetworkPolkadot, NetworkKusama:
			return n.Kind.String(), nil
		}
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "network %s is not representable in XCM V2", n.Kind)
	case V5:
		switch n.Kind {
		case NetworkWestend, NetworkRococo, NetworkWococo:
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "network %s is not representable in XCM V5", n.Kind)
		}
	}
	switch n.Kind {
	case NetworkAny:
		if v == canonical {
			return n.Kind.String(), nil
		}
		return nil, nil
	case NetworkEthereum:
		return map[string]any{"Ethereum": map[string]any{"chainId": n.ChainID}}, nil
	case NetworkByGenesis:
		return map[string]any{"ByGenesis": "0x" + hex.EncodeToString(n.Genesis[:])}, nil
	default:
		return n.Kind.String(), nil
	}
}

// parseNetwork accepts a bare name ("Polkadot", "polkadot"), a single-key
// object ({"Polkadot": null}, {"Ethereum": {"chainId": 1}}) or null.
func parseNetwork(raw json.RawMessage) (*NetworkID, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		kind, ok := networkKindByName(name)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "unknown network %q", name)
		}
		if kind == NetworkEthereum || kind == NetworkByGenesis {
			return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "network %s requires a payload", kind)
		}
		return &NetworkID{Kind: kind}, nil
	}

	key, value, err := singleKey(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidLocation, "invalid network")
	}
	kind, ok := networkKindByName(key)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidLocation, "unknown network %q", key)
	}
	n := NetworkID{Kind: kind}
	switch kind {
	case NetworkEthereum:
		var payload struct {
			ChainID json.RawMessage `json:"chainId"`
		}
		if err := json.Unmarshal(value, &payload); err != nil || payload.ChainID == nil {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "ethereum network requires chainId")
		}
		id, err := parseUint64(payload.ChainID)
		if err != nil {
			return nil, err
		}
		n.ChainID = id
	case NetworkByGenesis:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "ByGenesis requires a hex genesis hash")
		}
		b, err := decodeHex(s)
		if err != nil || len(b) != 32 {
			return nil, dErrors.New(dErrors.CodeInvalidLocation, "ByGenesis requires a 32-byte genesis hash")
		}
		copy(n.Genesis[:], b)
	}
	return &n, nil
}

func networkKindByName(name string) (NetworkKind, bool) {
	for kind, n := range networkNames {
		if strings.EqualFold(n, name) {
			return kind, true
		}
	}
	return 0, false
}
