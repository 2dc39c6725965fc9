package xcm

import (
	"strings"

	dErrors "xcmkit/pkg/domain-errors"
)

// AmountKind selects how a fungible amount is rendered: Str as
// {"Fungible":"100"}, Obj as {"Fungible":{"Fungible":"100"}}.
type AmountKind uint8

const (
	AmountStr AmountKind = iota
	AmountObj
)

// ParseAmountKind accepts "str", "obj" or empty (str).
func ParseAmountKind(s string) (AmountKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "str":
		return AmountStr, nil
	case "obj":
		return AmountObj, nil
	}
	return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unknown amount kind %q", s)
}

func (k AmountKind) String() string {
	if k == AmountObj {
		return "obj"
	}
	return "str"
}

// Asset is a fungible asset: an id location and an amount.
type Asset struct {
	ID     Location
	Amount Amount
	Kind   AmountKind
}

// Canonical is the full serialization used for de-duplication.
func (a Asset) Canonical() string {
	return a.ID.Canonical() + "#" + a.Amount.String() + "#" + a.Kind.String()
}

func renderAsset(v Version, a Asset) (map[string]any, error) {
	loc, err := renderLocation(v, a.ID)
	if err != nil {
		return nil, err
	}
	var id any = loc
	if v.wrapsConcrete() {
		id = map[string]any{"Concrete": loc}
	}
	var fun any = map[string]any{"Fungible": a.Amount.String()}
	if a.Kind == AmountObj {
		fun = map[string]any{"Fungible": map[string]any{"Fungible": a.Amount.String()}}
	}
	return map[string]any{"id": id, "fun": fun}, nil
}
