package xcm

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	dErrors "xcmkit/pkg/domain-errors"
)

var maxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// Amount is a fungible quantity bounded by u128.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an Amount for n.
func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// ParseAmount parses an unsigned decimal string. Signs, separators and values
// above u128 are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Amount{}, dErrors.Newf(dErrors.CodeInvalidInput, "amount %q is not an unsigned decimal integer", s)
		}
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		digits = "0"
	}
	if len(digits) > 39 {
		return Amount{}, dErrors.Newf(dErrors.CodeInvalidInput, "amount %q exceeds u128", s)
	}
	n, err := uint256.FromDecimal(digits)
	if err != nil {
		return Amount{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid amount")
	}
	if n.Gt(maxU128) {
		return Amount{}, dErrors.Newf(dErrors.CodeInvalidInput, "amount %q exceeds u128", s)
	}
	return Amount{v: *n}, nil
}

// String renders the decimal value.
func (a Amount) String() string {
	return a.v.Dec()
}

// Cmp compares two amounts numerically.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Big returns the amount as a big.Int for codecs that expect one.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}
