package envelope

import (
	"fmt"
	"math/big"
	"strconv"
)

// Values wider than the foreign side's safe native integer range travel as
// decimal strings in both directions. The foreign host stores numbers as
// IEEE doubles, so anything above 2^53-1 silently loses precision unless
// stringified.
const MaxSafeInteger = 1<<53 - 1

// BigInt is an arbitrary-precision integer that crosses the boundary as a
// decimal string. Balances and other u128-scale wallet values use it.
type BigInt struct {
	big.Int
}

// NewBigInt returns a BigInt holding x.
func NewBigInt(x int64) *BigInt {
	b := &BigInt{}
	b.SetInt64(x)
	return b
}

// ParseBigInt parses a decimal string.
func ParseBigInt(s string) (*BigInt, error) {
	b := &BigInt{}
	if _, ok := b.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid decimal integer %q", s)
	}
	return b, nil
}

// MarshalJSON encodes the value as a quoted decimal string.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare integer literal.
// Bare literals are parsed from their JSON text, not through a float, so
// no width is lost either way. Exponent and fraction forms are rejected.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid decimal integer %q", s)
	}
	return nil
}

// Uint64 is a 64-bit unsigned value that crosses the boundary as a decimal
// string. Logical times and sequence numbers exceed 2^53 in practice.
type Uint64 uint64

// MarshalJSON encodes the value as a quoted decimal string.
func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare integer literal.
func (u *Uint64) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unsigned integer %q", s)
	}
	*u = Uint64(v)
	return nil
}
