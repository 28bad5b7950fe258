package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// MaxShortStringLen is the longest text that fits in a single felt.
const MaxShortStringLen = 31

var (
	ErrInvalidFelt     = errors.New("invalid felt")
	ErrShortStringSize = errors.New("short string longer than 31 bytes")
)

// Felt is a single field element as read from or written to the world.
// Values are stored in 256 bits; the zero value is the felt 0.
type Felt struct {
	n uint256.Int
}

// FeltFromUint64 returns the felt holding v.
func FeltFromUint64(v uint64) Felt {
	var f Felt
	f.n.SetUint64(v)
	return f
}

// FeltFromBytes interprets b as a big-endian integer. Only the last 32 bytes
// are kept when b is longer.
func FeltFromBytes(b []byte) Felt {
	var f Felt
	f.n.SetBytes(b)
	return f
}

// ShortString encodes s as a Cairo short string: its bytes read as a
// big-endian integer.
func ShortString(s string) (Felt, error) {
	if len(s) > MaxShortStringLen {
		return Felt{}, fmt.Errorf("%w: %q", ErrShortStringSize, s)
	}
	return FeltFromBytes([]byte(s)), nil
}

// ParseFelt parses a 0x-prefixed hex string. Leading zeros are accepted.
func ParseFelt(s string) (Felt, error) {
	t := strings.TrimSpace(s)
	if len(t) < 3 || (t[:2] != "0x" && t[:2] != "0X") {
		return Felt{}, fmt.Errorf("%w: %q", ErrInvalidFelt, s)
	}
	digits := strings.TrimLeft(t[2:], "0")
	if digits == "" {
		digits = "0"
	}
	n, err := uint256.FromHex("0x" + digits)
	if err != nil {
		return Felt{}, fmt.Errorf("%w: %q: %v", ErrInvalidFelt, s, err)
	}
	return Felt{n: *n}, nil
}

// MustParseFelt is ParseFelt for constants; it panics on malformed input.
func MustParseFelt(s string) Felt {
	f, err := ParseFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// IsZero reports whether f is the felt 0.
func (f Felt) IsZero() bool {
	return f.n.IsZero()
}

// BitLen returns the number of bits needed to represent f.
func (f Felt) BitLen() int {
	return f.n.BitLen()
}

// Uint64 returns the low 64 bits of f.
func (f Felt) Uint64() uint64 {
	return f.n.Uint64()
}

// Bytes32 returns the big-endian 32 byte form of f.
func (f Felt) Bytes32() [32]byte {
	return f.n.Bytes32()
}

// Hex returns the minimal 0x-prefixed hex form of f.
func (f Felt) Hex() string {
	return f.n.Hex()
}

func (f Felt) String() string {
	return f.Hex()
}

// MarshalJSON encodes f as a hex string.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Hex())
}

// UnmarshalJSON accepts a hex string or a plain JSON number.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseFelt(s)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	}

	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFelt, string(data))
	}
	*f = FeltFromUint64(v)
	return nil
}

// shortStringBytes returns the bytes of a short string felt without the
// leading zero padding.
func (f Felt) shortStringBytes() []byte {
	b := f.Bytes32()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// ShortStringValue is the inverse of ShortString.
func (f Felt) ShortStringValue() (string, error) {
	b := f.shortStringBytes()
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// FeltsToHex converts values to their hex strings.
func FeltsToHex(values []Felt) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Hex()
	}
	return out
}

// ParseFelts parses every hex string in values.
func ParseFelts(values []string) ([]Felt, error) {
	out := make([]Felt, len(values))
	for i, v := range values {
		f, err := ParseFelt(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
