// Copyright 2024 The starkbind Authors
// This file is part of the starkbind library.
//
// The starkbind library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The starkbind library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the starkbind library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// FeltLength is the expected length of a big-endian encoded felt.
const FeltLength = fp.Bytes

var (
	// ErrFeltOverflow is returned when a value does not fit below the field modulus.
	ErrFeltOverflow = errors.New("value exceeds field modulus")

	// ErrInvalidHex is returned when a felt string is not valid hexadecimal.
	ErrInvalidHex = errors.New("invalid hex string")

	feltModulus = fp.Modulus()
	feltHalf    = new(big.Int).Rsh(feltModulus, 1)
)

// Felt is an element of the Starknet base field, the integers modulo
// p = 2^251 + 17*2^192 + 1. It is the unit of every call argument, return
// value, event key and event datum on the chain.
type Felt struct {
	val fp.Element
}

// FeltModulus returns a copy of the field modulus.
func FeltModulus() *big.Int { return new(big.Int).Set(feltModulus) }

// FeltFromUint64 returns the felt holding v.
func FeltFromUint64(v uint64) Felt {
	var f Felt
	f.val.SetUint64(v)
	return f
}

// FeltFromBig converts b into a felt. Negative values and values not below the
// modulus are rejected rather than reduced.
func FeltFromBig(b *big.Int) (Felt, error) {
	if b.Sign() < 0 || b.Cmp(feltModulus) >= 0 {
		return Felt{}, fmt.Errorf("%w: %s", ErrFeltOverflow, b)
	}
	var f Felt
	f.val.SetBigInt(b)
	return f, nil
}

// FeltFromBytes interprets b as a big-endian unsigned integer.
func FeltFromBytes(b []byte) (Felt, error) {
	if len(b) > FeltLength {
		return Felt{}, fmt.Errorf("%w: %d bytes", ErrFeltOverflow, len(b))
	}
	return FeltFromBig(new(big.Int).SetBytes(b))
}

// HexToFelt parses a 0x-prefixed (or bare) hexadecimal string.
func HexToFelt(s string) (Felt, error) {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s) == 0 || !isHex(s) {
		return Felt{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	b, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Felt{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return FeltFromBig(b)
}

// MustHexToFelt is like HexToFelt but panics on malformed input. It is meant
// for package level constants such as precomputed selectors.
func MustHexToFelt(s string) Felt {
	f, err := HexToFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Big returns the felt as a non-negative big integer.
func (f Felt) Big() *big.Int {
	return f.val.BigInt(new(big.Int))
}

// Bytes returns the 32 byte big-endian encoding of the felt.
func (f Felt) Bytes() [FeltLength]byte {
	var out [FeltLength]byte
	f.Big().FillBytes(out[:])
	return out
}

// Hex returns the minimal 0x-prefixed hexadecimal form, "0x0" for zero.
func (f Felt) Hex() string {
	return "0x" + f.Big().Text(16)
}

// String implements fmt.Stringer.
func (f Felt) String() string {
	return f.Hex()
}

// IsZero reports whether the felt is zero.
func (f Felt) IsZero() bool {
	return f.val.IsZero()
}

// Equal reports whether f and o hold the same field element.
func (f Felt) Equal(o Felt) bool {
	return f.val.Equal(&o.val)
}

// Uint64 returns the felt as a uint64 and whether it fit.
func (f Felt) Uint64() (uint64, bool) {
	b := f.Big()
	if !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}

// Neg returns the additive inverse p-f.
func (f Felt) Neg() Felt {
	var r Felt
	r.val.Neg(&f.val)
	return r
}

// Signed interprets the felt as a signed integer: values above p/2 are the
// negative numbers f-p.
func (f Felt) Signed() *big.Int {
	b := f.Big()
	if b.Cmp(feltHalf) > 0 {
		b.Sub(b, feltModulus)
	}
	return b
}

// FeltFromSigned encodes v, mapping negative values to p-|v|.
func FeltFromSigned(v *big.Int) (Felt, error) {
	if v.Sign() >= 0 {
		return FeltFromBig(v)
	}
	abs := new(big.Int).Neg(v)
	if abs.Cmp(feltHalf) > 0 {
		return Felt{}, fmt.Errorf("%w: %s", ErrFeltOverflow, v)
	}
	f, err := FeltFromBig(abs)
	if err != nil {
		return Felt{}, err
	}
	return f.Neg(), nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Felt) UnmarshalText(input []byte) error {
	v, err := HexToFelt(string(input))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Format implements fmt.Formatter, printing hex for %s, %v, %x and %X.
func (f Felt) Format(s fmt.State, c rune) {
	switch c {
	case 'x':
		fmt.Fprint(s, f.Big().Text(16))
	case 'X':
		fmt.Fprintf(s, "%X", f.Big())
	case 'd':
		fmt.Fprint(s, f.Big().String())
	default:
		fmt.Fprint(s, f.Hex())
	}
}
