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

package bind

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/starkbind/starkbind/common"
)

var (
	// ErrShortInput is returned when a decoder runs out of felts.
	ErrShortInput = errors.New("serialized input too short")

	// ErrOverflow is returned when a value does not fit the Cairo type it is
	// encoded as or decoded into.
	ErrOverflow = errors.New("value out of range")
)

// InvalidVariantError is returned when a decoded enum discriminant does not
// select any variant of the enum.
type InvalidVariantError struct {
	Type  string
	Index common.Felt
}

func (e *InvalidVariantError) Error() string {
	return fmt.Sprintf("invalid variant index %d for %s", e.Index, e.Type)
}

// bytes31Length is the payload of a full ByteArray word.
const bytes31Length = common.Bytes31Length

var (
	big1       = big.NewInt(1)
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big1, 128), big1)
	feltZero   = common.Felt{}
	feltOne    = common.FeltFromUint64(1)
)

// fitsUnsigned reports whether 0 <= v < 2^bits.
func fitsUnsigned(v *big.Int, bits int) bool {
	return v.Sign() >= 0 && v.BitLen() <= bits
}

// fitsSigned reports whether -2^(bits-1) <= v < 2^(bits-1).
func fitsSigned(v *big.Int, bits int) bool {
	if v.Sign() >= 0 {
		return v.BitLen() <= bits-1
	}
	abs := new(big.Int).Neg(v)
	return abs.Sub(abs, big1).BitLen() <= bits-1
}

// Encoder serializes values into felts in the layout the Cairo Serde trait
// produces. The first failure is sticky: later writes are ignored and the
// error is reported by Felts.
type Encoder struct {
	felts []common.Felt
	err   error
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return new(Encoder)
}

// Felts returns the serialized felts, or the first error hit while encoding.
func (e *Encoder) Felts() ([]common.Felt, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.felts, nil
}

// Err returns the first error hit while encoding.
func (e *Encoder) Err() error {
	return e.err
}

// Fail records err unless an earlier error is already set.
func (e *Encoder) Fail(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

// Felt appends a raw felt.
func (e *Encoder) Felt(v common.Felt) {
	if e.err == nil {
		e.felts = append(e.felts, v)
	}
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.Felt(feltOne)
	} else {
		e.Felt(feltZero)
	}
}

func (e *Encoder) Uint8(v uint8)   { e.Felt(common.FeltFromUint64(uint64(v))) }
func (e *Encoder) Uint16(v uint16) { e.Felt(common.FeltFromUint64(uint64(v))) }
func (e *Encoder) Uint32(v uint32) { e.Felt(common.FeltFromUint64(uint64(v))) }
func (e *Encoder) Uint64(v uint64) { e.Felt(common.FeltFromUint64(v)) }

// Uint128 appends a u128. Nil encodes as zero.
func (e *Encoder) Uint128(v *big.Int) {
	if v == nil {
		e.Felt(feltZero)
		return
	}
	if !fitsUnsigned(v, 128) {
		e.Fail(fmt.Errorf("%w: %s does not fit u128", ErrOverflow, v))
		return
	}
	f, err := common.FeltFromBig(v)
	if err != nil {
		e.Fail(err)
		return
	}
	e.Felt(f)
}

func (e *Encoder) Int8(v int8)   { e.Int64(int64(v)) }
func (e *Encoder) Int16(v int16) { e.Int64(int64(v)) }
func (e *Encoder) Int32(v int32) { e.Int64(int64(v)) }

// Int64 appends a signed integer, negative values as p-|v|.
func (e *Encoder) Int64(v int64) {
	e.signed(big.NewInt(v))
}

// Int128 appends an i128. Nil encodes as zero.
func (e *Encoder) Int128(v *big.Int) {
	if v == nil {
		e.Felt(feltZero)
		return
	}
	if !fitsSigned(v, 128) {
		e.Fail(fmt.Errorf("%w: %s does not fit i128", ErrOverflow, v))
		return
	}
	e.signed(v)
}

func (e *Encoder) signed(v *big.Int) {
	f, err := common.FeltFromSigned(v)
	if err != nil {
		e.Fail(err)
		return
	}
	e.Felt(f)
}

func (e *Encoder) Address(v common.Address)     { e.Felt(v.Felt) }
func (e *Encoder) ClassHash(v common.ClassHash) { e.Felt(v.Felt) }
func (e *Encoder) Bytes31(v common.Bytes31)     { e.Felt(v.Felt()) }
func (e *Encoder) EthAddress(v common.EthAddress) {
	e.Felt(v.Felt())
}

// U256 appends a u256 as its low and high 128 bit halves. Nil encodes as zero.
func (e *Encoder) U256(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	raw := v.Bytes32()
	high, _ := common.FeltFromBytes(raw[:16])
	low, _ := common.FeltFromBytes(raw[16:])
	e.Felt(low)
	e.Felt(high)
}

// ByteArray appends s as the number of full 31 byte words, the words, the
// pending word and the pending word length.
func (e *Encoder) ByteArray(s string) {
	data := []byte(s)
	full := len(data) / bytes31Length
	e.Len(full)
	for i := 0; i < full; i++ {
		e.Bytes31(common.BytesToBytes31(data[i*bytes31Length : (i+1)*bytes31Length]))
	}
	pending := data[full*bytes31Length:]
	e.Bytes31(common.BytesToBytes31(pending))
	e.Uint32(uint32(len(pending)))
}

// Len appends an array length.
func (e *Encoder) Len(n int) {
	e.Felt(common.FeltFromUint64(uint64(n)))
}

// Variant appends an enum discriminant.
func (e *Encoder) Variant(index int) {
	e.Felt(common.FeltFromUint64(uint64(index)))
}

// BoundedInt appends v after checking lo <= v <= hi.
func (e *Encoder) BoundedInt(v, lo, hi *big.Int) {
	if v == nil {
		v = new(big.Int)
	}
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		e.Fail(fmt.Errorf("%w: %s outside [%s, %s]", ErrOverflow, v, lo, hi))
		return
	}
	e.signed(v)
}

// Decoder reads values out of serialized felts.
type Decoder struct {
	felts []common.Felt
	pos   int
}

// NewDecoder returns a decoder positioned at the first felt.
func NewDecoder(felts []common.Felt) *Decoder {
	return &Decoder{felts: felts}
}

// Remaining returns the number of unread felts.
func (d *Decoder) Remaining() int {
	return len(d.felts) - d.pos
}

// Clone returns an independent decoder at the same position.
func (d *Decoder) Clone() *Decoder {
	cpy := *d
	return &cpy
}

// PeekFelt returns the next felt without consuming it.
func (d *Decoder) PeekFelt() (common.Felt, error) {
	if d.pos >= len(d.felts) {
		return common.Felt{}, ErrShortInput
	}
	return d.felts[d.pos], nil
}

// Felt consumes a raw felt.
func (d *Decoder) Felt() (common.Felt, error) {
	f, err := d.PeekFelt()
	if err != nil {
		return f, err
	}
	d.pos++
	return f, nil
}

func (d *Decoder) Bool() (bool, error) {
	f, err := d.Felt()
	if err != nil {
		return false, err
	}
	switch {
	case f.IsZero():
		return false, nil
	case f.Equal(feltOne):
		return true, nil
	default:
		return false, &InvalidVariantError{Type: "core::bool", Index: f}
	}
}

func (d *Decoder) uint(bits int) (uint64, error) {
	f, err := d.Felt()
	if err != nil {
		return 0, err
	}
	v, ok := f.Uint64()
	if !ok || (bits < 64 && v >= 1<<uint(bits)) {
		return 0, fmt.Errorf("%w: %s does not fit u%d", ErrOverflow, f, bits)
	}
	return v, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	v, err := d.uint(8)
	return uint8(v), err
}

func (d *Decoder) Uint16() (uint16, error) {
	v, err := d.uint(16)
	return uint16(v), err
}

func (d *Decoder) Uint32() (uint32, error) {
	v, err := d.uint(32)
	return uint32(v), err
}

func (d *Decoder) Uint64() (uint64, error) {
	return d.uint(64)
}

func (d *Decoder) Uint128() (*big.Int, error) {
	f, err := d.Felt()
	if err != nil {
		return nil, err
	}
	v := f.Big()
	if v.Cmp(maxUint128) > 0 {
		return nil, fmt.Errorf("%w: %s does not fit u128", ErrOverflow, f)
	}
	return v, nil
}

func (d *Decoder) signed(bits int) (*big.Int, error) {
	f, err := d.Felt()
	if err != nil {
		return nil, err
	}
	v := f.Signed()
	if !fitsSigned(v, bits) {
		return nil, fmt.Errorf("%w: %s does not fit i%d", ErrOverflow, f, bits)
	}
	return v, nil
}

func (d *Decoder) Int8() (int8, error) {
	v, err := d.signed(8)
	if err != nil {
		return 0, err
	}
	return int8(v.Int64()), nil
}

func (d *Decoder) Int16() (int16, error) {
	v, err := d.signed(16)
	if err != nil {
		return 0, err
	}
	return int16(v.Int64()), nil
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.signed(32)
	if err != nil {
		return 0, err
	}
	return int32(v.Int64()), nil
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.signed(64)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

func (d *Decoder) Int128() (*big.Int, error) {
	return d.signed(128)
}

func (d *Decoder) Address() (common.Address, error) {
	f, err := d.Felt()
	return common.Address{Felt: f}, err
}

func (d *Decoder) ClassHash() (common.ClassHash, error) {
	f, err := d.Felt()
	return common.ClassHash{Felt: f}, err
}

func (d *Decoder) Bytes31() (common.Bytes31, error) {
	f, err := d.Felt()
	if err != nil {
		return common.Bytes31{}, err
	}
	return common.Bytes31FromFelt(f)
}

func (d *Decoder) EthAddress() (common.EthAddress, error) {
	f, err := d.Felt()
	if err != nil {
		return common.EthAddress{}, err
	}
	return common.EthAddressFromFelt(f)
}

// U256 reads the low and high halves of a u256.
func (d *Decoder) U256() (*uint256.Int, error) {
	low, err := d.Uint128()
	if err != nil {
		return nil, err
	}
	high, err := d.Uint128()
	if err != nil {
		return nil, err
	}
	var raw [32]byte
	high.FillBytes(raw[:16])
	low.FillBytes(raw[16:])
	return new(uint256.Int).SetBytes32(raw[:]), nil
}

// ByteArray reads a ByteArray into a string. The bytes are not required to
// be valid UTF-8.
func (d *Decoder) ByteArray() (string, error) {
	full, err := d.Len()
	if err != nil {
		return "", err
	}
	data := make([]byte, 0, (full+1)*bytes31Length)
	for i := 0; i < full; i++ {
		word, err := d.Bytes31()
		if err != nil {
			return "", err
		}
		data = append(data, word[:]...)
	}
	pending, err := d.Bytes31()
	if err != nil {
		return "", err
	}
	n, err := d.Uint32()
	if err != nil {
		return "", err
	}
	if n >= bytes31Length {
		return "", fmt.Errorf("%w: pending word length %d", ErrOverflow, n)
	}
	for _, b := range pending[:bytes31Length-int(n)] {
		if b != 0 {
			return "", fmt.Errorf("%w: pending word exceeds %d bytes", ErrOverflow, n)
		}
	}
	return string(append(data, pending[bytes31Length-int(n):]...)), nil
}

// Len reads an array length. Lengths larger than the remaining input are
// rejected before anything is allocated.
func (d *Decoder) Len() (int, error) {
	f, err := d.Felt()
	if err != nil {
		return 0, err
	}
	n, ok := f.Uint64()
	if !ok || n > uint64(d.Remaining()) {
		return 0, fmt.Errorf("%w: length %d with %d felts left", ErrShortInput, f, d.Remaining())
	}
	return int(n), nil
}

// Variant reads the discriminant of an enum with count variants.
func (d *Decoder) Variant(typ string, count int) (int, error) {
	f, err := d.Felt()
	if err != nil {
		return 0, err
	}
	n, ok := f.Uint64()
	if !ok || n >= uint64(count) {
		return 0, &InvalidVariantError{Type: typ, Index: f}
	}
	return int(n), nil
}

// BoundedInt reads an integer and checks lo <= v <= hi. Felts are read as
// signed only if the range admits negative values.
func (d *Decoder) BoundedInt(lo, hi *big.Int) (*big.Int, error) {
	f, err := d.Felt()
	if err != nil {
		return nil, err
	}
	v := f.Big()
	if lo.Sign() < 0 {
		v = f.Signed()
	}
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		return nil, fmt.Errorf("%w: %s outside [%s, %s]", ErrOverflow, v, lo, hi)
	}
	return v, nil
}
