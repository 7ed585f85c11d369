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
	"fmt"
	"math/big"
)

// Lengths of fixed size chain values in bytes.
const (
	Bytes31Length    = 31
	EthAddressLength = 20
)

// Address is a Starknet contract address.
type Address struct{ Felt }

// HexToAddress parses a hex encoded contract address.
func HexToAddress(s string) (Address, error) {
	f, err := HexToFelt(s)
	if err != nil {
		return Address{}, err
	}
	return Address{f}, nil
}

// MustHexToAddress is like HexToAddress but panics on malformed input.
func MustHexToAddress(s string) Address {
	return Address{MustHexToFelt(s)}
}

// ClassHash identifies a declared contract class.
type ClassHash struct{ Felt }

// HexToClassHash parses a hex encoded class hash.
func HexToClassHash(s string) (ClassHash, error) {
	f, err := HexToFelt(s)
	if err != nil {
		return ClassHash{}, err
	}
	return ClassHash{f}, nil
}

// Bytes31 is the Cairo bytes31 value, a big-endian byte string that always
// fits in a single felt.
type Bytes31 [Bytes31Length]byte

// BytesToBytes31 sets b to a Bytes31, keeping the right most bytes if b is
// larger than 31 bytes.
func BytesToBytes31(b []byte) Bytes31 {
	var v Bytes31
	if len(b) > len(v) {
		b = b[len(b)-Bytes31Length:]
	}
	copy(v[Bytes31Length-len(b):], b)
	return v
}

// Bytes31FromFelt converts f, failing if it does not fit in 31 bytes.
func Bytes31FromFelt(f Felt) (Bytes31, error) {
	raw := f.Bytes()
	if raw[0] != 0 {
		return Bytes31{}, fmt.Errorf("%w: %s does not fit in bytes31", ErrFeltOverflow, f)
	}
	return BytesToBytes31(raw[1:]), nil
}

// Felt returns the felt holding b.
func (b Bytes31) Felt() Felt {
	var f Felt
	f.val.SetBigInt(new(big.Int).SetBytes(b[:]))
	return f
}

// Hex returns the 0x-prefixed hex form of b.
func (b Bytes31) Hex() string { return ToHex(b[:]) }

// String implements fmt.Stringer.
func (b Bytes31) String() string { return b.Hex() }

// EthAddress is an Ethereum address, used by L1<->L2 messaging.
type EthAddress [EthAddressLength]byte

// HexToEthAddress returns the EthAddress with byte values of s. If s is larger
// than 20 bytes, the right most bytes are kept.
func HexToEthAddress(s string) EthAddress {
	var a EthAddress
	b := FromHex(s)
	if len(b) > len(a) {
		b = b[len(b)-EthAddressLength:]
	}
	copy(a[EthAddressLength-len(b):], b)
	return a
}

// EthAddressFromFelt converts f, failing if it exceeds 160 bits.
func EthAddressFromFelt(f Felt) (EthAddress, error) {
	var a EthAddress
	raw := f.Bytes()
	for _, c := range raw[:FeltLength-EthAddressLength] {
		if c != 0 {
			return a, fmt.Errorf("%w: %s is not an eth address", ErrFeltOverflow, f)
		}
	}
	copy(a[:], raw[FeltLength-EthAddressLength:])
	return a, nil
}

// Felt returns the felt holding a.
func (a EthAddress) Felt() Felt {
	var f Felt
	f.val.SetBigInt(new(big.Int).SetBytes(a[:]))
	return f
}

// Hex returns the 0x-prefixed hex form of a.
func (a EthAddress) Hex() string { return ToHex(a[:]) }

// String implements fmt.Stringer.
func (a EthAddress) String() string { return a.Hex() }
