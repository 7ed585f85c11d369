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

// Package crypto implements the hash functions used to derive Starknet entry
// point and event selectors.
package crypto

import (
	"hash"

	"github.com/starkbind/starkbind/common"
	"golang.org/x/crypto/sha3"
)

// Entry points with these names are addressed by the zero selector.
const (
	DefaultEntryPointName   = "__default__"
	DefaultL1EntryPointName = "__l1_default__"
)

// KeccakState wraps sha3.state. In addition to the usual hash methods, it also
// supports Read to get a variable amount of data from the hash state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState creates a new KeccakState.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, 32)
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(b)
	return b
}

// StarknetKeccak returns the keccak256 digest of data truncated to its 250
// least significant bits, which always fits in a felt.
func StarknetKeccak(data ...[]byte) common.Felt {
	digest := Keccak256(data...)
	digest[0] &= 0x03
	f, err := common.FeltFromBytes(digest)
	if err != nil {
		// 250 bits are always below the modulus.
		panic(err)
	}
	return f
}

// SelectorFromName returns the entry point selector for a function, event or
// l1 handler name.
func SelectorFromName(name string) common.Felt {
	if name == DefaultEntryPointName || name == DefaultL1EntryPointName {
		return common.Felt{}
	}
	return StarknetKeccak([]byte(name))
}
