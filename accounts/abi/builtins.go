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

package abi

import mapset "github.com/deckarep/golang-set/v2"

// Category is the semantic class a fully-qualified Cairo type path falls into.
type Category uint8

const (
	// CategoryUnclassified paths are user-defined structs or enums.
	CategoryUnclassified Category = iota
	CategoryBasic
	CategoryArray
	CategoryGeneric
	CategoryComposite
)

func (c Category) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryArray:
		return "array"
	case CategoryGeneric:
		return "generic"
	case CategoryComposite:
		return "composite"
	default:
		return "unclassified"
	}
}

// Catalogued core library type paths.
const (
	FeltPath            = "felt"
	Felt252Path         = "core::felt252"
	BoolPath            = "core::bool"
	U8Path              = "core::integer::u8"
	U16Path             = "core::integer::u16"
	U32Path             = "core::integer::u32"
	U64Path             = "core::integer::u64"
	U128Path            = "core::integer::u128"
	UsizePath           = "core::integer::usize"
	I8Path              = "core::integer::i8"
	I16Path             = "core::integer::i16"
	I32Path             = "core::integer::i32"
	I64Path             = "core::integer::i64"
	I128Path            = "core::integer::i128"
	ContractAddressPath = "core::starknet::contract_address::ContractAddress"
	ClassHashPath       = "core::starknet::class_hash::ClassHash"
	Bytes31Path         = "core::bytes_31::bytes31"

	ArrayPath = "core::array::Array"
	SpanPath  = "core::array::Span"

	OptionPath     = "core::option::Option"
	ResultPath     = "core::result::Result"
	NonZeroPath    = "core::zeroable::NonZero"
	BoundedIntPath = "core::internal::bounded_int::BoundedInt"

	U256Path       = "core::integer::u256"
	ByteArrayPath  = "core::byte_array::ByteArray"
	EthAddressPath = "core::starknet::eth_address::EthAddress"

	// UnitPath is the empty tuple, used for payload-less enum variants.
	UnitPath = "()"
)

var (
	basicTypes = mapset.NewSet[string](
		FeltPath, Felt252Path, BoolPath,
		U8Path, U16Path, U32Path, U64Path, U128Path, UsizePath,
		I8Path, I16Path, I32Path, I64Path, I128Path,
		ContractAddressPath, ClassHashPath, Bytes31Path,
	)
	arrayTypes     = mapset.NewSet[string](ArrayPath, SpanPath)
	genericTypes   = mapset.NewSet[string](OptionPath, ResultPath, NonZeroPath, BoundedIntPath)
	compositeTypes = mapset.NewSet[string](U256Path, ByteArrayPath, EthAddressPath)

	// genericArity is the number of arguments each generic builtin takes.
	genericArity = map[string]int{
		OptionPath:     1,
		ResultPath:     2,
		NonZeroPath:    1,
		BoundedIntPath: 2,
	}
)

// Classify returns the category of a type path with its generic arguments
// stripped. Categories are checked in the order basic, array, generic,
// composite; anything else is left to the contract's own declarations.
func Classify(path string) Category {
	switch {
	case basicTypes.Contains(path):
		return CategoryBasic
	case arrayTypes.Contains(path):
		return CategoryArray
	case genericTypes.Contains(path):
		return CategoryGeneric
	case compositeTypes.Contains(path):
		return CategoryComposite
	default:
		return CategoryUnclassified
	}
}

// GenericArity returns the number of type arguments a generic builtin takes.
func GenericArity(path string) (int, bool) {
	n, ok := genericArity[path]
	return n, ok
}

// Catalogued reports whether path names a core library type that is never
// generated as a user-defined struct or enum.
func Catalogued(path string) bool {
	return Classify(path) != CategoryUnclassified
}

// CataloguedPaths returns every catalogued path of the given category.
func CataloguedPaths(c Category) []string {
	switch c {
	case CategoryBasic:
		return basicTypes.ToSlice()
	case CategoryArray:
		return arrayTypes.ToSlice()
	case CategoryGeneric:
		return genericTypes.ToSlice()
	case CategoryComposite:
		return compositeTypes.ToSlice()
	}
	return nil
}
