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

package abigen

import (
	"fmt"
	"strings"

	"github.com/starkbind/starkbind/accounts/abi"
)

// scalar describes how a catalogued non-generic type is bound: its Go type
// and the name of the Encoder and Decoder methods serializing it.
type scalar struct {
	goType string
	method string
}

var scalars = map[string]scalar{
	abi.FeltPath:            {"common.Felt", "Felt"},
	abi.Felt252Path:         {"common.Felt", "Felt"},
	abi.BoolPath:            {"bool", "Bool"},
	abi.U8Path:              {"uint8", "Uint8"},
	abi.U16Path:             {"uint16", "Uint16"},
	abi.U32Path:             {"uint32", "Uint32"},
	abi.U64Path:             {"uint64", "Uint64"},
	abi.U128Path:            {"*big.Int", "Uint128"},
	abi.UsizePath:           {"uint32", "Uint32"},
	abi.I8Path:              {"int8", "Int8"},
	abi.I16Path:             {"int16", "Int16"},
	abi.I32Path:             {"int32", "Int32"},
	abi.I64Path:             {"int64", "Int64"},
	abi.I128Path:            {"*big.Int", "Int128"},
	abi.ContractAddressPath: {"common.Address", "Address"},
	abi.ClassHashPath:       {"common.ClassHash", "ClassHash"},
	abi.Bytes31Path:         {"common.Bytes31", "Bytes31"},
	abi.U256Path:            {"*uint256.Int", "U256"},
	abi.ByteArrayPath:       {"string", "ByteArray"},
	abi.EthAddressPath:      {"common.EthAddress", "EthAddress"},
}

// binder projects Cairo types onto Go types and the code serializing them.
// Every method fails with an unresolved reference error on a path that is
// neither catalogued nor declared.
type binder struct {
	abi       *abi.ABI
	namer     *abi.Namer
	selectors string // package level variable holding the contract selectors
}

func (b *binder) named(t abi.Type, entity string) (string, error) {
	name, err := b.namer.Name(t.Path)
	if err != nil {
		return "", abi.UnresolvedError(t.Path, entity)
	}
	return name, nil
}

// cairoType renders t in Cairo syntax with every contract declared type
// replaced by its Go name, so that aliases apply to generated comments too.
func (b *binder) cairoType(t *abi.Type) string {
	switch t.T {
	case abi.StructTy, abi.EnumTy:
		if name, err := b.namer.Name(t.Path); err == nil {
			return name
		}
	case abi.ArrayTy:
		return t.Path + "::<" + b.cairoType(t.Elem) + ">"
	case abi.GenericTy:
		if t.Path != abi.BoundedIntPath {
			return t.Path + "::<" + b.cairoTypes(t.Args) + ">"
		}
	case abi.TupleTy:
		if len(t.Args) == 1 {
			return "(" + b.cairoType(t.Args[0]) + ",)"
		}
		return "(" + b.cairoTypes(t.Args) + ")"
	}
	return t.String()
}

func (b *binder) cairoTypes(ts []*abi.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = b.cairoType(t)
	}
	return strings.Join(names, ", ")
}

// signature renders the Cairo signature of fn through cairoType.
func (b *binder) signature(fn *abi.Function) string {
	inputs := make([]string, len(fn.Inputs))
	for i := range fn.Inputs {
		inputs[i] = fn.Inputs[i].Name + ": " + b.cairoType(&fn.Inputs[i].Type)
	}
	sig := fmt.Sprintf("fn %s(%s)", fn.Name, strings.Join(inputs, ", "))
	switch len(fn.Outputs) {
	case 0:
	case 1:
		sig += " -> " + b.cairoType(&fn.Outputs[0])
	default:
		outputs := make([]string, len(fn.Outputs))
		for i := range fn.Outputs {
			outputs[i] = b.cairoType(&fn.Outputs[i])
		}
		sig += " -> (" + strings.Join(outputs, ", ") + ")"
	}
	return sig + " [" + fn.StateMutability.String() + "]"
}

// goType returns the Go type a Cairo type is bound to.
func (b *binder) goType(t abi.Type, entity string) (string, error) {
	switch t.T {
	case abi.BasicTy, abi.CompositeTy:
		if s, ok := scalars[t.Path]; ok {
			return s.goType, nil
		}
	case abi.ArrayTy:
		elem, err := b.goType(*t.Elem, entity)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case abi.GenericTy:
		return b.goGeneric(t, entity)
	case abi.TupleTy:
		fields := make([]string, len(t.Args))
		for i, arg := range t.Args {
			typ, err := b.goType(*arg, entity)
			if err != nil {
				return "", err
			}
			fields[i] = fmt.Sprintf("F%d %s", i, typ)
		}
		return "struct{ " + strings.Join(fields, "; ") + " }", nil
	case abi.UnitTy:
		return "struct{}", nil
	case abi.StructTy, abi.EnumTy:
		return b.named(t, entity)
	}
	return "", abi.UnresolvedError(t.String(), entity)
}

func (b *binder) goGeneric(t abi.Type, entity string) (string, error) {
	switch t.Path {
	case abi.BoundedIntPath:
		return "*big.Int", nil
	case abi.NonZeroPath:
		return b.goType(*t.Args[0], entity)
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		typ, err := b.goType(*arg, entity)
		if err != nil {
			return "", err
		}
		args[i] = typ
	}
	switch t.Path {
	case abi.OptionPath:
		return "bind.Option[" + args[0] + "]", nil
	case abi.ResultPath:
		return "bind.Result[" + args[0] + ", " + args[1] + "]", nil
	}
	return "", abi.UnresolvedError(t.String(), entity)
}

// encodeFunc returns a Go expression of type func(*bind.Encoder, T)
// serializing the Go form of t.
func (b *binder) encodeFunc(t abi.Type, entity string) (string, error) {
	switch t.T {
	case abi.BasicTy, abi.CompositeTy:
		if s, ok := scalars[t.Path]; ok {
			return "(*bind.Encoder)." + s.method, nil
		}
	case abi.ArrayTy:
		elem, err := b.encodeFunc(*t.Elem, entity)
		if err != nil {
			return "", err
		}
		return "bind.ArrayEncoder(" + elem + ")", nil
	case abi.GenericTy:
		switch t.Path {
		case abi.BoundedIntPath:
			return fmt.Sprintf("bind.BoundedIntEncoder(%q, %q)", t.Bounds[0].String(), t.Bounds[1].String()), nil
		case abi.NonZeroPath:
			return b.encodeFunc(*t.Args[0], entity)
		case abi.OptionPath:
			elem, err := b.encodeFunc(*t.Args[0], entity)
			if err != nil {
				return "", err
			}
			return "bind.OptionEncoder(" + elem + ")", nil
		case abi.ResultPath:
			ok, err := b.encodeFunc(*t.Args[0], entity)
			if err != nil {
				return "", err
			}
			fail, err := b.encodeFunc(*t.Args[1], entity)
			if err != nil {
				return "", err
			}
			return "bind.ResultEncoder(" + ok + ", " + fail + ")", nil
		}
	case abi.TupleTy:
		typ, err := b.goType(t, entity)
		if err != nil {
			return "", err
		}
		stmts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			if stmts[i], err = b.encodeStmt(*arg, entity, "e", fmt.Sprintf("v.F%d", i)); err != nil {
				return "", err
			}
		}
		return "func(e *bind.Encoder, v " + typ + ") {\n" + strings.Join(stmts, "\n") + "\n}", nil
	case abi.UnitTy:
		return "func(*bind.Encoder, struct{}) {}", nil
	case abi.StructTy, abi.EnumTy:
		name, err := b.named(t, entity)
		if err != nil {
			return "", err
		}
		return "bind.ValueEncoder[" + name + "]()", nil
	}
	return "", abi.UnresolvedError(t.String(), entity)
}

// decodeFunc returns a Go expression of type func(*bind.Decoder) (T, error)
// deserializing the Go form of t.
func (b *binder) decodeFunc(t abi.Type, entity string) (string, error) {
	switch t.T {
	case abi.BasicTy, abi.CompositeTy:
		if s, ok := scalars[t.Path]; ok {
			return "(*bind.Decoder)." + s.method, nil
		}
	case abi.ArrayTy:
		elem, err := b.decodeFunc(*t.Elem, entity)
		if err != nil {
			return "", err
		}
		return "bind.ArrayDecoder(" + elem + ")", nil
	case abi.GenericTy:
		switch t.Path {
		case abi.BoundedIntPath:
			return fmt.Sprintf("bind.BoundedIntDecoder(%q, %q)", t.Bounds[0].String(), t.Bounds[1].String()), nil
		case abi.NonZeroPath:
			return b.decodeFunc(*t.Args[0], entity)
		case abi.OptionPath:
			elem, err := b.decodeFunc(*t.Args[0], entity)
			if err != nil {
				return "", err
			}
			return "bind.OptionDecoder(" + elem + ")", nil
		case abi.ResultPath:
			ok, err := b.decodeFunc(*t.Args[0], entity)
			if err != nil {
				return "", err
			}
			fail, err := b.decodeFunc(*t.Args[1], entity)
			if err != nil {
				return "", err
			}
			return "bind.ResultDecoder(" + ok + ", " + fail + ")", nil
		}
	case abi.TupleTy:
		typ, err := b.goType(t, entity)
		if err != nil {
			return "", err
		}
		stmts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			call, err := b.decodeCall(*arg, entity, "d")
			if err != nil {
				return "", err
			}
			stmts[i] = fmt.Sprintf("if v.F%d, err = %s; err != nil {\nreturn\n}", i, call)
		}
		return "func(d *bind.Decoder) (v " + typ + ", err error) {\n" + strings.Join(stmts, "\n") + "\nreturn\n}", nil
	case abi.UnitTy:
		return "func(*bind.Decoder) (struct{}, error) { return struct{}{}, nil }", nil
	case abi.StructTy, abi.EnumTy:
		name, err := b.named(t, entity)
		if err != nil {
			return "", err
		}
		return "bind.ValueDecoder[" + name + "]()", nil
	}
	return "", abi.UnresolvedError(t.String(), entity)
}

// encodeStmt returns a statement appending the value of the Go expression
// val to the encoder named enc.
func (b *binder) encodeStmt(t abi.Type, entity, enc, val string) (string, error) {
	if s, ok := b.scalar(t); ok {
		return fmt.Sprintf("%s.%s(%s)", enc, s.method, val), nil
	}
	if t.T == abi.StructTy || t.T == abi.EnumTy {
		if _, err := b.named(t, entity); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.EncodeCairo(%s)", val, enc), nil
	}
	fn, err := b.encodeFunc(t, entity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s, %s)", fn, enc, val), nil
}

// decodeCall returns an expression reading a value of t from the decoder
// named dec. It evaluates to the value and an error.
func (b *binder) decodeCall(t abi.Type, entity, dec string) (string, error) {
	if s, ok := b.scalar(t); ok {
		return fmt.Sprintf("%s.%s()", dec, s.method), nil
	}
	fn, err := b.decodeFunc(t, entity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", fn, dec), nil
}

// scalar resolves t, looking through NonZero, to a catalogued scalar.
func (b *binder) scalar(t abi.Type) (scalar, bool) {
	for t.T == abi.GenericTy && t.Path == abi.NonZeroPath {
		t = *t.Args[0]
	}
	if t.T != abi.BasicTy && t.T != abi.CompositeTy {
		return scalar{}, false
	}
	s, ok := scalars[t.Path]
	return s, ok
}
