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

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkbind/starkbind/crypto"
)

const pointABI = `[
	{"type": "struct", "name": "pkg::Point", "members": [
		{"name": "x", "type": "core::integer::u32"},
		{"name": "y", "type": "core::integer::u32"}
	]},
	{"type": "function", "name": "get_point", "inputs": [], "outputs": [{"type": "pkg::Point"}], "state_mutability": "view"}
]`

const tokenABI = `[
	{"type": "impl", "name": "TokenImpl", "interface_name": "pkg::ITokenImpl"},
	{"type": "struct", "name": "core::integer::u256", "members": [
		{"name": "low", "type": "core::integer::u128"},
		{"name": "high", "type": "core::integer::u128"}
	]},
	{"type": "enum", "name": "core::bool", "variants": [
		{"name": "False", "type": "()"},
		{"name": "True", "type": "()"}
	]},
	{"type": "struct", "name": "core::byte_array::ByteArray", "members": [
		{"name": "data", "type": "core::array::Array::<core::bytes_31::bytes31>"},
		{"name": "pending_word", "type": "core::felt252"},
		{"name": "pending_word_len", "type": "core::integer::u32"}
	]},
	{"type": "struct", "name": "core::array::Span::<core::felt252>", "members": [
		{"name": "snapshot", "type": "@core::array::Array::<core::felt252>"}
	]},
	{"type": "enum", "name": "core::option::Option::<core::integer::u64>", "variants": [
		{"name": "Some", "type": "core::integer::u64"},
		{"name": "None", "type": "()"}
	]},
	{"type": "interface", "name": "pkg::ITokenImpl", "items": [
		{"type": "function", "name": "name", "inputs": [], "outputs": [{"type": "core::byte_array::ByteArray"}], "state_mutability": "view"},
		{"type": "function", "name": "balance_of", "inputs": [{"name": "account", "type": "core::starknet::contract_address::ContractAddress"}], "outputs": [{"type": "core::integer::u256"}], "state_mutability": "view"},
		{"type": "function", "name": "transfer", "inputs": [
			{"name": "recipient", "type": "core::starknet::contract_address::ContractAddress"},
			{"name": "amount", "type": "core::integer::u256"}
		], "outputs": [{"type": "core::bool"}], "state_mutability": "external"}
	]},
	{"type": "function", "name": "mint", "inputs": [{"name": "amount", "type": "core::integer::u256"}], "outputs": [], "state_mutability": "external"},
	{"type": "constructor", "name": "constructor", "inputs": [
		{"name": "name", "type": "core::byte_array::ByteArray"},
		{"name": "owner", "type": "core::starknet::contract_address::ContractAddress"}
	]},
	{"type": "l1_handler", "name": "deposit", "inputs": [
		{"name": "from_address", "type": "core::felt252"},
		{"name": "amount", "type": "core::integer::u256"}
	], "outputs": [], "state_mutability": "external"},
	{"type": "event", "name": "pkg::Transfer", "kind": "struct", "members": [
		{"name": "from", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
		{"name": "to", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
		{"name": "value", "type": "core::integer::u256", "kind": "data"}
	]},
	{"type": "event", "name": "pkg::Event", "kind": "enum", "variants": [
		{"name": "Transfer", "type": "pkg::Transfer", "kind": "nested"}
	]}
]`

// Tests the model produced for a single struct and a view function returning it.
func TestPointModel(t *testing.T) {
	abi, err := JSON(strings.NewReader(pointABI))
	require.NoError(t, err)

	require.Len(t, abi.Structs, 1)
	point := abi.Structs[0]
	assert.Equal(t, "pkg::Point", point.Path)
	require.Len(t, point.Fields, 2)
	for i, name := range []string{"x", "y"} {
		assert.Equal(t, name, point.Fields[i].Name)
		assert.Equal(t, BasicTy, point.Fields[i].Type.T)
		assert.Equal(t, U32Path, point.Fields[i].Type.Path)
	}
	assert.Empty(t, abi.Enums)

	require.Len(t, abi.Functions, 1)
	fn := abi.Functions[0]
	assert.Equal(t, "get_point", fn.Name)
	assert.Equal(t, View, fn.StateMutability)
	assert.Empty(t, fn.Inputs)
	require.Len(t, fn.Outputs, 1)
	assert.Equal(t, StructTy, fn.Outputs[0].T)
	assert.Equal(t, "pkg::Point", fn.Outputs[0].Path)
	assert.Equal(t, crypto.SelectorFromName("get_point"), fn.Selector)
	assert.Equal(t, "fn get_point() -> pkg::Point [view]", fn.String())
}

func TestTokenModel(t *testing.T) {
	abi, err := Parse(tokenABI)
	require.NoError(t, err)

	// Catalogued declarations are never part of the model.
	if len(abi.Structs) != 1 || len(abi.Enums) != 1 {
		t.Fatalf("unexpected declarations:\n%s", spew.Sdump(abi.Structs, abi.Enums))
	}
	transfer, ok := abi.Struct("pkg::Transfer")
	require.True(t, ok)
	assert.True(t, transfer.Event)
	assert.Equal(t, []EventMemberKind{EventKey, EventKey, EventData},
		[]EventMemberKind{transfer.Fields[0].Kind, transfer.Fields[1].Kind, transfer.Fields[2].Kind})

	event, ok := abi.Enum("pkg::Event")
	require.True(t, ok)
	assert.True(t, event.Event)
	require.Len(t, event.Variants, 1)
	assert.Equal(t, EventNested, event.Variants[0].Kind)
	assert.Equal(t, StructTy, event.Variants[0].Type.T)
	assert.Equal(t, crypto.SelectorFromName("Transfer"), event.Variants[0].Selector)

	// Interface functions follow the top level ones.
	var names []string
	for _, fn := range abi.AllFunctions() {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"mint", "name", "balance_of", "transfer"}, names)
	require.Len(t, abi.Interfaces, 1)
	assert.Equal(t, "pkg::ITokenImpl", abi.Interfaces[0].Name)
	assert.Equal(t, "pkg::ITokenImpl", abi.Interfaces[0].Functions[2].Interface)

	fn, ok := abi.Function("transfer")
	require.True(t, ok)
	assert.Equal(t, External, fn.StateMutability)
	assert.Equal(t, "transfer(core::starknet::contract_address::ContractAddress,core::integer::u256)", fn.Sig())
	assert.Equal(t, BasicTy, fn.Outputs[0].T)

	require.NotNil(t, abi.Constructor)
	assert.Equal(t, "name: core::byte_array::ByteArray, owner: core::starknet::contract_address::ContractAddress", abi.Constructor.Inputs.String())
	require.Len(t, abi.L1Handlers, 1)
	assert.Equal(t, "deposit", abi.L1Handlers[0].Name)
}

func TestSourceShapes(t *testing.T) {
	embedded, err := json.Marshal(pointABI)
	require.NoError(t, err)

	for i, src := range []string{
		pointABI,
		"\n\t " + pointABI + "\n",
		`{"sierra_program": [], "abi": ` + pointABI + `}`,
		`{"contract_class_version": "0.1.0", "abi": ` + string(embedded) + `}`,
	} {
		abi, err := Parse(src)
		if err != nil {
			t.Errorf("source %d: %v", i, err)
			continue
		}
		if len(abi.Structs) != 1 || len(abi.Functions) != 1 {
			t.Errorf("source %d: unexpected model %s", i, spew.Sdump(abi))
		}
	}
}

func TestMalformedSource(t *testing.T) {
	for i, test := range []struct {
		src string
		err string
	}{
		{``, "unexpected end of JSON input"},
		{`  `, "unexpected end of JSON input"},
		{`42`, "expected an abi entry array"},
		{`"[]"`, "expected an abi entry array"},
		{`{"program": []}`, "does not hold an abi entry array"},
		{`{"abi": {"type": "function"}}`, "does not hold an abi entry array"},
		{`{"abi": "not json"}`, "does not hold an abi entry array"},
		{`[{"type": "function", "name": "f"`, "malformed abi source"},
		{`[{"type": "struct", "name": "pkg::A"}]`, "struct without members"},
		{`[{"type": "enum", "name": "pkg::A"}]`, "enum without variants"},
		{`[{"type": "struct", "members": []}]`, "entry without name"},
		{`[{"type": "struct", "name": "pkg::A", "members": [{"name": "a"}]}]`, "argument without type"},
		{`[{"type": "struct", "name": "pkg::A", "members": [{"type": "core::felt252"}]}]`, "without name"},
		{`[{"type": "function", "name": "f", "inputs": [], "state_mutability": "view"}]`, "function without outputs"},
		{`[{"type": "function", "name": "f", "inputs": [], "outputs": []}]`, "missing state_mutability"},
		{`[{"type": "function", "name": "f", "inputs": [], "outputs": [], "state_mutability": "pure"}]`, `unknown state_mutability "pure"`},
		{`[{"type": "interface", "name": "I"}]`, "interface without items"},
		{`[{"type": "interface", "name": "I", "items": [{"type": "struct", "name": "S", "members": []}]}]`, "unexpected \"struct\" item"},
		{`[{"type": "event", "name": "pkg::E", "kind": "union", "variants": []}]`, `unknown event kind "union"`},
		{`[{"type": "event", "name": "pkg::E", "kind": "struct", "members": [{"name": "a", "type": "core::felt252", "kind": "index"}]}]`, `unknown event member kind "index"`},
		{`[{"type": "event", "name": "pkg::E", "kind": "enum", "variants": [{"name": "A", "type": "pkg::E", "kind": "key"}]}]`, `unknown event member kind "key"`},
		{`[{"type": "storage", "name": "s"}]`, `unknown entry type "storage"`},
		{`[{"type": "struct", "name": "pkg::A", "members": [{"name": "a", "type": "core::option::Option::<core::felt252, core::felt252>"}]}]`, "expects 1 type arguments"},
	} {
		_, err := Parse(test.src)
		if err == nil {
			t.Errorf("test %d: expected error %q", i, test.err)
			continue
		}
		if !errors.Is(err, ErrMalformedSource) {
			t.Errorf("test %d: error %v is not a malformed source error", i, err)
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("test %d: error %q does not contain %q", i, err, test.err)
		}
	}
}

func TestMalformedSourceEntity(t *testing.T) {
	_, err := Parse(`[{"type": "struct", "name": "pkg::A", "members": [{"name": "a", "type": "pkg::"}]}]`)
	var aerr *Error
	require.True(t, errors.As(err, &aerr), "error %v", err)
	assert.Equal(t, ErrMalformedSource, aerr.Kind)
	assert.Equal(t, "struct pkg::A", aerr.Entity)
}

func TestDuplicateDeclarations(t *testing.T) {
	const point = `{"type": "struct", "name": "pkg::Point", "members": [{"name": "x", "type": "core::integer::u32"}]}`

	// Identical redeclarations collapse into one.
	abi, err := Parse(`[` + point + `,` + point + `]`)
	require.NoError(t, err)
	assert.Len(t, abi.Structs, 1)

	// Different members conflict.
	_, err = Parse(`[` + point + `, {"type": "struct", "name": "pkg::Point", "members": [{"name": "x", "type": "core::integer::u64"}]}]`)
	require.ErrorIs(t, err, ErrConflictingDefinition)
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "pkg::Point", aerr.Path)

	// So does declaring the same path as a struct and an enum.
	_, err = Parse(`[` + point + `, {"type": "enum", "name": "pkg::Point", "variants": []}]`)
	require.ErrorIs(t, err, ErrConflictingDefinition)

	// A struct and an event with the same members merge.
	abi, err = Parse(`[` + point + `, {"type": "event", "name": "pkg::Point", "kind": "struct", "members": [{"name": "x", "type": "core::integer::u32", "kind": "data"}]}]`)
	require.NoError(t, err)
	require.Len(t, abi.Structs, 1)
	assert.True(t, abi.Structs[0].Event)
	assert.Equal(t, EventData, abi.Structs[0].Fields[0].Kind)

	// Functions redeclared with another signature conflict.
	const fn = `{"type": "function", "name": "f", "inputs": [], "outputs": [], "state_mutability": "view"}`
	_, err = Parse(`[` + fn + `, {"type": "interface", "name": "I", "items": [` + fn + `]}]`)
	require.NoError(t, err)
	_, err = Parse(`[` + fn + `, {"type": "interface", "name": "I", "items": [{"type": "function", "name": "f", "inputs": [], "outputs": [], "state_mutability": "external"}]}]`)
	require.ErrorIs(t, err, ErrConflictingDefinition)
}

func TestUnresolvedReference(t *testing.T) {
	for i, test := range []struct {
		src    string
		path   string
		entity string
	}{
		{
			`[{"type": "enum", "name": "pkg::Action", "variants": [{"name": "Move", "type": "pkg::Missing"}]}]`,
			"pkg::Missing", "enum pkg::Action",
		},
		{
			`[{"type": "struct", "name": "pkg::A", "members": [{"name": "b", "type": "core::array::Array::<core::option::Option::<pkg::B>>"}]}]`,
			"pkg::B", "struct pkg::A",
		},
		{
			`[{"type": "function", "name": "f", "inputs": [{"name": "p", "type": "pkg::P"}], "outputs": [], "state_mutability": "view"}]`,
			"pkg::P", "function f",
		},
		{
			`[{"type": "interface", "name": "I", "items": [{"type": "function", "name": "g", "inputs": [], "outputs": [{"type": "(core::felt252, pkg::Q)"}], "state_mutability": "view"}]}]`,
			"pkg::Q", "function g",
		},
		{
			`[{"type": "event", "name": "pkg::Event", "kind": "enum", "variants": [{"name": "Raw", "type": "core::felt252", "kind": "nested"}]}]`,
			"core::felt252", "enum pkg::Event",
		},
	} {
		_, err := Parse(test.src)
		var aerr *Error
		if !errors.As(err, &aerr) {
			t.Errorf("test %d: expected structured error, got %v", i, err)
			continue
		}
		assert.ErrorIs(t, err, ErrUnresolvedReference, "test %d", i)
		assert.Equal(t, test.path, aerr.Path, "test %d", i)
		assert.Equal(t, test.entity, aerr.Entity, "test %d", i)
	}
}

// Tests that references may point at declarations further down the source.
func TestForwardReference(t *testing.T) {
	abi, err := Parse(`[
		{"type": "struct", "name": "pkg::Line", "members": [{"name": "a", "type": "pkg::Point"}, {"name": "b", "type": "pkg::Point"}]},
		{"type": "struct", "name": "pkg::Point", "members": [{"name": "x", "type": "core::felt252"}]}
	]`)
	require.NoError(t, err)
	assert.Equal(t, "pkg::Line", abi.Structs[0].Path)
	assert.Equal(t, StructTy, abi.Structs[0].Fields[1].Type.T)
}

// Tests that types may only refer back to themselves through an array.
func TestRecursiveContainment(t *testing.T) {
	_, err := Parse(`[
		{"type": "struct", "name": "pkg::Tree", "members": [{"name": "children", "type": "core::array::Span::<pkg::Tree>"}, {"name": "leaf", "type": "pkg::Leaf"}]},
		{"type": "enum", "name": "pkg::Leaf", "variants": [{"name": "Empty", "type": "()"}, {"name": "Trees", "type": "core::array::Array::<pkg::Tree>"}]}
	]`)
	require.NoError(t, err)

	for i, test := range []struct {
		src    string
		path   string
		entity string
	}{
		{
			`[{"type": "struct", "name": "pkg::A", "members": [{"name": "a", "type": "core::option::Option::<pkg::A>"}]}]`,
			"pkg::A", "pkg::A",
		},
		{
			`[
				{"type": "struct", "name": "pkg::A", "members": [{"name": "b", "type": "(core::felt252, pkg::B)"}]},
				{"type": "enum", "name": "pkg::B", "variants": [{"name": "Some", "type": "pkg::A"}]}
			]`,
			"pkg::A", "pkg::B",
		},
	} {
		_, err := Parse(test.src)
		var aerr *Error
		if !errors.As(err, &aerr) {
			t.Errorf("test %d: expected structured error, got %v", i, err)
			continue
		}
		assert.ErrorIs(t, err, ErrMalformedSource, "test %d", i)
		assert.Equal(t, test.path, aerr.Path, "test %d", i)
		assert.Equal(t, test.entity, aerr.Entity, "test %d", i)
	}
}
