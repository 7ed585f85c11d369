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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkbind/starkbind/common"
	"github.com/starkbind/starkbind/crypto"
)

const eventsABI = `[
	{"type": "event", "name": "pkg::Approval", "kind": "struct", "members": [
		{"name": "owner", "type": "core::starknet::contract_address::ContractAddress", "kind": "key"},
		{"name": "value", "type": "core::integer::u256", "kind": "data"}
	]},
	{"type": "event", "name": "pkg::Inner", "kind": "enum", "variants": [
		{"name": "Approval", "type": "pkg::Approval", "kind": "nested"}
	]},
	{"type": "event", "name": "pkg::Event", "kind": "enum", "variants": [
		{"name": "Approval", "type": "pkg::Approval", "kind": "nested"},
		{"name": "Inner", "type": "pkg::Inner", "kind": "flat"}
	]}
]`

func TestEventKinds(t *testing.T) {
	abi := mustParse(t, eventsABI)

	approval, ok := abi.Struct("pkg::Approval")
	require.True(t, ok)
	assert.Equal(t, "event struct pkg::Approval { owner: core::starknet::contract_address::ContractAddress, value: core::integer::u256 }", approval.String())

	event, ok := abi.Enum("pkg::Event")
	require.True(t, ok)
	require.Len(t, event.Variants, 2)
	assert.Equal(t, EventNested, event.Variants[0].Kind)
	assert.Equal(t, crypto.SelectorFromName("Approval"), event.Variants[0].Selector)
	assert.Equal(t, EventFlat, event.Variants[1].Kind)
	assert.Equal(t, EnumTy, event.Variants[1].Type.T)
	assert.True(t, event.Variants[1].Selector.Equal(common.Felt{}))
	assert.Equal(t, "event enum pkg::Event { Approval: pkg::Approval, Inner: pkg::Inner }", event.String())
}

func TestEventMerge(t *testing.T) {
	const plain = `{"type": "enum", "name": "pkg::Event", "variants": [{"name": "Approval", "type": "pkg::Approval"}, {"name": "Inner", "type": "pkg::Inner"}]}`
	abi := mustParse(t, `[`+plain+`,`+eventsABI[1:])
	event, _ := abi.Enum("pkg::Event")
	assert.True(t, event.Event)
	assert.Equal(t, EventNested, event.Variants[0].Kind)

	// Redeclaring a member with another kind conflicts.
	_, err := Parse(`[
		{"type": "event", "name": "pkg::E", "kind": "struct", "members": [{"name": "a", "type": "core::felt252", "kind": "key"}]},
		{"type": "event", "name": "pkg::E", "kind": "struct", "members": [{"name": "a", "type": "core::felt252", "kind": "data"}]}
	]`)
	assert.ErrorIs(t, err, ErrConflictingDefinition)
}

func TestEventWithoutMemberKind(t *testing.T) {
	_, err := Parse(`[{"type": "event", "name": "pkg::E", "kind": "struct", "members": [{"name": "a", "type": "core::felt252"}]}]`)
	assert.ErrorIs(t, err, ErrMalformedSource)
	assert.Contains(t, err.Error(), "event member without kind")
}
