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
	"fmt"
	"strings"

	"github.com/starkbind/starkbind/common"
	"github.com/starkbind/starkbind/crypto"
)

// StateMutability is the declared effect of a function on contract state.
type StateMutability uint8

const (
	// View functions only read state and are served by a plain call.
	View StateMutability = iota
	// External functions may change state and require a transaction.
	External
)

func (s StateMutability) String() string {
	if s == View {
		return "view"
	}
	return "external"
}

func parseStateMutability(s, entity string) (StateMutability, error) {
	switch s {
	case "view":
		return View, nil
	case "external":
		return External, nil
	case "":
		return 0, malformed(entity, "missing state_mutability")
	default:
		return 0, malformed(entity, "unknown state_mutability %q", s)
	}
}

// Function represents a callable contract entry point: a plain function, the
// constructor or an l1 handler.
//
// View functions only read contract storage and are served with a plain call
// that never creates a transaction. External functions are sent within an
// invoke transaction signed by an account.
type Function struct {
	Name            string // name as declared in Cairo, e.g. get_point
	StateMutability StateMutability
	Inputs          Arguments
	Outputs         []Type
	Interface       string      // declaring interface, empty for top level functions
	Selector        common.Felt // starknet keccak of the name

	str string // human readable signature
}

// NewFunction creates a function entry and precomputes its selector.
func NewFunction(name string, mutability StateMutability, inputs Arguments, outputs []Type) *Function {
	outs := make([]string, len(outputs))
	for i, out := range outputs {
		outs[i] = out.String()
	}
	str := fmt.Sprintf("fn %s(%s)", name, inputs)
	switch len(outs) {
	case 0:
	case 1:
		str += " -> " + outs[0]
	default:
		str += " -> (" + strings.Join(outs, ", ") + ")"
	}
	str += " [" + mutability.String() + "]"

	return &Function{
		Name:            name,
		StateMutability: mutability,
		Inputs:          inputs,
		Outputs:         outputs,
		Selector:        crypto.SelectorFromName(name),
		str:             str,
	}
}

// Sig returns the function's canonical signature, e.g.
//
//	transfer(core::starknet::contract_address::ContractAddress,core::integer::u256)
func (f *Function) Sig() string {
	types := make([]string, len(f.Inputs))
	for i, input := range f.Inputs {
		types[i] = input.Type.String()
	}
	return fmt.Sprintf("%v(%v)", f.Name, strings.Join(types, ","))
}

func (f *Function) String() string {
	return f.str
}

// IsView reports whether the function is served without a transaction.
func (f *Function) IsView() bool {
	return f.StateMutability == View
}

// sameShape reports whether two declarations describe the same entry point.
func (f *Function) sameShape(o *Function) bool {
	if f.Name != o.Name || f.StateMutability != o.StateMutability || !f.Inputs.equal(o.Inputs) {
		return false
	}
	if len(f.Outputs) != len(o.Outputs) {
		return false
	}
	for i := range f.Outputs {
		if !f.Outputs[i].equal(o.Outputs[i]) {
			return false
		}
	}
	return true
}
