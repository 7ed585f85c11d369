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
)

// Argument holds the name of a struct member, enum variant or function
// parameter and the corresponding type.
type Argument struct {
	Name string
	Type Type
	Kind EventMemberKind // only set on event members
}

type Arguments []Argument

// ArgumentMarshaling is the raw JSON form of a member, variant or parameter.
type ArgumentMarshaling struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
	Kind string  `json:"kind,omitempty"`
}

func newArgument(raw ArgumentMarshaling, entity string, named bool) (Argument, error) {
	if raw.Type == nil {
		return Argument{}, malformed(entity, "argument without type")
	}
	if named && raw.Name == nil {
		return Argument{}, malformed(entity, "argument of type %s without name", *raw.Type)
	}
	typ, err := NewType(*raw.Type)
	if err != nil {
		return Argument{}, withEntity(err, entity)
	}
	arg := Argument{Type: typ}
	if raw.Name != nil {
		arg.Name = *raw.Name
	}
	return arg, nil
}

func newArguments(raw []ArgumentMarshaling, entity string, named bool) (Arguments, error) {
	args := make(Arguments, 0, len(raw))
	for _, r := range raw {
		arg, err := newArgument(r, entity, named)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// Types returns the types of the arguments in declaration order.
func (arguments Arguments) Types() []Type {
	types := make([]Type, len(arguments))
	for i, arg := range arguments {
		types[i] = arg.Type
	}
	return types
}

// String renders the arguments as a comma separated name: type list.
func (arguments Arguments) String() string {
	parts := make([]string, len(arguments))
	for i, arg := range arguments {
		parts[i] = fmt.Sprintf("%s: %s", arg.Name, arg.Type)
	}
	return strings.Join(parts, ", ")
}

// equal compares names and types in order.
func (arguments Arguments) equal(other Arguments) bool {
	if len(arguments) != len(other) {
		return false
	}
	for i := range arguments {
		if arguments[i].Name != other[i].Name || !arguments[i].Type.equal(other[i].Type) {
			return false
		}
	}
	return true
}

// ToCamelCase converts an under-score string to a camel-case string
func ToCamelCase(input string) string {
	parts := strings.Split(input, "_")
	for i, s := range parts {
		if len(s) > 0 {
			parts[i] = strings.ToUpper(s[:1]) + s[1:]
		}
	}
	return strings.Join(parts, "")
}

// ResolveNameConflict returns the next available name for a given thing.
// Converting Cairo names to Go identifiers is lossy: balance_of and balanceOf
// both become BalanceOf, and enum variants or struct members may collapse the
// same way. Conflicts are resolved by adding a number suffix, e.g. if
// "BalanceOf" and "BalanceOf0" are taken, ResolveNameConflict returns
// "BalanceOf1" for input "BalanceOf".
func ResolveNameConflict(rawName string, used func(string) bool) string {
	name := rawName
	ok := used(name)
	for idx := 0; ok; idx++ {
		name = fmt.Sprintf("%s%d", rawName, idx)
		ok = used(name)
	}
	return name
}

// withEntity fills in the containing entity of a structured error.
func withEntity(err error, entity string) error {
	if e, ok := err.(*Error); ok && e.Entity == "" {
		cpy := *e
		cpy.Entity = entity
		return &cpy
	}
	return err
}
