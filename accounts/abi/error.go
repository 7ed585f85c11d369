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
	"errors"
	"fmt"
)

var (
	// ErrMalformedSource is returned when the input is not a recognized ABI
	// shape, an entry lacks a required field or holds an unknown value.
	ErrMalformedSource = errors.New("malformed abi source")

	// ErrConflictingDefinition is returned when a path is declared twice with
	// different shapes.
	ErrConflictingDefinition = errors.New("conflicting definition")

	// ErrUnresolvedReference is returned when a type path is neither a
	// catalogued builtin nor declared by the contract.
	ErrUnresolvedReference = errors.New("unresolved type reference")

	// ErrNameCollision is returned when two paths end up with the same Go
	// identifier.
	ErrNameCollision = errors.New("name collision")
)

// Error describes a failure while reading or naming an ABI. Kind is one of
// the sentinel errors above and is what errors.Is matches against.
type Error struct {
	Kind   error
	Path   string // offending type path, if any
	Entity string // containing struct, enum, function or interface
	Detail string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	switch {
	case e.Path != "" && e.Entity != "":
		msg += fmt.Sprintf(" (path %s, in %s)", e.Path, e.Entity)
	case e.Path != "":
		msg += fmt.Sprintf(" (path %s)", e.Path)
	case e.Entity != "":
		msg += fmt.Sprintf(" (in %s)", e.Entity)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func malformed(entity string, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrMalformedSource, Entity: entity, Detail: fmt.Sprintf(format, args...)}
}

func unresolved(path, entity string) *Error {
	return &Error{Kind: ErrUnresolvedReference, Path: path, Entity: entity, Detail: "type is neither a builtin nor declared in the abi"}
}

func conflicting(path, entity, detail string) *Error {
	return &Error{Kind: ErrConflictingDefinition, Path: path, Entity: entity, Detail: detail}
}

// UnresolvedError builds the error reported when a path cannot be resolved
// within entity.
func UnresolvedError(path, entity string) error {
	return unresolved(path, entity)
}
