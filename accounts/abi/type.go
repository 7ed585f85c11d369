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
	"math/big"
	"regexp"
	"strings"
)

// Type enumerator
const (
	BasicTy byte = iota
	ArrayTy
	GenericTy
	CompositeTy
	TupleTy
	UnitTy
	StructTy
	EnumTy
	UserTy // declared by the contract, not yet resolved to a struct or enum
)

// maxTypeDepth bounds the nesting of generic, array and tuple arguments.
const maxTypeDepth = 64

var (
	// pathRegex matches a fully-qualified Cairo path, e.g. core::integer::u32.
	pathRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z0-9_]+)*$`)
)

// Type is the reflection of a Cairo type reference.
type Type struct {
	T byte // Our own type checking

	// Path is the base path with generic arguments stripped. For contract
	// declared types it is the full canonical name, since every instantiation
	// of a user generic is declared separately.
	Path string

	Elem   *Type       // element of an ArrayTy
	Args   []*Type     // arguments of a GenericTy, elements of a TupleTy
	Span   bool        // ArrayTy declared as a span rather than an array
	Bounds [2]*big.Int // inclusive range of a bounded integer

	stringKind string // holds the canonical string for signatures and lookups
}

// NewType parses a Cairo type string such as
// core::array::Span::<core::option::Option::<core::felt252>>.
func NewType(t string) (Type, error) {
	typ, err := parseType(t, 0)
	if err != nil {
		return Type{}, err
	}
	return *typ, nil
}

func parseType(raw string, depth int) (*Type, error) {
	if depth > maxTypeDepth {
		return nil, malformed("", "type nesting exceeds %d levels", maxTypeDepth)
	}
	// Snapshots (@T) share the layout of the type they point at.
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
	if s == "" {
		return nil, malformed("", "empty type")
	}
	if s[0] == '(' {
		return parseTuple(s, depth)
	}
	base, args, err := splitGeneric(s)
	if err != nil {
		return nil, err
	}
	if !pathRegex.MatchString(base) {
		return nil, malformed("", "invalid type path %q", s)
	}
	switch Classify(base) {
	case CategoryBasic, CategoryComposite:
		if args != nil {
			return nil, malformed("", "%s takes no type arguments", base)
		}
		typ := &Type{T: BasicTy, Path: base, stringKind: base}
		if Classify(base) == CategoryComposite {
			typ.T = CompositeTy
		}
		return typ, nil

	case CategoryArray:
		if len(args) != 1 {
			return nil, malformed("", "%s expects 1 type argument, got %d", base, len(args))
		}
		elem, err := parseType(args[0], depth+1)
		if err != nil {
			return nil, err
		}
		return &Type{
			T:          ArrayTy,
			Path:       base,
			Elem:       elem,
			Span:       base == SpanPath,
			stringKind: base + "::<" + elem.String() + ">",
		}, nil

	case CategoryGeneric:
		arity, _ := GenericArity(base)
		if len(args) != arity {
			return nil, malformed("", "%s expects %d type arguments, got %d", base, arity, len(args))
		}
		if base == BoundedIntPath {
			return parseBoundedInt(args)
		}
		typ := &Type{T: GenericTy, Path: base}
		names := make([]string, len(args))
		for i, arg := range args {
			elem, err := parseType(arg, depth+1)
			if err != nil {
				return nil, err
			}
			typ.Args = append(typ.Args, elem)
			names[i] = elem.String()
		}
		typ.stringKind = base + "::<" + strings.Join(names, ", ") + ">"
		return typ, nil

	default:
		name := base
		if args != nil {
			names := make([]string, len(args))
			for i, arg := range args {
				elem, err := parseType(arg, depth+1)
				if err != nil {
					return nil, err
				}
				names[i] = elem.String()
			}
			name = base + "::<" + strings.Join(names, ", ") + ">"
		}
		return &Type{T: UserTy, Path: name, stringKind: name}, nil
	}
}

func parseTuple(s string, depth int) (*Type, error) {
	if s[len(s)-1] != ')' {
		return nil, malformed("", "unbalanced tuple %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return &Type{T: UnitTy, Path: UnitPath, stringKind: UnitPath}, nil
	}
	elems, err := splitTopLevel(inner)
	if err != nil {
		return nil, err
	}
	typ := &Type{T: TupleTy}
	names := make([]string, len(elems))
	for i, elem := range elems {
		et, err := parseType(elem, depth+1)
		if err != nil {
			return nil, err
		}
		typ.Args = append(typ.Args, et)
		names[i] = et.String()
	}
	typ.stringKind = "(" + strings.Join(names, ", ") + ")"
	if len(names) == 1 {
		typ.stringKind = "(" + names[0] + ",)"
	}
	typ.Path = typ.stringKind
	return typ, nil
}

func parseBoundedInt(args []string) (*Type, error) {
	typ := &Type{T: GenericTy, Path: BoundedIntPath}
	for i, arg := range args {
		v, ok := parseBound(strings.TrimSpace(arg))
		if !ok {
			return nil, malformed("", "bounded int limit %q is not an integer literal", strings.TrimSpace(arg))
		}
		typ.Bounds[i] = v
	}
	if typ.Bounds[0].Cmp(typ.Bounds[1]) > 0 {
		return nil, malformed("", "bounded int range [%s, %s] is empty", typ.Bounds[0], typ.Bounds[1])
	}
	typ.stringKind = fmt.Sprintf("%s::<%s, %s>", BoundedIntPath, typ.Bounds[0], typ.Bounds[1])
	return typ, nil
}

// parseBound parses a bounded int limit, a decimal or 0x-prefixed hex integer
// with an optional minus sign.
func parseBound(s string) (*big.Int, bool) {
	digits, neg := strings.CutPrefix(s, "-")
	base := 10
	if hex, ok := strings.CutPrefix(digits, "0x"); ok {
		digits, base = hex, 16
	} else if hex, ok := strings.CutPrefix(digits, "0X"); ok {
		digits, base = hex, 16
	}
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return nil, false
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, false
	}
	if neg {
		v.Neg(v)
	}
	return v, true
}

// splitGeneric separates a path from its generic argument list. Both the
// turbofish form base::<a, b> and the bare form base<a, b> are accepted.
func splitGeneric(s string) (string, []string, error) {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		if strings.ContainsAny(s, "<>,()") {
			return "", nil, malformed("", "invalid type path %q", s)
		}
		return s, nil, nil
	}
	if s[len(s)-1] != '>' {
		return "", nil, malformed("", "unbalanced generic arguments in %q", s)
	}
	base := strings.TrimSuffix(strings.TrimSpace(s[:open]), "::")
	args, err := splitTopLevel(s[open+1 : len(s)-1])
	if err != nil {
		return "", nil, err
	}
	return base, args, nil
}

// splitTopLevel splits s at the commas that are not nested inside angle
// brackets or parentheses. A single trailing comma is dropped.
func splitTopLevel(s string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
			if depth < 0 {
				return nil, malformed("", "unbalanced brackets in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, malformed("", "unbalanced brackets in %q", s)
	}
	if last := s[start:]; strings.TrimSpace(last) != "" || len(parts) == 0 {
		parts = append(parts, last)
	}
	return parts, nil
}

// String implements Stringer.
func (t Type) String() string {
	return t.stringKind
}

// Category returns the catalogue category of the type's path. Tuples, the
// unit type and contract declared types are unclassified.
func (t Type) Category() Category {
	switch t.T {
	case BasicTy, ArrayTy, GenericTy, CompositeTy:
		return Classify(t.Path)
	default:
		return CategoryUnclassified
	}
}

// IsUserDefined reports whether the type refers to a struct or enum declared
// by the contract.
func (t Type) IsUserDefined() bool {
	return t.T == StructTy || t.T == EnumTy || t.T == UserTy
}

// Walk calls fn on t and then on every type nested inside it, depth first.
func (t *Type) Walk(fn func(*Type) error) error {
	if err := fn(t); err != nil {
		return err
	}
	if t.Elem != nil {
		if err := t.Elem.Walk(fn); err != nil {
			return err
		}
	}
	for _, arg := range t.Args {
		if err := arg.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// equal reports whether two types render to the same canonical string.
func (t Type) equal(o Type) bool {
	return t.stringKind == o.stringKind
}
