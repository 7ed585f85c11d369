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
	"go/token"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/starkbind/starkbind/log"
)

// reservedFields are taken by the discriminant field and the methods of a
// generated enum.
var reservedFields = mapset.NewThreadUnsafeSet("Kind", "EncodeCairo", "DecodeCairo", "DecodeEvent")

// Namer assigns the Go identifiers of the structs and enums declared by a
// contract. Every declaration and every reference to a path is named through
// the same Namer, so an alias applies everywhere the path occurs.
type Namer struct {
	names    map[string]string   // path -> identifier
	variants map[string][]string // enum path -> variant field names
	owners   map[string]string   // identifier -> owning path or description
}

// NewNamer names every struct and enum of abi. Paths found in aliases use the
// aliased name, any other path uses its last segment with generic arguments
// stripped. Both are converted to exported camel case. Reserved identifiers
// are names the caller emits itself and that no type may take.
func NewNamer(abi *ABI, aliases map[string]string, reserved ...string) (*Namer, error) {
	n := &Namer{
		names:    make(map[string]string),
		variants: make(map[string][]string),
		owners:   make(map[string]string),
	}
	for _, name := range reserved {
		n.owners[name] = "a generated identifier"
	}
	declared := mapset.NewThreadUnsafeSet[string]()
	for _, s := range abi.Structs {
		declared.Add(s.Path)
	}
	for _, e := range abi.Enums {
		declared.Add(e.Path)
	}
	// Map iteration order is random, sort to keep the warnings stable.
	keys := maps.Keys(aliases)
	slices.Sort(keys)
	canonical := make(map[string]string, len(aliases))
	spelling := make(map[string]string, len(aliases))
	for _, path := range keys {
		alias, canon := aliases[path], canonicalPath(path)
		if prev, ok := canonical[canon]; ok && prev != alias {
			return nil, &Error{Kind: ErrConflictingDefinition, Path: canon, Entity: "alias " + path,
				Detail: fmt.Sprintf("aliased to both %s (as %s) and %s", prev, spelling[canon], alias)}
		}
		canonical[canon], spelling[canon] = alias, path
		if !declared.Contains(canon) {
			log.Warn("Alias does not match any declared type", "path", path, "alias", alias)
		}
	}
	assign := func(path string) error {
		name, aliased := canonical[path]
		if !aliased {
			name = lastSegment(path)
		}
		ident := ToCamelCase(name)
		if !isExportedIdent(ident) {
			return &Error{Kind: ErrMalformedSource, Path: path, Entity: "alias " + name,
				Detail: fmt.Sprintf("%q is not a valid Go identifier", ident)}
		}
		if err := n.claim(ident, path); err != nil {
			return err
		}
		n.names[path] = ident
		return nil
	}
	for _, s := range abi.Structs {
		if err := assign(s.Path); err != nil {
			return nil, err
		}
	}
	for _, e := range abi.Enums {
		if err := assign(e.Path); err != nil {
			return nil, err
		}
	}
	// Enums also emit a discriminant type, one constant per variant and for
	// events a parser function, all of which share the package scope.
	for _, e := range abi.Enums {
		name := n.names[e.Path]
		if err := n.claim(name+"Kind", e.Path); err != nil {
			return nil, err
		}
		if e.Event {
			if err := n.claim("Parse"+name, e.Path); err != nil {
				return nil, err
			}
		}
		used := make(map[string]bool)
		fields := make([]string, len(e.Variants))
		for i, v := range e.Variants {
			field := ToCamelCase(v.Name)
			if !isExportedIdent(field) || reservedFields.Contains(field) {
				field = fmt.Sprintf("Variant%d", i)
			}
			field = ResolveNameConflict(field, func(s string) bool { return used[s] })
			used[field] = true
			fields[i] = field
			if err := n.claim(name+field, e.Path); err != nil {
				return nil, err
			}
		}
		n.variants[e.Path] = fields
	}
	return n, nil
}

// claim registers ident as owned by path.
func (n *Namer) claim(ident, path string) error {
	if owner, ok := n.owners[ident]; ok && owner != path {
		return &Error{
			Kind:   ErrNameCollision,
			Path:   path,
			Entity: ident,
			Detail: fmt.Sprintf("%s and %s both map to %s, use --alias for renaming", owner, path, ident),
		}
	}
	n.owners[ident] = path
	return nil
}

// Name returns the Go identifier of a struct or enum path.
func (n *Namer) Name(path string) (string, error) {
	name, ok := n.names[path]
	if !ok {
		return "", unresolved(path, "")
	}
	return name, nil
}

// VariantNames returns the Go field names of the variants of an enum, unique
// within the enum and in variant order.
func (n *Namer) VariantNames(path string) ([]string, error) {
	names, ok := n.variants[path]
	if !ok {
		return nil, unresolved(path, "")
	}
	return names, nil
}

// canonicalPath normalizes the spelling of an alias key so that it matches
// declared paths, e.g. "pkg::Wrapper<core::felt252>" and
// "pkg::Wrapper::<core::felt252>" name the same type.
func canonicalPath(path string) string {
	typ, err := NewType(path)
	if err != nil {
		return path
	}
	return typ.String()
}

// lastSegment returns the text after the last path separator, ignoring
// generic arguments.
func lastSegment(path string) string {
	if i := strings.IndexByte(path, '<'); i >= 0 {
		path = strings.TrimSuffix(path[:i], "::")
	}
	if i := strings.LastIndex(path, "::"); i >= 0 {
		path = path[i+2:]
	}
	return path
}

func isExportedIdent(s string) bool {
	return token.IsIdentifier(s) && token.IsExported(s) && !token.IsKeyword(s)
}
