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

// EventMemberKind tells where an event member is serialized.
type EventMemberKind uint8

const (
	// NotEvent is the kind of every member outside of events.
	NotEvent EventMemberKind = iota
	// EventKey members are serialized into the event keys.
	EventKey
	// EventData members are serialized into the event data.
	EventData
	// EventNested members are events themselves, prefixed by their selector.
	EventNested
	// EventFlat members are events themselves, serialized without a selector.
	EventFlat
)

func (k EventMemberKind) String() string {
	switch k {
	case EventKey:
		return "key"
	case EventData:
		return "data"
	case EventNested:
		return "nested"
	case EventFlat:
		return "flat"
	default:
		return ""
	}
}

func parseEventMemberKind(s, entity string, allowed ...EventMemberKind) (EventMemberKind, error) {
	for _, k := range allowed {
		if k.String() == s {
			return k, nil
		}
	}
	if s == "" {
		return NotEvent, malformed(entity, "event member without kind")
	}
	return NotEvent, malformed(entity, "unknown event member kind %q", s)
}

// Struct is a record declared by the contract. Field order is the order of
// the serialized form.
type Struct struct {
	Path   string
	Fields Arguments
	Event  bool // declared as an event, field kinds are set
}

func (s *Struct) String() string {
	kind := "struct"
	if s.Event {
		kind = "event struct"
	}
	return fmt.Sprintf("%s %s { %s }", kind, s.Path, s.Fields)
}

// merge folds a redeclaration of the same path into s. Plain and event
// declarations of the same members merge, anything else conflicts.
func (s *Struct) merge(o *Struct) error {
	entity := "struct " + s.Path
	if !s.Fields.equal(o.Fields) {
		return conflicting(s.Path, entity, "redeclared with different members")
	}
	if !o.Event {
		return nil
	}
	if s.Event {
		for i := range s.Fields {
			if s.Fields[i].Kind != o.Fields[i].Kind {
				return conflicting(s.Path, entity, fmt.Sprintf("member %s redeclared as %s", s.Fields[i].Name, o.Fields[i].Kind))
			}
		}
		return nil
	}
	for i := range s.Fields {
		s.Fields[i].Kind = o.Fields[i].Kind
	}
	s.Event = true
	return nil
}

// Variant is a single case of an enum. Unit variants carry no payload.
type Variant struct {
	Name     string
	Type     *Type // nil for unit variants
	Kind     EventMemberKind
	Selector common.Felt // event key of nested event variants
}

// Enum is a sum type declared by the contract. The index of a variant is its
// serialized discriminant.
type Enum struct {
	Path     string
	Variants []Variant
	Event    bool
}

func (e *Enum) String() string {
	parts := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		if v.Type == nil {
			parts[i] = v.Name
		} else {
			parts[i] = fmt.Sprintf("%s: %s", v.Name, v.Type)
		}
	}
	kind := "enum"
	if e.Event {
		kind = "event enum"
	}
	return fmt.Sprintf("%s %s { %s }", kind, e.Path, strings.Join(parts, ", "))
}

func newVariants(raw []ArgumentMarshaling, entity string, event bool) ([]Variant, error) {
	variants := make([]Variant, 0, len(raw))
	for _, r := range raw {
		arg, err := newArgument(r, entity, true)
		if err != nil {
			return nil, err
		}
		v := Variant{Name: arg.Name}
		if arg.Type.T != UnitTy {
			typ := arg.Type
			v.Type = &typ
		}
		if event {
			if v.Kind, err = parseEventMemberKind(r.Kind, entity, EventNested, EventFlat); err != nil {
				return nil, err
			}
			if v.Kind == EventNested {
				v.Selector = crypto.SelectorFromName(v.Name)
			}
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func (e *Enum) merge(o *Enum) error {
	entity := "enum " + e.Path
	if len(e.Variants) != len(o.Variants) {
		return conflicting(e.Path, entity, "redeclared with different variants")
	}
	for i, v := range e.Variants {
		w := o.Variants[i]
		if v.Name != w.Name || (v.Type == nil) != (w.Type == nil) || (v.Type != nil && !v.Type.equal(*w.Type)) {
			return conflicting(e.Path, entity, "redeclared with different variants")
		}
	}
	if !o.Event {
		return nil
	}
	if e.Event {
		for i := range e.Variants {
			if e.Variants[i].Kind != o.Variants[i].Kind {
				return conflicting(e.Path, entity, fmt.Sprintf("variant %s redeclared as %s", e.Variants[i].Name, o.Variants[i].Kind))
			}
		}
		return nil
	}
	for i := range e.Variants {
		e.Variants[i].Kind = o.Variants[i].Kind
		e.Variants[i].Selector = o.Variants[i].Selector
	}
	e.Event = true
	return nil
}
