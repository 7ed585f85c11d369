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

// Package abi reads Cairo contract ABIs into a closed, validated type model.
package abi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/starkbind/starkbind/log"
)

// The ABI holds the structs, enums and entry points declared by a contract.
// Every type reference in it is either a catalogued builtin or resolves to one
// of its structs or enums.
type ABI struct {
	Structs     []*Struct    // in declaration order
	Enums       []*Enum      // in declaration order
	Functions   []*Function  // top level functions
	Interfaces  []*Interface // in declaration order
	Constructor *Function    // nil if the contract declares none
	L1Handlers  []*Function

	structs   map[string]*Struct
	enums     map[string]*Enum
	functions map[string]*Function // every function, top level or not
}

// Interface groups the functions of a Cairo interface.
type Interface struct {
	Name      string
	Functions []*Function
}

// entryMarshaling is the raw JSON form of a top level ABI entry.
type entryMarshaling struct {
	Type            string                `json:"type"`
	Name            *string               `json:"name"`
	Kind            string                `json:"kind"`
	Members         *[]ArgumentMarshaling `json:"members"`
	Variants        *[]ArgumentMarshaling `json:"variants"`
	Inputs          *[]ArgumentMarshaling `json:"inputs"`
	Outputs         *[]ArgumentMarshaling `json:"outputs"`
	StateMutability string                `json:"state_mutability"`
	Items           *[]entryMarshaling    `json:"items"`
}

// JSON returns a parsed ABI and error if it failed. The reader may hold either
// an array of ABI entries or a compiled contract artifact embedding one.
func JSON(reader io.Reader) (ABI, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return ABI{}, err
	}
	return Parse(string(data))
}

// Parse is like JSON but operates on already loaded text.
func Parse(text string) (ABI, error) {
	var abi ABI
	if err := json.Unmarshal([]byte(text), &abi); err != nil {
		var aerr *Error
		if errors.As(err, &aerr) {
			return ABI{}, aerr
		}
		return ABI{}, &Error{Kind: ErrMalformedSource, Detail: err.Error()}
	}
	return abi, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (abi *ABI) UnmarshalJSON(data []byte) error {
	entries, err := extractEntries(data)
	if err != nil {
		return err
	}
	*abi = ABI{
		structs:   make(map[string]*Struct),
		enums:     make(map[string]*Enum),
		functions: make(map[string]*Function),
	}
	for _, entry := range entries {
		if err := abi.addEntry(entry); err != nil {
			return err
		}
	}
	if err := abi.resolve(); err != nil {
		return err
	}
	if err := abi.checkContainment(); err != nil {
		return err
	}
	log.Debug("Parsed contract ABI", "structs", len(abi.Structs), "enums", len(abi.Enums),
		"functions", len(abi.Functions), "interfaces", len(abi.Interfaces))
	return nil
}

// extractEntries detects the shape of the source: either a plain entry array
// or an artifact holding the array, or its JSON string form, under "abi".
func extractEntries(data []byte) ([]entryMarshaling, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, malformed("", "empty source")
	}
	switch data[0] {
	case '[':
		var entries []entryMarshaling
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, malformed("", "invalid abi entries: %v", err)
		}
		return entries, nil

	case '{':
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, malformed("", "invalid artifact: %v", err)
		}
		inner := bytes.TrimSpace(artifact.ABI)
		if len(inner) > 0 && inner[0] == '"' {
			var embedded string
			if err := json.Unmarshal(inner, &embedded); err != nil {
				return nil, malformed("", "invalid embedded abi: %v", err)
			}
			inner = bytes.TrimSpace([]byte(embedded))
		}
		if len(inner) == 0 || inner[0] != '[' {
			return nil, malformed("", "artifact does not hold an abi entry array")
		}
		return extractEntries(inner)

	default:
		return nil, malformed("", "expected an abi entry array or a contract artifact")
	}
}

func (abi *ABI) addEntry(entry entryMarshaling) error {
	name := ""
	if entry.Name != nil {
		name = *entry.Name
	}
	entity := entry.Type
	if name != "" {
		entity += " " + name
	}
	if entry.Name == nil && entry.Type != "constructor" && entry.Type != "impl" {
		return malformed(entity, "entry without name")
	}
	switch entry.Type {
	case "struct":
		if entry.Members == nil {
			return malformed(entity, "struct without members")
		}
		return abi.addStruct(name, *entry.Members, false)

	case "enum":
		if entry.Variants == nil {
			return malformed(entity, "enum without variants")
		}
		return abi.addEnum(name, *entry.Variants, false)

	case "event":
		switch entry.Kind {
		case "struct":
			if entry.Members == nil {
				return malformed(entity, "event struct without members")
			}
			return abi.addStruct(name, *entry.Members, true)
		case "enum":
			if entry.Variants == nil {
				return malformed(entity, "event enum without variants")
			}
			return abi.addEnum(name, *entry.Variants, true)
		default:
			return malformed(entity, "unknown event kind %q", entry.Kind)
		}

	case "function":
		fn, err := newFunctionEntry(entry, entity)
		if err != nil {
			return err
		}
		if abi.addFunction(fn) {
			abi.Functions = append(abi.Functions, fn)
		}
		return abi.checkFunction(fn)

	case "interface":
		if entry.Items == nil {
			return malformed(entity, "interface without items")
		}
		iface := &Interface{Name: name}
		for _, item := range *entry.Items {
			if item.Type != "function" {
				return malformed(entity, "unexpected %q item in interface", item.Type)
			}
			itemEntity := "function"
			if item.Name != nil {
				itemEntity += " " + *item.Name
			} else {
				return malformed(entity, "interface function without name")
			}
			fn, err := newFunctionEntry(item, itemEntity)
			if err != nil {
				return err
			}
			fn.Interface = name
			if err := abi.checkFunction(fn); err != nil {
				return err
			}
			if abi.addFunction(fn) {
				iface.Functions = append(iface.Functions, fn)
			}
		}
		abi.Interfaces = append(abi.Interfaces, iface)
		return nil

	case "constructor":
		if entry.Inputs == nil {
			return malformed(entity, "constructor without inputs")
		}
		inputs, err := newArguments(*entry.Inputs, entity, true)
		if err != nil {
			return err
		}
		fn := NewFunction("constructor", External, inputs, nil)
		if abi.Constructor != nil {
			if !abi.Constructor.sameShape(fn) {
				return conflicting("", entity, "constructor declared twice")
			}
			return nil
		}
		abi.Constructor = fn
		return nil

	case "l1_handler":
		fn, err := newFunctionEntry(entry, entity)
		if err != nil {
			return err
		}
		for _, h := range abi.L1Handlers {
			if h.Name == fn.Name {
				if !h.sameShape(fn) {
					return conflicting("", entity, "l1 handler declared twice")
				}
				return nil
			}
		}
		abi.L1Handlers = append(abi.L1Handlers, fn)
		return nil

	case "impl":
		// Impl entries only name the interface they implement.
		return nil

	default:
		return malformed(entity, "unknown entry type %q", entry.Type)
	}
}

func newFunctionEntry(entry entryMarshaling, entity string) (*Function, error) {
	if entry.Inputs == nil {
		return nil, malformed(entity, "function without inputs")
	}
	if entry.Outputs == nil {
		return nil, malformed(entity, "function without outputs")
	}
	mutability, err := parseStateMutability(entry.StateMutability, entity)
	if err != nil {
		return nil, err
	}
	inputs, err := newArguments(*entry.Inputs, entity, true)
	if err != nil {
		return nil, err
	}
	outputs, err := newArguments(*entry.Outputs, entity, false)
	if err != nil {
		return nil, err
	}
	return NewFunction(*entry.Name, mutability, inputs, outputs.Types()), nil
}

// checkFunction rejects a redeclaration of a function name with a different
// signature.
func (abi *ABI) checkFunction(fn *Function) error {
	if prev, ok := abi.functions[fn.Name]; ok && prev != fn && !prev.sameShape(fn) {
		return conflicting("", "function "+fn.Name, "redeclared with a different signature")
	}
	return nil
}

// addFunction records fn and reports whether it was not seen before.
func (abi *ABI) addFunction(fn *Function) bool {
	if _, ok := abi.functions[fn.Name]; ok {
		return false
	}
	abi.functions[fn.Name] = fn
	return true
}

func (abi *ABI) addStruct(name string, members []ArgumentMarshaling, event bool) error {
	path, skip, err := declaredPath(name, "struct")
	if err != nil || skip {
		return err
	}
	entity := "struct " + path
	fields, err := newArguments(members, entity, true)
	if err != nil {
		return err
	}
	if event {
		for i, m := range members {
			if fields[i].Kind, err = parseEventMemberKind(m.Kind, entity, EventKey, EventData, EventNested, EventFlat); err != nil {
				return err
			}
		}
	}
	s := &Struct{Path: path, Fields: fields, Event: event}
	if _, ok := abi.enums[path]; ok {
		return conflicting(path, entity, "declared as both struct and enum")
	}
	if prev, ok := abi.structs[path]; ok {
		return prev.merge(s)
	}
	abi.structs[path] = s
	abi.Structs = append(abi.Structs, s)
	return nil
}

func (abi *ABI) addEnum(name string, variants []ArgumentMarshaling, event bool) error {
	path, skip, err := declaredPath(name, "enum")
	if err != nil || skip {
		return err
	}
	entity := "enum " + path
	vs, err := newVariants(variants, entity, event)
	if err != nil {
		return err
	}
	e := &Enum{Path: path, Variants: vs, Event: event}
	if _, ok := abi.structs[path]; ok {
		return conflicting(path, entity, "declared as both struct and enum")
	}
	if prev, ok := abi.enums[path]; ok {
		return prev.merge(e)
	}
	abi.enums[path] = e
	abi.Enums = append(abi.Enums, e)
	return nil
}

// declaredPath canonicalizes the name of a struct or enum declaration and
// reports whether it names a catalogued builtin, which is never generated.
func declaredPath(name, kind string) (string, bool, error) {
	typ, err := NewType(name)
	if err != nil {
		return "", false, withEntity(err, kind+" "+name)
	}
	if !typ.IsUserDefined() {
		log.Trace("Skipping builtin declaration", "kind", kind, "path", typ.String())
		return "", true, nil
	}
	return typ.Path, false, nil
}

// resolve binds every user type reference to its declaration, failing on the
// first reference that has none.
func (abi *ABI) resolve() error {
	for _, s := range abi.Structs {
		for i := range s.Fields {
			if err := abi.resolveType(&s.Fields[i].Type, "struct "+s.Path); err != nil {
				return err
			}
		}
	}
	for _, e := range abi.Enums {
		entity := "enum " + e.Path
		for _, v := range e.Variants {
			if v.Type == nil {
				if e.Event {
					return &Error{Kind: ErrUnresolvedReference, Path: UnitPath, Entity: entity,
						Detail: "event variant " + v.Name + " has no payload"}
				}
				continue
			}
			if err := abi.resolveType(v.Type, entity); err != nil {
				return err
			}
			if e.Event && v.Type.T != StructTy && v.Type.T != EnumTy {
				return &Error{Kind: ErrUnresolvedReference, Path: v.Type.String(), Entity: entity,
					Detail: "event variant " + v.Name + " payload is not a declared struct or enum"}
			}
		}
	}
	for _, fn := range abi.AllFunctions() {
		if err := abi.resolveFunction(fn); err != nil {
			return err
		}
	}
	if abi.Constructor != nil {
		if err := abi.resolveFunction(abi.Constructor); err != nil {
			return err
		}
	}
	for _, fn := range abi.L1Handlers {
		if err := abi.resolveFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (abi *ABI) resolveFunction(fn *Function) error {
	entity := "function " + fn.Name
	for i := range fn.Inputs {
		if err := abi.resolveType(&fn.Inputs[i].Type, entity); err != nil {
			return err
		}
	}
	for i := range fn.Outputs {
		if err := abi.resolveType(&fn.Outputs[i], entity); err != nil {
			return err
		}
	}
	return nil
}

func (abi *ABI) resolveType(typ *Type, entity string) error {
	return typ.Walk(func(t *Type) error {
		if t.T != UserTy {
			return nil
		}
		switch {
		case abi.structs[t.Path] != nil:
			t.T = StructTy
		case abi.enums[t.Path] != nil:
			t.T = EnumTy
		default:
			return unresolved(t.Path, entity)
		}
		return nil
	})
}

// Struct returns the struct declared under path.
func (abi *ABI) Struct(path string) (*Struct, bool) {
	s, ok := abi.structs[path]
	return s, ok
}

// Enum returns the enum declared under path.
func (abi *ABI) Enum(path string) (*Enum, bool) {
	e, ok := abi.enums[path]
	return e, ok
}

// Function returns the function, top level or declared in an interface, with
// the given Cairo name.
func (abi *ABI) Function(name string) (*Function, bool) {
	fn, ok := abi.functions[name]
	return fn, ok
}

// AllFunctions returns the top level functions followed by the functions of
// every interface, in declaration order. Interface boundaries are dropped.
func (abi *ABI) AllFunctions() []*Function {
	fns := make([]*Function, 0, len(abi.functions))
	fns = append(fns, abi.Functions...)
	for _, iface := range abi.Interfaces {
		fns = append(fns, iface.Functions...)
	}
	return fns
}
