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

// Package abigen generates Go bindings for Starknet contracts from their Cairo
// ABI.
package abigen

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"strings"
	"text/template"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/tools/imports"

	"github.com/starkbind/starkbind/accounts/abi"
	"github.com/starkbind/starkbind/log"
)

// ErrInvalidConfig is returned when a Config cannot produce a Go file.
var ErrInvalidConfig = errors.New("invalid binding configuration")

// ExecutionVersion selects the invoke transaction version that external
// methods of a binding build.
type ExecutionVersion int

const (
	V1 ExecutionVersion = iota // Invoke v1, fees capped by a max fee
	V3                         // Invoke v3, fees bounded per resource
)

// ParseExecutionVersion parses "v1", "1", "v3" or "3".
func ParseExecutionVersion(s string) (ExecutionVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "1":
		return V1, nil
	case "v3", "3":
		return V3, nil
	}
	return V1, fmt.Errorf("%w: unknown execution version %q", ErrInvalidConfig, s)
}

func (v ExecutionVersion) String() string {
	switch v {
	case V1:
		return "v1"
	case V3:
		return "v3"
	}
	return fmt.Sprintf("ExecutionVersion(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v ExecutionVersion) MarshalText() ([]byte, error) {
	if v != V1 && v != V3 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, v)
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *ExecutionVersion) UnmarshalText(input []byte) error {
	parsed, err := ParseExecutionVersion(string(input))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Config is the set of options for a single binding.
type Config struct {
	Contract         string            // Type name of the contract binding
	Package          string            // Package name of the generated file
	Source           string            // Where the ABI was read from, for diagnostics
	Aliases          map[string]string // Type path to Go identifier overrides
	ExecutionVersion ExecutionVersion  // Transaction version of external methods
}

// Error is returned by Bind. It names the contract and ABI source the failure
// belongs to and unwraps to the underlying cause.
type Error struct {
	Contract string
	Source   string
	Err      error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("binding %s (%s): %v", e.Contract, e.Source, e.Err)
	}
	return fmt.Sprintf("binding %s: %v", e.Contract, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// reservedParams are the locals and imported packages the generated methods
// use. Parameters that would shadow them are renamed.
var reservedParams = mapset.NewThreadUnsafeSet(
	"opts", "e", "d", "v", "err", "calldata", "output", "call", "keys", "data",
	"bind", "common", "big", "uint256", "fmt",
)

// reservedMethods are declared on every generated struct and enum.
var reservedMethods = mapset.NewThreadUnsafeSet("EncodeCairo", "DecodeCairo", "DecodeEvent")

// Bind generates a Go wrapper around a contract ABI. This wrapper isn't meant
// to be used as is in client code, but rather as an intermediate struct which
// enforces compile time type safety and naming convention opposed to having to
// manually maintain hard coded selectors and calldata layouts that break on
// runtime.
func Bind(abiJSON string, cfg Config) (string, error) {
	code, err := bind(abiJSON, cfg)
	if err != nil {
		return "", &Error{Contract: cfg.Contract, Source: cfg.Source, Err: err}
	}
	return code, nil
}

func bind(abiJSON string, cfg Config) (string, error) {
	typ := abi.ToCamelCase(cfg.Contract)
	if !exported(typ) {
		return "", fmt.Errorf("%w: contract name %q is not a valid Go identifier", ErrInvalidConfig, cfg.Contract)
	}
	if !token.IsIdentifier(cfg.Package) {
		return "", fmt.Errorf("%w: package name %q is not a valid Go identifier", ErrInvalidConfig, cfg.Package)
	}
	if cfg.ExecutionVersion != V1 && cfg.ExecutionVersion != V3 {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, cfg.ExecutionVersion)
	}
	// Parse the actual ABI to generate the binding for
	parsed, err := abi.Parse(abiJSON)
	if err != nil {
		return "", err
	}
	handlers := make([]string, len(parsed.L1Handlers))
	taken := make(map[string]bool)
	for i, h := range parsed.L1Handlers {
		name := abi.ResolveNameConflict(typ+abi.ToCamelCase(h.Name), func(s string) bool { return taken[s] })
		taken[name] = true
		handlers[i] = name + "L1HandlerSelector"
	}
	reserved := append([]string{
		typ, typ + "Caller", typ + "Transactor", typ + "Reader",
		"New" + typ, "New" + typ + "Reader", "Encode" + typ + "ConstructorCalldata",
	}, handlers...)
	namer, err := abi.NewNamer(&parsed, cfg.Aliases, reserved...)
	if err != nil {
		return "", err
	}
	b := &binder{abi: &parsed, namer: namer}

	// Generate the contract template data content and render it
	contract, err := b.contract(typ, cfg.ExecutionVersion, handlers)
	if err != nil {
		return "", err
	}
	data := &tmplData{
		Package:  cfg.Package,
		Source:   cfg.Source,
		Contract: contract,
	}
	for _, s := range parsed.Structs {
		st, err := b.structure(s)
		if err != nil {
			return "", err
		}
		data.Structs = append(data.Structs, st)
	}
	for _, e := range parsed.Enums {
		en, err := b.enum(e)
		if err != nil {
			return "", err
		}
		data.Enums = append(data.Enums, en)
	}
	buffer := new(bytes.Buffer)
	tmpl := template.Must(template.New("").Parse(tmplSource))
	if err := tmpl.Execute(buffer, data); err != nil {
		return "", err
	}
	// Pass the code through goimports to clean it up and double check
	code, err := imports.Process(".", buffer.Bytes(), nil)
	if err != nil {
		return "", fmt.Errorf("%v\n%s", err, buffer)
	}
	log.Debug("Generated contract binding", "type", typ, "package", cfg.Package,
		"calls", len(contract.Calls), "transacts", len(contract.Transacts),
		"structs", len(data.Structs), "enums", len(data.Enums), "version", cfg.ExecutionVersion)
	return string(code), nil
}

// contract collects the entry points of the contract. View functions become
// calls, anything else a transaction.
func (b *binder) contract(typ string, version ExecutionVersion, handlers []string) (*tmplContract, error) {
	c := &tmplContract{
		Type:      typ,
		Selectors: decapitalise(typ) + "Selectors",
		Receivers: []string{"Caller", "Reader"},
		Version:   "V1",
	}
	b.selectors = c.Selectors
	if version == V3 {
		c.Version = "V3"
	}
	used := make(map[string]bool)
	for i, fn := range b.abi.AllFunctions() {
		name := abi.ToCamelCase(fn.Name)
		if !exported(name) {
			name = fmt.Sprintf("Fn%d", i)
		}
		// External methods also emit a <Name>Call method on the same type.
		name = abi.ResolveNameConflict(name, func(s string) bool {
			return used[s] || (!fn.IsView() && used[s+"Call"])
		})
		used[name] = true
		if !fn.IsView() {
			used[name+"Call"] = true
		}
		m, err := b.method(fn, name)
		if err != nil {
			return nil, err
		}
		if fn.IsView() {
			c.Calls = append(c.Calls, m)
		} else {
			c.Transacts = append(c.Transacts, m)
		}
		log.Trace("Bound contract function", "name", fn.Name, "method", name, "mutability", fn.StateMutability)
	}
	if b.abi.Constructor != nil {
		m, err := b.method(b.abi.Constructor, "Encode"+typ+"ConstructorCalldata")
		if err != nil {
			return nil, err
		}
		c.Constructor = m
	}
	for i, h := range b.abi.L1Handlers {
		m, err := b.method(h, handlers[i])
		if err != nil {
			return nil, err
		}
		c.L1Handlers = append(c.L1Handlers, m)
	}
	return c, nil
}

// method normalizes the parameters and results of fn into Go identifiers and
// precomputes their serialization.
func (b *binder) method(fn *abi.Function, name string) (*tmplMethod, error) {
	entity := "function " + fn.Name
	m := &tmplMethod{
		Original:  fn,
		Name:      name,
		Selector:  fn.Selector.Hex(),
		Signature: b.signature(fn),
	}
	used := map[string]bool{b.selectors: true}
	for i := range fn.Outputs {
		used[fmt.Sprintf("out%d", i)] = true
	}
	for i, input := range fn.Inputs {
		param := decapitalise(abi.ToCamelCase(input.Name))
		if !token.IsIdentifier(param) || token.IsKeyword(param) || reservedParams.Contains(param) {
			param = fmt.Sprintf("arg%d", i)
		}
		param = abi.ResolveNameConflict(param, func(s string) bool { return used[s] })
		used[param] = true

		v, err := b.value(input.Type, entity, param, param)
		if err != nil {
			return nil, err
		}
		v.Cairo = input.Name
		m.Inputs = append(m.Inputs, v)
	}
	for i, output := range fn.Outputs {
		v, err := b.value(output, entity, fmt.Sprintf("out%d", i), "")
		if err != nil {
			return nil, err
		}
		m.Outputs = append(m.Outputs, v)
	}
	return m, nil
}

// value binds a single Cairo type. The encoding statement reads the Go
// expression val; it is skipped for outputs, which are only decoded.
func (b *binder) value(t abi.Type, entity, name, val string) (*tmplValue, error) {
	typ, err := b.goType(t, entity)
	if err != nil {
		return nil, err
	}
	v := &tmplValue{Name: name, Type: typ}
	if val != "" {
		if v.Encode, err = b.encodeStmt(t, entity, "e", val); err != nil {
			return nil, err
		}
	}
	if v.Decode, err = b.decodeCall(t, entity, "d"); err != nil {
		return nil, err
	}
	return v, nil
}

// structure binds a struct declaration. Event members additionally get the
// expression decoding them from the event keys or data.
func (b *binder) structure(s *abi.Struct) (*tmplStruct, error) {
	entity := "struct " + s.Path
	name, err := b.namer.Name(s.Path)
	if err != nil {
		return nil, err
	}
	st := &tmplStruct{Name: name, Event: s.Event}
	used := make(map[string]bool)
	for i, field := range s.Fields {
		ident := abi.ToCamelCase(field.Name)
		if !exported(ident) || reservedMethods.Contains(ident) {
			ident = fmt.Sprintf("Field%d", i)
		}
		ident = abi.ResolveNameConflict(ident, func(n string) bool { return used[n] })
		used[ident] = true

		v, err := b.value(field.Type, entity, ident, "v."+ident)
		if err != nil {
			return nil, err
		}
		v.Cairo = field.Name
		switch field.Kind {
		case abi.EventKey:
			v.EventDecode, err = b.decodeCall(field.Type, entity, "keys")
		case abi.EventData:
			v.EventDecode, err = b.decodeCall(field.Type, entity, "data")
		case abi.EventNested, abi.EventFlat:
			v.Nested = true
			err = b.checkEvent(field.Type, entity)
		}
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, v)
	}
	return st, nil
}

// enum binds an enum declaration and, for events, the selectors of its nested
// variants.
func (b *binder) enum(e *abi.Enum) (*tmplEnum, error) {
	entity := "enum " + e.Path
	name, err := b.namer.Name(e.Path)
	if err != nil {
		return nil, err
	}
	fields, err := b.namer.VariantNames(e.Path)
	if err != nil {
		return nil, err
	}
	en := &tmplEnum{
		Name:      name,
		KindType:  "uint8",
		Event:     e.Event,
		Selectors: decapitalise(name) + "Selectors",
	}
	if len(e.Variants) > 1<<8 {
		en.KindType = "uint16"
	}
	for i, variant := range e.Variants {
		v := &tmplVariant{
			tmplValue: tmplValue{Name: fields[i], Cairo: variant.Name},
			Const:     name + fields[i],
			Index:     i,
		}
		if variant.Type != nil {
			val, err := b.value(*variant.Type, entity, fields[i], "v."+fields[i])
			if err != nil {
				return nil, err
			}
			val.Cairo = variant.Name
			v.tmplValue = *val
		}
		if e.Event && variant.Type != nil {
			if err := b.checkEvent(*variant.Type, entity); err != nil {
				return nil, err
			}
			v.Kind = variant.Kind.String()
			if variant.Kind == abi.EventNested {
				v.Selector = variant.Selector.Hex()
				en.HasNested = true
			}
		}
		en.Variants = append(en.Variants, v)
	}
	return en, nil
}

// checkEvent fails unless t is a struct or enum declared as an event, since
// only those carry a DecodeEvent method.
func (b *binder) checkEvent(t abi.Type, entity string) error {
	switch t.T {
	case abi.StructTy:
		if s, ok := b.abi.Struct(t.Path); ok && s.Event {
			return nil
		}
	case abi.EnumTy:
		if e, ok := b.abi.Enum(t.Path); ok && e.Event {
			return nil
		}
	}
	return &abi.Error{
		Kind:   abi.ErrUnresolvedReference,
		Path:   t.String(),
		Entity: entity,
		Detail: "event member is not a declared event",
	}
}

// decapitalise makes the first character of a string lower case.
func decapitalise(input string) string {
	if len(input) == 0 {
		return input
	}
	return strings.ToLower(input[:1]) + input[1:]
}

func exported(s string) bool {
	return token.IsIdentifier(s) && token.IsExported(s)
}
