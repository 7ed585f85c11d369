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

package abigen

import (
	_ "embed"

	"github.com/starkbind/starkbind/accounts/abi"
)

// tmplData is the data structure required to fill the binding template.
type tmplData struct {
	Package  string        // Name of the package to place the generated file in
	Source   string        // Where the ABI was read from, for the file header
	Contract *tmplContract // Contract the binding is generated for
	Structs  []*tmplStruct // Contract struct type definitions, in source order
	Enums    []*tmplEnum   // Contract enum type definitions, in source order
}

// tmplContract contains the data needed to generate the contract wrappers.
type tmplContract struct {
	Type        string        // Type name of the main contract binding
	Selectors   string        // Name of the unexported variable holding the selectors
	Receivers   []string      // Suffixes of the types carrying the view methods
	Version     string        // Invoke transaction version of external methods, V1 or V3
	Calls       []*tmplMethod // View functions, served by plain calls
	Transacts   []*tmplMethod // External functions, sent within invoke transactions
	Constructor *tmplMethod   // Optional constructor for calldata encoding
	L1Handlers  []*tmplMethod // L1 handlers, only their selectors are bound
}

// tmplMethod is a wrapper around an abi.Function that contains a few
// preprocessed and cached data fields.
type tmplMethod struct {
	Original  *abi.Function // Original function as parsed by the abi package
	Name      string        // Go identifier of the method or selector variable
	Selector  string        // Hex form of the entry point selector
	Signature string        // Cairo signature with declared types under their Go names
	Inputs    []*tmplValue
	Outputs   []*tmplValue
}

// tmplValue is a parameter, result or struct field with the snippets that
// serialize it.
type tmplValue struct {
	Name        string // Go identifier
	Cairo       string // Raw Cairo name
	Type        string // Go type
	Encode      string // Statement appending the value to encoder e
	Decode      string // Expression reading the value from decoder d
	EventDecode string // Expression reading an event member from keys or data
	Nested      bool   // Event member decoded by its own DecodeEvent
}

// tmplStruct is a wrapper around an abi.Struct and its Go name.
type tmplStruct struct {
	Name   string
	Fields []*tmplValue
	Event  bool
}

// tmplEnum is a wrapper around an abi.Enum and its Go name.
type tmplEnum struct {
	Name      string
	KindType  string // Go type of the discriminant
	Variants  []*tmplVariant
	Event     bool
	Selectors string // Name of the unexported variable holding the variant selectors
	HasNested bool
}

// tmplVariant is a single enum variant. Type is empty for unit variants.
type tmplVariant struct {
	tmplValue
	Const    string // Name of the discriminant constant
	Index    int
	Kind     string // nested or flat for event variants
	Selector string // Hex form of the selector of nested event variants
}

// tmplSource is the Go source template that the generated Go contract binding
// is based on.
//
//go:embed source.go.tpl
var tmplSource string
