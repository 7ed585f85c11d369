// Copyright 2024 The starkbind Authors
// This file is part of starkbind.
//
// starkbind is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// starkbind is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with starkbind. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/starkbind/starkbind/accounts/abi"
)

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "Print the functions, structs and enums of a Cairo ABI",
	ArgsUsage: "",
	Action:    inspect,
	Flags:     []cli.Flag{abiFlag, aliasFlag},
	Description: `
The inspect command parses an ABI the same way the binding generator does and
prints the entry points with their selectors, and the declared types with the
Go identifiers they would be bound to.`,
}

func inspect(c *cli.Context) error {
	path := c.String(abiFlag.Name)
	if !c.IsSet(abiFlag.Name) || path == "" {
		return fmt.Errorf("no contract ABI specified (--%s)", abiFlag.Name)
	}
	data, err := readSource(c.App.Reader, path)
	if err != nil {
		return fmt.Errorf("failed to read input ABI: %v", err)
	}
	parsed, err := abi.Parse(string(data))
	if err != nil {
		return err
	}
	aliases, err := parseAliases(c.String(aliasFlag.Name))
	if err != nil {
		return err
	}
	namer, err := abi.NewNamer(&parsed, aliases)
	if err != nil {
		return err
	}
	return renderABI(c.App.Writer, &parsed, namer)
}

// renderABI prints the entry points and types of an ABI as tables.
func renderABI(w io.Writer, parsed *abi.ABI, namer *abi.Namer) error {
	functions := newTable(w, "Function", "Interface", "Mutability", "Selector", "Signature")
	for _, fn := range parsed.AllFunctions() {
		functions.Append([]string{fn.Name, fn.Interface, fn.StateMutability.String(), fn.Selector.Hex(), fn.String()})
	}
	if ctor := parsed.Constructor; ctor != nil {
		functions.Append([]string{ctor.Name, "", "constructor", ctor.Selector.Hex(), ctor.String()})
	}
	for _, h := range parsed.L1Handlers {
		functions.Append([]string{h.Name, "", "l1_handler", h.Selector.Hex(), h.String()})
	}
	functions.Render()

	types := newTable(w, "Type", "Go name", "Kind", "Members")
	for _, s := range parsed.Structs {
		name, err := namer.Name(s.Path)
		if err != nil {
			return err
		}
		kind := "struct"
		if s.Event {
			kind = "event struct"
		}
		members := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			members[i] = f.Name
			if f.Kind != abi.NotEvent {
				members[i] += " (" + f.Kind.String() + ")"
			}
		}
		types.Append([]string{s.Path, name, kind, strings.Join(members, ", ")})
	}
	for _, e := range parsed.Enums {
		name, err := namer.Name(e.Path)
		if err != nil {
			return err
		}
		kind := "enum"
		if e.Event {
			kind = "event enum"
		}
		variants := make([]string, len(e.Variants))
		for i, v := range e.Variants {
			variants[i] = strconv.Itoa(i) + ": " + v.Name
			if v.Kind != abi.NotEvent {
				variants[i] += " (" + v.Kind.String() + ")"
			}
		}
		types.Append([]string{e.Path, name, kind, strings.Join(variants, ", ")})
	}
	types.Render()
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}
