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

	"github.com/heimdalr/dag"
)

// typeVertex is a declared struct or enum in the containment graph.
type typeVertex string

func (v typeVertex) ID() string { return string(v) }

// contained appends the declared types t holds by value to paths. Arrays
// bind to slices and break the containment.
func contained(t *Type, paths []string) []string {
	switch t.T {
	case StructTy, EnumTy:
		return append(paths, t.Path)
	case ArrayTy:
		return paths
	}
	for _, arg := range t.Args {
		paths = contained(arg, paths)
	}
	return paths
}

// checkContainment rejects declared types that contain themselves by value,
// directly or through other declarations, as no finite Go type can hold
// them.
func (abi *ABI) checkContainment() error {
	d := dag.NewDAG()
	for _, s := range abi.Structs {
		if _, err := d.AddVertex(typeVertex(s.Path)); err != nil {
			return err
		}
	}
	for _, e := range abi.Enums {
		if _, err := d.AddVertex(typeVertex(e.Path)); err != nil {
			return err
		}
	}
	seen := make(map[[2]string]bool)
	link := func(from string, t *Type) error {
		for _, to := range contained(t, nil) {
			if seen[[2]string{from, to}] {
				continue
			}
			seen[[2]string{from, to}] = true
			if from == to {
				return &Error{Kind: ErrMalformedSource, Path: to, Entity: from, Detail: "type contains itself by value"}
			}
			if err := d.AddEdge(from, to); err != nil {
				return &Error{Kind: ErrMalformedSource, Path: to, Entity: from,
					Detail: fmt.Sprintf("recursive containment without an array: %v", err)}
			}
		}
		return nil
	}
	for _, s := range abi.Structs {
		for i := range s.Fields {
			if err := link(s.Path, &s.Fields[i].Type); err != nil {
				return err
			}
		}
	}
	for _, e := range abi.Enums {
		for _, v := range e.Variants {
			if v.Type == nil {
				continue
			}
			if err := link(e.Path, v.Type); err != nil {
				return err
			}
		}
	}
	return nil
}
