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

package bind

import (
	"fmt"
	"math/big"
)

// Discriminants of the core Option and Result enums.
const (
	OptionSome = 0
	OptionNone = 1

	ResultOk  = 0
	ResultErr = 1
)

// Option is the Go form of core::option::Option.
type Option[T any] struct {
	Value T
	Valid bool // false for None
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether there is one.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

func (o Option[T]) String() string {
	if !o.Valid {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.Value)
}

// Result is the Go form of core::result::Result.
type Result[T, E any] struct {
	Ok    T
	Err   E
	IsErr bool
}

// Ok returns a successful Result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{Ok: v}
}

// Err returns a failed Result.
func Err[T, E any](err E) Result[T, E] {
	return Result[T, E]{Err: err, IsErr: true}
}

func (r Result[T, E]) String() string {
	if r.IsErr {
		return fmt.Sprintf("Err(%v)", r.Err)
	}
	return fmt.Sprintf("Ok(%v)", r.Ok)
}

// Marshaler is implemented by generated structs and enums.
type Marshaler interface {
	EncodeCairo(e *Encoder)
}

// Unmarshaler is implemented by pointers to generated structs and enums.
type Unmarshaler[T any] interface {
	*T
	DecodeCairo(d *Decoder) error
}

// ValueEncoder returns the encoder of a generated type.
func ValueEncoder[T Marshaler]() func(*Encoder, T) {
	return func(e *Encoder, v T) { v.EncodeCairo(e) }
}

// ValueDecoder returns the decoder of a generated type.
func ValueDecoder[T any, PT Unmarshaler[T]]() func(*Decoder) (T, error) {
	return func(d *Decoder) (T, error) {
		var v T
		err := PT(&v).DecodeCairo(d)
		return v, err
	}
}

// ArrayEncoder returns the encoder of an Array or Span of elements.
func ArrayEncoder[T any](elem func(*Encoder, T)) func(*Encoder, []T) {
	return func(e *Encoder, v []T) {
		e.Len(len(v))
		for _, x := range v {
			elem(e, x)
		}
	}
}

// ArrayDecoder returns the decoder of an Array or Span of elements.
func ArrayDecoder[T any](elem func(*Decoder) (T, error)) func(*Decoder) ([]T, error) {
	return func(d *Decoder) ([]T, error) {
		n, err := d.Len()
		if err != nil {
			return nil, err
		}
		v := make([]T, n)
		for i := range v {
			if v[i], err = elem(d); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return v, nil
	}
}

// OptionEncoder returns the encoder of an Option.
func OptionEncoder[T any](elem func(*Encoder, T)) func(*Encoder, Option[T]) {
	return func(e *Encoder, v Option[T]) {
		if !v.Valid {
			e.Variant(OptionNone)
			return
		}
		e.Variant(OptionSome)
		elem(e, v.Value)
	}
}

// OptionDecoder returns the decoder of an Option.
func OptionDecoder[T any](elem func(*Decoder) (T, error)) func(*Decoder) (Option[T], error) {
	return func(d *Decoder) (Option[T], error) {
		idx, err := d.Variant("core::option::Option", 2)
		if err != nil || idx == OptionNone {
			return Option[T]{}, err
		}
		v, err := elem(d)
		if err != nil {
			return Option[T]{}, err
		}
		return Some(v), nil
	}
}

// ResultEncoder returns the encoder of a Result.
func ResultEncoder[T, E any](ok func(*Encoder, T), fail func(*Encoder, E)) func(*Encoder, Result[T, E]) {
	return func(e *Encoder, v Result[T, E]) {
		if v.IsErr {
			e.Variant(ResultErr)
			fail(e, v.Err)
			return
		}
		e.Variant(ResultOk)
		ok(e, v.Ok)
	}
}

// ResultDecoder returns the decoder of a Result.
func ResultDecoder[T, E any](ok func(*Decoder) (T, error), fail func(*Decoder) (E, error)) func(*Decoder) (Result[T, E], error) {
	return func(d *Decoder) (Result[T, E], error) {
		var r Result[T, E]
		idx, err := d.Variant("core::result::Result", 2)
		if err != nil {
			return r, err
		}
		if idx == ResultErr {
			r.IsErr = true
			r.Err, err = fail(d)
		} else {
			r.Ok, err = ok(d)
		}
		return r, err
	}
}

// BoundedIntEncoder returns the encoder of a BoundedInt with the given
// decimal limits.
func BoundedIntEncoder(lo, hi string) func(*Encoder, *big.Int) {
	l, h := mustBig(lo), mustBig(hi)
	return func(e *Encoder, v *big.Int) { e.BoundedInt(v, l, h) }
}

// BoundedIntDecoder returns the decoder of a BoundedInt with the given
// decimal limits.
func BoundedIntDecoder(lo, hi string) func(*Decoder) (*big.Int, error) {
	l, h := mustBig(lo), mustBig(hi)
	return func(d *Decoder) (*big.Int, error) { return d.BoundedInt(l, h) }
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid integer literal " + s)
	}
	return v
}
