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
	"errors"

	"github.com/starkbind/starkbind/common"
)

// ErrEventSignatureMismatch is returned when the keys of an event do not
// select the event type it is decoded into.
var ErrEventSignatureMismatch = errors.New("event signature mismatch")

// Event is a raw event emitted by a contract, as found in a transaction
// receipt or an event query.
type Event struct {
	FromAddress common.Address
	Keys        []common.Felt
	Data        []common.Felt
}

// Selector returns the first key, which is the selector of the emitted
// variant of the contract event enum.
func (ev Event) Selector() (common.Felt, bool) {
	if len(ev.Keys) == 0 {
		return common.Felt{}, false
	}
	return ev.Keys[0], true
}

// EventDecoders returns fresh decoders over the keys and data of ev.
func EventDecoders(ev Event) (keys, data *Decoder) {
	return NewDecoder(ev.Keys), NewDecoder(ev.Data)
}

// EventUnmarshaler is implemented by pointers to generated event types.
type EventUnmarshaler[T any] interface {
	*T
	DecodeEvent(keys, data *Decoder) error
}

// ParseEvent decodes ev into a generated event type. Trailing keys or data
// are rejected.
func ParseEvent[T any, PT EventUnmarshaler[T]](ev Event) (*T, error) {
	keys, data := EventDecoders(ev)
	v := new(T)
	if err := PT(v).DecodeEvent(keys, data); err != nil {
		return nil, err
	}
	if keys.Remaining() != 0 || data.Remaining() != 0 {
		return nil, ErrEventSignatureMismatch
	}
	return v, nil
}

// Match runs decode on copies of keys and data and advances both only if it
// succeeds. Flat variants of an event enum are tried in turn through it.
func Match(keys, data *Decoder, decode func(keys, data *Decoder) error) bool {
	k, d := keys.Clone(), data.Clone()
	if err := decode(k, d); err != nil {
		return false
	}
	*keys, *data = *k, *d
	return true
}
