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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkbind/starkbind/common"
	"github.com/starkbind/starkbind/crypto"
)

// transferEvent mirrors the code generated for an event struct with two key
// members and one data member.
type transferEvent struct {
	From   common.Address
	To     common.Address
	Amount uint64
}

func (ev *transferEvent) DecodeEvent(keys, data *Decoder) (err error) {
	if ev.From, err = keys.Address(); err != nil {
		return err
	}
	if ev.To, err = keys.Address(); err != nil {
		return err
	}
	ev.Amount, err = data.Uint64()
	return err
}

// contractEvent mirrors a generated event enum with one nested variant.
type contractEvent struct {
	Transfer transferEvent
}

func (ev *contractEvent) DecodeEvent(keys, data *Decoder) error {
	selector, err := keys.Felt()
	if err != nil {
		return err
	}
	if !selector.Equal(crypto.SelectorFromName("Transfer")) {
		return ErrEventSignatureMismatch
	}
	return ev.Transfer.DecodeEvent(keys, data)
}

func TestParseEvent(t *testing.T) {
	ev := Event{
		FromAddress: common.MustHexToAddress("0x1"),
		Keys:        []common.Felt{crypto.SelectorFromName("Transfer"), common.FeltFromUint64(2), common.FeltFromUint64(3)},
		Data:        []common.Felt{common.FeltFromUint64(100)},
	}
	selector, ok := ev.Selector()
	require.True(t, ok)
	assert.Equal(t, "0x99cd8bde557814842a3121e8ddfd433a539b8c9f14bf31ebf108d12e6196e9", selector.Hex())

	parsed, err := ParseEvent[contractEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, common.MustHexToAddress("0x2"), parsed.Transfer.From)
	assert.Equal(t, common.MustHexToAddress("0x3"), parsed.Transfer.To)
	assert.Equal(t, uint64(100), parsed.Transfer.Amount)

	// Another selector.
	ev.Keys[0] = crypto.SelectorFromName("Approval")
	_, err = ParseEvent[contractEvent](ev)
	assert.ErrorIs(t, err, ErrEventSignatureMismatch)

	// Trailing data.
	ev.Keys[0] = crypto.SelectorFromName("Transfer")
	ev.Data = append(ev.Data, common.FeltFromUint64(1))
	_, err = ParseEvent[contractEvent](ev)
	assert.ErrorIs(t, err, ErrEventSignatureMismatch)

	_, ok = Event{}.Selector()
	assert.False(t, ok)
}

func TestMatchRestoresOnFailure(t *testing.T) {
	keys, data := EventDecoders(Event{Keys: []common.Felt{common.FeltFromUint64(1), common.FeltFromUint64(2)}})

	var ev transferEvent
	assert.False(t, Match(keys, data, ev.DecodeEvent))
	assert.Equal(t, 2, keys.Remaining())

	data = NewDecoder([]common.Felt{common.FeltFromUint64(9)})
	assert.True(t, Match(keys, data, ev.DecodeEvent))
	assert.Zero(t, keys.Remaining())
	assert.Zero(t, data.Remaining())
	assert.Equal(t, uint64(9), ev.Amount)
}
