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
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/starkbind/starkbind/common"
)

var (
	// ErrNoCaller is returned by read operations on a contract bound without a
	// ContractCaller.
	ErrNoCaller = errors.New("contract is not bound to a caller")

	// ErrNoTransactor is returned by write operations on a contract bound
	// without a ContractTransactor, e.g. one created through a reader.
	ErrNoTransactor = errors.New("contract is not bound to a transactor")
)

// FunctionCall is a single invocation of a contract entry point, the unit both
// of a read only call and of the calls bundled into an invoke transaction.
type FunctionCall struct {
	ContractAddress    common.Address
	EntryPointSelector common.Felt
	Calldata           []common.Felt
}

// BlockTag names a moving block reference.
type BlockTag string

const (
	LatestBlock  BlockTag = "latest"
	PendingBlock BlockTag = "pending"
)

// BlockID selects the state a call executes against. Exactly one of the
// fields is expected to be set, an empty BlockID means the latest block.
type BlockID struct {
	Tag    BlockTag
	Number *uint64
	Hash   *common.Felt
}

// BlockNumber returns the BlockID of a block by height.
func BlockNumber(n uint64) BlockID {
	return BlockID{Number: &n}
}

// BlockHash returns the BlockID of a block by hash.
func BlockHash(h common.Felt) BlockID {
	return BlockID{Hash: &h}
}

func (b BlockID) String() string {
	switch {
	case b.Hash != nil:
		return b.Hash.Hex()
	case b.Number != nil:
		return fmt.Sprintf("%d", *b.Number)
	case b.Tag != "":
		return string(b.Tag)
	default:
		return string(LatestBlock)
	}
}

// InvokeV1 is an invoke transaction paying its fee in ETH, bounded by MaxFee.
type InvokeV1 struct {
	SenderAddress common.Address
	Calldata      []common.Felt // multicall encoded, see EncodeMulticall
	MaxFee        *big.Int
	Nonce         common.Felt
}

// InvokeV3 is an invoke transaction paying its fee in STRK within per
// resource bounds.
type InvokeV3 struct {
	SenderAddress common.Address
	Calldata      []common.Felt // multicall encoded, see EncodeMulticall
	L1Gas         ResourceBounds
	L2Gas         ResourceBounds
	L1DataGas     ResourceBounds
	Tip           uint64
	Nonce         common.Felt
}

//go:generate mockgen -destination=mock_backend_test.go -package=bind_test github.com/starkbind/starkbind/accounts/abi/bind ContractCaller,ContractTransactor

// ContractCaller defines the methods needed to allow operating with a contract
// on a read only basis.
type ContractCaller interface {
	// Call executes a view function against the state at block and returns
	// its serialized outputs.
	Call(ctx context.Context, call FunctionCall, block BlockID) ([]common.Felt, error)
}

// ContractTransactor defines the methods needed to allow operating with a
// contract on a write only basis. It is usually backed by an account, which
// signs the invoke transactions it is handed.
type ContractTransactor interface {
	// Account returns the address of the account the transactions are sent
	// from.
	Account() common.Address

	// Nonce retrieves the current nonce of an account.
	Nonce(ctx context.Context, account common.Address) (common.Felt, error)

	// SendInvokeV1 signs and submits a version 1 invoke transaction, returning
	// its hash.
	SendInvokeV1(ctx context.Context, tx *InvokeV1) (common.Felt, error)

	// SendInvokeV3 signs and submits a version 3 invoke transaction, returning
	// its hash.
	SendInvokeV3(ctx context.Context, tx *InvokeV3) (common.Felt, error)
}

// ContractBackend defines the methods needed to work with contracts on a
// read-write basis.
type ContractBackend interface {
	ContractCaller
	ContractTransactor
}
