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

	"github.com/starkbind/starkbind/common"
)

// CallOpts is the collection of options to fine tune a contract call request.
type CallOpts struct {
	Context context.Context // Network context to support cancellation and timeouts (nil = no timeout)
	Block   *BlockID        // Block to execute the call against (nil = latest)
}

// BoundContract is the base wrapper object that reflects a contract on the
// Starknet network. It contains a collection of methods that are used by the
// higher level contract bindings to operate.
type BoundContract struct {
	address    common.Address     // Deployment address of the contract
	caller     ContractCaller     // Read interface to interact with the blockchain
	transactor ContractTransactor // Write interface to interact with the blockchain
}

// NewBoundContract creates a low level contract interface through which calls
// and transactions may be made through. Either backend may be nil, in which
// case the matching operations fail.
func NewBoundContract(address common.Address, caller ContractCaller, transactor ContractTransactor) *BoundContract {
	return &BoundContract{
		address:    address,
		caller:     caller,
		transactor: transactor,
	}
}

// Address returns the deployment address of the contract.
func (c *BoundContract) Address() common.Address {
	return c.address
}

// FunctionCall builds a call of the entry point with the given selector.
func (c *BoundContract) FunctionCall(selector common.Felt, calldata []common.Felt) FunctionCall {
	return FunctionCall{
		ContractAddress:    c.address,
		EntryPointSelector: selector,
		Calldata:           calldata,
	}
}

// Call invokes the view entry point with the given selector and returns its
// serialized outputs.
func (c *BoundContract) Call(opts *CallOpts, selector common.Felt, calldata []common.Felt) ([]common.Felt, error) {
	if c.caller == nil {
		return nil, ErrNoCaller
	}
	// Don't crash on a lazy user
	if opts == nil {
		opts = new(CallOpts)
	}
	block := BlockID{Tag: LatestBlock}
	if opts.Block != nil {
		block = *opts.Block
	}
	return c.caller.Call(ensureContext(opts.Context), c.FunctionCall(selector, calldata), block)
}

// ExecuteV1 starts a version 1 invoke transaction running calls.
func (c *BoundContract) ExecuteV1(calls ...FunctionCall) *ExecutionV1 {
	return NewExecutionV1(c.transactor, calls...)
}

// ExecuteV3 starts a version 3 invoke transaction running calls.
func (c *BoundContract) ExecuteV3(calls ...FunctionCall) *ExecutionV3 {
	return NewExecutionV3(c.transactor, calls...)
}

// ensureContext is a helper method to ensure a context is not nil, even if the
// user specified it as such.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
