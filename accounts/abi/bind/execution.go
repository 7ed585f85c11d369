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
	"fmt"
	"math/big"

	"github.com/starkbind/starkbind/common"
	"github.com/starkbind/starkbind/log"
)

// ResourceBounds limits the amount of a resource a version 3 transaction may
// consume and the price paid per unit.
type ResourceBounds struct {
	MaxAmount       uint64
	MaxPricePerUnit *big.Int // nil = 0
}

// EncodeMulticall serializes calls in the calldata layout of an account's
// __execute__ entry point: the number of calls, then for each call the
// target, the selector, the calldata length and the calldata.
func EncodeMulticall(calls []FunctionCall) []common.Felt {
	e := NewEncoder()
	e.Len(len(calls))
	for _, call := range calls {
		e.Address(call.ContractAddress)
		e.Felt(call.EntryPointSelector)
		e.Len(len(call.Calldata))
		for _, f := range call.Calldata {
			e.Felt(f)
		}
	}
	return e.felts
}

// DecodeMulticall is the inverse of EncodeMulticall.
func DecodeMulticall(calldata []common.Felt) ([]FunctionCall, error) {
	d := NewDecoder(calldata)
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	calls := make([]FunctionCall, n)
	for i := range calls {
		if calls[i].ContractAddress, err = d.Address(); err != nil {
			return nil, err
		}
		if calls[i].EntryPointSelector, err = d.Felt(); err != nil {
			return nil, err
		}
		size, err := d.Len()
		if err != nil {
			return nil, err
		}
		calls[i].Calldata = make([]common.Felt, size)
		for j := range calls[i].Calldata {
			if calls[i].Calldata[j], err = d.Felt(); err != nil {
				return nil, err
			}
		}
	}
	if d.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing felts after %d calls", d.Remaining(), n)
	}
	return calls, nil
}

// execution holds what both invoke versions share.
type execution struct {
	transactor ContractTransactor
	calls      []FunctionCall
	nonce      *common.Felt // nil = account's current nonce
	err        error
}

// prepare checks the execution can be sent and resolves the nonce.
func (x *execution) prepare(ctx context.Context) (common.Address, common.Felt, error) {
	if x.err != nil {
		return common.Address{}, common.Felt{}, x.err
	}
	if x.transactor == nil {
		return common.Address{}, common.Felt{}, ErrNoTransactor
	}
	account := x.transactor.Account()
	if x.nonce != nil {
		return account, *x.nonce, nil
	}
	nonce, err := x.transactor.Nonce(ctx, account)
	if err != nil {
		return common.Address{}, common.Felt{}, fmt.Errorf("failed to retrieve account nonce: %w", err)
	}
	return account, nonce, nil
}

// ExecutionV1 is a pending version 1 invoke transaction. The fee is paid in
// ETH and bounded by MaxFee.
type ExecutionV1 struct {
	execution
	maxFee *big.Int // nil = estimated by the transactor
}

// NewExecutionV1 starts a version 1 invoke of calls, which may target any
// number of contracts.
func NewExecutionV1(transactor ContractTransactor, calls ...FunctionCall) *ExecutionV1 {
	return &ExecutionV1{execution: execution{transactor: transactor, calls: calls}}
}

// FailedExecutionV1 returns an execution that reports err when sent.
func FailedExecutionV1(err error) *ExecutionV1 {
	return &ExecutionV1{execution: execution{err: err}}
}

// WithMaxFee sets the maximum fee, in wei, the transaction may pay.
func (x *ExecutionV1) WithMaxFee(fee *big.Int) *ExecutionV1 {
	x.maxFee = fee
	return x
}

// WithNonce overrides the nonce instead of reading it from the account.
func (x *ExecutionV1) WithNonce(nonce common.Felt) *ExecutionV1 {
	x.nonce = &nonce
	return x
}

// Calls returns the function calls the transaction runs.
func (x *ExecutionV1) Calls() []FunctionCall {
	return x.calls
}

// Transaction assembles the invoke transaction without sending it.
func (x *ExecutionV1) Transaction(ctx context.Context) (*InvokeV1, error) {
	account, nonce, err := x.prepare(ensureContext(ctx))
	if err != nil {
		return nil, err
	}
	return &InvokeV1{
		SenderAddress: account,
		Calldata:      EncodeMulticall(x.calls),
		MaxFee:        x.maxFee,
		Nonce:         nonce,
	}, nil
}

// Send submits the transaction through the transactor and returns its hash.
func (x *ExecutionV1) Send(ctx context.Context) (common.Felt, error) {
	ctx = ensureContext(ctx)
	tx, err := x.Transaction(ctx)
	if err != nil {
		return common.Felt{}, err
	}
	log.Trace("Sending invoke transaction", "version", 1, "sender", tx.SenderAddress, "calls", len(x.calls), "nonce", tx.Nonce)
	return x.transactor.SendInvokeV1(ctx, tx)
}

// ExecutionV3 is a pending version 3 invoke transaction. The fee is paid in
// STRK within the resource bounds of each gas kind.
type ExecutionV3 struct {
	execution
	l1Gas     ResourceBounds
	l2Gas     ResourceBounds
	l1DataGas ResourceBounds
	tip       uint64
}

// NewExecutionV3 starts a version 3 invoke of calls, which may target any
// number of contracts.
func NewExecutionV3(transactor ContractTransactor, calls ...FunctionCall) *ExecutionV3 {
	return &ExecutionV3{execution: execution{transactor: transactor, calls: calls}}
}

// FailedExecutionV3 returns an execution that reports err when sent.
func FailedExecutionV3(err error) *ExecutionV3 {
	return &ExecutionV3{execution: execution{err: err}}
}

func (x *ExecutionV3) WithL1Gas(bounds ResourceBounds) *ExecutionV3 {
	x.l1Gas = bounds
	return x
}

func (x *ExecutionV3) WithL2Gas(bounds ResourceBounds) *ExecutionV3 {
	x.l2Gas = bounds
	return x
}

func (x *ExecutionV3) WithL1DataGas(bounds ResourceBounds) *ExecutionV3 {
	x.l1DataGas = bounds
	return x
}

// WithTip sets the tip paid per unit of L2 gas.
func (x *ExecutionV3) WithTip(tip uint64) *ExecutionV3 {
	x.tip = tip
	return x
}

// WithNonce overrides the nonce instead of reading it from the account.
func (x *ExecutionV3) WithNonce(nonce common.Felt) *ExecutionV3 {
	x.nonce = &nonce
	return x
}

// Calls returns the function calls the transaction runs.
func (x *ExecutionV3) Calls() []FunctionCall {
	return x.calls
}

// Transaction assembles the invoke transaction without sending it.
func (x *ExecutionV3) Transaction(ctx context.Context) (*InvokeV3, error) {
	account, nonce, err := x.prepare(ensureContext(ctx))
	if err != nil {
		return nil, err
	}
	return &InvokeV3{
		SenderAddress: account,
		Calldata:      EncodeMulticall(x.calls),
		L1Gas:         x.l1Gas,
		L2Gas:         x.l2Gas,
		L1DataGas:     x.l1DataGas,
		Tip:           x.tip,
		Nonce:         nonce,
	}, nil
}

// Send submits the transaction through the transactor and returns its hash.
func (x *ExecutionV3) Send(ctx context.Context) (common.Felt, error) {
	ctx = ensureContext(ctx)
	tx, err := x.Transaction(ctx)
	if err != nil {
		return common.Felt{}, err
	}
	log.Trace("Sending invoke transaction", "version", 3, "sender", tx.SenderAddress, "calls", len(x.calls), "nonce", tx.Nonce)
	return x.transactor.SendInvokeV3(ctx, tx)
}
