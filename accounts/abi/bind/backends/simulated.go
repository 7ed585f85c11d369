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

// Package backends implements an in-memory contract backend for testing
// generated bindings without a node.
package backends

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/starkbind/starkbind/accounts/abi/bind"
	"github.com/starkbind/starkbind/common"
	"github.com/starkbind/starkbind/crypto"
	"github.com/starkbind/starkbind/log"
)

var _ bind.ContractBackend = (*SimulatedBackend)(nil)

var (
	ErrContractNotFound   = errors.New("contract not found")
	ErrEntryPointNotFound = errors.New("entry point not found")
	ErrUnknownBlock       = errors.New("unknown block")
	ErrInvalidNonce       = errors.New("invalid transaction nonce")
)

// CallContext is handed to an entry point on every invocation.
type CallContext struct {
	Contract common.Address // contract being executed
	Caller   common.Address // sending account, zero for read only calls
	Calldata []common.Felt

	events []bind.Event
}

// Emit records an event emitted by the executing contract.
func (c *CallContext) Emit(keys, data []common.Felt) {
	c.events = append(c.events, bind.Event{FromAddress: c.Contract, Keys: keys, Data: data})
}

// EntryPoint is the Go implementation of a contract function.
type EntryPoint func(c *CallContext) ([]common.Felt, error)

// Receipt is the outcome of an invoke transaction.
type Receipt struct {
	Hash     common.Felt
	Version  int
	Sender   common.Address
	Nonce    uint64
	Calls    []bind.FunctionCall
	Events   []bind.Event
	Reverted error  // first failing call, the events of a reverted invoke are dropped
	Block    uint64 // block the transaction was committed in, 0 while pending
}

// SimulatedBackend executes calls and invokes against contracts implemented
// in Go. Invokes execute immediately and are committed into a block by Commit.
type SimulatedBackend struct {
	mu        sync.Mutex
	account   common.Address
	contracts map[common.Address]map[common.Felt]EntryPoint
	nonces    map[common.Address]uint64
	pending   []*Receipt
	receipts  map[common.Felt]*Receipt
	block     uint64
}

// NewSimulatedBackend creates a backend sending transactions from account.
func NewSimulatedBackend(account common.Address) *SimulatedBackend {
	return &SimulatedBackend{
		account:   account,
		contracts: make(map[common.Address]map[common.Felt]EntryPoint),
		nonces:    make(map[common.Address]uint64),
		receipts:  make(map[common.Felt]*Receipt),
	}
}

// Deploy registers the entry points of a contract at address, keyed by their
// Cairo name.
func (b *SimulatedBackend) Deploy(address common.Address, entryPoints map[string]EntryPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	selectors := make(map[common.Felt]EntryPoint, len(entryPoints))
	for name, fn := range entryPoints {
		selectors[crypto.SelectorFromName(name)] = fn
	}
	b.contracts[address] = selectors
	log.Debug("Deployed simulated contract", "address", address, "entrypoints", len(entryPoints))
}

// Commit seals the pending transactions into a new block and returns its
// number.
func (b *SimulatedBackend) Commit() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.block++
	for _, r := range b.pending {
		r.Block = b.block
	}
	log.Trace("Committed simulated block", "number", b.block, "txs", len(b.pending))
	b.pending = nil
	return b.block
}

// BlockNumber returns the number of the latest committed block.
func (b *SimulatedBackend) BlockNumber() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.block
}

// Receipt returns the receipt of a sent transaction.
func (b *SimulatedBackend) Receipt(hash common.Felt) (*Receipt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.receipts[hash]
	return r, ok
}

// Call implements bind.ContractCaller. Every known block serves the current
// state.
func (b *SimulatedBackend) Call(ctx context.Context, call bind.FunctionCall, block bind.BlockID) ([]common.Felt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if block.Hash != nil || (block.Number != nil && *block.Number > b.block) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownBlock, block)
	}
	c := &CallContext{Contract: call.ContractAddress, Calldata: call.Calldata}
	return b.execute(c, call.EntryPointSelector)
}

func (b *SimulatedBackend) execute(c *CallContext, selector common.Felt) ([]common.Felt, error) {
	contract, ok := b.contracts[c.Contract]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrContractNotFound, c.Contract)
	}
	fn, ok := contract[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %v on %v", ErrEntryPointNotFound, selector, c.Contract)
	}
	return fn(c)
}

// Account implements bind.ContractTransactor.
func (b *SimulatedBackend) Account() common.Address {
	return b.account
}

// Nonce implements bind.ContractTransactor.
func (b *SimulatedBackend) Nonce(ctx context.Context, account common.Address) (common.Felt, error) {
	if err := ctx.Err(); err != nil {
		return common.Felt{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return common.FeltFromUint64(b.nonces[account]), nil
}

// SendInvokeV1 implements bind.ContractTransactor.
func (b *SimulatedBackend) SendInvokeV1(ctx context.Context, tx *bind.InvokeV1) (common.Felt, error) {
	return b.invoke(ctx, 1, tx.SenderAddress, tx.Nonce, tx.Calldata)
}

// SendInvokeV3 implements bind.ContractTransactor.
func (b *SimulatedBackend) SendInvokeV3(ctx context.Context, tx *bind.InvokeV3) (common.Felt, error) {
	return b.invoke(ctx, 3, tx.SenderAddress, tx.Nonce, tx.Calldata)
}

func (b *SimulatedBackend) invoke(ctx context.Context, version int, sender common.Address, nonce common.Felt, calldata []common.Felt) (common.Felt, error) {
	if err := ctx.Err(); err != nil {
		return common.Felt{}, err
	}
	calls, err := bind.DecodeMulticall(calldata)
	if err != nil {
		return common.Felt{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if n, ok := nonce.Uint64(); !ok || n != b.nonces[sender] {
		return common.Felt{}, fmt.Errorf("%w: have %v, want %d", ErrInvalidNonce, nonce, b.nonces[sender])
	}
	receipt := &Receipt{
		Hash:    txHash(version, sender, nonce, calldata),
		Version: version,
		Sender:  sender,
		Nonce:   b.nonces[sender],
		Calls:   calls,
	}
	for _, call := range calls {
		c := &CallContext{Contract: call.ContractAddress, Caller: sender, Calldata: call.Calldata}
		if _, err := b.execute(c, call.EntryPointSelector); err != nil {
			receipt.Reverted = err
			receipt.Events = nil
			break
		}
		receipt.Events = append(receipt.Events, c.events...)
	}
	b.nonces[sender]++
	b.pending = append(b.pending, receipt)
	b.receipts[receipt.Hash] = receipt

	log.Debug("Executed simulated invoke", "hash", receipt.Hash, "version", version, "calls", len(calls), "reverted", receipt.Reverted != nil)
	return receipt.Hash, nil
}

// txHash derives a unique transaction identifier. It is not the hash a
// sequencer would compute.
func txHash(version int, sender common.Address, nonce common.Felt, calldata []common.Felt) common.Felt {
	v, s, n := common.FeltFromUint64(uint64(version)).Bytes(), sender.Bytes(), nonce.Bytes()
	parts := [][]byte{v[:], s[:], n[:]}
	for _, f := range calldata {
		b := f.Bytes()
		parts = append(parts, b[:])
	}
	return crypto.StarknetKeccak(parts...)
}
