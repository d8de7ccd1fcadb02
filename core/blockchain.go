// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package core drives block execution: per-block validation, transaction
// application, rewards and the commitment checks against the header.
package core

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/rawdb"
	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/core/vm"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Chain owns the canonical chain store and applies new blocks to it.
//
// All state for a batch of blocks is buffered in one KV transaction: either
// the whole batch commits or the persisted state stays bit-identical to what
// it was before the call. Concurrent calls against the same store are not
// supported; the caller serializes.
type Chain struct {
	db       ethdb.Database
	config   *params.ChainConfig
	vmConfig vm.Config

	genesisHash common.Hash
}

// NewChain opens the chain rooted at the previously-committed genesis block.
func NewChain(db ethdb.Database, config *params.ChainConfig, vmConfig vm.Config) (*Chain, error) {
	genesisHash := rawdb.ReadCanonicalHash(db, 0)
	if genesisHash == (common.Hash{}) {
		return nil, errors.New("chain store has no genesis block")
	}
	if rawdb.ReadHeadBlockHash(db) == (common.Hash{}) {
		return nil, errors.New("chain store has no head block")
	}
	return &Chain{
		db:          db,
		config:      config,
		vmConfig:    vmConfig,
		genesisHash: genesisHash,
	}, nil
}

// Config returns the fork schedule the chain runs with.
func (self *Chain) Config() *params.ChainConfig { return self.config }

// GenesisHash returns the hash of block 0.
func (self *Chain) GenesisHash() common.Hash { return self.genesisHash }

// GetBestBlockHeader returns the canonical chain tip.
func (self *Chain) GetBestBlockHeader() *types.Header {
	return rawdb.ReadHeader(self.db, rawdb.ReadHeadBlockHash(self.db))
}

// GetBlockHeaderByHash returns the header with the given hash, canonical or
// not.
func (self *Chain) GetBlockHeaderByHash(hash common.Hash) *types.Header {
	return rawdb.ReadHeader(self.db, hash)
}

// GetBlockHeaderByNumber returns the canonical header at the given height.
func (self *Chain) GetBlockHeaderByNumber(number uint64) *types.Header {
	hash := rawdb.ReadCanonicalHash(self.db, number)
	if hash == (common.Hash{}) {
		return nil
	}
	return rawdb.ReadHeader(self.db, hash)
}

// GetSuccessorHeader returns the canonical child of the given header, if
// any.
func (self *Chain) GetSuccessorHeader(header *types.Header) *types.Header {
	child := self.GetBlockHeaderByNumber(header.Number + 1)
	if child == nil || child.ParentHash != header.Hash() {
		return nil
	}
	return child
}

// GetBody returns the block body with the given hash.
func (self *Chain) GetBody(hash common.Hash) *types.Body {
	return rawdb.ReadBody(self.db, hash)
}

// GetReceipts returns the receipts of the block with the given hash.
func (self *Chain) GetReceipts(hash common.Hash) types.Receipts {
	return rawdb.ReadReceipts(self.db, hash)
}

// PersistBlocks validates and executes a batch of consecutive blocks
// extending the canonical head, and atomically persists the whole batch:
// headers, bodies, receipts, the canonical index and all state written by
// the executed transactions. Any validation or commitment failure aborts
// the batch with no observable change to the store.
func (self *Chain) PersistBlocks(headers []*types.Header, bodies []*types.Body) error {
	if len(headers) != len(bodies) {
		return fmt.Errorf("mismatched batch: %d headers, %d bodies", len(headers), len(bodies))
	}
	if len(headers) == 0 {
		return nil
	}
	txn := self.db.BeginTransaction()
	defer txn.Dispose()

	parent := rawdb.ReadHeader(txn, rawdb.ReadHeadBlockHash(txn))
	if parent == nil {
		return errors.New("chain store has no head block")
	}
	// BLOCKHASH reads resolve through the canonical index inside the
	// transaction, so blocks of the batch see their in-batch ancestors.
	getHash := func(number uint64) common.Hash {
		return rawdb.ReadCanonicalHash(txn, number)
	}
	processor := NewStateProcessor(self.config, getHash, self.vmConfig)

	for i, header := range headers {
		body := bodies[i]
		if err := self.applyBlock(txn, processor, parent, header, body); err != nil {
			log.Warn("Rejected block", "number", header.Number, "hash", header.Hash(), "err", err)
			return err
		}
		parent = header
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	log.Debug("Persisted blocks", "count", len(headers), "head", parent.Hash(), "number", parent.Number)
	return nil
}

// applyBlock validates, executes and stages one block inside the batch
// transaction.
func (self *Chain) applyBlock(txn ethdb.Transaction, processor *StateProcessor, parent, header *types.Header, body *types.Body) error {
	// Pre-execution validation: linkage, body commitments, gas settings.
	if header.ParentHash != parent.Hash() || header.Number != parent.Number+1 {
		return fmt.Errorf("%w: block %d parent %x, head %x", ErrParentNotFound, header.Number, header.ParentHash, parent.Hash())
	}
	if err := ValidateBody(header, body); err != nil {
		return err
	}
	if err := ValidateHeader(self.config, parent, header); err != nil {
		return err
	}
	// Execute against the parent's state.
	statedb, err := state.New(parent.Root, state.NewDatabase(txn))
	if err != nil {
		return err
	}
	receipts, _, usedGas, err := processor.Process(header, body, statedb)
	if err != nil {
		return err
	}
	// Post-execution commitment checks.
	if usedGas != header.GasUsed {
		return fmt.Errorf("%w: have %d, want %d", ErrBadGasUsed, usedGas, header.GasUsed)
	}
	if bloom := types.MergedBloom(receipts); bloom != header.Bloom {
		return fmt.Errorf("%w: have %x, want %x", ErrBadBloom, bloom, header.Bloom)
	}
	if receiptSha := types.DeriveSha(receipts); receiptSha != header.ReceiptHash {
		return fmt.Errorf("%w: have %x, want %x", ErrBadReceiptRoot, receiptSha, header.ReceiptHash)
	}
	root, err := statedb.Commit(txn, self.config.IsEIP158(header.Number))
	if err != nil {
		return err
	}
	if root != header.Root {
		return fmt.Errorf("%w: block %d have %x, want %x", ErrBadStateRoot, header.Number, root, header.Root)
	}
	// Fill in the derived receipt and log fields now that the block is
	// known good.
	blockHash := header.Hash()
	for _, receipt := range receipts {
		receipt.BlockHash = blockHash
		receipt.BlockNumber = new(big.Int).SetUint64(header.Number)
		for _, l := range receipt.Logs {
			l.BlockHash = blockHash
		}
	}
	// Stage the block into the canonical store.
	if err := rawdb.WriteHeader(txn, header); err != nil {
		return err
	}
	if err := rawdb.WriteBody(txn, blockHash, body); err != nil {
		return err
	}
	if err := rawdb.WriteReceipts(txn, blockHash, receipts); err != nil {
		return err
	}
	if err := rawdb.WriteCanonicalHash(txn, header.Number, blockHash); err != nil {
		return err
	}
	return rawdb.WriteHeadBlockHash(txn, blockHash)
}
