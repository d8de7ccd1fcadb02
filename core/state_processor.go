// Copyright 2015 The go-ethereum Authors
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

package core

import (
	"fmt"
	"math/big"

	"github.com/basalt-chain/basalt-evm/consensus/ethash"
	"github.com/basalt-chain/basalt-evm/consensus/misc"
	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/core/vm"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
)

// StateProcessor executes the transactions of one block against an accounts
// cache rooted at the parent's state, accumulating receipts.
type StateProcessor struct {
	config *params.ChainConfig
	getHash vm.GetHashFunc
	vmConfig vm.Config
}

// NewStateProcessor initialises a block processor.
func NewStateProcessor(config *params.ChainConfig, getHash vm.GetHashFunc, vmConfig vm.Config) *StateProcessor {
	return &StateProcessor{
		config:  config,
		getHash: getHash,
		vmConfig: vmConfig,
	}
}

// NewEVMBlockContext builds the EVM's block context from a header.
func NewEVMBlockContext(header *types.Header, getHash vm.GetHashFunc) vm.BlockContext {
	var baseFee *big.Int
	if header.BaseFee != nil {
		baseFee = new(big.Int).Set(header.BaseFee)
	}
	return vm.BlockContext{
		GetHash:     getHash,
		Coinbase:    header.Coinbase,
		BlockNumber: header.Number,
		Time:        header.Time,
		Difficulty:  header.Difficulty,
		GasLimit:    header.GasLimit,
		BaseFee:     baseFee,
	}
}

// Process runs every transaction of the block in order, applies the DAO
// irregular transfer and the mining rewards, and returns the receipts, the
// flat log list and the total gas used. A non-nil error means the block is
// invalid; the caller discards the state.
func (self *StateProcessor) Process(header *types.Header, body *types.Body, statedb *state.StateDB) (types.Receipts, []*types.Log, uint64, error) {
	// The DAO fork rewrites a fixed set of balances at its activation block.
	if self.config.DAOForkSupport && self.config.DAOForkBlock != params.BlockNumNIL && self.config.DAOForkBlock == header.Number {
		misc.ApplyDAOHardFork(statedb)
	}
	var (
		receipts types.Receipts
		usedGas  = new(uint64)
		allLogs  []*types.Log
		gp       = new(GasPool).AddGas(header.GasLimit)
		rules    = self.config.Rules(header.Number, header.Time)
		signer   = types.NewSigner(self.config.ChainID)
		evm      = vm.NewEVM(NewEVMBlockContext(header, self.getHash), statedb, self.config, rules, self.vmConfig)
	)
	for i, tx := range body.Transactions {
		from, err := signer.Sender(tx)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("tx %d [%v]: %w: %v", i, tx.Hash(), ErrInvalidSignature, err)
		}
		receipt, err := applyTransaction(evm, statedb, gp, tx, from, i, usedGas)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("could not apply tx %d [%v]: %w", i, tx.Hash(), err)
		}
		receipts = append(receipts, receipt)
		allLogs = append(allLogs, receipt.Logs...)
	}
	// Block and ommer rewards.
	ethash.AccumulateRewards(self.config, statedb, header, body.Uncles)
	return receipts, allLogs, *usedGas, nil
}

// applyTransaction runs a single transaction and builds its receipt.
func applyTransaction(evm *vm.EVM, statedb *state.StateDB, gp *GasPool, tx *types.Transaction, from common.Address, txIndex int, usedGas *uint64) (*types.Receipt, error) {
	statedb.BeginTransaction(tx.Hash(), txIndex)
	evm.SetTxContext(vm.TxContext{
		Origin:   from,
		GasPrice: tx.EffectiveGasPrice(evm.Context.BaseFee),
	})
	result, err := ApplyMessage(evm, statedb, tx, from, gp)
	if err != nil {
		return nil, err
	}
	*usedGas += result.UsedGas

	// The receipt's state field: from Byzantium a 1-bit status, before it
	// the intermediate state root after the transaction fully applies,
	// including refunds and empty-account reaping.
	var root []byte
	if evm.Rules.IsByzantium {
		statedb.Finalise(evm.Rules.IsEIP158)
	} else {
		root = statedb.IntermediateRoot(evm.Rules.IsEIP158).Bytes()
	}
	receipt := types.NewReceipt(root, result.Failed(), *usedGas)
	receipt.Type = tx.Type()
	receipt.TxHash = tx.Hash()
	receipt.GasUsed = result.UsedGas
	if tx.To() == nil {
		receipt.ContractAddress = result.ContractAddress
	}
	receipt.Logs = statedb.GetLogs(tx.Hash())
	receipt.Bloom = types.CreateBloom(receipt)
	receipt.TransactionIndex = uint(statedb.TxIndex())
	return receipt, nil
}
