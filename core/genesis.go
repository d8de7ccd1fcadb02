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

package core

import (
	"errors"
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/rawdb"
	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
)

// GenesisAccount is an account in the state of the genesis block.
type GenesisAccount struct {
	Code    []byte                      `json:"code,omitempty"`
	Storage map[common.Hash]common.Hash `json:"storage,omitempty"`
	Balance *big.Int                    `json:"balance"`
	Nonce   uint64                      `json:"nonce,omitempty"`
}

// GenesisAlloc specifies the initial state of the chain.
type GenesisAlloc map[common.Address]GenesisAccount

// Genesis specifies block 0 of the chain.
type Genesis struct {
	Config     *params.ChainConfig `json:"config"`
	Nonce      uint64              `json:"nonce"`
	Timestamp  uint64              `json:"timestamp"`
	ExtraData  []byte              `json:"extraData"`
	GasLimit   uint64              `json:"gasLimit"`
	Difficulty *big.Int            `json:"difficulty"`
	Mixhash    common.Hash         `json:"mixHash"`
	Coinbase   common.Address      `json:"coinbase"`
	Alloc      GenesisAlloc        `json:"alloc"`
	BaseFee    *big.Int            `json:"baseFeePerGas,omitempty"`
}

// toHeader derives the genesis header by committing the allocation into a
// fresh state over the given transaction.
func (self *Genesis) toHeader(txn ethdb.Transaction) (*types.Header, error) {
	statedb, err := state.New(common.Hash{}, state.NewDatabase(txn))
	if err != nil {
		return nil, err
	}
	for addr, account := range self.Alloc {
		if account.Balance != nil {
			statedb.AddBalance(addr, account.Balance)
		}
		statedb.SetNonce(addr, account.Nonce)
		if len(account.Code) != 0 {
			statedb.SetCode(addr, account.Code)
		}
		for key, value := range account.Storage {
			statedb.SetState(addr, key, value)
		}
	}
	root, err := statedb.Commit(txn, false)
	if err != nil {
		return nil, err
	}
	head := &types.Header{
		Number:      0,
		Nonce:       types.EncodeNonce(self.Nonce),
		Time:        self.Timestamp,
		Extra:       self.ExtraData,
		GasLimit:    self.GasLimit,
		Difficulty:  self.Difficulty,
		MixDigest:   self.Mixhash,
		Coinbase:    self.Coinbase,
		Root:        root,
		TxHash:      types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		UncleHash:   types.EmptyUncleHash,
	}
	if self.GasLimit == 0 {
		head.GasLimit = params.MinGasLimit
	}
	if self.Difficulty == nil {
		head.Difficulty = big.NewInt(1)
	}
	if self.Config != nil && self.Config.IsLondon(0) {
		if self.BaseFee != nil {
			head.BaseFee = self.BaseFee
		} else {
			head.BaseFee = new(big.Int).SetUint64(self.Config.BaseFeeAtGenesisOfLondon())
		}
	}
	return head, nil
}

// Commit writes the genesis state and block to db. It refuses to overwrite
// an already-initialized chain store.
func (self *Genesis) Commit(db ethdb.Database) (*types.Header, error) {
	if hash := rawdb.ReadCanonicalHash(db, 0); hash != (common.Hash{}) {
		return nil, errors.New("genesis already committed")
	}
	txn := db.BeginTransaction()
	defer txn.Dispose()
	header, err := self.toHeader(txn)
	if err != nil {
		return nil, err
	}
	hash := header.Hash()
	if err := rawdb.WriteHeader(txn, header); err != nil {
		return nil, err
	}
	if err := rawdb.WriteBody(txn, hash, new(types.Body)); err != nil {
		return nil, err
	}
	if err := rawdb.WriteCanonicalHash(txn, 0, hash); err != nil {
		return nil, err
	}
	if err := rawdb.WriteHeadBlockHash(txn, hash); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	return header, nil
}
