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

package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Log is an event emitted by a contract. The consensus fields are the ones
// committed to by the receipts trie and the bloom; the rest is derived
// bookkeeping filled in by the block executor.
type Log struct {
	// Consensus fields:
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    []byte         `json:"data"`

	// Derived fields, not part of the consensus encoding:
	BlockNumber uint64      `json:"blockNumber" rlp:"-"`
	TxHash      common.Hash `json:"transactionHash" rlp:"-"`
	TxIndex     uint        `json:"transactionIndex" rlp:"-"`
	BlockHash   common.Hash `json:"blockHash" rlp:"-"`
	Index       uint        `json:"logIndex" rlp:"-"`
}
