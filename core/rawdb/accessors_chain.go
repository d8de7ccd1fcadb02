// Copyright 2018 The go-ethereum Authors
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

package rawdb

import (
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// ReadCanonicalHash retrieves the hash of the canonical block at the number.
func ReadCanonicalHash(db ethdb.Getter, number uint64) common.Hash {
	data, _ := db.Get(canonicalHashKey(number))
	if len(data) == 0 {
		return common.Hash{}
	}
	return common.BytesToHash(data)
}

// WriteCanonicalHash stores the canonical hash for the given block number.
func WriteCanonicalHash(db ethdb.Putter, number uint64, hash common.Hash) error {
	return db.Put(canonicalHashKey(number), hash.Bytes())
}

// ReadHeadBlockHash retrieves the hash of the canonical chain tip.
func ReadHeadBlockHash(db ethdb.Getter) common.Hash {
	data, _ := db.Get(headBlockKey)
	if len(data) == 0 {
		return common.Hash{}
	}
	return common.BytesToHash(data)
}

// WriteHeadBlockHash stores the hash of the canonical chain tip.
func WriteHeadBlockHash(db ethdb.Putter, hash common.Hash) error {
	return db.Put(headBlockKey, hash.Bytes())
}

// ReadHeader retrieves the block header corresponding to the hash.
func ReadHeader(db ethdb.Getter, hash common.Hash) *types.Header {
	data, _ := db.Get(headerKey(hash))
	if len(data) == 0 {
		return nil
	}
	header := new(types.Header)
	if err := rlp.DecodeBytes(data, header); err != nil {
		log.Error("Invalid header RLP", "hash", hash, "err", err)
		return nil
	}
	return header
}

// WriteHeader stores a block header.
func WriteHeader(db ethdb.Putter, header *types.Header) error {
	data, err := rlp.EncodeToBytes(header)
	if err != nil {
		return err
	}
	return db.Put(headerKey(header.Hash()), data)
}

// ReadBody retrieves the block body corresponding to the hash.
func ReadBody(db ethdb.Getter, hash common.Hash) *types.Body {
	data, _ := db.Get(bodyKey(hash))
	if len(data) == 0 {
		return nil
	}
	body := new(types.Body)
	if err := rlp.DecodeBytes(data, body); err != nil {
		log.Error("Invalid body RLP", "hash", hash, "err", err)
		return nil
	}
	return body
}

// WriteBody stores a block body.
func WriteBody(db ethdb.Putter, hash common.Hash, body *types.Body) error {
	data, err := rlp.EncodeToBytes(body)
	if err != nil {
		return err
	}
	return db.Put(bodyKey(hash), data)
}

// ReadReceipts retrieves all the receipts belonging to a block.
func ReadReceipts(db ethdb.Getter, hash common.Hash) types.Receipts {
	data, _ := db.Get(receiptsKey(hash))
	if len(data) == 0 {
		return nil
	}
	var receipts types.Receipts
	if err := rlp.DecodeBytes(data, &receipts); err != nil {
		log.Error("Invalid receipts RLP", "hash", hash, "err", err)
		return nil
	}
	return receipts
}

// WriteReceipts stores all the receipts belonging to a block.
func WriteReceipts(db ethdb.Putter, hash common.Hash, receipts types.Receipts) error {
	data, err := rlp.EncodeToBytes(receipts)
	if err != nil {
		return err
	}
	return db.Put(receiptsKey(hash), data)
}
