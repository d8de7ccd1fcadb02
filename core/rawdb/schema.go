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

// Package rawdb holds the flat key schema of the chain store.
package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// The canonical chain index and block data live under single-letter
// prefixes:
//
//	"H" + num (uint64 big endian)  -> canonical block hash
//	"h" + hash                     -> header RLP
//	"b" + hash                     -> body RLP
//	"r" + hash                     -> receipts RLP
//	"LastBlock"                    -> canonical head hash
var (
	canonicalPrefix = []byte("H")
	headerPrefix    = []byte("h")
	bodyPrefix      = []byte("b")
	receiptsPrefix  = []byte("r")

	headBlockKey = []byte("LastBlock")
)

func encodeBlockNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

func canonicalHashKey(number uint64) []byte {
	return append(canonicalPrefix, encodeBlockNumber(number)...)
}

func headerKey(hash common.Hash) []byte {
	return append(headerPrefix, hash.Bytes()...)
}

func bodyKey(hash common.Hash) []byte {
	return append(bodyPrefix, hash.Bytes()...)
}

func receiptsKey(hash common.Hash) []byte {
	return append(receiptsPrefix, hash.Bytes()...)
}
