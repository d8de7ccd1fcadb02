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
	"bytes"

	"github.com/basalt-chain/basalt-evm/trie"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// DerivableList is a list whose entries can be committed to a trie:
// transactions and receipts.
type DerivableList interface {
	Len() int
	EncodeIndex(int, *bytes.Buffer)
}

// nullReader backs the throwaway tries of DeriveSha. The trie is built from
// scratch in memory, so no node is ever resolved from it.
type nullReader struct{}

func (nullReader) Get([]byte) ([]byte, error) { return nil, nil }

// DeriveSha computes the trie root of a list of items keyed by their
// RLP-encoded index, as committed in the txRoot and receiptsRoot header
// fields.
func DeriveSha(list DerivableList) common.Hash {
	tr, _ := trie.New(common.Hash{}, nullReader{}, nil)
	valueBuf := new(bytes.Buffer)
	var indexBuf []byte
	for i := 0; i < list.Len(); i++ {
		indexBuf, _ = rlp.EncodeToBytes(uint(i))
		valueBuf.Reset()
		list.EncodeIndex(i, valueBuf)
		tr.Insert(indexBuf, valueBuf.Bytes())
	}
	return tr.Hash()
}
