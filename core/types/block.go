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

// Package types holds the consensus data structures of the chain: headers,
// bodies, transactions, receipts and logs, together with their RLP codecs.
package types

import (
	"encoding/binary"
	"math/big"

	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
)

// BlockNum is a block height.
type BlockNum = params.BlockNum

// A BlockNonce is a 64-bit proof-of-work nonce.
type BlockNonce [8]byte

// EncodeNonce converts the given integer to a block nonce.
func EncodeNonce(i uint64) BlockNonce {
	var n BlockNonce
	binary.BigEndian.PutUint64(n[:], i)
	return n
}

func (n BlockNonce) Uint64() uint64 {
	return binary.BigEndian.Uint64(n[:])
}

// Header represents a block header in the chain.
type Header struct {
	ParentHash  common.Hash    `json:"parentHash"`
	UncleHash   common.Hash    `json:"sha3Uncles"`
	Coinbase    common.Address `json:"miner"`
	Root        common.Hash    `json:"stateRoot"`
	TxHash      common.Hash    `json:"transactionsRoot"`
	ReceiptHash common.Hash    `json:"receiptsRoot"`
	Bloom       Bloom          `json:"logsBloom"`
	Difficulty  *big.Int       `json:"difficulty"`
	Number      uint64         `json:"number"`
	GasLimit    uint64         `json:"gasLimit"`
	GasUsed     uint64         `json:"gasUsed"`
	Time        uint64         `json:"timestamp"`
	Extra       []byte         `json:"extraData"`
	MixDigest   common.Hash    `json:"mixHash"`
	Nonce       BlockNonce     `json:"nonce"`

	// BaseFee was added by EIP-1559 and is ignored in pre-London headers.
	BaseFee *big.Int `json:"baseFeePerGas" rlp:"optional"`
}

// Hash returns the keccak256 hash of the header's RLP encoding.
func (h *Header) Hash() common.Hash {
	return rlpHash(h)
}

// EmptyBody reports whether the header commits to a body with no
// transactions and no ommers.
func (h *Header) EmptyBody() bool {
	return h.TxHash == EmptyRootHash && h.UncleHash == EmptyUncleHash
}

// Body is the payload of a block: the transactions and the ommer headers
// included in it.
type Body struct {
	Transactions []*Transaction
	Uncles       []*Header
}

// Block pairs a header with its body.
type Block struct {
	Header *Header
	Body   *Body
}

func NewBlock(header *Header, body *Body) *Block {
	if body == nil {
		body = new(Body)
	}
	return &Block{Header: header, Body: body}
}

func (b *Block) Hash() common.Hash            { return b.Header.Hash() }
func (b *Block) Number() uint64               { return b.Header.Number }
func (b *Block) Transactions() []*Transaction { return b.Body.Transactions }
func (b *Block) Uncles() []*Header            { return b.Body.Uncles }

// CalcUncleHash commits to a list of ommer headers.
func CalcUncleHash(uncles []*Header) common.Hash {
	if len(uncles) == 0 {
		return EmptyUncleHash
	}
	return rlpHash(uncles)
}
