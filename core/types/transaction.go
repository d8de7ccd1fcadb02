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
	"errors"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Transaction types.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
)

var (
	ErrInvalidSig         = errors.New("invalid transaction v, r, s values")
	ErrTxTypeNotSupported = errors.New("transaction type not supported")
	ErrInvalidTxType      = errors.New("typed transaction too short")
)

// Transaction is a chain transaction of any of the supported types.
type Transaction struct {
	inner TxData

	// caches
	hash atomic.Value
	from atomic.Value
}

// NewTx creates a new transaction around a deep copy of inner.
func NewTx(inner TxData) *Transaction {
	tx := new(Transaction)
	tx.setDecoded(inner.copy())
	return tx
}

// TxData is the payload of a transaction, one implementation per type byte.
type TxData interface {
	txType() byte
	copy() TxData

	chainID() *big.Int
	accessList() AccessList
	data() []byte
	gas() uint64
	gasPrice() *big.Int
	gasTipCap() *big.Int
	gasFeeCap() *big.Int
	value() *big.Int
	nonce() uint64
	to() *common.Address

	rawSignatureValues() (v, r, s *big.Int)
	setSignatureValues(chainID, v, r, s *big.Int)
}

// EncodeRLP implements rlp.Encoder. Legacy transactions encode as plain RLP
// lists; typed transactions nest their opaque type-prefixed encoding as an
// RLP byte string, per EIP-2718.
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	if tx.Type() == LegacyTxType {
		return rlp.Encode(w, tx.inner)
	}
	var buf bytes.Buffer
	if err := tx.encodeTyped(&buf); err != nil {
		return err
	}
	return rlp.Encode(w, buf.Bytes())
}

// encodeTyped writes the canonical encoding of a typed transaction to w.
func (tx *Transaction) encodeTyped(w *bytes.Buffer) error {
	w.WriteByte(tx.Type())
	return rlp.Encode(w, tx.inner)
}

// MarshalBinary returns the canonical consensus encoding of the transaction:
// rlp(legacyTx) or type || rlp(payload).
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	if tx.Type() == LegacyTxType {
		return rlp.EncodeToBytes(tx.inner)
	}
	var buf bytes.Buffer
	err := tx.encodeTyped(&buf)
	return buf.Bytes(), err
}

// DecodeRLP implements rlp.Decoder.
func (tx *Transaction) DecodeRLP(s *rlp.Stream) error {
	kind, _, err := s.Kind()
	switch {
	case err != nil:
		return err
	case kind == rlp.List:
		var inner LegacyTx
		if err := s.Decode(&inner); err != nil {
			return err
		}
		tx.setDecoded(&inner)
		return nil
	default:
		var b []byte
		if b, err = s.Bytes(); err != nil {
			return err
		}
		inner, err := tx.decodeTyped(b)
		if err != nil {
			return err
		}
		tx.setDecoded(inner)
		return nil
	}
}

// UnmarshalBinary decodes the canonical consensus encoding.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	if len(b) > 0 && b[0] > 0x7f {
		// legacy transaction
		var inner LegacyTx
		if err := rlp.DecodeBytes(b, &inner); err != nil {
			return err
		}
		tx.setDecoded(&inner)
		return nil
	}
	inner, err := tx.decodeTyped(b)
	if err != nil {
		return err
	}
	tx.setDecoded(inner)
	return nil
}

func (tx *Transaction) decodeTyped(b []byte) (TxData, error) {
	if len(b) <= 1 {
		return nil, ErrInvalidTxType
	}
	switch b[0] {
	case AccessListTxType:
		var inner AccessListTx
		err := rlp.DecodeBytes(b[1:], &inner)
		return &inner, err
	case DynamicFeeTxType:
		var inner DynamicFeeTx
		err := rlp.DecodeBytes(b[1:], &inner)
		return &inner, err
	default:
		return nil, ErrTxTypeNotSupported
	}
}

func (tx *Transaction) setDecoded(inner TxData) {
	tx.inner = inner
	tx.hash = atomic.Value{}
	tx.from = atomic.Value{}
}

// Type returns the transaction type byte.
func (tx *Transaction) Type() byte { return tx.inner.txType() }

// ChainId returns the chain id the transaction is bound to. For unprotected
// legacy transactions the return value is zero.
func (tx *Transaction) ChainId() *big.Int { return tx.inner.chainID() }

func (tx *Transaction) Data() []byte           { return tx.inner.data() }
func (tx *Transaction) AccessList() AccessList { return tx.inner.accessList() }
func (tx *Transaction) Gas() uint64            { return tx.inner.gas() }
func (tx *Transaction) GasPrice() *big.Int     { return new(big.Int).Set(tx.inner.gasPrice()) }
func (tx *Transaction) GasTipCap() *big.Int    { return new(big.Int).Set(tx.inner.gasTipCap()) }
func (tx *Transaction) GasFeeCap() *big.Int    { return new(big.Int).Set(tx.inner.gasFeeCap()) }
func (tx *Transaction) Value() *big.Int        { return new(big.Int).Set(tx.inner.value()) }
func (tx *Transaction) Nonce() uint64          { return tx.inner.nonce() }

// To returns the recipient, or nil for contract-creation transactions.
func (tx *Transaction) To() *common.Address {
	if to := tx.inner.to(); to != nil {
		cpy := *to
		return &cpy
	}
	return nil
}

// RawSignatureValues returns the V, R, S signature values of the transaction.
// The return values should not be modified by the caller.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.inner.rawSignatureValues()
}

// EffectiveGasTip computes the miner tip per gas under the given base fee:
// min(gasTipCap, gasFeeCap - baseFee). With a nil base fee (pre-London) the
// full gas price is the tip.
func (tx *Transaction) EffectiveGasTip(baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return tx.GasTipCap()
	}
	tip := new(big.Int).Sub(tx.GasFeeCap(), baseFee)
	if gasTipCap := tx.GasTipCap(); tip.Cmp(gasTipCap) > 0 {
		tip.Set(gasTipCap)
	}
	return tip
}

// EffectiveGasPrice is the per-gas price the sender actually pays:
// baseFee + effectiveGasTip, capped by gasFeeCap. Pre-London this is the
// plain gas price.
func (tx *Transaction) EffectiveGasPrice(baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return tx.GasPrice()
	}
	return new(big.Int).Add(tx.EffectiveGasTip(baseFee), baseFee)
}

// Protected reports whether the transaction is replay-protected.
func (tx *Transaction) Protected() bool {
	switch tx := tx.inner.(type) {
	case *LegacyTx:
		return tx.V != nil && isProtectedV(tx.V)
	default:
		return true
	}
}

func isProtectedV(v *big.Int) bool {
	if v.BitLen() <= 8 {
		v := v.Uint64()
		return v != 27 && v != 28 && v != 1 && v != 0
	}
	// anything not 27 or 28 is considered protected
	return true
}

// Hash returns the transaction hash.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	var h common.Hash
	if tx.Type() == LegacyTxType {
		h = rlpHash(tx.inner)
	} else {
		h = prefixedRlpHash(tx.Type(), tx.inner)
	}
	tx.hash.Store(h)
	return h
}

// WithSignature returns a new transaction with the given signature.
// The signature must be in [R || S || V] format where V is 0 or 1.
func (tx *Transaction) WithSignature(signer Signer, sig []byte) (*Transaction, error) {
	r, s, v, err := signer.SignatureValues(tx, sig)
	if err != nil {
		return nil, err
	}
	cpy := tx.inner.copy()
	cpy.setSignatureValues(signer.chainId, v, r, s)
	return &Transaction{inner: cpy}, nil
}

// Transactions implements DerivableList for trie root derivation.
type Transactions []*Transaction

func (s Transactions) Len() int { return len(s) }

func (s Transactions) EncodeIndex(i int, w *bytes.Buffer) {
	tx := s[i]
	if tx.Type() == LegacyTxType {
		rlp.Encode(w, tx.inner)
	} else {
		tx.encodeTyped(w)
	}
}
