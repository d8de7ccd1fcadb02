// Copyright 2016 The go-ethereum Authors
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
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidChainId = errors.New("invalid chain id for signer")

	big8 = big.NewInt(8)
)

// sigCache is used to cache the derived sender and contains
// the signer used to derive it.
type sigCache struct {
	signer Signer
	from   common.Address
}

// Signer recovers and produces transaction signatures for every supported
// transaction type, bound to a single chain id. Legacy pre-EIP-155
// transactions remain recoverable regardless of the chain id.
type Signer struct {
	chainId, chainIdMul *big.Int
}

// NewSigner returns a signer bound to chainId. All the fork-specific signers
// collapse into this one: it accepts homestead, EIP-155, EIP-2930 and
// EIP-1559 signatures.
func NewSigner(chainId *big.Int) Signer {
	if chainId == nil {
		chainId = new(big.Int)
	}
	return Signer{
		chainId:    chainId,
		chainIdMul: new(big.Int).Mul(chainId, big.NewInt(2)),
	}
}

func (s Signer) ChainID() *big.Int { return s.chainId }

func (s Signer) Equal(other Signer) bool {
	return s.chainId.Cmp(other.chainId) == 0
}

// Sender recovers the address that signed the transaction. The result is
// cached on the transaction.
func (s Signer) Sender(tx *Transaction) (common.Address, error) {
	if sc := tx.from.Load(); sc != nil {
		sigCache := sc.(sigCache)
		if sigCache.signer.Equal(s) {
			return sigCache.from, nil
		}
	}
	addr, err := s.sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	tx.from.Store(sigCache{signer: s, from: addr})
	return addr, nil
}

func (s Signer) sender(tx *Transaction) (common.Address, error) {
	V, R, S := tx.RawSignatureValues()
	switch tx.Type() {
	case LegacyTxType:
		if !tx.Protected() {
			// homestead signature: V is 27/28
			return recoverPlain(rlpHash([]interface{}{
				tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data(),
			}), R, S, V, true)
		}
		if tx.ChainId().Cmp(s.chainId) != 0 {
			return common.Address{}, fmt.Errorf("%w: have %d want %d", ErrInvalidChainId, tx.ChainId(), s.chainId)
		}
		V = new(big.Int).Sub(V, s.chainIdMul)
		V.Sub(V, big8)
		return recoverPlain(s.Hash(tx), R, S, V, true)
	case AccessListTxType, DynamicFeeTxType:
		if tx.ChainId().Cmp(s.chainId) != 0 {
			return common.Address{}, fmt.Errorf("%w: have %d want %d", ErrInvalidChainId, tx.ChainId(), s.chainId)
		}
		// ACL and dynamic-fee txs are defined to use 0 and 1 as their
		// recovery id, add 27 to become equivalent to unprotected Homestead
		// signatures.
		V = new(big.Int).Add(V, big.NewInt(27))
		return recoverPlain(s.Hash(tx), R, S, V, true)
	default:
		return common.Address{}, ErrTxTypeNotSupported
	}
}

// SignatureValues maps a 65-byte [R || S || V] signature to the transaction
// type's V, R, S representation.
func (s Signer) SignatureValues(tx *Transaction, sig []byte) (R, S, V *big.Int, err error) {
	if len(sig) != crypto.SignatureLength {
		return nil, nil, nil, fmt.Errorf("wrong size for signature: got %d, want %d", len(sig), crypto.SignatureLength)
	}
	R = new(big.Int).SetBytes(sig[:32])
	S = new(big.Int).SetBytes(sig[32:64])
	switch tx.Type() {
	case LegacyTxType:
		V = new(big.Int).SetBytes([]byte{sig[64] + 27})
		if s.chainId.Sign() != 0 {
			V = big.NewInt(int64(sig[64] + 35))
			V.Add(V, s.chainIdMul)
		}
	case AccessListTxType, DynamicFeeTxType:
		if tx.ChainId().Sign() != 0 && tx.ChainId().Cmp(s.chainId) != 0 {
			return nil, nil, nil, fmt.Errorf("%w: have %d want %d", ErrInvalidChainId, tx.ChainId(), s.chainId)
		}
		V = big.NewInt(int64(sig[64]))
	default:
		return nil, nil, nil, ErrTxTypeNotSupported
	}
	return R, S, V, nil
}

// Hash returns the digest the sender signs over. It does not uniquely
// identify the transaction.
func (s Signer) Hash(tx *Transaction) common.Hash {
	switch tx.Type() {
	case LegacyTxType:
		if s.chainId.Sign() == 0 {
			return rlpHash([]interface{}{
				tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data(),
			})
		}
		return rlpHash([]interface{}{
			tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data(),
			s.chainId, uint(0), uint(0),
		})
	case AccessListTxType:
		return prefixedRlpHash(AccessListTxType, []interface{}{
			s.chainId, tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data(),
			tx.AccessList(),
		})
	case DynamicFeeTxType:
		return prefixedRlpHash(DynamicFeeTxType, []interface{}{
			s.chainId, tx.Nonce(), tx.GasTipCap(), tx.GasFeeCap(), tx.Gas(), tx.To(), tx.Value(), tx.Data(),
			tx.AccessList(),
		})
	default:
		panic("unsupported transaction type")
	}
}

func recoverPlain(sighash common.Hash, R, S, Vb *big.Int, homestead bool) (common.Address, error) {
	if Vb.BitLen() > 8 {
		return common.Address{}, ErrInvalidSig
	}
	V := byte(Vb.Uint64() - 27)
	if !crypto.ValidateSignatureValues(V, R, S, homestead) {
		return common.Address{}, ErrInvalidSig
	}
	// encode the signature in uncompressed format
	r, s := R.Bytes(), S.Bytes()
	sig := make([]byte, crypto.SignatureLength)
	copy(sig[32-len(r):32], r)
	copy(sig[64-len(s):64], s)
	sig[64] = V
	// recover the public key from the signature
	pub, err := crypto.Ecrecover(sighash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return common.Address{}, errors.New("invalid public key")
	}
	var addr common.Address
	copy(addr[:], crypto.Keccak256(pub[1:])[12:])
	return addr, nil
}

// SignTx signs the transaction with prv and returns the signed copy.
func SignTx(tx *Transaction, s Signer, prv *ecdsa.PrivateKey) (*Transaction, error) {
	h := s.Hash(tx)
	sig, err := crypto.Sign(h[:], prv)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(s, sig)
}
