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
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *Header {
	return &Header{
		ParentHash:  common.HexToHash("0x01"),
		UncleHash:   EmptyUncleHash,
		Coinbase:    common.HexToAddress("0x8888f1f195afa192cfee860698584c030f4c9db1"),
		Root:        common.HexToHash("0x02"),
		TxHash:      EmptyRootHash,
		ReceiptHash: EmptyRootHash,
		Difficulty:  big.NewInt(131072),
		Number:      42,
		GasLimit:    8000000,
		GasUsed:     21000,
		Time:        1426516743,
		Extra:       []byte("extra"),
		MixDigest:   common.HexToHash("0x03"),
		Nonce:       EncodeNonce(0xa13a5a8c8f2bb1c4),
	}
}

func TestHeaderRLPRoundtrip(t *testing.T) {
	for _, withBaseFee := range []bool{false, true} {
		header := sampleHeader()
		if withBaseFee {
			header.BaseFee = big.NewInt(1000000000)
		}
		enc, err := rlp.EncodeToBytes(header)
		require.NoError(t, err)
		dec := new(Header)
		require.NoError(t, rlp.DecodeBytes(enc, dec))
		assert.Equal(t, header.Hash(), dec.Hash())
		if withBaseFee {
			require.NotNil(t, dec.BaseFee)
			assert.Zero(t, header.BaseFee.Cmp(dec.BaseFee))
		} else {
			assert.Nil(t, dec.BaseFee)
		}
	}
}

func sampleTxs() []*Transaction {
	to := common.HexToAddress("0xb94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	accesses := AccessList{{
		Address:     to,
		StorageKeys: []common.Hash{common.HexToHash("0x01")},
	}}
	return []*Transaction{
		NewTx(&LegacyTx{
			Nonce:    3,
			GasPrice: big.NewInt(1000000000),
			Gas:      25000,
			To:       &to,
			Value:    big.NewInt(10),
			Data:     common.FromHex("5544"),
			V:        big.NewInt(28),
			R:        big.NewInt(1),
			S:        big.NewInt(1),
		}),
		NewTx(&AccessListTx{
			ChainID:    big.NewInt(1),
			Nonce:      0,
			GasPrice:   big.NewInt(1000000000),
			Gas:        123457,
			To:         &to,
			Value:      big.NewInt(10),
			AccessList: accesses,
			V:          big.NewInt(0),
			R:          big.NewInt(1),
			S:          big.NewInt(1),
		}),
		NewTx(&DynamicFeeTx{
			ChainID:    big.NewInt(1),
			Nonce:      0,
			GasTipCap:  big.NewInt(1000000000),
			GasFeeCap:  big.NewInt(3000000000),
			Gas:        123457,
			To:         nil,
			Value:      big.NewInt(10),
			Data:       common.FromHex("60016000f3"),
			AccessList: accesses,
			V:          big.NewInt(1),
			R:          big.NewInt(1),
			S:          big.NewInt(1),
		}),
	}
}

func TestTransactionRLPRoundtrip(t *testing.T) {
	for i, tx := range sampleTxs() {
		// List-context encoding.
		enc, err := rlp.EncodeToBytes(tx)
		require.NoError(t, err, "tx %d", i)
		dec := new(Transaction)
		require.NoError(t, rlp.DecodeBytes(enc, dec), "tx %d", i)
		assert.Equal(t, tx.Hash(), dec.Hash(), "tx %d", i)
		assert.Equal(t, tx.Type(), dec.Type(), "tx %d", i)

		// Canonical opaque encoding.
		bin, err := tx.MarshalBinary()
		require.NoError(t, err, "tx %d", i)
		dec2 := new(Transaction)
		require.NoError(t, dec2.UnmarshalBinary(bin), "tx %d", i)
		assert.Equal(t, tx.Hash(), dec2.Hash(), "tx %d", i)
	}
}

func TestSignerRoundtrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)
	signer := NewSigner(big.NewInt(1))

	for i, tx := range sampleTxs() {
		signed, err := SignTx(tx, signer, key)
		require.NoError(t, err, "tx %d", i)
		from, err := signer.Sender(signed)
		require.NoError(t, err, "tx %d", i)
		assert.Equal(t, addr, from, "tx %d", i)
	}
}

func TestSignerRejectsWrongChainId(t *testing.T) {
	key, _ := crypto.GenerateKey()
	signer := NewSigner(big.NewInt(1))
	signed, err := SignTx(sampleTxs()[0], signer, key)
	require.NoError(t, err)

	other := NewSigner(big.NewInt(99))
	_, err = other.Sender(signed)
	assert.ErrorIs(t, err, ErrInvalidChainId)
}

func TestReceiptRLPRoundtrip(t *testing.T) {
	receipts := Receipts{
		&Receipt{
			Type:              LegacyTxType,
			PostState:         common.HexToHash("0x04").Bytes(),
			CumulativeGasUsed: 21000,
			Logs:              []*Log{},
		},
		&Receipt{
			Type:              LegacyTxType,
			Status:            ReceiptStatusFailed,
			CumulativeGasUsed: 42000,
			Logs:              []*Log{},
		},
		&Receipt{
			Type:              DynamicFeeTxType,
			Status:            ReceiptStatusSuccessful,
			CumulativeGasUsed: 63000,
			Logs: []*Log{{
				Address: common.HexToAddress("0x11"),
				Topics:  []common.Hash{common.HexToHash("0x22")},
				Data:    []byte{0x01, 0x02},
			}},
		},
	}
	for i := range receipts {
		receipts[i].Bloom = CreateBloom(receipts[i])
	}
	enc, err := rlp.EncodeToBytes(receipts)
	require.NoError(t, err)
	var dec Receipts
	require.NoError(t, rlp.DecodeBytes(enc, &dec))
	require.Len(t, dec, len(receipts))
	for i := range receipts {
		assert.Equal(t, receipts[i].Type, dec[i].Type, "receipt %d", i)
		assert.Equal(t, receipts[i].PostState, dec[i].PostState, "receipt %d", i)
		assert.Equal(t, receipts[i].Status, dec[i].Status, "receipt %d", i)
		assert.Equal(t, receipts[i].CumulativeGasUsed, dec[i].CumulativeGasUsed, "receipt %d", i)
		assert.Equal(t, receipts[i].Bloom, dec[i].Bloom, "receipt %d", i)
	}
}

func TestBloom(t *testing.T) {
	positive := []string{"testtest", "test", "hallo", "other"}
	negative := []string{"tes", "lo"}

	var bloom Bloom
	for _, data := range positive {
		bloom.Add([]byte(data))
	}
	for _, data := range positive {
		assert.True(t, bloom.Test([]byte(data)), "%q should be in bloom", data)
	}
	for _, data := range negative {
		assert.False(t, bloom.Test([]byte(data)), "%q should not be in bloom", data)
	}
}

func TestMergedBloom(t *testing.T) {
	r1 := &Receipt{Logs: []*Log{{Address: common.HexToAddress("0x01")}}}
	r2 := &Receipt{Logs: []*Log{{Address: common.HexToAddress("0x02")}}}
	r1.Bloom = CreateBloom(r1)
	r2.Bloom = CreateBloom(r2)

	merged := MergedBloom(Receipts{r1, r2})
	assert.True(t, merged.Test(common.HexToAddress("0x01").Bytes()))
	assert.True(t, merged.Test(common.HexToAddress("0x02").Bytes()))
}

func TestDeriveShaEmpty(t *testing.T) {
	assert.Equal(t, EmptyRootHash, DeriveSha(Transactions(nil)))
	assert.Equal(t, EmptyRootHash, DeriveSha(Receipts(nil)))
}

func TestEffectiveGasPrice(t *testing.T) {
	to := common.Address{}
	tx := NewTx(&DynamicFeeTx{
		ChainID:   big.NewInt(1),
		GasTipCap: big.NewInt(2),
		GasFeeCap: big.NewInt(10),
		Gas:       21000,
		To:        &to,
		Value:     new(big.Int),
	})
	baseFee := big.NewInt(7)
	assert.Zero(t, tx.EffectiveGasTip(baseFee).Cmp(big.NewInt(2)))
	assert.Zero(t, tx.EffectiveGasPrice(baseFee).Cmp(big.NewInt(9)))

	// Tip clipped by the fee cap.
	baseFee = big.NewInt(9)
	assert.Zero(t, tx.EffectiveGasTip(baseFee).Cmp(big.NewInt(1)))
	assert.Zero(t, tx.EffectiveGasPrice(baseFee).Cmp(big.NewInt(10)))
}
