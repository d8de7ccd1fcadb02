// Copyright 2021 The go-ethereum Authors
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

package misc

import (
	"math/big"
	"testing"

	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func config() *params.ChainConfig {
	cfg := *params.TestChainConfig
	cfg.LondonBlock = 5
	return &cfg
}

func TestCalcBaseFee(t *testing.T) {
	tests := []struct {
		parentBaseFee   int64
		parentGasLimit  uint64
		parentGasUsed   uint64
		expectedBaseFee int64
	}{
		{params.GenesisBaseFee, 20000000, 10000000, params.GenesisBaseFee}, // usage == target
		{params.GenesisBaseFee, 20000000, 9000000, 987500000},              // usage below target
		{params.GenesisBaseFee, 20000000, 11000000, 1012500000},            // usage above target
	}
	for i, test := range tests {
		parent := &types.Header{
			Number:   6,
			GasLimit: test.parentGasLimit,
			GasUsed:  test.parentGasUsed,
			BaseFee:  big.NewInt(test.parentBaseFee),
		}
		assert.Equal(t, test.expectedBaseFee, CalcBaseFee(config(), parent).Int64(), "test %d", i)
	}
}

func TestCalcBaseFeeFirstLondonBlock(t *testing.T) {
	// The parent is pre-London, so the child runs at the initial base fee.
	parent := &types.Header{Number: 4, GasLimit: 20000000, GasUsed: 20000000}
	assert.Equal(t, int64(params.GenesisBaseFee), CalcBaseFee(config(), parent).Int64())
}

func TestVerifyEIP1559Header(t *testing.T) {
	cfg := config()
	parent := &types.Header{
		Number:   6,
		GasLimit: 20000000,
		GasUsed:  10000000,
		BaseFee:  big.NewInt(params.GenesisBaseFee),
	}
	header := &types.Header{
		Number:   7,
		GasLimit: 20000000,
		BaseFee:  big.NewInt(params.GenesisBaseFee),
	}
	require.NoError(t, VerifyEIP1559Header(cfg, parent, header))

	// Wrong base fee is refused.
	header.BaseFee = big.NewInt(params.GenesisBaseFee + 1)
	assert.Error(t, VerifyEIP1559Header(cfg, parent, header))

	// Missing base fee is refused.
	header.BaseFee = nil
	assert.Error(t, VerifyEIP1559Header(cfg, parent, header))
}

func TestVerifyEIP1559HeaderElasticity(t *testing.T) {
	cfg := config()
	// At the transition block the parent's limit counts doubled.
	parent := &types.Header{Number: 4, GasLimit: 10000000, GasUsed: 5000000}
	header := &types.Header{
		Number:   5,
		GasLimit: 20000000,
		BaseFee:  big.NewInt(params.GenesisBaseFee),
	}
	require.NoError(t, VerifyEIP1559Header(cfg, parent, header))
}

func TestVerifyGaslimit(t *testing.T) {
	require.NoError(t, VerifyGaslimit(20000000, 20000000))
	require.NoError(t, VerifyGaslimit(20000000, 20019530))  // within 1/1024
	assert.Error(t, VerifyGaslimit(20000000, 20019532))     // above 1/1024
	assert.Error(t, VerifyGaslimit(20000000, 19980468))     // below 1/1024
	assert.Error(t, VerifyGaslimit(5001, 4999))             // below the floor
}
