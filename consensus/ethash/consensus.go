// Copyright 2017 The go-ethereum Authors
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

// Package ethash holds the proof-of-work era consensus rules the executor
// still replays: block and ommer rewards.
package ethash

import (
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/params"
)

// Some weird constants to avoid constant memory allocs for them.
var (
	big8  = big.NewInt(8)
	big32 = big.NewInt(32)
)

// BlockReward returns the base mining reward at the given height: 5 ether
// until Byzantium, 3 until Constantinople, 2 until the Merge, 0 after.
func BlockReward(config *params.ChainConfig, num types.BlockNum) *big.Int {
	switch {
	case config.IsMerge(num):
		return new(big.Int)
	case config.IsConstantinople(num):
		return params.ConstantinopleBlockReward
	case config.IsByzantium(num):
		return params.ByzantiumBlockReward
	default:
		return params.FrontierBlockReward
	}
}

// AccumulateRewards credits the coinbase of the given block with the mining
// reward. The total reward consists of the static block reward and rewards for
// included uncles. The coinbase of each uncle block is also rewarded.
func AccumulateRewards(config *params.ChainConfig, statedb *state.StateDB, header *types.Header, uncles []*types.Header) {
	// Select the correct block reward based on chain progression
	blockReward := BlockReward(config, header.Number)
	if blockReward.Sign() == 0 {
		return
	}
	// Accumulate the rewards for the miner and any included uncles
	header_num_big := new(big.Int).SetUint64(header.Number)
	reward := new(big.Int).Set(blockReward)
	r := new(big.Int)
	for _, uncle := range uncles {
		r.SetUint64(uncle.Number + 8)
		r.Sub(r, header_num_big)
		r.Mul(r, blockReward)
		r.Div(r, big8)
		statedb.AddBalance(uncle.Coinbase, r)
		r.Div(blockReward, big32)
		reward.Add(reward, r)
	}
	statedb.AddBalance(header.Coinbase, reward)
}
