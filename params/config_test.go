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

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMainnetForkOrdering(t *testing.T) {
	c := MainnetChainConfig

	// One block before each activation the fork is off, at activation on.
	assert.False(t, c.IsHomestead(1149999))
	assert.True(t, c.IsHomestead(1150000))

	assert.False(t, c.IsEIP158(2674999))
	assert.True(t, c.IsEIP158(2675000))

	assert.False(t, c.IsByzantium(4369999))
	assert.True(t, c.IsByzantium(4370000))

	assert.False(t, c.IsBerlin(12243999))
	assert.True(t, c.IsBerlin(12244000))

	assert.False(t, c.IsLondon(12964999))
	assert.True(t, c.IsLondon(12965000))

	assert.False(t, c.IsMerge(15537393))
	assert.True(t, c.IsMerge(15537394))
}

func TestRulesSnapshot(t *testing.T) {
	c := MainnetChainConfig

	rules := c.Rules(12965000, 0)
	assert.True(t, rules.IsLondon)
	assert.True(t, rules.IsBerlin)
	assert.True(t, rules.IsIstanbul)
	assert.False(t, rules.IsMerge)
	assert.False(t, rules.IsShanghai)
	assert.EqualValues(t, 1, rules.ChainID.Int64())

	// Timestamp-scheduled forks key off the time, not the number.
	rules = c.Rules(20000000, c.ShanghaiTime)
	assert.True(t, rules.IsShanghai)
	rules = c.Rules(20000000, c.ShanghaiTime-1)
	assert.False(t, rules.IsShanghai)
}

func TestUnscheduledForkNeverActivates(t *testing.T) {
	c := &ChainConfig{
		HomesteadBlock: 0,
		EIP150Block:    0,
		LondonBlock:    BlockNumNIL,
		ShanghaiTime:   BlockNumNIL,
	}
	assert.False(t, c.IsLondon(^uint64(0)>>1))
	rules := c.Rules(1000000, 1000000)
	assert.True(t, rules.IsHomestead)
	assert.False(t, rules.IsLondon)
	assert.False(t, rules.IsShanghai)
}

func TestPetersburgDefaultsToConstantinople(t *testing.T) {
	c := &ChainConfig{
		ConstantinopleBlock: 10,
		PetersburgBlock:     BlockNumNIL,
	}
	rules := c.Rules(10, 0)
	assert.True(t, rules.IsConstantinople)
	assert.True(t, rules.IsPetersburg)
}
