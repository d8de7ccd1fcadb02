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

package params

import "math/big"

// BlockNum is a block height. BlockNumNIL marks a fork that is not scheduled.
type BlockNum = uint64

const BlockNumNIL = ^BlockNum(0)

var (
	MainnetChainConfig = &ChainConfig{
		ChainID:             big.NewInt(1),
		NetworkID:           1,
		HomesteadBlock:      1150000,
		DAOForkBlock:        1920000,
		DAOForkSupport:      true,
		EIP150Block:         2463000,
		EIP155Block:         2675000,
		EIP158Block:         2675000,
		ByzantiumBlock:      4370000,
		ConstantinopleBlock: 7280000,
		PetersburgBlock:     7280000,
		IstanbulBlock:       9069000,
		MuirGlacierBlock:    9200000,
		BerlinBlock:         12244000,
		LondonBlock:         12965000,
		ArrowGlacierBlock:   13773000,
		GrayGlacierBlock:    15050000,
		MergeBlock:          15537394,
		ShanghaiTime:        1681338455,
		InitialBaseFee:      GenesisBaseFee,
	}

	// TestChainConfig has every scheduled fork active from genesis. Used all
	// over the tests.
	TestChainConfig = &ChainConfig{
		ChainID:             big.NewInt(1),
		NetworkID:           1,
		HomesteadBlock:      0,
		EIP150Block:         0,
		EIP155Block:         0,
		EIP158Block:         0,
		ByzantiumBlock:      0,
		ConstantinopleBlock: 0,
		PetersburgBlock:     0,
		IstanbulBlock:       0,
		MuirGlacierBlock:    0,
		BerlinBlock:         0,
		LondonBlock:         0,
		ArrowGlacierBlock:   BlockNumNIL,
		GrayGlacierBlock:    BlockNumNIL,
		MergeBlock:          BlockNumNIL,
		ShanghaiTime:        BlockNumNIL,
		InitialBaseFee:      GenesisBaseFee,
	}
)

// ChainConfig is the set of fork activation points that parameterizes the
// execution rules of a chain. A zero activation means "active from genesis",
// BlockNumNIL means "never".
//
// The zero value of every fork field is a scheduled-at-genesis fork, so
// configs must set BlockNumNIL explicitly for forks they do not adopt. The
// named chain configs in this package do that.
type ChainConfig struct {
	ChainID   *big.Int `json:"chainId"`
	NetworkID uint64   `json:"networkId"`

	HomesteadBlock BlockNum `json:"homesteadBlock,omitempty"`
	DAOForkBlock   BlockNum `json:"daoForkBlock,omitempty"`
	DAOForkSupport bool     `json:"daoForkSupport,omitempty"`
	// EIP150 implements the gas price changes of the Tangerine Whistle fork.
	EIP150Block BlockNum `json:"eip150Block,omitempty"`
	// EIP155 (replay protection) and EIP158 (empty account reaping) activated
	// together as Spurious Dragon on mainnet.
	EIP155Block         BlockNum `json:"eip155Block,omitempty"`
	EIP158Block         BlockNum `json:"eip158Block,omitempty"`
	ByzantiumBlock      BlockNum `json:"byzantiumBlock,omitempty"`
	ConstantinopleBlock BlockNum `json:"constantinopleBlock,omitempty"`
	PetersburgBlock     BlockNum `json:"petersburgBlock,omitempty"`
	IstanbulBlock       BlockNum `json:"istanbulBlock,omitempty"`
	MuirGlacierBlock    BlockNum `json:"muirGlacierBlock,omitempty"`
	BerlinBlock         BlockNum `json:"berlinBlock,omitempty"`
	LondonBlock         BlockNum `json:"londonBlock,omitempty"`
	ArrowGlacierBlock   BlockNum `json:"arrowGlacierBlock,omitempty"`
	GrayGlacierBlock    BlockNum `json:"grayGlacierBlock,omitempty"`
	// MergeBlock is the first post-Merge block. Difficulty-based rules and
	// block rewards end here.
	MergeBlock BlockNum `json:"mergeBlock,omitempty"`
	// ShanghaiTime switches fork selection to timestamps. Forward
	// compatibility hook only.
	ShanghaiTime uint64 `json:"shanghaiTime,omitempty"`

	// InitialBaseFee is the base fee of the first London block. Defaults to
	// GenesisBaseFee when zero.
	InitialBaseFee uint64 `json:"initialBaseFee,omitempty"`
}

// Rules is a one-block snapshot of the fork schedule. It is what the gas
// tables, the jump tables and the processors branch on, so that fork
// comparisons happen once per block rather than per opcode.
type Rules struct {
	ChainID *big.Int

	IsHomestead, IsEIP150, IsEIP155, IsEIP158       bool
	IsByzantium, IsConstantinople, IsPetersburg     bool
	IsIstanbul, IsBerlin, IsLondon                  bool
	IsMerge, IsShanghai                             bool
}

func isForked(fork_start, block_num BlockNum) bool {
	if fork_start == BlockNumNIL {
		return false
	}
	return fork_start <= block_num
}

// Rules returns the rule snapshot for the given block number and timestamp.
func (c *ChainConfig) Rules(num BlockNum, time uint64) Rules {
	chain_id := c.ChainID
	if chain_id == nil {
		chain_id = new(big.Int)
	}
	return Rules{
		ChainID:          new(big.Int).Set(chain_id),
		IsHomestead:      isForked(c.HomesteadBlock, num),
		IsEIP150:         isForked(c.EIP150Block, num),
		IsEIP155:         isForked(c.EIP155Block, num),
		IsEIP158:         isForked(c.EIP158Block, num),
		IsByzantium:      isForked(c.ByzantiumBlock, num),
		IsConstantinople: isForked(c.ConstantinopleBlock, num),
		IsPetersburg:     isForked(c.PetersburgBlock, num) || c.PetersburgBlock == BlockNumNIL && isForked(c.ConstantinopleBlock, num),
		IsIstanbul:       isForked(c.IstanbulBlock, num),
		IsBerlin:         isForked(c.BerlinBlock, num),
		IsLondon:         isForked(c.LondonBlock, num),
		IsMerge:          isForked(c.MergeBlock, num),
		IsShanghai:       c.ShanghaiTime != BlockNumNIL && c.ShanghaiTime <= time,
	}
}

func (c *ChainConfig) IsHomestead(num BlockNum) bool      { return isForked(c.HomesteadBlock, num) }
func (c *ChainConfig) IsDAOFork(num BlockNum) bool        { return isForked(c.DAOForkBlock, num) }
func (c *ChainConfig) IsEIP150(num BlockNum) bool         { return isForked(c.EIP150Block, num) }
func (c *ChainConfig) IsEIP155(num BlockNum) bool         { return isForked(c.EIP155Block, num) }
func (c *ChainConfig) IsEIP158(num BlockNum) bool         { return isForked(c.EIP158Block, num) }
func (c *ChainConfig) IsByzantium(num BlockNum) bool      { return isForked(c.ByzantiumBlock, num) }
func (c *ChainConfig) IsConstantinople(num BlockNum) bool { return isForked(c.ConstantinopleBlock, num) }
func (c *ChainConfig) IsIstanbul(num BlockNum) bool       { return isForked(c.IstanbulBlock, num) }
func (c *ChainConfig) IsBerlin(num BlockNum) bool         { return isForked(c.BerlinBlock, num) }
func (c *ChainConfig) IsLondon(num BlockNum) bool         { return isForked(c.LondonBlock, num) }
func (c *ChainConfig) IsMerge(num BlockNum) bool          { return isForked(c.MergeBlock, num) }

// BaseFeeAtGenesisOfLondon returns the base fee of the very first London
// block.
func (c *ChainConfig) BaseFeeAtGenesisOfLondon() uint64 {
	if c.InitialBaseFee != 0 {
		return c.InitialBaseFee
	}
	return GenesisBaseFee
}
