// Copyright 2015 The go-ethereum Authors
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

package core

import (
	"fmt"

	"github.com/basalt-chain/basalt-evm/consensus/misc"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/params"
)

const maxUncles = 2

// ValidateBody checks that the body content matches the commitments in the
// header: the transactions root and the ommers hash.
func ValidateBody(header *types.Header, body *types.Body) error {
	if hash := types.DeriveSha(types.Transactions(body.Transactions)); hash != header.TxHash {
		return fmt.Errorf("%w: have %x, want %x", ErrBadTxRoot, hash, header.TxHash)
	}
	if hash := types.CalcUncleHash(body.Uncles); hash != header.UncleHash {
		return fmt.Errorf("%w: have %x, want %x", ErrBadOmmersHash, hash, header.UncleHash)
	}
	if len(body.Uncles) > maxUncles {
		return ErrTooManyUncles
	}
	return nil
}

// ValidateHeader checks a header's gas settings against its parent: the
// gas-limit bounds, the base fee from London on, and the gas-used bound.
func ValidateHeader(config *params.ChainConfig, parent, header *types.Header) error {
	if header.GasUsed > header.GasLimit {
		return fmt.Errorf("invalid gasUsed: have %d, gasLimit %d", header.GasUsed, header.GasLimit)
	}
	if !config.IsLondon(header.Number) {
		// Verify BaseFee not present before EIP-1559 fork.
		if header.BaseFee != nil {
			return fmt.Errorf("invalid baseFee before fork: have %d, expected 'nil'", header.BaseFee)
		}
		return misc.VerifyGaslimit(parent.GasLimit, header.GasLimit)
	}
	return misc.VerifyEIP1559Header(config, parent, header)
}
