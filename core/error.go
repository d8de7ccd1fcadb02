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

package core

import "errors"

var (
	// ErrKnownBlock is returned when a block to import is already known locally.
	ErrKnownBlock = errors.New("block already known")

	// ErrParentNotFound is returned when a block's parent is not part of the
	// canonical chain.
	ErrParentNotFound = errors.New("parent block not found")

	// ErrGasLimitReached is returned by the gas pool if the amount of gas required
	// by a transaction is higher than what's left in the block.
	ErrGasLimitReached = errors.New("gas limit reached")

	// ErrNonceTooLow is returned if the nonce of a transaction is lower than the
	// one present in the local chain.
	ErrNonceTooLow = errors.New("nonce too low")

	// ErrNonceTooHigh is returned if the nonce of a transaction is higher than the
	// next one expected based on the local chain.
	ErrNonceTooHigh = errors.New("nonce too high")

	// ErrInsufficientFunds is returned if the total cost of executing a transaction
	// is higher than the balance of the user's account.
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")

	// ErrInsufficientFundsForTransfer is returned if the transaction sender doesn't
	// have enough funds for transfer (topmost call only).
	ErrInsufficientFundsForTransfer = errors.New("insufficient funds for transfer")

	// ErrIntrinsicGas is returned if the transaction is specified to use less gas
	// than required to start the invocation.
	ErrIntrinsicGas = errors.New("intrinsic gas too low")

	// ErrFeeCapTooLow is returned if the transaction fee cap is less than the
	// base fee of the block (EIP-1559).
	ErrFeeCapTooLow = errors.New("max fee per gas less than block base fee")

	// ErrTipAboveFeeCap is a sanity error to ensure no one is able to specify a
	// transaction with a tip higher than the total fee cap (EIP-1559).
	ErrTipAboveFeeCap = errors.New("max priority fee per gas higher than max fee per gas")

	// ErrInvalidSignature is returned when a transaction's signature does not
	// recover to any sender.
	ErrInvalidSignature = errors.New("invalid transaction signature")

	// Bad-block commitment mismatches. Any of these rejects the whole batch.
	ErrBadTxRoot      = errors.New("transaction root mismatch")
	ErrBadOmmersHash  = errors.New("ommers hash mismatch")
	ErrBadStateRoot   = errors.New("state root mismatch")
	ErrBadReceiptRoot = errors.New("receipt root mismatch")
	ErrBadBloom       = errors.New("log bloom mismatch")
	ErrBadGasUsed     = errors.New("gas used mismatch")
	ErrTooManyUncles  = errors.New("too many uncles")
)
