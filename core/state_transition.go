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

import (
	"fmt"
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/core/vm"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
)

// ExecutionResult is the outcome of one transaction: the gas it consumed,
// the EVM-level error if the top frame failed, and whatever it returned.
// A non-nil Err still produces a receipt; consensus-level problems are
// reported through the error return of ApplyTransaction instead.
type ExecutionResult struct {
	UsedGas         uint64
	Err             error
	ReturnData      []byte
	ContractAddress common.Address
}

// Failed reports whether the top frame terminated with an error.
func (result *ExecutionResult) Failed() bool { return result.Err != nil }

// IntrinsicGas computes the gas a transaction pays before any opcode runs:
// the base cost, the per-byte payload cost, and the access-list cost.
func IntrinsicGas(data []byte, accessList types.AccessList, isContractCreation bool, rules params.Rules) (uint64, error) {
	// Set the starting gas for the raw transaction
	var gas uint64
	if isContractCreation && rules.IsHomestead {
		gas = params.TxGasContractCreation
	} else {
		gas = params.TxGas
	}
	// Bump the required gas by the amount of transactional data
	if len(data) > 0 {
		// Zero and non-zero bytes are priced differently
		var nz uint64
		for _, byt := range data {
			if byt != 0 {
				nz++
			}
		}
		// Make sure we don't exceed uint64 for all data combinations
		nonZeroGas := params.TxDataNonZeroGasFrontier
		if rules.IsIstanbul {
			nonZeroGas = params.TxDataNonZeroGasEIP2028
		}
		if (maxUint64-gas)/nonZeroGas < nz {
			return 0, ErrIntrinsicGas
		}
		gas += nz * nonZeroGas

		z := uint64(len(data)) - nz
		if (maxUint64-gas)/params.TxDataZeroGas < z {
			return 0, ErrIntrinsicGas
		}
		gas += z * params.TxDataZeroGas
	}
	if accessList != nil {
		gas += uint64(len(accessList)) * params.TxAccessListAddressGas
		gas += uint64(accessList.StorageKeys()) * params.TxAccessListStorageKeyGas
	}
	return gas, nil
}

const maxUint64 = ^uint64(0)

// stateTransition executes one transaction end to end against the accounts
// cache: fee deduction, the EVM run, refunds and the coinbase credit.
type stateTransition struct {
	gp      *GasPool
	evm     *vm.EVM
	statedb *state.StateDB
	tx      *types.Transaction
	from    common.Address

	gasRemaining uint64
	initialGas   uint64
}

// ApplyMessage runs the transaction with the given sender against the EVM's
// state, following the fork rules the EVM was built with. The returned error
// is a consensus error that invalidates the enclosing block.
func ApplyMessage(evm *vm.EVM, statedb *state.StateDB, tx *types.Transaction, from common.Address, gp *GasPool) (*ExecutionResult, error) {
	st := &stateTransition{
		gp:      gp,
		evm:     evm,
		statedb: statedb,
		tx:      tx,
		from:    from,
	}
	return st.execute()
}

// effectiveGasPrice is what the sender pays per gas under the active rules.
func (self *stateTransition) effectiveGasPrice() *big.Int {
	if self.evm.Rules.IsLondon {
		return self.tx.EffectiveGasPrice(self.evm.Context.BaseFee)
	}
	return self.tx.GasPrice()
}

func (self *stateTransition) preCheck() error {
	// Make sure this transaction's nonce is correct.
	stNonce := self.statedb.GetNonce(self.from)
	if msgNonce := self.tx.Nonce(); stNonce < msgNonce {
		return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh, self.from, msgNonce, stNonce)
	} else if stNonce > msgNonce {
		return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow, self.from, msgNonce, stNonce)
	}
	// Make sure the fee caps are internally consistent and cover the base
	// fee (EIP-1559).
	if self.evm.Rules.IsLondon {
		if l := self.tx.GasFeeCap().BitLen(); l > 256 {
			return ErrFeeCapTooLow
		}
		if self.tx.GasFeeCap().Cmp(self.tx.GasTipCap()) < 0 {
			return fmt.Errorf("%w: address %v, maxPriorityFeePerGas: %s, maxFeePerGas: %s",
				ErrTipAboveFeeCap, self.from, self.tx.GasTipCap(), self.tx.GasFeeCap())
		}
		if self.tx.GasFeeCap().Cmp(self.evm.Context.BaseFee) < 0 {
			return fmt.Errorf("%w: address %v, maxFeePerGas: %s, baseFee: %s",
				ErrFeeCapTooLow, self.from, self.tx.GasFeeCap(), self.evm.Context.BaseFee)
		}
	}
	return self.buyGas()
}

// buyGas checks the balance against the worst-case fee, deducts the fee and
// reserves the gas from the block gas pool.
func (self *stateTransition) buyGas() error {
	// The balance check uses the fee cap, the deduction the effective price:
	// the difference between the two is never deducted.
	mgval := new(big.Int).SetUint64(self.tx.Gas())
	mgval.Mul(mgval, self.effectiveGasPrice())
	balanceCheck := new(big.Int).SetUint64(self.tx.Gas())
	balanceCheck.Mul(balanceCheck, self.tx.GasFeeCap())
	balanceCheck.Add(balanceCheck, self.tx.Value())
	if self.statedb.GetBalance(self.from).Cmp(balanceCheck) < 0 {
		return fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientFunds, self.from, self.statedb.GetBalance(self.from), balanceCheck)
	}
	if err := self.gp.SubGas(self.tx.Gas()); err != nil {
		return err
	}
	self.gasRemaining = self.tx.Gas()
	self.initialGas = self.tx.Gas()
	self.statedb.SubBalance(self.from, mgval)
	return nil
}

func (self *stateTransition) execute() (*ExecutionResult, error) {
	if err := self.preCheck(); err != nil {
		return nil, err
	}
	var (
		rules            = self.evm.Rules
		contractCreation = self.tx.To() == nil
	)
	// Charge the intrinsic gas.
	gas, err := IntrinsicGas(self.tx.Data(), self.tx.AccessList(), contractCreation, rules)
	if err != nil {
		return nil, err
	}
	if self.gasRemaining < gas {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, self.gasRemaining, gas)
	}
	self.gasRemaining -= gas

	// Check that the sender can cover the transferred value on top of the
	// already-deducted fee.
	if self.tx.Value().Sign() > 0 && self.statedb.GetBalance(self.from).Cmp(self.tx.Value()) < 0 {
		return nil, fmt.Errorf("%w: address %v", ErrInsufficientFundsForTransfer, self.from)
	}

	// The per-transaction warm set (EIP-2929/2930).
	if rules.IsBerlin {
		self.statedb.PrepareAccessList(self.from, self.tx.To(), self.evm.ActivePrecompileAddresses(), self.tx.AccessList())
	}

	result := &ExecutionResult{}
	var (
		ret   []byte
		vmerr error
	)
	if contractCreation {
		ret, result.ContractAddress, self.gasRemaining, vmerr = self.evm.Create(self.from, self.tx.Data(), self.gasRemaining, self.tx.Value())
	} else {
		// Increment the nonce for the next transaction.
		self.statedb.SetNonce(self.from, self.statedb.GetNonce(self.from)+1)
		ret, self.gasRemaining, vmerr = self.evm.Call(self.from, *self.tx.To(), self.tx.Data(), self.gasRemaining, self.tx.Value())
	}

	// Apply the refund counter, capped by the fork's quotient of gas used.
	if rules.IsLondon {
		self.refundGas(params.RefundQuotientEIP3529)
	} else {
		self.refundGas(params.RefundQuotient)
	}

	// Credit the coinbase. From London on the base-fee portion is burned and
	// only the tip is paid out.
	effectiveTip := self.effectiveGasPrice()
	if rules.IsLondon {
		effectiveTip = self.tx.EffectiveGasTip(self.evm.Context.BaseFee)
	}
	fee := new(big.Int).SetUint64(self.gasUsed())
	fee.Mul(fee, effectiveTip)
	self.statedb.AddBalance(self.evm.Context.Coinbase, fee)

	result.UsedGas = self.gasUsed()
	result.Err = vmerr
	result.ReturnData = ret
	return result, nil
}

// refundGas credits the sender with the unused gas plus the capped refund
// counter, and releases the unused gas back to the block gas pool.
func (self *stateTransition) refundGas(refundQuotient uint64) {
	refund := self.gasUsed() / refundQuotient
	if refund > self.statedb.GetRefund() {
		refund = self.statedb.GetRefund()
	}
	self.gasRemaining += refund

	// Return ETH for remaining gas, exchanged at the original rate.
	remaining := new(big.Int).SetUint64(self.gasRemaining)
	remaining.Mul(remaining, self.effectiveGasPrice())
	self.statedb.AddBalance(self.from, remaining)

	// Also return remaining gas to the block gas counter so it is
	// available for the next transaction.
	self.gp.AddGas(self.gasRemaining)
}

// gasUsed returns the amount of gas consumed by the transaction so far.
func (self *stateTransition) gasUsed() uint64 {
	return self.initialGas - self.gasRemaining
}
