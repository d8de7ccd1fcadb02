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

package vm

import (
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

func opAdd(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opExp(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	base, exponent := comp.stack.pop(), comp.stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	back, num := comp.stack.pop(), comp.stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opNot(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x := comp.stack.peek()
	x.Not(x)
	return nil, nil
}

func opLt(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x := comp.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y := comp.stack.pop(), comp.stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opByte(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	th, val := comp.stack.pop(), comp.stack.peek()
	val.Byte(&th)
	return nil, nil
}

func opAddmod(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y, z := comp.stack.pop(), comp.stack.pop(), comp.stack.peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x, y, z := comp.stack.pop(), comp.stack.pop(), comp.stack.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	// Note, second operand is left in the stack; accumulate result into it, and no need to push it afterwards
	shift, value := comp.stack.pop(), comp.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSHR implements Logical Shift Right
// The SHR instruction (logical shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with zero fill.
func opSHR(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	// Note, second operand is left in the stack; accumulate result into it, and no need to push it afterwards
	shift, value := comp.stack.pop(), comp.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSAR implements Arithmetic Shift Right
// The SAR instruction (arithmetic shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with sign extension.
func opSAR(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	shift, value := comp.stack.pop(), comp.stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil, nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return nil, nil
}

func opKeccak256(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	offset, size := comp.stack.pop(), comp.stack.peek()
	data := comp.mem.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	size.SetBytes(hash)
	return nil, nil
}

func opAddress(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetBytes(comp.Address().Bytes()))
	return nil, nil
}

func opBalance(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	slot := comp.stack.peek()
	address := common.Address(slot.Bytes20())
	slot.SetFromBig(evm.StateDB.GetBalance(address))
	return nil, nil
}

func opOrigin(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetBytes(evm.TxContext.Origin.Bytes()))
	return nil, nil
}

func opCaller(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetBytes(comp.Caller().Bytes()))
	return nil, nil
}

func opCallValue(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	v, _ := uint256.FromBig(comp.Value())
	comp.stack.push(v)
	return nil, nil
}

func opCallDataLoad(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	x := comp.stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(comp.Input(), offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(uint64(len(comp.Input()))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		memOffset  = comp.stack.pop()
		dataOffset = comp.stack.pop()
		length     = comp.stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = 0xffffffffffffffff
	}
	// These values are checked for overflow during gas cost calculation
	memOffset64 := memOffset.Uint64()
	length64 := length.Uint64()
	comp.mem.Set(memOffset64, length64, getData(comp.Input(), dataOffset64, length64))
	return nil, nil
}

func opReturnDataSize(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(uint64(len(comp.retData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		memOffset  = comp.stack.pop()
		dataOffset = comp.stack.pop()
		length     = comp.stack.pop()
	)
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	// we can reuse dataOffset now (aliasing it for clarity)
	var end = dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(comp.retData)) < end64 {
		return nil, ErrReturnDataOutOfBounds
	}
	comp.mem.Set(memOffset.Uint64(), length.Uint64(), comp.retData[offset64:end64])
	return nil, nil
}

func opExtCodeSize(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	slot := comp.stack.peek()
	slot.SetUint64(uint64(evm.StateDB.GetCodeSize(slot.Bytes20())))
	return nil, nil
}

func opCodeSize(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(uint64(len(comp.code.code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		memOffset  = comp.stack.pop()
		codeOffset = comp.stack.pop()
		length     = comp.stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = 0xffffffffffffffff
	}
	codeCopy := getData(comp.code.code, uint64CodeOffset, length.Uint64())
	comp.mem.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opExtCodeCopy(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		stack      = comp.stack
		a          = stack.pop()
		memOffset  = stack.pop()
		codeOffset = stack.pop()
		length     = stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = 0xffffffffffffffff
	}
	addr := common.Address(a.Bytes20())
	codeCopy := getData(evm.StateDB.GetCode(addr), uint64CodeOffset, length.Uint64())
	comp.mem.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

// opExtCodeHash returns the code hash of a specified account.
// There are several cases when the function is called, while we can relay everything
// to `state.GetCodeHash` function to ensure the correctness.
//
//  1. Caller tries to get the code hash of a normal contract account, state
//     should return the relative code hash and set it as the result.
//
//  2. Caller tries to get the code hash of a non-existent account, state should
//     return common.Hash{} and zero will be set as the result.
//
//  3. Caller tries to get the code hash for an account without contract code, state
//     should return emptyCodeHash(0xc5d246...) as the result.
//
//  4. Caller tries to get the code hash of a precompiled account, the result should be
//     zero or emptyCodeHash.
//
//  5. Caller tries to get the code hash for an account which is marked as self-destructed
//     in the current transaction, the code hash of this account should be returned.
//
//  6. Caller tries to get the code hash for an account which is marked as deleted, this
//     account should be regarded as a non-existent account and zero should be returned.
func opExtCodeHash(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	slot := comp.stack.peek()
	address := common.Address(slot.Bytes20())
	if evm.StateDB.Empty(address) {
		slot.Clear()
	} else {
		slot.SetBytes(evm.StateDB.GetCodeHash(address).Bytes())
	}
	return nil, nil
}

func opGasprice(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	v, _ := uint256.FromBig(evm.TxContext.GasPrice)
	comp.stack.push(v)
	return nil, nil
}

func opBlockhash(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	num := comp.stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	var upper, lower uint64
	upper = evm.Context.BlockNumber
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		num.SetBytes(evm.Context.GetHash(num64).Bytes())
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetBytes(evm.Context.Coinbase.Bytes()))
	return nil, nil
}

func opTimestamp(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(evm.Context.BlockNumber))
	return nil, nil
}

func opDifficulty(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	v, _ := uint256.FromBig(evm.Context.Difficulty)
	comp.stack.push(v)
	return nil, nil
}

func opGasLimit(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(evm.Context.GasLimit))
	return nil, nil
}

func opPop(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.pop()
	return nil, nil
}

func opMload(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	v := comp.stack.peek()
	offset := v.Uint64()
	v.SetBytes(comp.mem.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	// pop value of the stack
	mStart, val := comp.stack.pop(), comp.stack.pop()
	comp.mem.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	off, val := comp.stack.pop(), comp.stack.pop()
	comp.mem.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	loc := comp.stack.peek()
	hash := common.Hash(loc.Bytes32())
	val := evm.StateDB.GetState(comp.Address(), hash)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	loc := comp.stack.pop()
	val := comp.stack.pop()
	evm.StateDB.SetState(comp.Address(), loc.Bytes32(), val.Bytes32())
	return nil, nil
}

func opJump(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	pos := comp.stack.pop()
	if !pos.IsUint64() || !comp.validJumpdest(evm, pos.Uint64()) {
		return nil, ErrInvalidJump
	}
	*pc = pos.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	pos, cond := comp.stack.pop(), comp.stack.pop()
	if !cond.IsZero() {
		if !pos.IsUint64() || !comp.validJumpdest(evm, pos.Uint64()) {
			return nil, ErrInvalidJump
		}
		*pc = pos.Uint64()
	} else {
		*pc++
	}
	return nil, nil
}

func opJumpdest(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(uint64(comp.mem.Len())))
	return nil, nil
}

func opGas(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int).SetUint64(comp.gas))
	return nil, nil
}

func opChainID(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	chainId, _ := uint256.FromBig(evm.Rules.ChainID)
	comp.stack.push(chainId)
	return nil, nil
}

func opSelfBalance(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	balance, _ := uint256.FromBig(evm.StateDB.GetBalance(comp.Address()))
	comp.stack.push(balance)
	return nil, nil
}

// opBaseFee implements BASEFEE opcode
func opBaseFee(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	baseFee, _ := uint256.FromBig(evm.Context.BaseFee)
	comp.stack.push(baseFee)
	return nil, nil
}

// opPush0 implements the PUSH0 opcode (EIP-3855).
func opPush0(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	comp.stack.push(new(uint256.Int))
	return nil, nil
}

func opCreate(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		value  = comp.stack.pop()
		offset = comp.stack.pop()
		size   = comp.stack.pop()
		input  = comp.mem.GetCopy(offset.Uint64(), size.Uint64())
		gas    = comp.gas
	)
	if evm.Rules.IsEIP150 {
		gas -= gas / 64
	}
	// reuse size int for stack result
	stackvalue := size
	comp.UseGas(gas)
	evm.createLike(comp, KindCreate, input, gas, value.ToBig(), nil, &stackvalue)
	return nil, nil
}

func opCreate2(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		endowment = comp.stack.pop()
		offset    = comp.stack.pop()
		size      = comp.stack.pop()
		salt      = comp.stack.pop()
		input     = comp.mem.GetCopy(offset.Uint64(), size.Uint64())
		gas       = comp.gas
	)
	// Apply EIP150
	gas -= gas / 64
	comp.UseGas(gas)
	// reuse size int for stack result
	stackvalue := size
	evm.createLike(comp, KindCreate2, input, gas, endowment.ToBig(), &salt, &stackvalue)
	return nil, nil
}

func opCall(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	stack := comp.stack
	// Pop gas. The actual gas in evm.callGasTemp.
	// We can use this as a temporary value
	temp := stack.pop()
	gas := evm.callGasTemp
	// Pop other call parameters.
	addr, value, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	// Get the arguments from the memory.
	args := comp.mem.GetCopy(inOffset.Uint64(), inSize.Uint64())

	if !value.IsZero() {
		gas += params.CallStipend
	}
	evm.callLike(comp, Message{
		Kind:      KindCall,
		Gas:       gas,
		Sender:    comp.Address(),
		Recipient: toAddr,
		CodeAddr:  toAddr,
		Value:     value.ToBig(),
		Input:     args,
		Static:    comp.msg.Static,
	}, retOffset.Uint64(), retSize.Uint64(), &temp)
	return nil, nil
}

func opCallCode(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	stack := comp.stack
	temp := stack.pop()
	gas := evm.callGasTemp
	addr, value, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	args := comp.mem.GetCopy(inOffset.Uint64(), inSize.Uint64())

	if !value.IsZero() {
		gas += params.CallStipend
	}
	evm.callLike(comp, Message{
		Kind:      KindCallCode,
		Gas:       gas,
		Sender:    comp.Address(),
		Recipient: comp.Address(),
		CodeAddr:  toAddr,
		Value:     value.ToBig(),
		Input:     args,
		Static:    comp.msg.Static,
	}, retOffset.Uint64(), retSize.Uint64(), &temp)
	return nil, nil
}

func opDelegateCall(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	stack := comp.stack
	temp := stack.pop()
	gas := evm.callGasTemp
	addr, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	args := comp.mem.GetCopy(inOffset.Uint64(), inSize.Uint64())

	evm.callLike(comp, Message{
		Kind:      KindDelegateCall,
		Gas:       gas,
		Sender:    comp.Caller(),
		Recipient: comp.Address(),
		CodeAddr:  toAddr,
		Value:     comp.Value(),
		Input:     args,
		Static:    comp.msg.Static,
	}, retOffset.Uint64(), retSize.Uint64(), &temp)
	return nil, nil
}

func opStaticCall(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	stack := comp.stack
	temp := stack.pop()
	gas := evm.callGasTemp
	addr, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	args := comp.mem.GetCopy(inOffset.Uint64(), inSize.Uint64())

	evm.callLike(comp, Message{
		Kind:      KindStaticCall,
		Gas:       gas,
		Sender:    comp.Address(),
		Recipient: toAddr,
		CodeAddr:  toAddr,
		Value:     new(big.Int),
		Input:     args,
		Static:    true,
	}, retOffset.Uint64(), retSize.Uint64(), &temp)
	return nil, nil
}

func opReturn(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	offset, size := comp.stack.pop(), comp.stack.pop()
	ret := comp.mem.GetCopy(offset.Uint64(), size.Uint64())
	return ret, nil
}

func opRevert(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	offset, size := comp.stack.pop(), comp.stack.pop()
	ret := comp.mem.GetCopy(offset.Uint64(), size.Uint64())
	return ret, nil
}

func opUndefined(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	return nil, &ErrInvalidOpCode{opcode: OpCode(comp.code.code[*pc])}
}

func opStop(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	return nil, nil
}

func opSelfdestruct(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	beneficiary := comp.stack.pop()
	balance := evm.StateDB.GetBalance(comp.Address())
	evm.StateDB.AddBalance(beneficiary.Bytes20(), balance)
	evm.StateDB.Suicide(comp.Address())
	return nil, nil
}

// make log instruction function
func makeLog(size int) executionFunc {
	return func(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
		topics := make([]common.Hash, size)
		stack := comp.stack
		mStart, mSize := stack.pop(), stack.pop()
		for i := 0; i < size; i++ {
			addr := stack.pop()
			topics[i] = addr.Bytes32()
		}
		d := comp.mem.GetCopy(mStart.Uint64(), mSize.Uint64())
		evm.StateDB.AddLog(&types.Log{
			Address: comp.Address(),
			Topics:  topics,
			Data:    d,
			// This is a non-consensus field, but assigned here because
			// core/state doesn't know the current block number.
			BlockNumber: evm.Context.BlockNumber,
		})
		return nil, nil
	}
}

// opPush1 is a specialized version of pushN
func opPush1(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
	var (
		codeLen = uint64(len(comp.code.code))
		integer = new(uint256.Int)
	)
	*pc += 1
	if *pc < codeLen {
		comp.stack.push(integer.SetUint64(uint64(comp.code.code[*pc])))
	} else {
		comp.stack.push(integer.Clear())
	}
	return nil, nil
}

// make push instruction function
func makePush(size uint64, pushByteSize int) executionFunc {
	return func(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
		codeLen := len(comp.code.code)

		startMin := codeLen
		if int(*pc+1) < startMin {
			startMin = int(*pc + 1)
		}

		endMin := codeLen
		if startMin+pushByteSize < endMin {
			endMin = startMin + pushByteSize
		}

		integer := new(uint256.Int)
		comp.stack.push(integer.SetBytes(common.RightPadBytes(
			comp.code.code[startMin:endMin], pushByteSize)))

		*pc += size
		return nil, nil
	}
}

// make dup instruction function
func makeDup(size int64) executionFunc {
	return func(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
		comp.stack.dup(int(size))
		return nil, nil
	}
}

// make swap instruction function
func makeSwap(size int64) executionFunc {
	// switch n + 1 otherwise n would be swapped with n
	size++
	return func(pc *uint64, evm *EVM, comp *Computation) ([]byte, error) {
		comp.stack.swap(int(size))
		return nil, nil
	}
}
