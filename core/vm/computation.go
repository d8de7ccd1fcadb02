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

	"github.com/ethereum/go-ethereum/common"
)

// CallKind distinguishes the call-family entry into a frame.
type CallKind byte

const (
	KindCall CallKind = iota
	KindCallCode
	KindDelegateCall
	KindStaticCall
	KindCreate
	KindCreate2
)

// Message is the input of one call frame.
type Message struct {
	Kind   CallKind
	Depth  uint16
	Gas    uint64
	Sender common.Address
	// Recipient is the account whose storage and balance the frame operates
	// on. For DELEGATECALL/CALLCODE it differs from CodeAddr.
	Recipient common.Address
	CodeAddr  common.Address
	Value     *big.Int
	Input     []byte
	Static    bool
}

// continuation runs on the parent frame after its child frame terminates.
type continuation func(parent, child *Computation)

// Computation is the mutable state of one call frame: stack, memory, program
// counter, gas and the forward link to a pending child frame. Frames are
// never entered through Go recursion; the interpreter loop keeps an explicit
// frame stack (the call depth bound is 1024, host stacks are not part of the
// consensus surface).
type Computation struct {
	msg  Message
	code codeAndHash

	stack *Stack
	mem   *Memory
	pc    uint64
	gas   uint64

	// output is what the frame returned via RETURN/REVERT (or a precompile).
	output []byte
	// retData buffers the most recent child's output for RETURNDATA*.
	retData []byte
	err     error

	// snapshot of the state taken when the frame was entered; reverted on
	// failure.
	snapshot int

	// halted is set once the frame may not execute further opcodes.
	halted bool

	// child is the pending frame spawned by a call-family opcode; cont runs
	// on this frame once the child terminates.
	child *Computation
	cont  continuation

	jumpdest_analysis bitvec
}

type codeAndHash struct {
	code []byte
	hash common.Hash // zero for initcode, which is not cacheable
}

func newComputation(msg Message, code codeAndHash) *Computation {
	return &Computation{
		msg:   msg,
		code:  code,
		gas:   msg.Gas,
		stack: newstack(),
		mem:   NewMemory(),
	}
}

// release returns the pooled scratch structures.
func (self *Computation) release() {
	if self.stack != nil {
		returnStack(self.stack)
		self.stack = nil
	}
	self.mem = nil
}

// Address returns the account the frame operates on.
func (self *Computation) Address() common.Address { return self.msg.Recipient }

// Caller returns the frame's caller.
func (self *Computation) Caller() common.Address { return self.msg.Sender }

// Value returns the wei attached to the frame.
func (self *Computation) Value() *big.Int { return self.msg.Value }

// Input returns the call data.
func (self *Computation) Input() []byte { return self.msg.Input }

// Depth returns the frame's call depth.
func (self *Computation) Depth() int { return int(self.msg.Depth) }

// Gas returns the gas remaining in the frame.
func (self *Computation) Gas() uint64 { return self.gas }

// Output returns what the frame returned.
func (self *Computation) Output() []byte { return self.output }

// Err returns the frame's terminal error, if any.
func (self *Computation) Err() error { return self.err }

// UseGas attempts to consume gas, reporting whether enough was available.
func (self *Computation) UseGas(gas uint64) (ok bool) {
	if self.gas < gas {
		return false
	}
	self.gas -= gas
	return true
}

// RefundGas returns unconsumed gas to the frame (used by the call-family
// continuations).
func (self *Computation) RefundGas(gas uint64) {
	self.gas += gas
}

// GetOp returns the n'th opcode in the frame's code.
func (self *Computation) GetOp(n uint64) OpCode {
	if n < uint64(len(self.code.code)) {
		return OpCode(self.code.code[n])
	}
	return STOP
}

// validJumpdest reports whether dest is a JUMPDEST on an instruction
// boundary.
func (self *Computation) validJumpdest(evm *EVM, dest uint64) bool {
	if dest >= uint64(len(self.code.code)) {
		return false
	}
	if OpCode(self.code.code[dest]) != JUMPDEST {
		return false
	}
	analysis := self.jumpdest_analysis
	if analysis == nil {
		analysis = evm.analyzeJumpdests(self.code)
		self.jumpdest_analysis = analysis
	}
	return analysis.codeSegment(dest)
}

// chainTo registers child as the pending frame and cont as the merge step,
// then suspends this frame. The interpreter loop picks the child up.
func (self *Computation) chainTo(child *Computation, cont continuation) {
	self.child = child
	self.cont = cont
}
