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

// Package vm implements the fork-parameterized EVM interpreter.
package vm

import (
	"math/big"

	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// GetHashFunc returns the n'th block hash in the chain, for BLOCKHASH.
type GetHashFunc func(uint64) common.Hash

// BlockContext provides the EVM with information about the enclosing block.
type BlockContext struct {
	GetHash     GetHashFunc
	Coinbase    common.Address // Provides information for COINBASE
	GasLimit    uint64         // Provides information for GASLIMIT
	BlockNumber uint64         // Provides information for NUMBER
	Time        uint64         // Provides information for TIMESTAMP
	Difficulty  *big.Int       // Provides information for DIFFICULTY
	BaseFee     *big.Int       // Provides information for BASEFEE
}

// TxContext provides the EVM with information about the transaction being
// executed. All fields change between transactions.
type TxContext struct {
	Origin   common.Address // Provides information for ORIGIN
	GasPrice *big.Int       // Provides information for GASPRICE
}

// Tracer receives one callback per executed opcode. Injected through Config;
// nil by default.
type Tracer interface {
	CaptureState(pc uint64, op OpCode, gas, cost uint64, comp *Computation, depth int, err error)
}

// Config are the tunables of the EVM.
type Config struct {
	Tracer Tracer
}

// EVM is the fork-parameterized interpreter environment. A single EVM value
// executes one transaction at a time; it is not safe for concurrent use.
//
// Call frames are never entered through Go recursion: the call-family
// opcodes chain a child Computation onto the current frame and suspend, and
// the execute loop drives an explicit frame stack (§ frame depth is bounded
// by CallCreateDepth, host stacks are not).
type EVM struct {
	Context BlockContext
	TxContext
	StateDB StateDB
	Rules   params.Rules

	chainConfig *params.ChainConfig
	vmConfig    Config

	table       *JumpTable
	precompiles map[common.Address]PrecompiledContract

	// callGasTemp holds the gas available for the current call. This is
	// needed because the available gas is calculated in gasCall* according
	// to the 63/64 rule and later applied in opCall*.
	callGasTemp uint64

	// jumpdests aggregates JUMPDEST analysis keyed by code hash.
	jumpdests map[common.Hash]bitvec

	// depth is the current frame-stack depth.
	depth int
}

// NewEVM returns a new EVM for one block. The Rules (and with them the jump
// table and precompile set) are fixed for the EVM's lifetime.
func NewEVM(blockCtx BlockContext, statedb StateDB, chainConfig *params.ChainConfig, rules params.Rules, vmConfig Config) *EVM {
	evm := &EVM{
		Context:     blockCtx,
		StateDB:     statedb,
		Rules:       rules,
		chainConfig: chainConfig,
		vmConfig:    vmConfig,
		jumpdests:   make(map[common.Hash]bitvec),
	}
	switch {
	case rules.IsShanghai:
		tbl := newShanghaiInstructionSet()
		evm.table = &tbl
	case rules.IsLondon, rules.IsMerge:
		tbl := newLondonInstructionSet()
		evm.table = &tbl
	case rules.IsBerlin:
		tbl := newBerlinInstructionSet()
		evm.table = &tbl
	case rules.IsIstanbul:
		tbl := newIstanbulInstructionSet()
		evm.table = &tbl
	case rules.IsConstantinople && rules.IsPetersburg:
		tbl := newPetersburgInstructionSet()
		evm.table = &tbl
	case rules.IsConstantinople:
		tbl := newConstantinopleInstructionSet()
		evm.table = &tbl
	case rules.IsByzantium:
		tbl := newByzantiumInstructionSet()
		evm.table = &tbl
	case rules.IsEIP158:
		tbl := newSpuriousDragonInstructionSet()
		evm.table = &tbl
	case rules.IsEIP150:
		tbl := newTangerineWhistleInstructionSet()
		evm.table = &tbl
	case rules.IsHomestead:
		tbl := newHomesteadInstructionSet()
		evm.table = &tbl
	default:
		tbl := newFrontierInstructionSet()
		evm.table = &tbl
	}
	evm.precompiles = activePrecompiles(rules)
	return evm
}

// ChainConfig returns the chain configuration the EVM was created with.
func (self *EVM) ChainConfig() *params.ChainConfig { return self.chainConfig }

// SetTxContext installs the per-transaction context.
func (self *EVM) SetTxContext(txCtx TxContext) {
	self.TxContext = txCtx
}

// precompile looks the address up in the active precompile set.
func (self *EVM) precompile(addr common.Address) (PrecompiledContract, bool) {
	p, ok := self.precompiles[addr]
	return p, ok
}

// ActivePrecompileAddresses returns the addresses warmed at transaction
// start under EIP-2929.
func (self *EVM) ActivePrecompileAddresses() []common.Address {
	addrs := make([]common.Address, 0, len(self.precompiles))
	for addr := range self.precompiles {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (self *EVM) analyzeJumpdests(code codeAndHash) bitvec {
	if code.hash == (common.Hash{}) {
		// Initcode, not cacheable.
		return codeBitmap(code.code)
	}
	if analysis, present := self.jumpdests[code.hash]; present {
		return analysis
	}
	analysis := codeBitmap(code.code)
	self.jumpdests[code.hash] = analysis
	return analysis
}

func (self *EVM) transfer(from, to common.Address, amount *big.Int) {
	self.StateDB.SubBalance(from, amount)
	self.StateDB.AddBalance(to, amount)
}

func (self *EVM) canTransfer(from common.Address, amount *big.Int) bool {
	return self.StateDB.GetBalance(from).Cmp(amount) >= 0
}

// Call executes the top-level message call frame of a transaction.
func (self *EVM) Call(sender, to common.Address, input []byte, gas uint64, value *big.Int) (ret []byte, leftOverGas uint64, err error) {
	if !self.canTransfer(sender, value) {
		return nil, gas, ErrInsufficientBalance
	}
	comp := newComputation(Message{
		Kind:      KindCall,
		Gas:       gas,
		Sender:    sender,
		Recipient: to,
		CodeAddr:  to,
		Value:     value,
		Input:     input,
	}, codeAndHash{})
	self.execute(comp)
	ret, leftOverGas, err = comp.output, comp.gas, comp.err
	if err != nil {
		self.StateDB.RevertToSnapshot(comp.snapshot)
		if err != ErrExecutionReverted {
			leftOverGas = 0
		}
	}
	comp.release()
	return ret, leftOverGas, err
}

// StaticCall executes a read-only top-level call (used by the consumer
// contract for view-style execution; the block executor never issues one).
func (self *EVM) StaticCall(sender, to common.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	comp := newComputation(Message{
		Kind:      KindStaticCall,
		Gas:       gas,
		Sender:    sender,
		Recipient: to,
		CodeAddr:  to,
		Value:     new(big.Int),
		Input:     input,
		Static:    true,
	}, codeAndHash{})
	self.execute(comp)
	ret, leftOverGas, err = comp.output, comp.gas, comp.err
	if err != nil {
		self.StateDB.RevertToSnapshot(comp.snapshot)
		if err != ErrExecutionReverted {
			leftOverGas = 0
		}
	}
	comp.release()
	return ret, leftOverGas, err
}

// Create executes the top-level contract-creation frame of a transaction.
// The new contract address is keccak(rlp(sender, nonce))[12:].
func (self *EVM) Create(sender common.Address, initcode []byte, gas uint64, value *big.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error) {
	if !self.canTransfer(sender, value) {
		return nil, common.Address{}, gas, ErrInsufficientBalance
	}
	nonce := self.StateDB.GetNonce(sender)
	if nonce+1 < nonce {
		return nil, common.Address{}, gas, ErrNonceUintOverflow
	}
	self.StateDB.SetNonce(sender, nonce+1)
	contractAddr = crypto.CreateAddress(sender, nonce)
	if self.Rules.IsBerlin {
		self.StateDB.AddAddressToAccessList(contractAddr)
	}
	comp := newComputation(Message{
		Kind:      KindCreate,
		Gas:       gas,
		Sender:    sender,
		Recipient: contractAddr,
		CodeAddr:  contractAddr,
		Value:     value,
		Input:     initcode,
	}, codeAndHash{})
	self.execute(comp)
	self.finishCreate(comp)
	ret, leftOverGas, err = comp.output, comp.gas, comp.err
	comp.release()
	return ret, contractAddr, leftOverGas, err
}

// execute drives the explicit frame stack, starting from the given root
// frame, until the root terminates.
func (self *EVM) execute(root *Computation) {
	frames := make([]*Computation, 0, 16)
	self.enterFrame(root)
	frames = append(frames, root)
	self.depth = 1
	for len(frames) > 0 {
		comp := frames[len(frames)-1]
		if !comp.halted {
			self.step(comp)
		}
		if child := comp.child; child != nil && !comp.halted {
			// The frame suspended on a call-family opcode: descend.
			child.msg.Depth = comp.msg.Depth + 1
			self.enterFrame(child)
			frames = append(frames, child)
			self.depth++
			continue
		}
		// The frame terminated: unwind and run the parent's continuation.
		frames = frames[:len(frames)-1]
		self.depth--
		if len(frames) == 0 {
			break
		}
		parent := frames[len(frames)-1]
		cont := parent.cont
		parent.child, parent.cont = nil, nil
		cont(parent, comp)
		comp.release()
	}
}

// enterFrame performs the state effects of entering a frame: snapshot, value
// transfer, account creation, and the precompile / empty-code fast paths.
// It may complete the frame immediately, in which case comp.halted is set
// and no opcode ever runs.
func (self *EVM) enterFrame(comp *Computation) {
	msg := &comp.msg
	comp.snapshot = self.StateDB.Snapshot()
	switch msg.Kind {
	case KindCreate, KindCreate2:
		// Ensure there's no existing contract already at the designated
		// address.
		contractHash := self.StateDB.GetCodeHash(msg.Recipient)
		if self.StateDB.GetNonce(msg.Recipient) != 0 || (contractHash != (common.Hash{}) && contractHash != emptyCodeHash) {
			comp.err = ErrContractAddressCollision
			comp.gas = 0
			comp.halted = true
			return
		}
		self.StateDB.CreateAccount(msg.Recipient)
		if self.Rules.IsEIP158 {
			self.StateDB.SetNonce(msg.Recipient, 1)
		}
		self.transfer(msg.Sender, msg.Recipient, msg.Value)
		comp.code = codeAndHash{code: msg.Input}
		comp.msg.Input = nil
		if len(comp.code.code) == 0 {
			comp.halted = true
		}
		return
	case KindCall:
		if !self.StateDB.Exist(msg.Recipient) {
			_, isPrecompile := self.precompile(msg.CodeAddr)
			if !isPrecompile && self.Rules.IsEIP158 && msg.Value.Sign() == 0 {
				// Calling a non-existing account, don't do anything, but ping the tracer
			} else {
				self.StateDB.CreateAccount(msg.Recipient)
			}
		}
		self.transfer(msg.Sender, msg.Recipient, msg.Value)
	case KindCallCode:
		// Value is not re-transferred: the frame runs foreign code against
		// the caller's own account. The balance check already happened.
	case KindDelegateCall:
		// Neither value transfer nor balance check: the frame inherits the
		// parent's value context.
	case KindStaticCall:
		// We do an AddBalance of zero here, just in order to trigger a touch.
		// This doesn't matter on Mainnet, where all empties are gone at the time of Byzantium,
		// but is the correct thing to do and matters on other networks, in tests, and potential
		// future scenarios
		self.StateDB.AddBalance(msg.Recipient, big0)
	}
	// Precompiles short-circuit the frame.
	if p, isPrecompile := self.precompile(msg.CodeAddr); isPrecompile {
		comp.output, comp.gas, comp.err = RunPrecompiledContract(p, msg.Input, comp.gas)
		comp.halted = true
		return
	}
	code := self.StateDB.GetCode(msg.CodeAddr)
	if len(code) == 0 {
		comp.halted = true
		return
	}
	comp.code = codeAndHash{code: code, hash: self.StateDB.GetCodeHash(msg.CodeAddr)}
}

var (
	big0          = new(big.Int)
	emptyCodeHash = crypto.Keccak256Hash(nil)
)

// step executes opcodes on the given frame until it terminates or suspends
// on a pending child frame.
func (self *EVM) step(comp *Computation) {
	for {
		op := comp.GetOp(comp.pc)
		operation := self.table[op]
		// Validate stack
		if sLen := comp.stack.len(); sLen < operation.minStack {
			comp.fail(&ErrStackUnderflow{stackLen: sLen, required: operation.minStack})
			return
		} else if sLen > operation.maxStack {
			comp.fail(&ErrStackOverflow{stackLen: sLen, limit: operation.maxStack})
			return
		}
		// Static calls can't ever change state: the value check catches
		// value-bearing CALLs whose write happens in the child.
		if comp.msg.Static {
			if operation.writes || (op == CALL && !comp.stack.Back(2).IsZero()) {
				comp.fail(ErrWriteProtection)
				return
			}
		}
		if !comp.UseGas(operation.constantGas) {
			comp.fail(ErrOutOfGas)
			return
		}
		var memorySize uint64
		// calculate the new memory size and expand the memory to fit
		// the operation
		if operation.memorySize != nil {
			memSize, overflow := operation.memorySize(comp.stack)
			if overflow {
				comp.fail(ErrGasUintOverflow)
				return
			}
			// memory is expanded in words of 32 bytes. Gas
			// is also calculated in words.
			if memorySize = toWordSize(memSize) * 32; memorySize < memSize {
				comp.fail(ErrGasUintOverflow)
				return
			}
		}
		cost := operation.constantGas
		if operation.dynamicGas != nil {
			dynamicCost, err := operation.dynamicGas(self, comp, comp.stack, comp.mem, memorySize)
			cost += dynamicCost
			if err != nil || !comp.UseGas(dynamicCost) {
				comp.fail(ErrOutOfGas)
				return
			}
		}
		if memorySize > 0 {
			comp.mem.Resize(memorySize)
		}
		if tracer := self.vmConfig.Tracer; tracer != nil {
			tracer.CaptureState(comp.pc, op, comp.gas+cost, cost, comp, self.depth, nil)
		}
		// execute the operation
		res, err := operation.execute(&comp.pc, self, comp)
		switch {
		case err != nil:
			comp.fail(err)
			return
		case operation.reverts:
			comp.output = res
			comp.err = ErrExecutionReverted
			comp.halted = true
			return
		case operation.halts:
			comp.output = res
			comp.halted = true
			return
		case comp.child != nil:
			// Suspended on a call-family opcode; resume past it later.
			comp.pc++
			return
		case !operation.jumps:
			comp.pc++
		}
	}
}

func (self *Computation) fail(err error) {
	self.err = err
	self.halted = true
}

// callLike implements the shared tail of CALL, CALLCODE, DELEGATECALL and
// STATICCALL: the depth and balance preconditions, and the chaining of the
// child frame with a continuation that merges or burns on return.
func (self *EVM) callLike(parent *Computation, msg Message, retOffset, retSize uint64, result *uint256.Int) {
	fail := func() {
		parent.RefundGas(msg.Gas)
		result.Clear()
		parent.stack.push(result)
		parent.retData = nil
	}
	if parent.Depth()+1 > int(params.CallCreateDepth) {
		fail()
		return
	}
	needsValue := msg.Kind == KindCall || msg.Kind == KindCallCode
	if needsValue && msg.Value.Sign() != 0 && !self.canTransfer(msg.Sender, msg.Value) {
		fail()
		return
	}
	child := newComputation(msg, codeAndHash{})
	parent.chainTo(child, func(parent, child *Computation) {
		if child.err != nil {
			self.StateDB.RevertToSnapshot(child.snapshot)
			if child.err != ErrExecutionReverted {
				child.gas = 0
			}
		}
		if child.err == nil {
			result.SetOne()
		} else {
			result.Clear()
		}
		parent.stack.push(result)
		if child.err == nil || child.err == ErrExecutionReverted {
			parent.mem.Set(retOffset, retSize, child.output)
		}
		parent.retData = child.output
		parent.RefundGas(child.gas)
	})
}

// createLike implements the shared tail of CREATE and CREATE2.
func (self *EVM) createLike(parent *Computation, kind CallKind, initcode []byte, gas uint64, value *big.Int, salt *uint256.Int, result *uint256.Int) {
	fail := func() {
		parent.RefundGas(gas)
		result.Clear()
		parent.stack.push(result)
		parent.retData = nil
	}
	if parent.Depth()+1 > int(params.CallCreateDepth) {
		fail()
		return
	}
	if value.Sign() != 0 && !self.canTransfer(parent.Address(), value) {
		fail()
		return
	}
	nonce := self.StateDB.GetNonce(parent.Address())
	if nonce+1 < nonce {
		fail()
		parent.retData = nil
		return
	}
	self.StateDB.SetNonce(parent.Address(), nonce+1)
	var contractAddr common.Address
	if kind == KindCreate2 {
		saltBytes := salt.Bytes32()
		contractAddr = crypto.CreateAddress2(parent.Address(), saltBytes, crypto.Keccak256(initcode))
	} else {
		contractAddr = crypto.CreateAddress(parent.Address(), nonce)
	}
	if self.Rules.IsBerlin {
		self.StateDB.AddAddressToAccessList(contractAddr)
	}
	child := newComputation(Message{
		Kind:      kind,
		Gas:       gas,
		Sender:    parent.Address(),
		Recipient: contractAddr,
		CodeAddr:  contractAddr,
		Value:     value,
		Input:     initcode,
		Static:    parent.msg.Static,
	}, codeAndHash{})
	parent.chainTo(child, func(parent, child *Computation) {
		self.finishCreate(child)
		if child.err != nil && (self.Rules.IsHomestead || child.err != ErrCodeStoreOutOfGas) {
			result.Clear()
		} else {
			result.SetBytes(contractAddr.Bytes())
		}
		parent.stack.push(result)
		if child.err == ErrExecutionReverted {
			parent.retData = child.output
		} else {
			parent.retData = nil
		}
		parent.RefundGas(child.gas)
	})
}

// finishCreate runs the deployment epilogue of a create frame: code size and
// prefix rules, the code deposit charge, and the failure/revert semantics.
func (self *EVM) finishCreate(comp *Computation) {
	if comp.err == nil {
		ret := comp.output
		switch {
		case self.Rules.IsEIP158 && len(ret) > params.MaxCodeSize:
			comp.err = ErrMaxCodeSizeExceeded
		case self.Rules.IsLondon && len(ret) >= 1 && ret[0] == 0xEF:
			// Reject code starting with 0xEF (EIP-3541).
			comp.err = ErrInvalidCode
		default:
			createDataGas := uint64(len(ret)) * params.CreateDataGas
			if comp.UseGas(createDataGas) {
				self.StateDB.SetCode(comp.Address(), ret)
			} else {
				comp.err = ErrCodeStoreOutOfGas
			}
		}
	}
	// When an error was returned by the EVM or when setting the creation
	// code above we revert to the snapshot and consume any gas remaining.
	// Additionally, when we're in homestead this also counts for code
	// storage gas errors.
	if comp.err != nil && (self.Rules.IsHomestead || comp.err != ErrCodeStoreOutOfGas) {
		self.StateDB.RevertToSnapshot(comp.snapshot)
		if comp.err != ErrExecutionReverted {
			comp.gas = 0
		}
	}
}
