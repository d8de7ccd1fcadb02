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

package vm

import (
	"math/big"
	"testing"

	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSender   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testContract = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func newTestEVM(t *testing.T, config *params.ChainConfig) (*EVM, *state.StateDB) {
	statedb, err := state.New(common.Hash{}, state.NewDatabase(ethdb.NewMemDatabase()))
	require.NoError(t, err)
	statedb.SetBalance(testSender, big.NewInt(1e18))
	blockCtx := BlockContext{
		GetHash:     func(uint64) common.Hash { return common.Hash{} },
		Coinbase:    common.HexToAddress("0xc0"),
		BlockNumber: 1,
		Time:        1000,
		Difficulty:  big.NewInt(1),
		GasLimit:    10000000,
	}
	rules := config.Rules(1, 1000)
	if rules.IsLondon {
		blockCtx.BaseFee = big.NewInt(params.GenesisBaseFee)
	}
	evm := NewEVM(blockCtx, statedb, config, rules, Config{})
	evm.SetTxContext(TxContext{Origin: testSender, GasPrice: big.NewInt(1)})
	return evm, statedb
}

// runCode installs code at the test contract and calls it.
func runCode(t *testing.T, evm *EVM, statedb *state.StateDB, code []byte, gas uint64) (ret []byte, used uint64, err error) {
	statedb.SetCode(testContract, code)
	ret, leftover, err := evm.Call(testSender, testContract, nil, gas, new(big.Int))
	return ret, gas - leftover, err
}

func TestArithmeticAndReturn(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	// 2 + 3, stored to memory, returned as one word.
	code := []byte{
		byte(PUSH1), 0x02,
		byte(PUSH1), 0x03,
		byte(ADD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	ret, used, err := runCode(t, evm, statedb, code, 100000)
	require.NoError(t, err)
	require.Len(t, ret, 32)
	assert.Equal(t, uint64(5), new(uint256.Int).SetBytes(ret).Uint64())
	// 5 pushes, ADD, MSTORE plus one word of fresh memory, free RETURN.
	assert.Equal(t, uint64(5*3+3+3+3), used)
}

func TestSignedDivisionSemantics(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	// SDIV(-2^255, -1) is defined as -2^255.
	minInt := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	code := []byte{byte(PUSH1), 0x01, byte(PUSH1), 0x00, byte(SUB)} // -1
	code = append(code, byte(PUSH32))
	minBytes := minInt.Bytes32()
	code = append(code, minBytes[:]...)
	code = append(code,
		byte(SDIV),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	)
	ret, _, err := runCode(t, evm, statedb, code, 100000)
	require.NoError(t, err)
	assert.Equal(t, minInt.Bytes32(), [32]byte(common.BytesToHash(ret)))
}

func TestInvalidOpcodeBurnsGas(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	_, used, err := runCode(t, evm, statedb, []byte{byte(INVALID)}, 50000)
	require.Error(t, err)
	var invalid *ErrInvalidOpCode
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, uint64(50000), used, "failed frame burns all gas")
}

func TestRevertReturnsRemainingGas(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	code := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	_, used, err := runCode(t, evm, statedb, code, 50000)
	assert.Equal(t, ErrExecutionReverted, err)
	assert.Equal(t, uint64(6), used, "revert keeps unused gas")
}

func TestStackUnderflow(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	_, _, err := runCode(t, evm, statedb, []byte{byte(ADD)}, 50000)
	var underflow *ErrStackUnderflow
	assert.ErrorAs(t, err, &underflow)
}

func TestInvalidJumpDest(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	// Jump into the middle of a PUSH payload.
	code := []byte{
		byte(PUSH1), 0x04,
		byte(JUMP),
		byte(PUSH1), byte(JUMPDEST), // 0x04 is push data, not a JUMPDEST
	}
	_, _, err := runCode(t, evm, statedb, code, 50000)
	assert.ErrorIs(t, err, ErrInvalidJump)
}

func TestCallToMissingAccountSpurious(t *testing.T) {
	evm, statedb := newTestEVM(t, &params.ChainConfig{
		ChainID:             big.NewInt(1),
		HomesteadBlock:      0,
		EIP150Block:         0,
		EIP155Block:         0,
		EIP158Block:         0,
		ByzantiumBlock:      params.BlockNumNIL,
		ConstantinopleBlock: params.BlockNumNIL,
		PetersburgBlock:     params.BlockNumNIL,
		IstanbulBlock:       params.BlockNumNIL,
		MuirGlacierBlock:    params.BlockNumNIL,
		BerlinBlock:         params.BlockNumNIL,
		LondonBlock:         params.BlockNumNIL,
		ArrowGlacierBlock:   params.BlockNumNIL,
		GrayGlacierBlock:    params.BlockNumNIL,
		MergeBlock:          params.BlockNumNIL,
		ShanghaiTime:        params.BlockNumNIL,
	})
	missing := common.HexToAddress("0x3000000000000000000000000000000000000003")
	// Zero-value CALL into the void: the static 700 of EIP-150, no account
	// creation charge, no account materialized.
	code := []byte{
		byte(PUSH1), 0x00, // retSize
		byte(PUSH1), 0x00, // retOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
		byte(PUSH1), 0x00, // value
		byte(PUSH20),
	}
	code = append(code, missing.Bytes()...)
	code = append(code,
		byte(PUSH1), 0x00, // gas
		byte(CALL),
		byte(STOP),
	)
	_, used, err := runCode(t, evm, statedb, code, 100000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5*3+3+3+700), used)
	statedb.Finalise(true)
	assert.False(t, statedb.Exist(missing), "zero-value call must not create the account")
}

func TestSStoreColdBerlin(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	statedb.BeginTransaction(common.HexToHash("0x01"), 0)
	statedb.PrepareAccessList(testSender, &testContract, evm.ActivePrecompileAddresses(), nil)
	// SSTORE 0 -> 1 on a cold slot: 2100 cold + 20000 set.
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(STOP),
	}
	_, used, err := runCode(t, evm, statedb, code, 100000)
	require.NoError(t, err)
	assert.Equal(t, uint64(3+3+22100), used)
	assert.Zero(t, statedb.GetRefund())
}

func TestSStoreResetRefundBerlin(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	statedb.BeginTransaction(common.HexToHash("0x01"), 0)
	statedb.PrepareAccessList(testSender, &testContract, evm.ActivePrecompileAddresses(), nil)
	// Write 0 -> 1 and back 1 -> 0 in one frame: the second store restores
	// the original zero and earns SSTORE_SET - WARM_READ back.
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(STOP),
	}
	_, _, err := runCode(t, evm, statedb, code, 100000)
	require.NoError(t, err)
	assert.Equal(t, params.SstoreSetGasEIP2200-params.WarmStorageReadCostEIP2929, statedb.GetRefund())
}

func TestStaticCallBlocksWrites(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	writer := common.HexToAddress("0x4000000000000000000000000000000000000004")
	statedb.SetCode(writer, []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x01,
		byte(SSTORE),
		byte(STOP),
	})
	// STATICCALL into the writer, return its status word.
	code := []byte{
		byte(PUSH1), 0x00, // retSize
		byte(PUSH1), 0x00, // retOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
		byte(PUSH20),
	}
	code = append(code, writer.Bytes()...)
	code = append(code,
		byte(PUSH2), 0xff, 0xff, // gas
		byte(STATICCALL),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	)
	ret, _, err := runCode(t, evm, statedb, code, 200000)
	require.NoError(t, err)
	assert.Zero(t, new(uint256.Int).SetBytes(ret).Uint64(), "static violation must fail the sub-call")
	assert.Equal(t, common.Hash{}, statedb.GetState(writer, common.HexToHash("0x01")))
}

func TestCallDepthLimitUnit(t *testing.T) {
	evm, _ := newTestEVM(t, params.TestChainConfig)
	parent := newComputation(Message{
		Kind:      KindCall,
		Depth:     uint16(params.CallCreateDepth),
		Gas:       1000,
		Sender:    testSender,
		Recipient: testContract,
		CodeAddr:  testContract,
		Value:     new(big.Int),
	}, codeAndHash{})
	defer parent.release()

	var result uint256.Int
	childGas := uint64(555)
	evm.callLike(parent, Message{
		Kind:      KindCall,
		Gas:       childGas,
		Sender:    testContract,
		Recipient: testSender,
		CodeAddr:  testSender,
		Value:     new(big.Int),
	}, 0, 0, &result)

	require.Nil(t, parent.child, "the 1025th frame must not be entered")
	assert.Equal(t, uint64(0), parent.stack.peek().Uint64())
	assert.Equal(t, uint64(1000+555), parent.gas, "child gas limit refunded to the caller")
}

func TestDeepSelfCallTerminates(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	// A contract that re-calls itself forever. The 63/64 rule drains the
	// budget across the frame stack; the run must end cleanly without any
	// Go-level recursion.
	code := []byte{
		byte(PUSH1), 0x00, // retSize
		byte(PUSH1), 0x00, // retOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
		byte(PUSH1), 0x00, // value
		byte(PUSH20),
	}
	code = append(code, testContract.Bytes()...)
	code = append(code,
		byte(GAS),
		byte(CALL),
		byte(STOP),
	)
	_, _, err := runCode(t, evm, statedb, code, 3000000)
	require.NoError(t, err)
}

func TestCreateDeploysReturnedCode(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	// PUSH1 1; PUSH1 0; RETURN deploys one byte read from untouched memory.
	initcode := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	ret, addr, _, err := evm.Create(testSender, initcode, 200000, new(big.Int))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, ret)
	assert.Equal(t, []byte{0x00}, statedb.GetCode(addr))
	assert.Equal(t, uint64(1), statedb.GetNonce(addr), "EIP-158 sets the new contract's nonce to 1")
}

func TestCreateRejectsEFPrefix(t *testing.T) {
	evm, _ := newTestEVM(t, params.TestChainConfig)
	// Initcode returning a single 0xEF byte (EIP-3541, London).
	initcode := []byte{
		byte(PUSH1), 0xef,
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	_, _, _, err := evm.Create(testSender, initcode, 200000, new(big.Int))
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestSelfdestructToSelfBurns(t *testing.T) {
	evm, statedb := newTestEVM(t, params.TestChainConfig)
	statedb.SetBalance(testContract, big.NewInt(777))
	code := []byte{
		byte(PUSH20),
	}
	code = append(code, testContract.Bytes()...)
	code = append(code, byte(SELFDESTRUCT))
	statedb.BeginTransaction(common.HexToHash("0x01"), 0)
	statedb.PrepareAccessList(testSender, &testContract, evm.ActivePrecompileAddresses(), nil)
	_, _, err := runCode(t, evm, statedb, code, 100000)
	require.NoError(t, err)
	assert.Zero(t, statedb.GetRefund(), "no selfdestruct refund from London on")
	statedb.Finalise(true)
	assert.False(t, statedb.Exist(testContract))
}

func TestPrecompileIdentity(t *testing.T) {
	evm, _ := newTestEVM(t, params.TestChainConfig)
	input := []byte{1, 2, 3, 4}
	ret, _, err := evm.Call(testSender, common.BytesToAddress([]byte{4}), input, 100000, new(big.Int))
	require.NoError(t, err)
	assert.Equal(t, input, ret)
}

func TestMemoryGasQuadratic(t *testing.T) {
	mem := NewMemory()
	// First word: 3 gas. Growing to 128 words: 3*128 + 128*128/512 = 416
	// total, charged incrementally.
	fee, err := memoryGasCost(mem, 32)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), fee)
	mem.Resize(32)
	fee, err = memoryGasCost(mem, 128*32)
	require.NoError(t, err)
	assert.Equal(t, uint64(3*128+128*128/512-3), fee)
}

func TestStackLimits(t *testing.T) {
	st := newstack()
	defer returnStack(st)
	for i := 0; i < 4; i++ {
		st.push(uint256.NewInt(uint64(i)))
	}
	assert.Equal(t, 4, st.len())
	assert.Equal(t, uint64(3), st.peek().Uint64())
	st.swap(4)
	assert.Equal(t, uint64(0), st.peek().Uint64())
	st.dup(2)
	assert.Equal(t, 5, st.len())
	assert.Equal(t, uint64(2), st.peek().Uint64())
	v := st.pop()
	assert.Equal(t, uint64(2), v.Uint64())
}
