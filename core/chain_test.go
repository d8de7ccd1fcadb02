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
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/basalt-chain/basalt-evm/consensus/misc"
	"github.com/basalt-chain/basalt-evm/core/rawdb"
	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/core/vm"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/basalt-chain/basalt-evm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMiner = common.HexToAddress("0x8888f1f195afa192cfee860698584c030f4c9db1")

type testEnv struct {
	t      *testing.T
	db     *ethdb.MemDatabase
	chain  *Chain
	config *params.ChainConfig
	key    *ecdsa.PrivateKey
	addr   common.Address
	signer types.Signer
}

func newTestEnv(t *testing.T, config *params.ChainConfig, alloc GenesisAlloc) *testEnv {
	db := ethdb.NewMemDatabase()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)
	if alloc == nil {
		alloc = make(GenesisAlloc)
	}
	alloc[addr] = GenesisAccount{Balance: new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))}
	genesis := &Genesis{
		Config:     config,
		GasLimit:   10000000,
		Difficulty: big.NewInt(131072),
		Alloc:      alloc,
	}
	_, err = genesis.Commit(db)
	require.NoError(t, err)
	chain, err := NewChain(db, config, vm.Config{})
	require.NoError(t, err)
	return &testEnv{
		t:      t,
		db:     db,
		chain:  chain,
		config: config,
		key:    key,
		addr:   addr,
		signer: types.NewSigner(config.ChainID),
	}
}

func (env *testEnv) signTx(inner types.TxData) *types.Transaction {
	tx, err := types.SignTx(types.NewTx(inner), env.signer, env.key)
	require.NoError(env.t, err)
	return tx
}

// buildBlock executes the transactions against the current head out of band
// and assembles a header whose commitments match the outcome.
func (env *testEnv) buildBlock(txs []*types.Transaction, uncles []*types.Header) (*types.Header, *types.Body, types.Receipts) {
	t := env.t
	parent := env.chain.GetBestBlockHeader()
	require.NotNil(t, parent)
	body := &types.Body{Transactions: txs, Uncles: uncles}
	header := &types.Header{
		ParentHash: parent.Hash(),
		UncleHash:  types.CalcUncleHash(uncles),
		Coinbase:   testMiner,
		TxHash:     types.DeriveSha(types.Transactions(txs)),
		Difficulty: big.NewInt(131072),
		Number:     parent.Number + 1,
		GasLimit:   parent.GasLimit,
		Time:       parent.Time + 13,
	}
	if env.config.IsLondon(header.Number) {
		header.BaseFee = misc.CalcBaseFee(env.config, parent)
	}
	statedb, err := state.New(parent.Root, state.NewDatabase(env.db))
	require.NoError(t, err)
	processor := NewStateProcessor(env.config, func(n uint64) common.Hash {
		return rawdb.ReadCanonicalHash(env.db, n)
	}, vm.Config{})
	receipts, _, usedGas, err := processor.Process(header, body, statedb)
	require.NoError(t, err)
	root, err := statedb.Commit(env.db, env.config.IsEIP158(header.Number))
	require.NoError(t, err)
	header.Root = root
	header.GasUsed = usedGas
	header.Bloom = types.MergedBloom(receipts)
	header.ReceiptHash = types.DeriveSha(receipts)
	return header, body, receipts
}

// stateAt opens a read-only accounts cache at the given header's root.
func (env *testEnv) stateAt(header *types.Header) *state.StateDB {
	statedb, err := state.New(header.Root, state.NewDatabase(env.db))
	require.NoError(env.t, err)
	return statedb
}

func TestPersistSimpleTransfer(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	to := common.HexToAddress("0x0fee")
	tx := env.signTx(&types.DynamicFeeTx{
		ChainID:   env.config.ChainID,
		Nonce:     0,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: big.NewInt(2 * params.GWei),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(12345),
	})
	header, body, _ := env.buildBlock([]*types.Transaction{tx}, nil)
	require.NoError(t, env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body}))

	head := env.chain.GetBestBlockHeader()
	require.NotNil(t, head)
	assert.Equal(t, header.Hash(), head.Hash())
	assert.Equal(t, uint64(21000), head.GasUsed)

	statedb := env.stateAt(head)
	assert.Zero(t, statedb.GetBalance(to).Cmp(big.NewInt(12345)))
	assert.Equal(t, uint64(1), statedb.GetNonce(env.addr))

	receipts := env.chain.GetReceipts(head.Hash())
	require.Len(t, receipts, 1)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipts[0].Status)
	assert.Equal(t, uint64(21000), receipts[0].CumulativeGasUsed)

	// Consumer contract navigation.
	genesis := env.chain.GetBlockHeaderByNumber(0)
	require.NotNil(t, genesis)
	assert.Equal(t, env.chain.GenesisHash(), genesis.Hash())
	succ := env.chain.GetSuccessorHeader(genesis)
	require.NotNil(t, succ)
	assert.Equal(t, head.Hash(), succ.Hash())
	assert.Nil(t, env.chain.GetSuccessorHeader(head))
}

func TestContractCreationEndToEnd(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	tx := env.signTx(&types.DynamicFeeTx{
		ChainID:   env.config.ChainID,
		Nonce:     0,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: big.NewInt(2 * params.GWei),
		Gas:       100000,
		To:        nil,
		Data:      common.FromHex("60016000f3"),
	})
	header, body, receipts := env.buildBlock([]*types.Transaction{tx}, nil)

	// Genesis used no gas, so the base fee drops by 1/8 on the next block.
	assert.Zero(t, header.BaseFee.Cmp(big.NewInt(875000000)))

	require.NoError(t, env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body}))
	require.Len(t, receipts, 1)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipts[0].Status)
	// 53000 create base + 68 payload + 9 execution + 200 code deposit.
	assert.Equal(t, uint64(53277), receipts[0].GasUsed)

	contractAddr := crypto.CreateAddress(env.addr, 0)
	assert.Equal(t, contractAddr, receipts[0].ContractAddress)
	statedb := env.stateAt(env.chain.GetBestBlockHeader())
	assert.Equal(t, []byte{0x00}, statedb.GetCode(contractAddr))
	assert.Equal(t, uint64(1), statedb.GetNonce(contractAddr))
}

func TestRejectWrongStateRoot(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	to := common.HexToAddress("0x0fee")
	tx := env.signTx(&types.DynamicFeeTx{
		ChainID:   env.config.ChainID,
		Nonce:     0,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: big.NewInt(2 * params.GWei),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})
	header, body, _ := env.buildBlock([]*types.Transaction{tx}, nil)
	// Corrupt the state commitment: as if some balance were off by one.
	header.Root = common.HexToHash("0xdeadbeef")

	before := snapshotDB(env.db)
	headBefore := env.chain.GetBestBlockHeader().Hash()

	err := env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body})
	require.ErrorIs(t, err, ErrBadStateRoot)

	// The store is bit-identical to its pre-call content.
	assert.Equal(t, before, snapshotDB(env.db))
	assert.Equal(t, headBefore, env.chain.GetBestBlockHeader().Hash())
}

func snapshotDB(db *ethdb.MemDatabase) map[string]string {
	snap := make(map[string]string, db.Len())
	for _, key := range db.Keys() {
		v, _ := db.Get(key)
		snap[string(key)] = string(v)
	}
	return snap
}

func TestRejectBadBatchAtomically(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	to := common.HexToAddress("0x0fee")
	mkTx := func(nonce uint64) *types.Transaction {
		return env.signTx(&types.DynamicFeeTx{
			ChainID:   env.config.ChainID,
			Nonce:     nonce,
			GasTipCap: big.NewInt(params.GWei),
			GasFeeCap: big.NewInt(2 * params.GWei),
			Gas:       21000,
			To:        &to,
			Value:     big.NewInt(1),
		})
	}
	h1, b1, _ := env.buildBlock([]*types.Transaction{mkTx(0)}, nil)
	require.NoError(t, env.chain.PersistBlocks([]*types.Header{h1}, []*types.Body{b1}))

	// Build a second block and break its receipts commitment: the whole
	// batch must be refused and the store left exactly as it was.
	h2, b2, _ := env.buildBlock([]*types.Transaction{mkTx(1)}, nil)
	h2.ReceiptHash = common.HexToHash("0xbad")
	before := snapshotDB(env.db)
	err := env.chain.PersistBlocks([]*types.Header{h2}, []*types.Body{b2})
	require.ErrorIs(t, err, ErrBadReceiptRoot)
	assert.Equal(t, before, snapshotDB(env.db))
	assert.Equal(t, h1.Hash(), env.chain.GetBestBlockHeader().Hash())
}

func TestOmmerRewards(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	// One block to give the uncle something to be a sibling of.
	h1, b1, _ := env.buildBlock(nil, nil)
	require.NoError(t, env.chain.PersistBlocks([]*types.Header{h1}, []*types.Body{b1}))

	uncleMiner := common.HexToAddress("0x7777")
	uncle := &types.Header{
		ParentHash: h1.ParentHash,
		UncleHash:  types.EmptyUncleHash,
		Coinbase:   uncleMiner,
		TxHash:     types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		Difficulty: big.NewInt(131072),
		Number:     h1.Number, // sibling of the parent: number = n - 1
		GasLimit:   h1.GasLimit,
		Time:       h1.Time + 1,
	}
	h2, b2, _ := env.buildBlock(nil, []*types.Header{uncle})
	require.NoError(t, env.chain.PersistBlocks([]*types.Header{h2}, []*types.Body{b2}))

	statedb := env.stateAt(env.chain.GetBestBlockHeader())
	ether := big.NewInt(params.Ether)

	// Uncle at depth 1: 2 ether * 7/8.
	uncleReward := new(big.Int).Mul(big.NewInt(2), ether)
	uncleReward.Mul(uncleReward, big.NewInt(7))
	uncleReward.Div(uncleReward, big.NewInt(8))
	assert.Zero(t, statedb.GetBalance(uncleMiner).Cmp(uncleReward))

	// Miner: one bare 2-ether reward from block 1, plus 2 + 2/32 from the
	// uncle-bearing block 2.
	minerReward := new(big.Int).Mul(big.NewInt(4), ether)
	minerReward.Add(minerReward, new(big.Int).Div(new(big.Int).Mul(big.NewInt(2), ether), big.NewInt(32)))
	assert.Zero(t, statedb.GetBalance(testMiner).Cmp(minerReward))
}

func TestIntrinsicGasTooLow(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	// A creation needs 53000 base gas; 21000 cannot cover it.
	tx := env.signTx(&types.DynamicFeeTx{
		ChainID:   env.config.ChainID,
		Nonce:     0,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: big.NewInt(2 * params.GWei),
		Gas:       21000,
		To:        nil,
		Data:      common.FromHex("60016000f3"),
	})
	parent := env.chain.GetBestBlockHeader()
	header := &types.Header{
		ParentHash: parent.Hash(),
		Coinbase:   testMiner,
		Difficulty: big.NewInt(131072),
		Number:     parent.Number + 1,
		GasLimit:   parent.GasLimit,
		Time:       parent.Time + 13,
		BaseFee:    misc.CalcBaseFee(env.config, parent),
	}
	statedb, err := state.New(parent.Root, state.NewDatabase(env.db))
	require.NoError(t, err)
	processor := NewStateProcessor(env.config, nil, vm.Config{})
	_, _, _, err = processor.Process(header, &types.Body{Transactions: []*types.Transaction{tx}}, statedb)
	require.ErrorIs(t, err, ErrIntrinsicGas)
}

func TestGasLimitOutOfBounds(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	header, body, _ := env.buildBlock(nil, nil)
	header.GasLimit = header.GasLimit / 2 // way past the 1/1024 bound
	err := env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body})
	require.Error(t, err)
}

func TestRefundCappedClearingStorage(t *testing.T) {
	contract := common.HexToAddress("0x5000000000000000000000000000000000000005")
	alloc := GenesisAlloc{
		contract: {
			Balance: new(big.Int),
			// PUSH1 0; PUSH1 0; SSTORE: clears slot 0.
			Code:    common.FromHex("600060005500"),
			Storage: map[common.Hash]common.Hash{{}: common.HexToHash("0x01")},
		},
	}
	env := newTestEnv(t, params.TestChainConfig, alloc)
	tx := env.signTx(&types.DynamicFeeTx{
		ChainID:   env.config.ChainID,
		Nonce:     0,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: big.NewInt(2 * params.GWei),
		Gas:       100000,
		To:        &contract,
	})
	header, body, receipts := env.buildBlock([]*types.Transaction{tx}, nil)
	require.NoError(t, env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body}))
	require.Len(t, receipts, 1)
	// 21000 intrinsic + 6 push + 2100 cold + 2900 reset, minus the
	// EIP-3529 clearing refund of 4800 (under the gasUsed/5 cap).
	assert.Equal(t, uint64(21206), receipts[0].GasUsed)

	statedb := env.stateAt(env.chain.GetBestBlockHeader())
	assert.Equal(t, common.Hash{}, statedb.GetState(contract, common.Hash{}))
}

func TestPreByzantiumReceiptCarriesStateRoot(t *testing.T) {
	config := &params.ChainConfig{
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
	}
	env := newTestEnv(t, config, nil)
	to := common.HexToAddress("0x0fee")
	tx := env.signTx(&types.LegacyTx{
		Nonce:    0,
		GasPrice: big.NewInt(params.GWei),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(5),
	})
	header, body, receipts := env.buildBlock([]*types.Transaction{tx}, nil)
	require.NoError(t, env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body}))
	require.Len(t, receipts, 1)
	// The receipt commits to the intermediate state root after the
	// transaction fully applied, not a status bit.
	require.Len(t, receipts[0].PostState, 32)
	assert.NotEqual(t, make([]byte, 32), receipts[0].PostState)
}

func TestGasUsedMismatchRejected(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	header, body, _ := env.buildBlock(nil, nil)
	header.GasUsed = 1
	err := env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body})
	require.ErrorIs(t, err, ErrBadGasUsed)
}

func TestTxRootMismatchRejected(t *testing.T) {
	env := newTestEnv(t, params.TestChainConfig, nil)
	header, body, _ := env.buildBlock(nil, nil)
	header.TxHash = common.HexToHash("0xbad")
	err := env.chain.PersistBlocks([]*types.Header{header}, []*types.Body{body})
	require.ErrorIs(t, err, ErrBadTxRoot)
}
