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

package state

import (
	"math/big"
	"testing"

	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) (*StateDB, *ethdb.MemDatabase) {
	db := ethdb.NewMemDatabase()
	statedb, err := New(common.Hash{}, NewDatabase(db))
	require.NoError(t, err)
	return statedb, db
}

func TestAccountDefaults(t *testing.T) {
	statedb, _ := newTestState(t)
	addr := common.HexToAddress("0x01")

	assert.False(t, statedb.Exist(addr))
	assert.True(t, statedb.Empty(addr))
	assert.Zero(t, statedb.GetBalance(addr).Sign())
	assert.Zero(t, statedb.GetNonce(addr))
	assert.Nil(t, statedb.GetCode(addr))
	assert.Equal(t, common.Hash{}, statedb.GetState(addr, common.Hash{}))
}

func TestBalanceNonceCode(t *testing.T) {
	statedb, _ := newTestState(t)
	addr := common.HexToAddress("0x01")

	statedb.AddBalance(addr, big.NewInt(1000))
	statedb.SubBalance(addr, big.NewInt(300))
	assert.Zero(t, statedb.GetBalance(addr).Cmp(big.NewInt(700)))

	statedb.SetNonce(addr, 7)
	assert.Equal(t, uint64(7), statedb.GetNonce(addr))

	code := []byte{0x60, 0x01}
	statedb.SetCode(addr, code)
	assert.Equal(t, code, statedb.GetCode(addr))
	assert.Equal(t, 2, statedb.GetCodeSize(addr))
	assert.NotEqual(t, types.EmptyCodeHash, statedb.GetCodeHash(addr))
}

func TestSnapshotRevert(t *testing.T) {
	statedb, _ := newTestState(t)
	addr := common.HexToAddress("0x01")
	slot := common.HexToHash("0xaa")

	statedb.AddBalance(addr, big.NewInt(42))
	statedb.SetState(addr, slot, common.HexToHash("0x01"))
	statedb.AddRefund(100)

	snap := statedb.Snapshot()
	statedb.AddBalance(addr, big.NewInt(58))
	statedb.SetState(addr, slot, common.HexToHash("0x02"))
	statedb.SetNonce(addr, 5)
	statedb.AddRefund(900)
	statedb.AddAddressToAccessList(addr)
	statedb.AddSlotToAccessList(addr, slot)

	statedb.RevertToSnapshot(snap)

	assert.Zero(t, statedb.GetBalance(addr).Cmp(big.NewInt(42)))
	assert.Equal(t, common.HexToHash("0x01"), statedb.GetState(addr, slot))
	assert.Zero(t, statedb.GetNonce(addr))
	assert.Equal(t, uint64(100), statedb.GetRefund())
	assert.False(t, statedb.AddressInAccessList(addr))
	_, slotOk := statedb.SlotInAccessList(addr, slot)
	assert.False(t, slotOk)
}

func TestNestedSnapshots(t *testing.T) {
	statedb, _ := newTestState(t)
	addr := common.HexToAddress("0x01")

	statedb.SetBalance(addr, big.NewInt(1))
	outer := statedb.Snapshot()
	statedb.SetBalance(addr, big.NewInt(2))
	inner := statedb.Snapshot()
	statedb.SetBalance(addr, big.NewInt(3))

	statedb.RevertToSnapshot(inner)
	assert.Zero(t, statedb.GetBalance(addr).Cmp(big.NewInt(2)))
	statedb.RevertToSnapshot(outer)
	assert.Zero(t, statedb.GetBalance(addr).Cmp(big.NewInt(1)))
}

func TestSuicide(t *testing.T) {
	statedb, _ := newTestState(t)
	addr := common.HexToAddress("0x01")

	statedb.SetBalance(addr, big.NewInt(100))
	statedb.SetCode(addr, []byte{0x00})

	snap := statedb.Snapshot()
	assert.True(t, statedb.Suicide(addr))
	assert.True(t, statedb.HasSuicided(addr))
	assert.Zero(t, statedb.GetBalance(addr).Sign())

	// Revert brings the account back untouched.
	statedb.RevertToSnapshot(snap)
	assert.False(t, statedb.HasSuicided(addr))
	assert.Zero(t, statedb.GetBalance(addr).Cmp(big.NewInt(100)))

	// This time let it stick: the account disappears at Finalise.
	statedb.Suicide(addr)
	statedb.Finalise(true)
	assert.False(t, statedb.Exist(addr))
}

func TestEmptyAccountReaping(t *testing.T) {
	statedb, _ := newTestState(t)
	empty := common.HexToAddress("0x01")
	funded := common.HexToAddress("0x02")

	// Touch the empty account with a zero-value credit, fund the other.
	statedb.AddBalance(empty, new(big.Int))
	statedb.AddBalance(funded, big.NewInt(1))

	statedb.Finalise(true)
	assert.False(t, statedb.Exist(empty), "touched empty account must be reaped")
	assert.True(t, statedb.Exist(funded))

	// Pre-Spurious-Dragon the empty account stays materialized.
	statedb2, _ := newTestState(t)
	statedb2.AddBalance(empty, new(big.Int))
	statedb2.Finalise(false)
	assert.True(t, statedb2.Exist(empty))
}

func TestCommitReload(t *testing.T) {
	statedb, db := newTestState(t)
	addr := common.HexToAddress("0x01")
	slot := common.HexToHash("0x02")

	statedb.SetBalance(addr, big.NewInt(12345))
	statedb.SetNonce(addr, 3)
	statedb.SetCode(addr, []byte{0x60, 0x00})
	statedb.SetState(addr, slot, common.HexToHash("0xbeef"))

	root, err := statedb.Commit(db, true)
	require.NoError(t, err)
	require.NotEqual(t, types.EmptyRootHash, root)

	reloaded, err := New(root, NewDatabase(db))
	require.NoError(t, err)
	assert.Zero(t, reloaded.GetBalance(addr).Cmp(big.NewInt(12345)))
	assert.Equal(t, uint64(3), reloaded.GetNonce(addr))
	assert.Equal(t, []byte{0x60, 0x00}, reloaded.GetCode(addr))
	assert.Equal(t, common.HexToHash("0xbeef"), reloaded.GetState(addr, slot))
}

func TestZeroValueSlotNotStored(t *testing.T) {
	statedb, db := newTestState(t)
	addr := common.HexToAddress("0x01")
	slot := common.HexToHash("0x02")

	statedb.SetBalance(addr, big.NewInt(1))
	rootWithout, err := statedb.Commit(db, true)
	require.NoError(t, err)

	// Writing a slot and clearing it again commits to the identical root.
	statedb2, err := New(rootWithout, NewDatabase(db))
	require.NoError(t, err)
	statedb2.SetState(addr, slot, common.HexToHash("0x01"))
	statedb2.SetState(addr, slot, common.Hash{})
	rootCleared, err := statedb2.Commit(db, true)
	require.NoError(t, err)
	assert.Equal(t, rootWithout, rootCleared)
}

func TestGetCommittedState(t *testing.T) {
	statedb, db := newTestState(t)
	addr := common.HexToAddress("0x01")
	slot := common.HexToHash("0x02")

	statedb.SetBalance(addr, big.NewInt(1))
	statedb.SetState(addr, slot, common.HexToHash("0x07"))
	root, err := statedb.Commit(db, true)
	require.NoError(t, err)

	reloaded, err := New(root, NewDatabase(db))
	require.NoError(t, err)
	reloaded.SetState(addr, slot, common.HexToHash("0x08"))
	assert.Equal(t, common.HexToHash("0x08"), reloaded.GetState(addr, slot))
	assert.Equal(t, common.HexToHash("0x07"), reloaded.GetCommittedState(addr, slot))
}

func TestLogs(t *testing.T) {
	statedb, _ := newTestState(t)
	txHash := common.HexToHash("0x11")
	statedb.BeginTransaction(txHash, 0)

	statedb.AddLog(&types.Log{Address: common.HexToAddress("0x01")})
	statedb.AddLog(&types.Log{Address: common.HexToAddress("0x02")})

	logs := statedb.GetLogs(txHash)
	require.Len(t, logs, 2)
	assert.Equal(t, uint(0), logs[0].Index)
	assert.Equal(t, uint(1), logs[1].Index)
	assert.Equal(t, txHash, logs[0].TxHash)

	// Log indices stay monotonic across transactions of a block.
	txHash2 := common.HexToHash("0x22")
	statedb.BeginTransaction(txHash2, 1)
	statedb.AddLog(&types.Log{Address: common.HexToAddress("0x03")})
	logs2 := statedb.GetLogs(txHash2)
	require.Len(t, logs2, 1)
	assert.Equal(t, uint(2), logs2[0].Index)
}

func TestAccessListLifetime(t *testing.T) {
	statedb, _ := newTestState(t)
	sender := common.HexToAddress("0x01")
	dest := common.HexToAddress("0x02")
	slot := common.HexToHash("0x03")

	statedb.BeginTransaction(common.HexToHash("0xaa"), 0)
	statedb.PrepareAccessList(sender, &dest, nil, types.AccessList{
		{Address: dest, StorageKeys: []common.Hash{slot}},
	})
	assert.True(t, statedb.AddressInAccessList(sender))
	assert.True(t, statedb.AddressInAccessList(dest))
	_, slotOk := statedb.SlotInAccessList(dest, slot)
	assert.True(t, slotOk)

	// The warm set never leaks into the next transaction.
	statedb.BeginTransaction(common.HexToHash("0xbb"), 1)
	assert.False(t, statedb.AddressInAccessList(sender))
	assert.False(t, statedb.AddressInAccessList(dest))
}
