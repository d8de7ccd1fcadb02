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

package trie

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmpty() (*Trie, *ethdb.MemDatabase) {
	db := ethdb.NewMemDatabase()
	tr, _ := New(common.Hash{}, db, nil)
	return tr, db
}

func TestEmptyTrie(t *testing.T) {
	tr, _ := newEmpty()
	assert.Equal(t, EmptyRoot, tr.Hash())
}

func TestNull(t *testing.T) {
	tr, _ := newEmpty()
	key := make([]byte, 32)
	value := []byte("test")
	require.NoError(t, tr.Insert(key, value))
	got, err := tr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestInsertGetDelete(t *testing.T) {
	tr, _ := newEmpty()
	vals := map[string]string{
		"do":      "verb",
		"ether":   "wookiedoo",
		"horse":   "stallion",
		"shaman":  "horse",
		"doge":    "coin",
		"dog":     "puppy",
		"dogglesworth": "cat",
	}
	for k, v := range vals {
		require.NoError(t, tr.Insert([]byte(k), []byte(v)))
	}
	for k, v := range vals {
		got, err := tr.Get([]byte(k))
		require.NoError(t, err)
		assert.Equal(t, []byte(v), got, "value mismatch for %q", k)
	}
	// Unknown key reads as absent.
	got, err := tr.Get([]byte("unknown"))
	require.NoError(t, err)
	assert.Nil(t, got)
	// Deleting everything restores the empty root.
	for k := range vals {
		require.NoError(t, tr.Delete([]byte(k)))
	}
	assert.Equal(t, EmptyRoot, tr.Hash())
}

func TestInsertOrderIndependence(t *testing.T) {
	keys := make([][]byte, 64)
	vals := make([][]byte, 64)
	rnd := rand.New(rand.NewSource(42))
	for i := range keys {
		keys[i] = make([]byte, 1+rnd.Intn(40))
		vals[i] = make([]byte, 1+rnd.Intn(60))
		rnd.Read(keys[i])
		rnd.Read(vals[i])
	}
	t1, _ := newEmpty()
	for i := range keys {
		require.NoError(t, t1.Insert(keys[i], vals[i]))
	}
	t2, _ := newEmpty()
	for _, i := range rnd.Perm(len(keys)) {
		require.NoError(t, t2.Insert(keys[i], vals[i]))
	}
	assert.Equal(t, t1.Hash(), t2.Hash())
}

func TestDeleteRestoresRoot(t *testing.T) {
	tr, _ := newEmpty()
	require.NoError(t, tr.Insert([]byte("base"), []byte("value")))
	require.NoError(t, tr.Insert([]byte("basis"), []byte("other")))
	before := tr.Hash()
	require.NoError(t, tr.Insert([]byte("transient"), []byte("x")))
	require.NoError(t, tr.Delete([]byte("transient")))
	assert.Equal(t, before, tr.Hash())
}

func TestCommitReload(t *testing.T) {
	tr, db := newEmpty()
	vals := map[string]string{}
	for i := 0; i < 100; i++ {
		k := fmt.Sprintf("key-%d", i)
		v := fmt.Sprintf("value-%d", i)
		vals[k] = v
		require.NoError(t, tr.Insert([]byte(k), []byte(v)))
	}
	root, err := tr.Commit(db)
	require.NoError(t, err)

	reloaded, err := New(root, db, nil)
	require.NoError(t, err)
	for k, v := range vals {
		got, err := reloaded.Get([]byte(k))
		require.NoError(t, err)
		assert.Equal(t, []byte(v), got)
	}
	assert.Equal(t, root, reloaded.Hash())
}

func TestMissingNode(t *testing.T) {
	tr, db := newEmpty()
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.Insert([]byte(fmt.Sprintf("key-%d", i)), []byte(fmt.Sprintf("value-%d", i))))
	}
	root, err := tr.Commit(db)
	require.NoError(t, err)

	// Wipe the node store and reopening must fail with MissingNodeError.
	for _, key := range db.Keys() {
		db.Delete(key)
	}
	_, err = New(root, db, nil)
	var missing *MissingNodeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, root, missing.NodeHash)
}

func TestSecureTrieKeyHashing(t *testing.T) {
	db := ethdb.NewMemDatabase()
	sec, err := NewSecure(common.Hash{}, db)
	require.NoError(t, err)
	plain, err := New(common.Hash{}, db, nil)
	require.NoError(t, err)

	require.NoError(t, sec.Insert([]byte("foo"), []byte("bar")))
	require.NoError(t, plain.Insert([]byte("foo"), []byte("bar")))

	// The same content hangs under different paths, so the roots differ.
	assert.NotEqual(t, plain.Hash(), sec.Hash())

	got, err := sec.Get([]byte("foo"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bar"), got)
}
