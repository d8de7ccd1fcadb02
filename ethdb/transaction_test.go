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

package ethdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionReadsOwnWrites(t *testing.T) {
	db := NewMemDatabase()
	require.NoError(t, db.Put([]byte("shared"), []byte("old")))

	txn := db.BeginTransaction()
	defer txn.Dispose()
	require.NoError(t, txn.Put([]byte("shared"), []byte("new")))
	require.NoError(t, txn.Put([]byte("fresh"), []byte("value")))

	got, err := txn.Get([]byte("shared"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)

	got, err = txn.Get([]byte("fresh"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	// The underlying store is untouched until commit.
	got, err = db.Get([]byte("shared"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)
	got, err = db.Get([]byte("fresh"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactionDisposeDiscards(t *testing.T) {
	db := NewMemDatabase()
	require.NoError(t, db.Put([]byte("key"), []byte("committed")))

	txn := db.BeginTransaction()
	require.NoError(t, txn.Put([]byte("key"), []byte("buffered")))
	require.NoError(t, txn.Delete([]byte("key")))
	txn.Dispose()

	got, err := db.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("committed"), got)

	// A disposed transaction refuses further use.
	assert.Equal(t, ErrTransactionDone, txn.Put([]byte("key"), nil))
	assert.Equal(t, ErrTransactionDone, txn.Commit())
}

func TestTransactionCommitDurable(t *testing.T) {
	db := NewMemDatabase()
	require.NoError(t, db.Put([]byte("victim"), []byte("x")))

	txn := db.BeginTransaction()
	require.NoError(t, txn.Put([]byte("key"), []byte("value")))
	require.NoError(t, txn.Delete([]byte("victim")))
	require.NoError(t, txn.Commit())
	// Dispose after a successful commit is a no-op.
	txn.Dispose()

	got, err := db.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	has, err := db.Has([]byte("victim"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTransactionDeleteVisibleInside(t *testing.T) {
	db := NewMemDatabase()
	require.NoError(t, db.Put([]byte("key"), []byte("value")))

	txn := db.BeginTransaction()
	defer txn.Dispose()
	require.NoError(t, txn.Delete([]byte("key")))

	got, err := txn.Get([]byte("key"))
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := txn.Has([]byte("key"))
	require.NoError(t, err)
	assert.False(t, has)
}
