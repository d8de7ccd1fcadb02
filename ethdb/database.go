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

// Package ethdb defines the byte-keyed store the state and chain data live in.
package ethdb

// Putter wraps the write method of a backing data store.
type Putter interface {
	Put(key []byte, value []byte) error
}

// Deleter wraps the delete method of a backing data store.
type Deleter interface {
	Delete(key []byte) error
}

// Getter wraps the read methods of a backing data store. Get returns a nil
// slice and a nil error for keys that are not present.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// Batch is a write-only buffer that commits its content in one call to Write.
type Batch interface {
	Putter
	Deleter
	ValueSize() int
	Write() error
	Reset()
}

// Transaction is a read-write view over a database with buffered writes.
// Reads observe the transaction's own uncommitted writes. Commit makes the
// buffered writes durable; Dispose discards whatever has not been committed
// and releases the transaction. Dispose after a successful Commit is a no-op,
// so the intended usage is
//
//	txn := db.BeginTransaction()
//	defer txn.Dispose()
//	...
//	return txn.Commit()
type Transaction interface {
	Getter
	Putter
	Deleter
	Commit() error
	Dispose()
}

// Database is the minimal persistent key-value store contract. Concurrent
// transactions against the same database are not supported; the caller
// serializes.
type Database interface {
	Getter
	Putter
	Deleter
	NewBatch() Batch
	BeginTransaction() Transaction
	Close()
}
