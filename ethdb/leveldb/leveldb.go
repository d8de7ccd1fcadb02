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

// Package leveldb holds the goleveldb-backed store.
package leveldb

import (
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	minCache   = 16
	minHandles = 16
)

type Factory struct {
	File    string `json:"file"`
	Cache   int    `json:"cache"`
	Handles int    `json:"handles"`
}

func (this *Factory) NewDB() (ethdb.Database, error) {
	return New(this.File, this.Cache, this.Handles)
}

type Database struct {
	file string
	db   *leveldb.DB
}

// New opens (or creates) a leveldb-backed store at file, allocating cache
// megabytes of internal caching and handles file descriptors.
func New(file string, cache int, handles int) (*Database, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	log.Debug("Opening leveldb store", "path", file, "cache", cache, "handles", handles)
	db, err := leveldb.OpenFile(file, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{file: file, db: db}, nil
}

func (self *Database) Put(key []byte, value []byte) error {
	return self.db.Put(key, value, nil)
}

func (self *Database) Get(key []byte) ([]byte, error) {
	ret, err := self.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return ret, err
}

func (self *Database) Has(key []byte) (bool, error) {
	return self.db.Has(key, nil)
}

func (self *Database) Delete(key []byte) error {
	return self.db.Delete(key, nil)
}

func (self *Database) Close() {
	if err := self.db.Close(); err != nil {
		log.Error("Failed to close leveldb store", "path", self.file, "err", err)
	}
}

func (self *Database) BeginTransaction() ethdb.Transaction {
	return ethdb.NewOverlayTransaction(self)
}

func (self *Database) NewBatch() ethdb.Batch {
	return &batch{db: self.db, b: new(leveldb.Batch)}
}

type batch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (self *batch) Put(key, value []byte) error {
	self.b.Put(key, value)
	self.size += len(value)
	return nil
}

func (self *batch) Delete(key []byte) error {
	self.b.Delete(key)
	self.size += 1
	return nil
}

func (self *batch) Write() error {
	return self.db.Write(self.b, nil)
}

func (self *batch) ValueSize() int {
	return self.size
}

func (self *batch) Reset() {
	self.b.Reset()
	self.size = 0
}
