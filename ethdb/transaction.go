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
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var ErrTransactionDone = errors.New("ethdb: transaction already committed or disposed")

// overlayTransaction buffers writes in memory on top of any Database and
// flushes them through a single batch on Commit. It is the Transaction
// implementation shared by all backends.
type overlayTransaction struct {
	db Database
	// writes maps key -> value; a nil value is a pending delete.
	writes map[string][]byte
	done   bool
}

// NewOverlayTransaction wraps db in a buffered read-write transaction.
func NewOverlayTransaction(db Database) Transaction {
	return &overlayTransaction{
		db:     db,
		writes: make(map[string][]byte),
	}
}

func (self *overlayTransaction) Get(key []byte) ([]byte, error) {
	if self.done {
		return nil, ErrTransactionDone
	}
	if v, ok := self.writes[string(key)]; ok {
		if v == nil {
			return nil, nil
		}
		return common.CopyBytes(v), nil
	}
	return self.db.Get(key)
}

func (self *overlayTransaction) Has(key []byte) (bool, error) {
	if self.done {
		return false, ErrTransactionDone
	}
	if v, ok := self.writes[string(key)]; ok {
		return v != nil, nil
	}
	return self.db.Has(key)
}

func (self *overlayTransaction) Put(key, value []byte) error {
	if self.done {
		return ErrTransactionDone
	}
	self.writes[string(key)] = common.CopyBytes(value)
	return nil
}

func (self *overlayTransaction) Delete(key []byte) error {
	if self.done {
		return ErrTransactionDone
	}
	self.writes[string(key)] = nil
	return nil
}

func (self *overlayTransaction) Commit() error {
	if self.done {
		return ErrTransactionDone
	}
	batch := self.db.NewBatch()
	for k, v := range self.writes {
		var err error
		if v == nil {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	self.done = true
	self.writes = nil
	return nil
}

func (self *overlayTransaction) Dispose() {
	self.done = true
	self.writes = nil
}
