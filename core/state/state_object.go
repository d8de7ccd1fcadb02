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

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/trie"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

type storage = map[common.Hash]common.Hash

// stateObject is the in-memory mutable view of one account. Mutations go
// through the journal so they can be reverted frame by frame.
type stateObject struct {
	address common.Address
	data    Account
	db      *StateDB

	trie *trie.Trie // storage trie, opened on first access
	code []byte     // contract bytecode, loaded on first access

	originStorage storage // cache of committed slot values
	dirtyStorage  storage // slot values modified in the current transaction

	dirtyCode bool // true if the code was updated
	suicided  bool
	deleted   bool
}

func newObject(db *StateDB, address common.Address, data Account) *stateObject {
	if data.Balance == nil {
		data.Balance = new(big.Int)
	}
	if data.CodeHash == nil {
		data.CodeHash = types.EmptyCodeHash[:]
	}
	if data.Root == (common.Hash{}) {
		data.Root = types.EmptyRootHash
	}
	return &stateObject{
		db:            db,
		address:       address,
		data:          data,
		originStorage: make(storage),
		dirtyStorage:  make(storage),
	}
}

// empty returns whether the account is considered empty per EIP-161:
// nonce == 0, balance == 0 and no code.
func (self *stateObject) empty() bool {
	return self.data.Nonce == 0 && self.data.Balance.Sign() == 0 && bytes.Equal(self.data.CodeHash, types.EmptyCodeHash[:])
}

func (self *stateObject) Address() common.Address {
	return self.address
}

func (self *stateObject) touch() {
	self.db.journal.append(touchChange{account: &self.address})
	if self.address == ripemd {
		// Explicitly put it in the dirty-cache, which is otherwise generated from
		// flattened journals.
		self.db.journal.dirty(self.address)
	}
}

func (self *stateObject) getTrie() (*trie.Trie, error) {
	if self.trie == nil {
		tr, err := self.db.db.OpenStorageTrie(self.data.Root)
		if err != nil {
			return nil, err
		}
		self.trie = tr
	}
	return self.trie, nil
}

// GetState retrieves a value from the account's storage, observing dirty
// writes of the current transaction.
func (self *stateObject) GetState(key common.Hash) common.Hash {
	if value, dirty := self.dirtyStorage[key]; dirty {
		return value
	}
	return self.GetCommittedState(key)
}

// GetCommittedState retrieves the value of key as of the start of the current
// transaction.
func (self *stateObject) GetCommittedState(key common.Hash) (ret common.Hash) {
	if val, cached := self.originStorage[key]; cached {
		return val
	}
	tr, err := self.getTrie()
	if err != nil {
		self.db.setError(err)
		return common.Hash{}
	}
	enc, err := tr.Get(key[:])
	if err != nil {
		self.db.setError(err)
		return common.Hash{}
	}
	if len(enc) > 0 {
		_, content, _, err := rlp.Split(enc)
		if err != nil {
			self.db.setError(err)
		}
		ret.SetBytes(content)
	}
	self.originStorage[key] = ret
	return ret
}

// SetState updates a storage slot.
func (self *stateObject) SetState(key, value common.Hash) {
	prev := self.GetState(key)
	if prev == value {
		return
	}
	self.db.journal.append(storageChange{
		account:  &self.address,
		key:      key,
		prevalue: prev,
	})
	self.setState(key, value)
}

func (self *stateObject) setState(key, value common.Hash) {
	self.dirtyStorage[key] = value
}

// updateTrie writes the dirty storage slots through the storage trie and
// folds them into the origin cache.
func (self *stateObject) updateTrie() (*trie.Trie, error) {
	if len(self.dirtyStorage) == 0 {
		return self.trie, nil
	}
	tr, err := self.getTrie()
	if err != nil {
		return nil, err
	}
	for key, value := range self.dirtyStorage {
		self.originStorage[key] = value
		if (value == common.Hash{}) {
			if err := tr.Delete(key[:]); err != nil {
				return nil, err
			}
			continue
		}
		// Encoding []byte cannot fail, ok to ignore the error.
		v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
		if err := tr.Insert(key[:], v); err != nil {
			return nil, err
		}
	}
	self.dirtyStorage = make(storage)
	return tr, nil
}

// updateRoot recomputes the storage root after all dirty slots are written.
func (self *stateObject) updateRoot() error {
	tr, err := self.updateTrie()
	if err != nil {
		return err
	}
	if tr != nil {
		self.data.Root = tr.Hash()
	}
	return nil
}

// commitTrie writes the storage trie nodes of the account into w and updates
// the account's storage root.
func (self *stateObject) commitTrie(w trie.NodeWriter) error {
	tr, err := self.updateTrie()
	if err != nil {
		return err
	}
	if tr == nil {
		return nil
	}
	root, err := tr.Commit(w)
	if err != nil {
		return err
	}
	self.data.Root = root
	return nil
}

func (self *stateObject) AddBalance(amount *big.Int) {
	// EIP-161: we must check emptiness for the spec of empty, touched
	// accounts getting deleted even with a zero value transfer.
	if amount.Sign() == 0 {
		if self.empty() {
			self.touch()
		}
		return
	}
	self.SetBalance(new(big.Int).Add(self.Balance(), amount))
}

func (self *stateObject) SubBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	self.SetBalance(new(big.Int).Sub(self.Balance(), amount))
}

func (self *stateObject) SetBalance(amount *big.Int) {
	self.db.journal.append(balanceChange{
		account: &self.address,
		prev:    new(big.Int).Set(self.data.Balance),
	})
	self.setBalance(amount)
}

func (self *stateObject) setBalance(amount *big.Int) {
	self.data.Balance = amount
}

func (self *stateObject) Balance() *big.Int {
	return self.data.Balance
}

func (self *stateObject) Nonce() uint64 {
	return self.data.Nonce
}

func (self *stateObject) SetNonce(nonce uint64) {
	self.db.journal.append(nonceChange{
		account: &self.address,
		prev:    self.data.Nonce,
	})
	self.setNonce(nonce)
}

func (self *stateObject) setNonce(nonce uint64) {
	self.data.Nonce = nonce
}

func (self *stateObject) CodeHash() []byte {
	return self.data.CodeHash
}

// Code loads and returns the contract bytecode, if any.
func (self *stateObject) Code() []byte {
	if self.code != nil {
		return self.code
	}
	if bytes.Equal(self.CodeHash(), types.EmptyCodeHash[:]) {
		return nil
	}
	code, err := self.db.db.ContractCode(common.BytesToHash(self.CodeHash()))
	if err != nil {
		self.db.setError(fmt.Errorf("can't load code hash %x: %v", self.CodeHash(), err))
	}
	self.code = code
	return code
}

func (self *stateObject) CodeSize() int {
	if self.code != nil {
		return len(self.code)
	}
	if bytes.Equal(self.CodeHash(), types.EmptyCodeHash[:]) {
		return 0
	}
	size, err := self.db.db.ContractCodeSize(common.BytesToHash(self.CodeHash()))
	if err != nil {
		self.db.setError(fmt.Errorf("can't load code size %x: %v", self.CodeHash(), err))
	}
	return size
}

func (self *stateObject) SetCode(code []byte) {
	prevcode := self.Code()
	self.db.journal.append(codeChange{
		account:  &self.address,
		prevhash: self.CodeHash(),
		prevcode: prevcode,
	})
	self.setCode(crypto.Keccak256Hash(code), code)
}

func (self *stateObject) setCode(codeHash common.Hash, code []byte) {
	self.code = code
	self.data.CodeHash = codeHash[:]
	self.dirtyCode = true
}

func (self *stateObject) markSuicided() {
	self.suicided = true
}
