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

// Package state provides the mutable accounts cache over the state tries.
package state

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/basalt-chain/basalt-evm/core/types"
	"github.com/basalt-chain/basalt-evm/trie"
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB is the accounts cache: a journaled, in-memory mutable view over
// the accounts trie identified by a root hash, plus the per-account storage
// tries. It accumulates all state mutations of one block and flushes them
// with Commit, yielding the new state root.
type StateDB struct {
	db   *Database
	trie *trie.Trie

	// This map holds 'live' objects, which will get modified while processing a state transition.
	stateObjects      map[common.Address]*stateObject
	stateObjectsDirty map[common.Address]struct{}

	// DB error. State objects are used by the consensus core and VM which are
	// unable to deal with database-level errors. Any error that occurs during
	// a database read is memoized here and will eventually be returned by
	// StateDB.Commit.
	dbErr error

	// The refund counter, also used by state transitioning.
	refund uint64

	thash   common.Hash
	txIndex int
	logs    []*types.Log
	logSize uint

	// Self-destructed contract addresses in execution order. Deletion
	// happens at Finalise; the suicided flag on the object is authoritative
	// (it reverts with the journal), the set only fixes iteration order.
	suicides *linkedhashset.Set

	// Per-transaction access list (EIP-2929).
	accessList *accessList

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a state cache rooted at root, reading through db.
func New(root common.Hash, db *Database) (*StateDB, error) {
	tr, err := db.OpenTrie(root)
	if err != nil {
		return nil, err
	}
	return &StateDB{
		db:                db,
		trie:              tr,
		stateObjects:      make(map[common.Address]*stateObject),
		stateObjectsDirty: make(map[common.Address]struct{}),
		suicides:          linkedhashset.New(),
		accessList:        newAccessList(),
		journal:           newJournal(),
	}, nil
}

// setError remembers the first non-nil error it is called with.
func (self *StateDB) setError(err error) {
	if self.dbErr == nil {
		self.dbErr = err
	}
}

func (self *StateDB) Error() error {
	return self.dbErr
}

func (self *StateDB) AddLog(log *types.Log) {
	self.journal.append(addLogChange{txhash: self.thash})
	log.TxHash = self.thash
	log.TxIndex = uint(self.txIndex)
	log.Index = self.logSize
	self.logs = append(self.logs, log)
	self.logSize++
}

// GetLogs returns the logs accumulated for the transaction hash.
func (self *StateDB) GetLogs(hash common.Hash) []*types.Log {
	var logs []*types.Log
	for _, l := range self.logs {
		if l.TxHash == hash {
			logs = append(logs, l)
		}
	}
	return logs
}

// Logs returns every log of the block so far, in emission order.
func (self *StateDB) Logs() []*types.Log {
	return self.logs
}

// AddRefund adds gas to the refund counter.
func (self *StateDB) AddRefund(gas uint64) {
	self.journal.append(refundChange{prev: self.refund})
	self.refund += gas
}

// SubRefund removes gas from the refund counter.
// This method will panic if the refund counter goes below zero.
func (self *StateDB) SubRefund(gas uint64) {
	self.journal.append(refundChange{prev: self.refund})
	if gas > self.refund {
		panic(fmt.Sprintf("refund counter below zero (gas: %d > refund: %d)", gas, self.refund))
	}
	self.refund -= gas
}

// GetRefund returns the current value of the refund counter.
func (self *StateDB) GetRefund() uint64 {
	return self.refund
}

// Exist reports whether the given account address exists in the state.
// Notably this also returns true for self-destructed accounts.
func (self *StateDB) Exist(addr common.Address) bool {
	return self.getStateObject(addr) != nil
}

// Empty returns whether the account is either non-existent or empty
// according to the EIP-161 specification (balance = nonce = code = 0).
func (self *StateDB) Empty(addr common.Address) bool {
	so := self.getStateObject(addr)
	return so == nil || so.empty()
}

// GetBalance retrieves the balance from the given address or 0 if the
// account is absent.
func (self *StateDB) GetBalance(addr common.Address) *big.Int {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.Balance()
	}
	return common.Big0
}

func (self *StateDB) GetNonce(addr common.Address) uint64 {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.Nonce()
	}
	return 0
}

func (self *StateDB) GetCode(addr common.Address) []byte {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.Code()
	}
	return nil
}

func (self *StateDB) GetCodeSize(addr common.Address) int {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.CodeSize()
	}
	return 0
}

func (self *StateDB) GetCodeHash(addr common.Address) common.Hash {
	stateObject := self.getStateObject(addr)
	if stateObject == nil {
		return common.Hash{}
	}
	return common.BytesToHash(stateObject.CodeHash())
}

// GetState retrieves a value from the given account's storage trie.
func (self *StateDB) GetState(addr common.Address, hash common.Hash) common.Hash {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.GetState(hash)
	}
	return common.Hash{}
}

// GetCommittedState retrieves a value from the given account's committed
// storage trie, ignoring dirty writes of the current transaction.
func (self *StateDB) GetCommittedState(addr common.Address, hash common.Hash) common.Hash {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.GetCommittedState(hash)
	}
	return common.Hash{}
}

func (self *StateDB) HasSuicided(addr common.Address) bool {
	if stateObject := self.getStateObject(addr); stateObject != nil {
		return stateObject.suicided
	}
	return false
}

/*
 * SETTERS
 */

// AddBalance adds amount to the account associated with addr.
func (self *StateDB) AddBalance(addr common.Address, amount *big.Int) {
	if stateObject := self.GetOrNewStateObject(addr); stateObject != nil {
		stateObject.AddBalance(amount)
	}
}

// SubBalance subtracts amount from the account associated with addr.
func (self *StateDB) SubBalance(addr common.Address, amount *big.Int) {
	if stateObject := self.GetOrNewStateObject(addr); stateObject != nil {
		stateObject.SubBalance(amount)
	}
}

func (self *StateDB) SetBalance(addr common.Address, amount *big.Int) {
	if stateObject := self.GetOrNewStateObject(addr); stateObject != nil {
		stateObject.SetBalance(amount)
	}
}

func (self *StateDB) SetNonce(addr common.Address, nonce uint64) {
	if stateObject := self.GetOrNewStateObject(addr); stateObject != nil {
		stateObject.SetNonce(nonce)
	}
}

func (self *StateDB) SetCode(addr common.Address, code []byte) {
	if stateObject := self.GetOrNewStateObject(addr); stateObject != nil {
		stateObject.SetCode(code)
	}
}

func (self *StateDB) SetState(addr common.Address, key, value common.Hash) {
	if stateObject := self.GetOrNewStateObject(addr); stateObject != nil {
		stateObject.SetState(key, value)
	}
}

// Suicide marks the given account as self-destructed. This clears the
// account balance; the actual removal happens at the end of the
// transaction. The account's state object is still available until then.
func (self *StateDB) Suicide(addr common.Address) bool {
	stateObject := self.getStateObject(addr)
	if stateObject == nil {
		return false
	}
	self.journal.append(selfDestructChange{
		account:     &addr,
		prev:        stateObject.suicided,
		prevbalance: new(big.Int).Set(stateObject.Balance()),
	})
	stateObject.markSuicided()
	stateObject.data.Balance = new(big.Int)
	self.suicides.Add(addr)
	return true
}

//
// Setting, updating & deleting state object methods.
//

// updateStateObject writes the given object to the trie.
func (self *StateDB) updateStateObject(stateObject *stateObject) {
	addr := stateObject.Address()
	data, err := rlp.EncodeToBytes(&stateObject.data)
	if err != nil {
		panic(fmt.Errorf("can't encode object at %x: %v", addr[:], err))
	}
	self.setError(self.trie.Insert(addr[:], data))
}

// deleteStateObject removes the given object from the state trie.
func (self *StateDB) deleteStateObject(stateObject *stateObject) {
	stateObject.deleted = true
	addr := stateObject.Address()
	self.setError(self.trie.Delete(addr[:]))
}

// getStateObject retrieves a state object given by the address. Returns nil
// if not found.
func (self *StateDB) getStateObject(addr common.Address) *stateObject {
	// Prefer 'live' objects.
	if obj := self.stateObjects[addr]; obj != nil {
		if obj.deleted {
			return nil
		}
		return obj
	}
	// Load the object from the database.
	enc, err := self.trie.Get(addr[:])
	if err != nil {
		self.setError(err)
		return nil
	}
	if len(enc) == 0 {
		return nil
	}
	var data Account
	if err := rlp.DecodeBytes(enc, &data); err != nil {
		log.Error("Failed to decode state object", "addr", addr, "err", err)
		return nil
	}
	// Insert into the live set.
	obj := newObject(self, addr, data)
	self.setStateObject(obj)
	return obj
}

func (self *StateDB) setStateObject(object *stateObject) {
	self.stateObjects[object.Address()] = object
}

// GetOrNewStateObject retrieves a state object or creates a new one if nil.
func (self *StateDB) GetOrNewStateObject(addr common.Address) *stateObject {
	stateObject := self.getStateObject(addr)
	if stateObject == nil || stateObject.deleted {
		stateObject, _ = self.createObject(addr)
	}
	return stateObject
}

// createObject creates a new state object. If there is an existing account with
// the given address, it is overwritten and returned as the second return value.
func (self *StateDB) createObject(addr common.Address) (newobj, prev *stateObject) {
	prev = self.getStateObject(addr)
	newobj = newObject(self, addr, newAccount())
	newobj.setNonce(0) // sets the object to dirty
	if prev == nil {
		self.journal.append(createObjectChange{account: &addr})
	} else {
		self.journal.append(resetObjectChange{prev: prev})
	}
	self.setStateObject(newobj)
	return newobj, prev
}

// CreateAccount explicitly creates a state object. If a state object with the address
// already exists the balance is carried over to the new account.
//
// CreateAccount is called during the EVM CREATE operation. The situation might arise that
// a contract does the following:
//
//  1. sends funds to sha(account ++ (nonce + 1))
//  2. tx_create(sha(account ++ nonce)) (note that this gets the address of 1)
//
// Carrying over the balance ensures that Ether doesn't disappear.
func (self *StateDB) CreateAccount(addr common.Address) {
	newObj, prev := self.createObject(addr)
	if prev != nil {
		newObj.setBalance(prev.data.Balance)
	}
}

// Snapshot returns an identifier for the current revision of the state.
func (self *StateDB) Snapshot() int {
	id := self.nextRevisionId
	self.nextRevisionId++
	self.validRevisions = append(self.validRevisions, revision{id, self.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (self *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(self.validRevisions), func(i int) bool {
		return self.validRevisions[i].id >= revid
	})
	if idx == len(self.validRevisions) || self.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := self.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	self.journal.revert(self, snapshot)
	self.validRevisions = self.validRevisions[:idx]
}

// BeginTransaction sets the current transaction hash and index, used when the
// EVM emits new state logs, and resets the per-transaction warm set.
func (self *StateDB) BeginTransaction(thash common.Hash, txIndex int) {
	self.thash = thash
	self.txIndex = txIndex
	self.accessList = newAccessList()
}

// TxIndex returns the current transaction index set by BeginTransaction.
func (self *StateDB) TxIndex() int {
	return self.txIndex
}

// PrepareAccessList installs the tx-start warm set per EIP-2929/2930:
// the sender, the destination (if any), all precompiles, and the content of
// the optional EIP-2930 access list.
func (self *StateDB) PrepareAccessList(sender common.Address, dst *common.Address, precompiles []common.Address, list types.AccessList) {
	self.AddAddressToAccessList(sender)
	if dst != nil {
		self.AddAddressToAccessList(*dst)
	}
	for _, addr := range precompiles {
		self.AddAddressToAccessList(addr)
	}
	for _, el := range list {
		self.AddAddressToAccessList(el.Address)
		for _, key := range el.StorageKeys {
			self.AddSlotToAccessList(el.Address, key)
		}
	}
}

// AddAddressToAccessList adds the given address to the access list.
func (self *StateDB) AddAddressToAccessList(addr common.Address) {
	if self.accessList.AddAddress(addr) {
		self.journal.append(accessListAddAccountChange{&addr})
	}
}

// AddSlotToAccessList adds the given (address, slot) pair to the access list.
func (self *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	addrMod, slotMod := self.accessList.AddSlot(addr, slot)
	if addrMod {
		// In practice, this should not happen, since there is no way to enter the
		// scope of 'address' without having the 'address' become already added
		// to the access list (via call-variant, create, etc).
		// Better safe than sorry, though
		self.journal.append(accessListAddAccountChange{&addr})
	}
	if slotMod {
		self.journal.append(accessListAddSlotChange{
			address: &addr,
			slot:    &slot,
		})
	}
}

// AddressInAccessList reports whether the address is warm.
func (self *StateDB) AddressInAccessList(addr common.Address) bool {
	return self.accessList.ContainsAddress(addr)
}

// SlotInAccessList reports whether the (address, slot) pair is warm.
func (self *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (addressPresent bool, slotPresent bool) {
	return self.accessList.Contains(addr, slot)
}

// Finalise finalises the state by removing the self destructed objects and
// clears the journal as well as the refunds.
func (self *StateDB) Finalise(deleteEmptyObjects bool) {
	// Self-destructs first, in execution order.
	self.suicides.Each(func(_ int, value interface{}) {
		addr := value.(common.Address)
		stateObject, exist := self.stateObjects[addr]
		if !exist || !stateObject.suicided {
			// Reverted self-destruct.
			return
		}
		self.deleteStateObject(stateObject)
		self.stateObjectsDirty[addr] = struct{}{}
	})
	self.suicides = linkedhashset.New()
	for addr := range self.journal.dirties {
		stateObject, exist := self.stateObjects[addr]
		if !exist {
			// ripeMD is 'touched' at block 1714175, in tx 0x1237f737031e40bcde4a8b7e717b2d15e3ecadfe49bb1bbc71ee9deb09c6fcf2
			// That tx goes out of gas, and although the notion of 'touched' does not exist there, the
			// touch-event will still be recorded in the journal. Since ripeMD is a special snowflake,
			// it will persist in the journal even though the journal is reverted. In this special circumstance,
			// it may exist in `s.journal.dirties` but not in `s.stateObjects`.
			// Thus, we can safely ignore it here
			continue
		}
		if stateObject.deleted {
			continue
		}
		if stateObject.suicided || (deleteEmptyObjects && stateObject.empty()) {
			self.deleteStateObject(stateObject)
		} else {
			if err := stateObject.updateRoot(); err != nil {
				self.setError(err)
				continue
			}
			self.updateStateObject(stateObject)
		}
		self.stateObjectsDirty[addr] = struct{}{}
	}
	self.clearJournalAndRefund()
}

// IntermediateRoot computes the current root hash of the state trie.
// It is called in between transactions to get the root hash that
// goes into pre-Byzantium transaction receipts.
func (self *StateDB) IntermediateRoot(deleteEmptyObjects bool) common.Hash {
	self.Finalise(deleteEmptyObjects)
	return self.trie.Hash()
}

func (self *StateDB) clearJournalAndRefund() {
	self.journal = newJournal()
	self.validRevisions = self.validRevisions[:0]
	self.refund = 0
}

// Commit finalises any pending state and writes every dirty account, dirty
// storage trie and updated contract code into w, returning the new state
// root. w is normally the block's KV transaction.
func (self *StateDB) Commit(w trie.NodeWriter, deleteEmptyObjects bool) (root common.Hash, err error) {
	self.Finalise(deleteEmptyObjects)
	// Commit objects to the trie.
	for addr := range self.stateObjectsDirty {
		obj := self.stateObjects[addr]
		if obj.deleted {
			continue
		}
		// Write any contract code associated with the state object.
		if obj.code != nil && obj.dirtyCode {
			if err := w.Put(obj.CodeHash(), obj.code); err != nil {
				return common.Hash{}, err
			}
			obj.dirtyCode = false
		}
		// Write any storage changes in the state object to its storage trie.
		if err := obj.commitTrie(w); err != nil {
			return common.Hash{}, err
		}
		// Update the object in the main account trie.
		self.updateStateObject(obj)
	}
	self.stateObjectsDirty = make(map[common.Address]struct{})
	if self.dbErr != nil {
		return common.Hash{}, self.dbErr
	}
	root, err = self.trie.Commit(w)
	log.Trace("Committed state", "root", root, "err", err)
	return root, err
}
