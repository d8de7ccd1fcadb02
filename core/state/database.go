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

package state

import (
	"fmt"
	"time"

	"github.com/allegro/bigcache"
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/basalt-chain/basalt-evm/trie"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

const (
	// Number of codehash->code entries to keep.
	codeCacheSize = 4096

	// Megabytes of memory allowed for the clean trie node cache.
	cleanCacheSizeMB = 64
)

// Database wraps access of tries and contract code on top of a byte-keyed
// reader, normally the KV transaction a block executes in. Reads through the
// transaction observe its own uncommitted writes, which is what makes state
// built by block N readable while block N+1 of the same batch executes.
type Database struct {
	reader ethdb.Getter

	cleans    *bigcache.BigCache // keccak(node) -> node RLP, immutable data
	codeCache *lru.Cache         // keccak(code) -> code
}

// NewDatabase creates a state database reading through r.
func NewDatabase(r ethdb.Getter) *Database {
	cleans, err := bigcache.NewBigCache(bigcache.Config{
		Shards:             1024,
		LifeWindow:         time.Hour,
		MaxEntriesInWindow: cleanCacheSizeMB * 1024,
		MaxEntrySize:       512,
		HardMaxCacheSize:   cleanCacheSizeMB,
	})
	if err != nil {
		panic(err)
	}
	codeCache, _ := lru.New(codeCacheSize)
	return &Database{
		reader:    r,
		cleans:    cleans,
		codeCache: codeCache,
	}
}

// OpenTrie opens the main account trie at root.
func (self *Database) OpenTrie(root common.Hash) (*trie.Trie, error) {
	return trie.NewSecure(root, nodeReader{self})
}

// OpenStorageTrie opens the storage trie of an account.
func (self *Database) OpenStorageTrie(root common.Hash) (*trie.Trie, error) {
	return trie.NewSecure(root, nodeReader{self})
}

// ContractCode retrieves a contract's code by hash.
func (self *Database) ContractCode(codeHash common.Hash) ([]byte, error) {
	if cached, ok := self.codeCache.Get(codeHash); ok {
		return cached.([]byte), nil
	}
	code, err := self.reader.Get(codeHash[:])
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, fmt.Errorf("code %x: not found", codeHash)
	}
	self.codeCache.Add(codeHash, code)
	return code, nil
}

// ContractCodeSize retrieves the size of a contract's code.
func (self *Database) ContractCodeSize(codeHash common.Hash) (int, error) {
	code, err := self.ContractCode(codeHash)
	return len(code), err
}

// nodeReader resolves trie nodes through the clean cache, falling back to
// the underlying reader. Node payloads are content-addressed so the cache
// never needs invalidation.
type nodeReader struct {
	db *Database
}

func (self nodeReader) Get(key []byte) ([]byte, error) {
	if self.db.cleans != nil {
		if enc, err := self.db.cleans.Get(string(key)); err == nil && len(enc) != 0 {
			return enc, nil
		}
	}
	enc, err := self.db.reader.Get(key)
	if err == nil && len(enc) != 0 && self.db.cleans != nil {
		self.db.cleans.Set(string(key), enc)
	}
	return enc, err
}
