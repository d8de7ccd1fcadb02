// Package rocksdb holds the gorocksdb-backed store. It needs cgo and a
// system rocksdb.
package rocksdb

import (
	"github.com/basalt-chain/basalt-evm/ethdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tecbot/gorocksdb"
)

type Factory struct {
	File                   string `json:"file"`
	ReadOnly               bool   `json:"readOnly"`
	ErrorIfExists          bool   `json:"errorIfExists"`
	MaxOpenFiles           int    `json:"maxOpenFiles"`
	BloomFilterCapacity    int    `json:"bloomFilterCapacity"`
	BlockCacheSize         uint64 `json:"blockCacheSize"`
	WriteBufferSize        int    `json:"writeBufferSize"`
	Parallelism            int    `json:"parallelism"`
	OptimizeForPointLookup uint64 `json:"optimizeForPointLookup"`
}

type Database struct {
	writeOpts *gorocksdb.WriteOptions
	readOpts  *gorocksdb.ReadOptions
	db        *gorocksdb.DB
}

func New(cfg *Factory) (*Database, error) {
	opts := gorocksdb.NewDefaultOptions()
	if cfg.OptimizeForPointLookup != 0 {
		opts.SetAllowConcurrentMemtableWrites(false)
		opts.OptimizeForPointLookup(cfg.OptimizeForPointLookup)
	} else {
		blockOpts := gorocksdb.NewDefaultBlockBasedTableOptions()
		bloomCapacity := cfg.BloomFilterCapacity
		if bloomCapacity < 10 {
			bloomCapacity = 10
		}
		blockOpts.SetFilterPolicy(gorocksdb.NewBloomFilter(bloomCapacity))
		if cfg.BlockCacheSize != 0 {
			blockOpts.SetBlockCache(gorocksdb.NewLRUCache(cfg.BlockCacheSize))
		}
		opts.SetBlockBasedTableFactory(blockOpts)
	}
	if cfg.WriteBufferSize != 0 {
		opts.SetWriteBufferSize(cfg.WriteBufferSize)
	}
	if cfg.MaxOpenFiles != 0 {
		opts.SetMaxOpenFiles(cfg.MaxOpenFiles)
	}
	if cfg.Parallelism != 0 {
		opts.IncreaseParallelism(cfg.Parallelism)
	}
	opts.SetErrorIfExists(cfg.ErrorIfExists)
	opts.SetCreateIfMissing(true)
	ret, err := new(Database), error(nil)
	ret.writeOpts = gorocksdb.NewDefaultWriteOptions()
	ret.readOpts = gorocksdb.NewDefaultReadOptions()
	ret.readOpts.SetVerifyChecksums(false)
	if cfg.ReadOnly {
		ret.db, err = gorocksdb.OpenDbForReadOnly(opts, cfg.File, cfg.ErrorIfExists)
	} else {
		ret.db, err = gorocksdb.OpenDb(opts, cfg.File)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (self *Factory) NewDB() (ethdb.Database, error) {
	return New(self)
}

func (self *Database) Put(key []byte, value []byte) error {
	return self.db.Put(self.writeOpts, key, value)
}

func (self *Database) Get(key []byte) ([]byte, error) {
	val_handle, err := self.db.GetPinned(self.readOpts, key)
	if err != nil {
		return nil, err
	}
	defer val_handle.Destroy()
	if data := val_handle.Data(); data != nil {
		return common.CopyBytes(data), nil
	}
	return nil, nil
}

func (self *Database) Has(key []byte) (bool, error) {
	val_handle, err := self.db.GetPinned(self.readOpts, key)
	if err != nil {
		return false, err
	}
	defer val_handle.Destroy()
	return val_handle.Data() != nil, nil
}

func (self *Database) Delete(key []byte) error {
	return self.db.Delete(self.writeOpts, key)
}

func (self *Database) Close() {
	self.readOpts.Destroy()
	self.writeOpts.Destroy()
	self.db.Close()
}

func (self *Database) BeginTransaction() ethdb.Transaction {
	return ethdb.NewOverlayTransaction(self)
}

func (self *Database) NewBatch() ethdb.Batch {
	return &batch{db: self, batch: gorocksdb.NewWriteBatch()}
}

type batch struct {
	db    *Database
	batch *gorocksdb.WriteBatch
	size  int
}

func (self *batch) Put(key, value []byte) error {
	self.batch.Put(key, value)
	self.size += len(value)
	return nil
}

func (self *batch) Delete(key []byte) error {
	self.batch.Delete(key)
	self.size += 1
	return nil
}

func (self *batch) Write() error {
	return self.db.db.Write(self.db.writeOpts, self.batch)
}

func (self *batch) ValueSize() int {
	return self.size
}

func (self *batch) Reset() {
	self.batch.Clear()
	self.size = 0
}
