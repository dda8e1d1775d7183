package storage

import (
	"encoding/json"
	"fmt"

	stderrors "errors"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbIterator "github.com/syndtr/goleveldb/leveldb/iterator"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tokenvote/tokenvote/lib/errors"
)

// LevelDBCore is the subset of *leveldb.DB shared with *leveldb.Transaction,
// so a backend can wrap either one.
type LevelDBCore interface {
	Has([]byte, *leveldbOpt.ReadOptions) (bool, error)
	Get([]byte, *leveldbOpt.ReadOptions) ([]byte, error)
	NewIterator(*leveldbUtil.Range, *leveldbOpt.ReadOptions) leveldbIterator.Iterator
	Put([]byte, []byte, *leveldbOpt.WriteOptions) error
	Delete([]byte, *leveldbOpt.WriteOptions) error
}

// LevelDBBackend stores ballots and round configurations as JSON records
// under string keys. `New` is create-only and `Set` is update-only, so a
// record's lifecycle is explicit at every write site.
type LevelDBBackend struct {
	DB *leveldb.DB

	Core LevelDBCore
}

func NewStorage(config *Config) (st *LevelDBBackend, err error) {
	st = &LevelDBBackend{}
	if err = st.Init(config); err != nil {
		return nil, err
	}

	return
}

func (st *LevelDBBackend) Init(config *Config) error {
	var db *leveldb.DB
	var err error

	switch config.Scheme {
	case "file":
		db, err = leveldb.OpenFile(config.Path, nil)
	case "memory":
		db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	}
	if err != nil {
		return coreError(err)
	}

	st.DB = db
	st.Core = db

	return nil
}

func (st *LevelDBBackend) Close() error {
	return st.DB.Close()
}

func coreError(err error) error {
	if err == nil {
		return nil
	}

	return errors.NewError(
		errors.ErrorStorageCoreError.Code,
		fmt.Sprintf("%s: %s", errors.ErrorStorageCoreError.Message, err.Error()),
	)
}

// OpenTransaction returns a backend whose writes apply atomically on
// `Commit`. goleveldb allows one open transaction at a time and blocks the
// others, so a create-only `New` inside a transaction acts as a
// check-and-set: of two racing publishers exactly one commits the record.
func (st *LevelDBBackend) OpenTransaction() (*LevelDBBackend, error) {
	if _, ok := st.Core.(*leveldb.Transaction); ok {
		return nil, coreError(stderrors.New("already inside a transaction"))
	}

	transaction, err := st.DB.OpenTransaction()
	if err != nil {
		return nil, coreError(err)
	}

	return &LevelDBBackend{
		DB:   st.DB,
		Core: transaction,
	}, nil
}

func (st *LevelDBBackend) Commit() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return coreError(stderrors.New("not a transaction"))
	}

	return coreError(ts.Commit())
}

func (st *LevelDBBackend) Discard() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return coreError(stderrors.New("not a transaction"))
	}

	ts.Discard()
	return nil
}

func (st *LevelDBBackend) Has(k string) (bool, error) {
	ok, err := st.Core.Has([]byte(k), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, coreError(err)
	}

	return ok, nil
}

func (st *LevelDBBackend) GetRaw(k string) ([]byte, error) {
	exists, err := st.Has(k)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.ErrorStorageRecordDoesNotExist
	}

	b, err := st.Core.Get([]byte(k), nil)
	return b, coreError(err)
}

func (st *LevelDBBackend) Get(k string, i interface{}) error {
	b, err := st.GetRaw(k)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(b, &i); err != nil {
		return coreError(err)
	}

	return nil
}

func encodeRecord(v interface{}) ([]byte, error) {
	if serializable, ok := v.(Serializable); ok {
		return serializable.Serialize()
	}
	return json.Marshal(v)
}

// New writes the record only when the key is absent; an existing key yields
// ErrorStorageRecordAlreadyExists.
func (st *LevelDBBackend) New(k string, v interface{}) error {
	encoded, err := encodeRecord(v)
	if err != nil {
		return coreError(err)
	}

	exists, err := st.Has(k)
	if err != nil {
		return err
	}
	if exists {
		return errors.ErrorStorageRecordAlreadyExists
	}

	return coreError(st.Core.Put([]byte(k), encoded, nil))
}

// Set updates the record only when the key is present; a missing key yields
// ErrorStorageRecordDoesNotExist.
func (st *LevelDBBackend) Set(k string, v interface{}) error {
	encoded, err := encodeRecord(v)
	if err != nil {
		return coreError(err)
	}

	exists, err := st.Has(k)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrorStorageRecordDoesNotExist
	}

	return coreError(st.Core.Put([]byte(k), encoded, nil))
}

func (st *LevelDBBackend) Remove(k string) error {
	exists, err := st.Has(k)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrorStorageRecordDoesNotExist
	}

	return coreError(st.Core.Delete([]byte(k), nil))
}

// GetIterator walks every record under the prefix in key order. The first
// func yields the next item and whether iteration continues; the second
// releases the iterator early.
func (st *LevelDBBackend) GetIterator(prefix string, option ListOptions) (func() (IterItem, bool), func()) {
	var reverse bool
	var cursor []byte
	var limit uint64
	if option != nil {
		reverse = option.Reverse()
		cursor = option.Cursor()
		limit = option.Limit()
	}

	var dbRange *leveldbUtil.Range
	if len(prefix) > 0 {
		dbRange = leveldbUtil.BytesPrefix([]byte(prefix))
	}

	iter := st.Core.NewIterator(dbRange, nil)

	if cursor != nil {
		iter.Seek(cursor)
	}

	var advance func() bool
	var pending bool
	if reverse {
		if !iter.Last() {
			iter.Release()
			return func() (IterItem, bool) { return IterItem{}, false }, func() {}
		}
		advance = iter.Prev
		pending = true
	} else {
		advance = iter.Next
		pending = cursor != nil
	}

	var n uint64
	next := func() (IterItem, bool) {
		if pending {
			pending = false
			n++
			return IterItem{N: n, Key: iter.Key(), Value: iter.Value()}, true
		}

		if !advance() {
			iter.Release()
			return IterItem{}, false
		}

		n++
		item := IterItem{N: n, Key: iter.Key(), Value: iter.Value()}
		if limit != 0 && n >= limit {
			iter.Release()
			return item, false
		}
		return item, true
	}

	return next, func() { iter.Release() }
}
