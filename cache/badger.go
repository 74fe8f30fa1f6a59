package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore 嵌入式键值库，默认后端。
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger dir 为空时用纯内存模式（测试方便）。
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string, out any) bool {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// 坏值等同缺失
		log.Printf("cache get %s: corrupt value: %v", key, err)
		return false
	}
	return true
}

func (s *BadgerStore) Put(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
