package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketLedger = []byte("treevol")

// BoltStore 基于单个 bbolt 文件与 bucket 实现 Store。
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore 打开（必要时创建）path 处的台账文件。文件已被其他进程持有时，
// 等待 lockTimeout 后返回 ErrLedgerLocked。
func OpenBoltStore(path string, lockTimeout time.Duration) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("ledger path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if lockTimeout <= 0 {
		lockTimeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("open ledger %s: %w", path, ErrLedgerLocked)
		}
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLedger)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Read 返回存储值的副本；bbolt 返回的内存只在事务内有效。
func (s *BoltStore) Read(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketLedger).Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

// Update 在同一个写事务内执行 fn。
func (s *BoltStore) Update(key string, fn func(current []byte) ([]byte, error)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketLedger)
		var current []byte
		if v := bucket.Get([]byte(key)); v != nil {
			current = append([]byte(nil), v...)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return bucket.Delete([]byte(key))
		}
		return bucket.Put([]byte(key), next)
	})
}

// Close 释放文件锁。
func (s *BoltStore) Close() error {
	return s.db.Close()
}
