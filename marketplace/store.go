package marketplace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// All marketplace state lives in one bucket, keyed by logical collection name
// ("cart", "favorites", "postedBooks", ...). Values are whole JSON blobs;
// every mutation rewrites the full blob for its key.
const stateBucket = "state"

// Store is the on-device key-value store backing every collection. Reads and
// writes go through per-key mutexes so that a read-modify-write cycle on one
// key is atomic with respect to other goroutines; without that, two rapid
// mutations of the same collection would both start from the same stale blob
// and the second write would clobber the first.
type Store struct {
	db *bolt.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// OpenStore opens (or creates) the store file at path.
func OpenStore(path string) (*Store, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db, locks: make(map[string]*sync.Mutex)}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

// keyLock returns the mutex guarding read-modify-write cycles for key.
func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// withKeyLock runs fn while holding the per-key mutex. Collections use this
// to make load-transform-persist a single logical operation.
func (s *Store) withKeyLock(key string, fn func() error) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// Get returns the raw blob stored under key, or nil if the key has never been
// written. Absence is a valid state, not an error.
func (s *Store) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(stateBucket)).Get([]byte(key))
		if v != nil {
			// bbolt values are only valid inside the transaction.
			out = make([]byte, len(v))
			copy(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	return out, nil
}

// Put overwrites the blob stored under key.
func (s *Store) Put(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(key), value)
	})
	if err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	zap.S().Debugw("persisted blob", "key", key, "bytes", len(value))
	return nil
}

// Delete removes key entirely. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Delete([]byte(key))
	})
	if err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
