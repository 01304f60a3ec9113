package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore persists values in a single BoltDB bucket. Expired entries are
// removed lazily on read.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// OpenBolt opens (creating if needed) the database file at path.
func OpenBolt(path, bucket string) (*BoltStore, error) {
	if bucket == "" {
		bucket = "kv"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, bucket: []byte(bucket), now: time.Now}, nil
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var (
		e     entry
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &e)
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: bolt get %s: %w", key, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	if e.expired(s.now()) {
		_ = s.Delete(context.Background(), key)
		return nil, ErrNotFound
	}
	return e.Value, nil
}

func (s *BoltStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(newEntry(value, ttl, s.now()))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
}

func (s *BoltStore) Delete(_ context.Context, key string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Cleanup removes every expired entry.
func (s *BoltStore) Cleanup() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	now := s.now()
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if e.expired(now) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
