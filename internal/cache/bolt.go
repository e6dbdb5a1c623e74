package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mizukaze554/AnimeSearch/internal/metrics"
)

var bucketResults = []byte("results")

// BoltStore implements Store using BoltDB, with an in-memory byte cache
// promoted on access for hot-path reads. A nil db means memory-only mode.
type BoltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	mu  sync.RWMutex
	mem map[string][]byte
}

// NewBoltStore opens (or creates) the cache database under dir. An empty
// dir yields a memory-only store with no persistence.
func NewBoltStore(dir string, ttl time.Duration) (*BoltStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &BoltStore{ttl: ttl, now: time.Now, mem: make(map[string][]byte)}

	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "results.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltStore) Set(_ context.Context, key string, value any) error {
	data, err := newEnvelope(value, s.now())
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheBackendBolt).Inc()
		return err
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheBackendBolt).Inc()

	s.mu.Lock()
	s.mem[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Put([]byte(key), data)
	})
}

func (s *BoltStore) Get(ctx context.Context, key string, dest any) bool {
	// Check memory cache first
	s.mu.RLock()
	data, ok := s.mem[key]
	s.mu.RUnlock()

	if !ok && s.db != nil {
		s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketResults).Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if data == nil {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheBackendBolt).Inc()
			return false
		}
		// Promote to memory cache
		s.mu.Lock()
		s.mem[key] = data
		s.mu.Unlock()
	}

	if data == nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheBackendBolt).Inc()
		return false
	}

	if !open(data, dest, s.ttl, s.now()) {
		// Expired or malformed entries self-heal by deletion
		s.Delete(ctx, key)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheBackendBolt).Inc()
		return false
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheBackendBolt).Inc()
	return true
}

func (s *BoltStore) Delete(_ context.Context, key string) {
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheBackendBolt).Inc()

	s.mu.Lock()
	delete(s.mem, key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Delete([]byte(key))
	})
}

// raw returns the stored bytes for key without expiry handling.
func (s *BoltStore) raw(key string) ([]byte, bool) {
	s.mu.RLock()
	data, ok := s.mem[key]
	s.mu.RUnlock()
	if ok {
		return data, true
	}
	if s.db == nil {
		return nil, false
	}
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketResults).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	return data, data != nil
}
