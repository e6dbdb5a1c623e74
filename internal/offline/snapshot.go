// Package offline is the caching gateway that keeps the app usable without
// upstream connectivity. It snapshots responses into versioned stores and
// serves each request class with its own strategy: app shell assets are
// cache-first, API calls are network-first with a stale fallback, and
// navigations fall back to the snapshotted index page.
package offline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Entry is one snapshotted upstream response.
type Entry struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// Snapshots is the versioned response store. Each version tag owns its own
// bucket, so pruning an obsolete version is one bucket delete.
type Snapshots struct {
	db *bolt.DB
}

// OpenSnapshots opens (or creates) the snapshot database under dir.
func OpenSnapshots(dir string) (*Snapshots, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "snapshots.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	return &Snapshots{db: db}, nil
}

func (s *Snapshots) Close() error {
	return s.db.Close()
}

// Put stores one response under the version tag, replacing any previous
// snapshot for the same request key.
func (s *Snapshots) Put(tag, key string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(tag))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// PutAll stores every entry in one transaction. Either the whole set lands
// or none of it does, which is what makes shell installs atomic.
func (s *Snapshots) PutAll(tag string, entries map[string]*Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(tag))
		if err != nil {
			return err
		}
		for key, e := range entries {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the snapshot stored under the version tag for key.
func (s *Snapshots) Get(tag, key string) (*Entry, bool) {
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tag))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	return &e, true
}

// DropOthers deletes every version bucket except keep. Called on activation
// so stale snapshots from previous versions do not accumulate.
func (s *Snapshots) DropOthers(keep string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if string(name) != keep {
				stale = append(stale, append([]byte(nil), name...))
			}
			return nil
		})
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Tags lists the version buckets currently present.
func (s *Snapshots) Tags() []string {
	var tags []string
	s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			tags = append(tags, string(name))
			return nil
		})
	})
	return tags
}
