package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Well-known names of the persisted session values.
const (
	bucketName  = "session"
	keyAccess   = "access_token"
	keyRefresh  = "refresh_token"
	keyUsername = "username"
)

// MemoryBackend keeps the state in process memory.
type MemoryBackend struct {
	mu    sync.Mutex
	state State
}

func (m *MemoryBackend) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryBackend) Store(s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return nil
}

// BoltBackend persists the state in a bbolt file. The database is opened
// per operation so that a TUI and a one-shot command can share the file.
type BoltBackend struct {
	path    string
	timeout time.Duration
}

// NewBoltBackend prepares a backend at path, creating its directory.
func NewBoltBackend(path string) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: create dir: %w", err)
	}
	return &BoltBackend{path: path, timeout: 2 * time.Second}, nil
}

func (b *BoltBackend) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: b.timeout, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", b.path, err)
	}
	return db, nil
}

// Load reads the stored state. A missing file yields an empty state.
func (b *BoltBackend) Load() (State, error) {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return State{}, nil
	}
	db, err := b.open(true)
	if err != nil {
		return State{}, err
	}
	defer db.Close() //nolint:errcheck

	var st State
	err = db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucketName))
		if bkt == nil {
			return nil
		}
		st.Access = string(bkt.Get([]byte(keyAccess)))
		st.Refresh = string(bkt.Get([]byte(keyRefresh)))
		st.Username = string(bkt.Get([]byte(keyUsername)))
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("session: read: %w", err)
	}
	return st, nil
}

// Store writes all three values in one transaction; empty values are deleted.
func (b *BoltBackend) Store(s State) error {
	db, err := b.open(false)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	return db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for key, val := range map[string]string{
			keyAccess:   s.Access,
			keyRefresh:  s.Refresh,
			keyUsername: s.Username,
		} {
			if val == "" {
				if err := bkt.Delete([]byte(key)); err != nil {
					return fmt.Errorf("delete %s: %w", key, err)
				}
				continue
			}
			if err := bkt.Put([]byte(key), []byte(val)); err != nil {
				return fmt.Errorf("put %s: %w", key, err)
			}
		}
		return nil
	})
}
