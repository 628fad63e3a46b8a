package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/juke/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketQueues = []byte("queues")
)

// QueueStore implements domain.QueueStore using BoltDB.
// Song IDs are only meaningful on the server they came from, so each server
// gets its own nested bucket under "queues".
type QueueStore struct {
	db     *bolt.DB
	server []byte
	now    func() time.Time
}

// NewQueueStore opens (or creates) the database at dbPath, scoped to serverURL
func NewQueueStore(dbPath, serverURL string) (*QueueStore, error) {
	if dbPath == "" {
		return nil, errors.New("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	server := []byte(hashServerURL(serverURL))

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketQueues)
		if err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(server)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &QueueStore{db: db, server: server, now: time.Now}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *QueueStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// bucket returns this server's queue bucket within tx
func (s *QueueStore) bucket(tx *bolt.Tx) *bolt.Bucket {
	root := tx.Bucket(bucketQueues)
	if root == nil {
		return nil
	}
	return root.Bucket(s.server)
}

// SaveQueue stores q under its name, replacing any previous snapshot.
// A zero SavedAt is stamped with the current time.
func (s *QueueStore) SaveQueue(q domain.SavedQueue) error {
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return errors.New("queue name is required")
	}
	q.Name = name
	if q.SavedAt.IsZero() {
		q.SavedAt = s.now()
	}
	if q.SongIDs == nil {
		q.SongIDs = []uint64{}
	}

	data, err := json.Marshal(q)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := s.bucket(tx)
		if b == nil {
			return fmt.Errorf("bucket %s missing", bucketQueues)
		}
		return b.Put([]byte(name), data)
	})
}

// LoadQueue returns the snapshot saved under name
func (s *QueueStore) LoadQueue(name string) (*domain.SavedQueue, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := s.bucket(tx)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(strings.TrimSpace(name))); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, false, err
	}

	var q domain.SavedQueue
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, false, fmt.Errorf("corrupt saved queue %q: %w", name, err)
	}
	return &q, true, nil
}

// ListQueues returns all snapshots for this server, sorted by name
func (s *QueueStore) ListQueues() ([]domain.SavedQueue, error) {
	queues := []domain.SavedQueue{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := s.bucket(tx)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var q domain.SavedQueue
			if err := json.Unmarshal(v, &q); err != nil {
				return fmt.Errorf("corrupt saved queue %q: %w", k, err)
			}
			queues = append(queues, q)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return queues, nil
}

// DeleteQueue removes the snapshot saved under name
func (s *QueueStore) DeleteQueue(name string) error {
	key := []byte(strings.TrimSpace(name))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := s.bucket(tx)
		if b == nil || b.Get(key) == nil {
			return domain.ErrQueueNotFound
		}
		return b.Delete(key)
	})
}
