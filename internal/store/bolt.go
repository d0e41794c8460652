package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
)

var bucketTalkers = []byte("talkers")

// BoltStore keeps talkers in a bbolt bucket. Keys are the big-endian
// position of the record in the collection, values are CBOR encoded talkers,
// so a cursor walk returns the collection in its saved order.
type BoltStore struct {
	db *bbolt.DB
}

var _ talker.Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the bbolt database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTalkers)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Load walks the bucket in key order.
func (s *BoltStore) Load(ctx context.Context) ([]talker.Talker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	talkers := []talker.Talker{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTalkers)
		if b == nil {
			return fmt.Errorf("bucket %q missing", bucketTalkers)
		}
		return b.ForEach(func(_, v []byte) error {
			var t talker.Talker
			if err := cbor.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("unmarshal talker: %w", err)
			}
			talkers = append(talkers, t)
			return nil
		})
	})
	if err != nil {
		return nil, unavailable("load bolt", err)
	}
	return talkers, nil
}

// Save replaces the bucket contents in a single transaction.
func (s *BoltStore) Save(ctx context.Context, talkers []talker.Talker) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketTalkers) != nil {
			if err := tx.DeleteBucket(bucketTalkers); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketTalkers)
		if err != nil {
			return err
		}
		for i, t := range talkers {
			data, err := cbor.Marshal(t)
			if err != nil {
				return fmt.Errorf("marshal talker %d: %w", t.ID, err)
			}
			if err := b.Put(positionKey(i), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return unavailable("save bolt", err)
	}
	return nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}
