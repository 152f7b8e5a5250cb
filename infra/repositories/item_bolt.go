package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
)

// ItemRepositoryBolt stores items in a single bolt bucket keyed by item id.
type ItemRepositoryBolt struct {
	path   string
	bucket []byte
	db     *bolt.DB
}

// OpenItemRepositoryBolt creates the boltdb file if it doesn't exist and opens it otherwise.
func OpenItemRepositoryBolt(path, bucket string) (*ItemRepositoryBolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("unable to create directory %s: %v", path, err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, infra.NewStoreError("bolt open", err)
	}
	r := &ItemRepositoryBolt{path: path, bucket: []byte(bucket), db: db}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(r.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, infra.NewStoreError("bolt create bucket", err)
	}
	return r, nil
}

func (r *ItemRepositoryBolt) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	var raw []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(r.bucket).Get([]byte(itemId)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, infra.NewStoreError("bolt view", err)
	}
	if raw == nil {
		return nil, item.ErrNotFound
	}
	return decodeItem(itemId, raw)
}

func (r *ItemRepositoryBolt) SaveItem(ctx context.Context, it *item.Item) error {
	raw, err := it.Serialize()
	if err != nil {
		return infra.NewStoreError("bolt encode", err)
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Put([]byte(it.Id), raw)
	})
	if err != nil {
		return infra.NewStoreError("bolt put", err)
	}
	return nil
}

func (r *ItemRepositoryBolt) DeleteItem(ctx context.Context, itemId string) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Delete([]byte(itemId))
	})
	if err != nil {
		return infra.NewStoreError("bolt delete", err)
	}
	return nil
}

func (r *ItemRepositoryBolt) Ping(ctx context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return infra.NewStoreError("bolt ping", fmt.Errorf("bucket %s missing", r.bucket))
		}
		return nil
	})
}

func (r *ItemRepositoryBolt) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
