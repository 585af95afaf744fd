package kvdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/searchresource/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltDB struct {
	store  *bolt.DB
	logger logger.Logger
}

func New(logger logger.Logger, kvDBPath string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(kvDBPath), 0755); err != nil {
		logger.Error("failed to create key-value database directory", "err", err.Error(), "path", kvDBPath)
		return nil, fmt.Errorf("failed to create key-value database directory: %w", err)
	}

	store, err := bolt.Open(kvDBPath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", kvDBPath)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BoltDB{
		store:  store,
		logger: logger,
	}, nil
}

// Set creates the bucket on first use.
func (b *BoltDB) Set(bucket string, key string, value string) error {
	if err := b.validateKey(bucket, key); err != nil {
		return err
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			b.logger.Error("failed to create bucket", "bucket", bucket, "err", err.Error())
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}

		if err := bkt.Put([]byte(key), []byte(value)); err != nil {
			b.logger.Error("failed to set key", "bucket", bucket, "key", key, "err", err.Error())
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}

		return nil
	})
}

// Get returns a *NotFoundError when either the bucket or the key is missing.
func (b *BoltDB) Get(bucket string, key string) (string, error) {
	if err := b.validateKey(bucket, key); err != nil {
		return "", err
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return &NotFoundError{Bucket: bucket, Key: key}
		}

		v := bkt.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Bucket: bucket, Key: key}
		}

		// v is only valid for the life of the transaction
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return "", err
	}

	return string(value), nil
}

func (b *BoltDB) Delete(bucket string, key string) error {
	if err := b.validateKey(bucket, key); err != nil {
		return err
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}

		if err := bkt.Delete([]byte(key)); err != nil {
			b.logger.Error("failed to delete key", "bucket", bucket, "key", key, "err", err.Error())
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) GetAllKeys(bucket string) ([]string, error) {
	var keys []string
	err := b.store.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		b.logger.Error("failed to list keys", "bucket", bucket, "err", err.Error())
		return nil, fmt.Errorf("failed to list keys in bucket %s: %w", bucket, err)
	}

	return keys, nil
}

func (b *BoltDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

func (b *BoltDB) validateKey(bucket string, key string) error {
	if bucket == "" {
		b.logger.Error("bucket cannot be empty", "key", key)
		return &InvalidKeyError{
			Key:    key,
			Reason: "bucket cannot be empty",
		}
	}
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucket)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}
	return nil
}
