package boltdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Top-level buckets of the document store.
var (
	BucketUsers      = []byte("users")
	BucketUserEmails = []byte("user_emails")
	BucketTasks      = []byte("tasks")
)

// Open initializes the BoltDB file and ensures every top-level bucket exists.
func Open(path string, logger *zap.Logger) (*bolt.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{BucketUsers, BucketUserEmails, BucketTasks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened bolt store", zap.String("path", path))
	return db, nil
}

// Ping reports whether the database is open and readable.
func Ping(db *bolt.DB) error {
	if db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(BucketUsers) == nil {
			return fmt.Errorf("bucket %s missing", BucketUsers)
		}
		return nil
	})
}

// Stats exposes Bolt statistics for monitoring endpoints.
func Stats(db *bolt.DB) bolt.Stats {
	if db == nil {
		return bolt.Stats{}
	}
	return db.Stats()
}
