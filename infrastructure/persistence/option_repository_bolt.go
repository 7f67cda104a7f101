package persistence

import (
	"context"
	"fmt"
	"time"

	"alfreds-toolbox/domain/repository"

	bolt "go.etcd.io/bbolt"
)

var optionsBucket = []byte("options")

// BoltOptionStore keeps options in a single-file bbolt database for installs without a SQL server.
type BoltOptionStore struct {
	db *bolt.DB
}

func NewBoltOptionStore(path string) (*BoltOptionStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(optionsBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &BoltOptionStore{db: db}, nil
}

var _ repository.IOptionStore = (*BoltOptionStore)(nil)

func (s *BoltOptionStore) Close() error {
	return s.db.Close()
}

func (s *BoltOptionStore) GetOption(_ context.Context, name string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(optionsBucket).Get([]byte(name))
		if data != nil {
			value, found = string(data), true
		}
		return nil
	})
	return value, found, err
}

func (s *BoltOptionStore) UpdateOption(_ context.Context, name, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(optionsBucket).Put([]byte(name), []byte(value))
	})
}

func (s *BoltOptionStore) DeleteOption(_ context.Context, name string) (bool, error) {
	existed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(optionsBucket)
		if b.Get([]byte(name)) == nil {
			return nil
		}
		existed = true
		return b.Delete([]byte(name))
	})
	return existed, err
}
