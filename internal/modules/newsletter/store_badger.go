package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	subscriberKeyPrefix = "subscriber:"
	conflictRetries     = 3
)

type badgerSubscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BadgerStore keeps subscribers in an embedded key-value store keyed by email.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens the store directory with badger's own logging suppressed.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}

func (s *BadgerStore) Ready() error { return nil }

// Create checks and writes in one transaction. Badger aborts the loser of two
// concurrent writers with ErrConflict; the retry then sees the winner's key.
func (s *BadgerStore) Create(ctx context.Context, sub Subscriber) error {
	data, err := json.Marshal(badgerSubscriber{
		ID:        uuid.NewString(),
		Email:     sub.Email,
		Source:    sub.Source,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal subscriber: %w", err)
	}
	key := []byte(subscriberKeyPrefix + sub.Email)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			switch {
			case err == nil:
				return ErrDuplicate
			case !errors.Is(err, badger.ErrKeyNotFound):
				return fmt.Errorf("get subscriber: %w", err)
			}
			return txn.Set(key, data)
		})
		if !errors.Is(err, badger.ErrConflict) || attempt >= conflictRetries {
			return err
		}
	}
}

func (s *BadgerStore) DeleteByEmail(ctx context.Context, email string) (int, error) {
	key := []byte(subscriberKeyPrefix + email)
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		removed = 1
		return txn.Delete(key)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *BadgerStore) Each(ctx context.Context, pageSize int, fn func([]Subscriber) error) error {
	if pageSize <= 0 {
		pageSize = searchPageSize
	}
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(subscriberKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		batch := make([]Subscriber, 0, pageSize)
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec badgerSubscriber
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			batch = append(batch, Subscriber{ID: rec.ID, Email: rec.Email, Source: rec.Source, CreatedAt: rec.CreatedAt})
			if len(batch) == pageSize {
				if err := fn(batch); err != nil {
					return err
				}
				batch = make([]Subscriber, 0, pageSize)
			}
		}
		if len(batch) > 0 {
			return fn(batch)
		}
		return nil
	})
}

func (s *BadgerStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(subscriberKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
