// Package badgerstore implements store.Store on top of github.com/dgraph-io/badger/v2.
// Badger iterates keys in byte-lexicographic order, which is exactly the
// ordering primitive the tree engine's "closest-or-next" lookup and ancestor
// walk need.
package badgerstore

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/dapperlabs/hubt/hash"
	"github.com/dapperlabs/hubt/store"
)

// Store is a store.Store backed by a badger.DB. A Store does not own the
// DB's lifecycle; callers open and close the *badger.DB themselves, the same
// way storage/badger/collections.go takes a shared *badger.DB rather than
// opening its own.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger to the Store. No Store operation writes to
// it; failures, including decode failures on malformed entries, are returned
// to the caller as wrapped errors.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New wraps db as a store.Store.
func New(db *badger.DB, opts ...Option) *Store {
	s := &Store{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) decodeItem(item *badger.Item) (store.Entry, error) {
	k, err := store.DecodeNodeKey(item.KeyCopy(nil))
	if err != nil {
		return store.Entry{}, err
	}
	var h hash.Hash
	err = item.Value(func(val []byte) error {
		decoded, derr := decodeValue(val)
		if derr != nil {
			return derr
		}
		h = decoded
		return nil
	})
	if err != nil {
		return store.Entry{}, err
	}
	return store.Entry{Key: k, Hash: h}, nil
}

func (s *Store) First() (store.Entry, bool, error) {
	var (
		entry store.Entry
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{nodeTag}
		it.Seek(prefix)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		e, err := s.decodeItem(it.Item())
		if err != nil {
			return err
		}
		entry = e
		found = true
		return nil
	})
	if err != nil {
		return store.Entry{}, false, fmt.Errorf("hubt/store/badgerstore: first: %w", err)
	}
	return entry, found, nil
}

func (s *Store) Lookup(k store.NodeKey) (hash.Hash, bool, error) {
	var (
		h     hash.Hash
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k.Encode())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, derr := decodeValue(val)
			if derr != nil {
				return derr
			}
			h = decoded
			found = true
			return nil
		})
	})
	if err != nil {
		return hash.Hash{}, false, fmt.Errorf("hubt/store/badgerstore: lookup: %w", err)
	}
	return h, found, nil
}

// Next returns the entry with the smallest key strictly greater than k.
func (s *Store) Next(k store.NodeKey) (store.Entry, bool, error) {
	var (
		entry store.Entry
		found bool
	)
	target := k.Encode()
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{nodeTag}
		for it.Seek(target); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if bytes.Equal(item.Key(), target) {
				continue
			}
			e, err := s.decodeItem(item)
			if err != nil {
				return err
			}
			entry = e
			found = true
			return nil
		}
		return nil
	})
	if err != nil {
		return store.Entry{}, false, fmt.Errorf("hubt/store/badgerstore: next: %w", err)
	}
	return entry, found, nil
}

// Prev returns the entry with the largest key strictly less than k.
func (s *Store) Prev(k store.NodeKey) (store.Entry, bool, error) {
	var (
		entry store.Entry
		found bool
	)
	target := k.Encode()
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte{nodeTag}
		// In reverse mode, Seek(target) positions at the largest key <= target
		// (badger appends 0xFF internally for reverse seeks on a bare key, so
		// we seek to target itself, which already is our exact boundary).
		for it.Seek(target); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if bytes.Compare(item.Key(), target) >= 0 {
				continue
			}
			e, err := s.decodeItem(item)
			if err != nil {
				return err
			}
			entry = e
			found = true
			return nil
		}
		return nil
	})
	if err != nil {
		return store.Entry{}, false, fmt.Errorf("hubt/store/badgerstore: prev: %w", err)
	}
	return entry, found, nil
}

func (s *Store) Insert(k store.NodeKey, h hash.Hash) error {
	val, err := encodeValue(h)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k.Encode(), val)
	})
	if err != nil {
		return fmt.Errorf("hubt/store/badgerstore: insert: %w", err)
	}
	return nil
}

func (s *Store) Delete(k store.NodeKey) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(k.Encode())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("hubt/store/badgerstore: delete: %w", err)
	}
	return nil
}

// nodeTag mirrors store.codeNode; duplicated here (rather than exported)
// because the store package intentionally keeps its wire format private and
// only exposes it through Encode/DecodeNodeKey. We derive it from an encoded
// zero key instead of hardcoding the literal, so the two packages can never
// drift out of sync.
var nodeTag = store.NodeKey{}.Encode()[0]
