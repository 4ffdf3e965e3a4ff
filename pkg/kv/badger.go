package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger persists entries in a BadgerDB instance. One store owns the whole
// directory; derived keys for every data object share the key space and
// stay disjoint through their prefix and module segments.
type Badger struct {
	db   *badger.DB
	opts *Options
}

// BadgerOptions configures a Badger store.
type BadgerOptions struct {
	// Options configures key encoding. Nil means defaults.
	Options *Options

	// Dir is the directory for the database files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs the database entirely in memory. Dir is ignored.
	InMemory bool

	// Logger overrides badger's logger. When nil, badger logs errors only.
	Logger badger.Logger
}

// NewBadger opens or creates a BadgerDB store.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	var dbOpts badger.Options
	if bopts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if bopts.Dir == "" {
			return nil, errors.New("kv: badger store needs a directory or in-memory mode")
		}
		dbOpts = badger.DefaultOptions(bopts.Dir)
	}
	if bopts.Logger != nil {
		dbOpts = dbOpts.WithLogger(bopts.Logger)
	} else {
		// Badger chatters at info level on every open and compaction.
		dbOpts = dbOpts.WithLoggingLevel(badger.ERROR)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("kv: open badger: %w", err)
	}
	return &Badger{db: db, opts: bopts.Options}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.opts.encode(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (b *Badger) Set(_ context.Context, key Key, value []byte) error {
	if err := b.opts.check(key); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.opts.encode(key), value)
	})
}

// Delete removes a key. Deleting an absent key is a no-op.
func (b *Badger) Delete(_ context.Context, key Key) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.opts.encode(key))
	})
}

// List yields the entry stored at the prefix itself, if any, followed by
// every entry below it, in lexicographic order of the encoded keys.
func (b *Badger) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := b.opts.encode(prefix)
	sep := b.opts.sep()

	return func(yield func(Entry, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = p
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				item := it.Item()
				k := item.KeyCopy(nil)
				// A longer key belongs to the listing only across a
				// segment boundary: prefix "ab" must not match "abc".
				if len(p) > 0 && len(k) > len(p) && k[len(p)] != sep {
					continue
				}
				v, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				if !yield(Entry{Key: b.opts.decode(k), Value: v}, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

func (b *Badger) BatchSet(_ context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := b.opts.check(e.Key); err != nil {
			return err
		}
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, e := range entries {
		if err := wb.Set(b.opts.encode(e.Key), e.Value); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) BatchDelete(_ context.Context, keys []Key) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(b.opts.encode(key)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) Close() error {
	return b.db.Close()
}
