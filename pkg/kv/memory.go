package kv

import (
	"context"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Memory keeps entries in a plain map guarded by a read-write mutex and
// sorts on demand. It backs tests and contexts with no store directory;
// contents vanish with the process.
type Memory struct {
	opts *Options

	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store. Pass nil for default
// options.
func NewMemory(opts *Options) *Memory {
	return &Memory{
		opts:    opts,
		entries: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[string(m.opts.encode(key))]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	if err := m.opts.check(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[string(m.opts.encode(key))] = slices.Clone(value)
	return nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, string(m.opts.encode(key)))
	return nil
}

// List yields the entry stored at the prefix itself, if any, followed by
// every entry below it, in lexicographic order of the encoded keys. The
// snapshot is taken up front, so mutating the store while iterating is
// safe.
func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := string(m.opts.encode(prefix))
	// A longer key belongs to the listing only across a segment
	// boundary: prefix "ab" must not match "abc".
	bound := p + string(m.opts.sep())

	m.mu.RLock()
	keep := make(map[string][]byte)
	for k, v := range m.entries {
		if p == "" || k == p || strings.HasPrefix(k, bound) {
			keep[k] = slices.Clone(v)
		}
	}
	m.mu.RUnlock()

	ordered := slices.Sorted(maps.Keys(keep))
	return func(yield func(Entry, error) bool) {
		for _, k := range ordered {
			if !yield(Entry{Key: m.opts.decode([]byte(k)), Value: keep[k]}, nil) {
				return
			}
		}
	}
}

func (m *Memory) BatchSet(_ context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := m.opts.check(e.Key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		m.entries[string(m.opts.encode(e.Key))] = slices.Clone(e.Value)
	}
	return nil
}

func (m *Memory) BatchDelete(_ context.Context, keys []Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, string(m.opts.encode(key)))
	}
	return nil
}

func (m *Memory) Close() error { return nil }
