// Package kv provides the key-value store boundary that datakit's naming
// grammar targets. Keys are hierarchical string-segment paths encoded with
// a configurable separator (default ':'): the encoded form of a kv.Key is
// exactly the colon-delimited string the keys package derives from a
// record, cell, grid, or graph.
//
// The package includes a BadgerDB-backed implementation for production use
// and an in-memory implementation for testing. Neither offers transactions
// or durability guarantees beyond the engine's own.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")

	// ErrInvalidKey is returned by writes when a key segment contains the
	// separator byte. Keys derived by the keys package never trip this;
	// it catches hand-built keys that would corrupt the encoding.
	ErrInvalidKey = errors.New("kv: key segment contains separator")
)

// Key is a hierarchical path represented as a slice of string segments.
// For example, Key{"app", "core", "Hash", "Doc", "Name", "user"} encodes to
// "app:core:Hash:Doc:Name:user" with the default separator.
//
// Segments must not contain the configured separator character; hash- and
// uuid-derived segments produced by the keys package never do.
type Key []string

// FromString splits an encoded key string into segments using the default
// separator. It is the bridge from the naming grammar's string form back to
// a store key.
func FromString(s string) Key {
	if s == "" {
		return nil
	}
	return Key(strings.Split(s, string(DefaultSeparator)))
}

// With returns a new key with the given segments appended. The receiver is
// not modified; a field name appended to an entry key addresses one cell
// within a hash-type entry.
func (k Key) With(segs ...string) Key {
	out := make(Key, 0, len(k)+len(segs))
	out = append(out, k...)
	out = append(out, segs...)
	return out
}

// String returns the key as a human-readable string using ':' as separator.
// This is for display/debug only; use Options.encode for storage encoding.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair returned by List and used by BatchSet.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface for a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given prefix.
	// The iteration order is lexicographic by encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet atomically stores multiple key-value pairs.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete atomically removes multiple keys.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases any resources held by the store.
	Close() error
}

// DefaultSeparator is the default separator byte used to encode key
// segments. It matches the naming grammar's delimiter.
const DefaultSeparator byte = ':'

// Options configures store behavior.
type Options struct {
	// Separator is the byte used to join key segments when encoding to storage.
	// Default is ':' if zero.
	Separator byte
}

// sep returns the effective separator.
func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// check rejects keys with a segment that embeds the separator byte.
func (o *Options) check(k Key) error {
	s := o.sep()
	for _, seg := range k {
		if strings.IndexByte(seg, s) >= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidKey, seg)
		}
	}
	return nil
}

// encode converts a Key to its byte representation using the separator.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	n := 0
	for i, seg := range k {
		if i > 0 {
			n++ // separator
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = s
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decode converts a byte representation back to a Key using the separator.
func (o *Options) decode(b []byte) Key {
	s := o.sep()
	parts := splitBytes(b, s)
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = string(p)
	}
	return k
}

// splitBytes splits b by separator byte, similar to bytes.Split but returns
// [][]byte without importing bytes package for this single use.
func splitBytes(b []byte, sep byte) [][]byte {
	n := 1
	for _, c := range b {
		if c == sep {
			n++
		}
	}
	parts := make([][]byte, 0, n)
	start := 0
	for i, c := range b {
		if c == sep {
			parts = append(parts, b[start:i])
			start = i + 1
		}
	}
	parts = append(parts, b[start:])
	return parts
}
