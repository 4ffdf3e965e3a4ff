// Package recstore persists the datakit record model in a kv.Store under
// keys derived by the naming grammar. Records are stored field-wise: one
// store entry per cell, the field name appended to the record key as
// name:type:valuetype:valueformat segments, the value the msgpack-encoded
// value list. Grids and graphs are stored as single msgpack snapshots.
//
// There are no transactions and no durability guarantees beyond what the
// underlying store engine provides.
package recstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/codec"
	"github.com/cordata/datakit/pkg/graph"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/keys"
	"github.com/cordata/datakit/pkg/kv"
	"github.com/cordata/datakit/pkg/record"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no stored entry matches the key.
	ErrNotFound = errors.New("recstore: not found")
)

// Client persists records, grids, and graphs under one application prefix
// and module. It is a thin layer over a kv.Store; methods are safe for
// concurrent use exactly when the underlying store is.
type Client struct {
	store  kv.Store
	prefix string
	module string
}

// New creates a client writing under the given prefix and module segments.
func New(store kv.Store, prefix, module string) *Client {
	return &Client{store: store, prefix: prefix, module: module}
}

// SaveRecord persists a record field-wise under a key derived with the
// given method, replacing any fields stored under the same key first. It
// returns the derived key so callers can load the record back.
func (c *Client) SaveRecord(ctx context.Context, method keys.Method, r *record.Record) (keys.Key, error) {
	k, err := keys.ForRecord(c.prefix, c.module, keys.StoreHash, method, r)
	if err != nil {
		return keys.Key{}, err
	}
	base := kv.FromString(k.String())

	// Replace, not merge: stale fields from a previous save must not
	// survive a record that no longer carries them.
	if err := c.deletePrefix(ctx, base); err != nil {
		return keys.Key{}, err
	}

	var entries []kv.Entry
	for cl := range r.Items() {
		val, err := msgpack.Marshal(cl.Values())
		if err != nil {
			return keys.Key{}, fmt.Errorf("recstore: encode %q: %w", cl.Name(), err)
		}
		entries = append(entries, kv.Entry{
			Key:   base.With(fieldSegments(cl)...),
			Value: val,
		})
	}
	if err := c.store.BatchSet(ctx, entries); err != nil {
		return keys.Key{}, fmt.Errorf("recstore: save %q: %w", r.Name(), err)
	}
	return k, nil
}

// fieldSegments returns the four field-name segments for one cell,
// matching keys.FieldName.
func fieldSegments(cl *cell.Cell) []string {
	return kv.FromString(keys.FieldName(cl))
}

// LoadRecord lists the fields stored under a record key and rebuilds the
// record: each field name yields a skeleton cell, each value decodes into
// the cell's value list. Fields come back in store order, which is
// lexicographic by field name.
func (c *Client) LoadRecord(ctx context.Context, k keys.Key) (*record.Record, error) {
	base := kv.FromString(k.String())
	out := record.New(k.Name)

	found := false
	for entry, err := range c.store.List(ctx, base) {
		if err != nil {
			return nil, fmt.Errorf("recstore: load %q: %w", k.Name, err)
		}
		if len(entry.Key) != len(base)+4 {
			continue
		}
		field := kv.Key(entry.Key[len(base):]).String()
		cl, err := keys.ParseField(field)
		if err != nil {
			return nil, fmt.Errorf("recstore: load %q: %w", k.Name, err)
		}
		var values []string
		if err := msgpack.Unmarshal(entry.Value, &values); err != nil {
			return nil, fmt.Errorf("recstore: decode %q: %w", cl.Name(), err)
		}
		for _, v := range values {
			cl.Add(v)
		}
		cl.ClearFeature(cell.FeatureUpdated)
		out.Set(cl)
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k.String())
	}
	return out, nil
}

// DeleteRecord removes every field stored under a record key.
func (c *Client) DeleteRecord(ctx context.Context, k keys.Key) error {
	return c.deletePrefix(ctx, kv.FromString(k.String()))
}

func (c *Client) deletePrefix(ctx context.Context, base kv.Key) error {
	var stale []kv.Key
	for entry, err := range c.store.List(ctx, base) {
		if err != nil {
			return fmt.Errorf("recstore: list %s: %w", base, err)
		}
		stale = append(stale, entry.Key)
	}
	if len(stale) == 0 {
		return nil
	}
	if err := c.store.BatchDelete(ctx, stale); err != nil {
		return fmt.Errorf("recstore: delete %s: %w", base, err)
	}
	return nil
}

// SaveGrid persists a grid as one msgpack snapshot under a key derived
// with the given method.
func (c *Client) SaveGrid(ctx context.Context, method keys.Method, g *grid.Grid) (keys.Key, error) {
	k, err := keys.ForGrid(c.prefix, c.module, keys.StoreString, method, g)
	if err != nil {
		return keys.Key{}, err
	}
	blob, err := codec.MarshalGrid(g, codec.Msgpack)
	if err != nil {
		return keys.Key{}, err
	}
	if err := c.store.Set(ctx, kv.FromString(k.String()), blob); err != nil {
		return keys.Key{}, fmt.Errorf("recstore: save grid %q: %w", g.Name(), err)
	}
	return k, nil
}

// LoadGrid fetches and decodes a grid snapshot.
func (c *Client) LoadGrid(ctx context.Context, k keys.Key) (*grid.Grid, error) {
	blob, err := c.store.Get(ctx, kv.FromString(k.String()))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k.String())
		}
		return nil, fmt.Errorf("recstore: load grid %q: %w", k.Name, err)
	}
	return codec.UnmarshalGrid(k.Name, blob, codec.Msgpack)
}

// SaveGraph persists a graph as one msgpack snapshot under a key derived
// with the given method.
func (c *Client) SaveGraph(ctx context.Context, method keys.Method, g *graph.Graph) (keys.Key, error) {
	k, err := keys.ForGraph(c.prefix, c.module, keys.StoreString, method, g)
	if err != nil {
		return keys.Key{}, err
	}
	blob, err := codec.MarshalGraph(g, codec.Msgpack)
	if err != nil {
		return keys.Key{}, err
	}
	if err := c.store.Set(ctx, kv.FromString(k.String()), blob); err != nil {
		return keys.Key{}, fmt.Errorf("recstore: save graph %q: %w", g.Name(), err)
	}
	return k, nil
}

// LoadGraph fetches and decodes a graph snapshot.
func (c *Client) LoadGraph(ctx context.Context, k keys.Key) (*graph.Graph, error) {
	blob, err := c.store.Get(ctx, kv.FromString(k.String()))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k.String())
		}
		return nil, fmt.Errorf("recstore: load graph %q: %w", k.Name, err)
	}
	return codec.UnmarshalGraph(blob, codec.Msgpack)
}

// Delete removes the single entry stored under a grid or graph key.
func (c *Client) Delete(ctx context.Context, k keys.Key) error {
	return c.store.Delete(ctx, kv.FromString(k.String()))
}

// Keys lists the keys stored under the client's prefix and module,
// parsed back into key values. Field sub-entries of record keys are
// folded into one key each.
func (c *Client) Keys(ctx context.Context) ([]keys.Key, error) {
	var out []keys.Key
	seen := make(map[string]bool)
	for entry, err := range c.store.List(ctx, kv.Key{c.prefix, c.module}) {
		if err != nil {
			return nil, fmt.Errorf("recstore: list keys: %w", err)
		}
		k, err := parseEntryKey(entry.Key)
		if err != nil {
			continue
		}
		s := k.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, *k)
		}
	}
	return out, nil
}

// parseEntryKey parses a stored key, trying the full segment list first
// and then backing off the four field segments a record entry carries.
func parseEntryKey(k kv.Key) (*keys.Key, error) {
	if parsed, err := keys.Parse(k.String()); err == nil {
		return parsed, nil
	}
	if len(k) > 4 {
		if parsed, err := keys.Parse(kv.Key(k[:len(k)-4]).String()); err == nil {
			return parsed, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", keys.ErrMalformedKey, k)
}
