package keys

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/graph"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

// RandomID generates a fresh unique identity token.
func RandomID() string {
	return uuid.NewString()
}

// PrimaryID returns the value of the record's primary-flagged item. When no
// item is flagged, or the flagged item has no value, it falls back to
// RandomID.
func PrimaryID(r *record.Record) string {
	if pc, ok := r.Primary(); ok && pc.Assigned() {
		return pc.String()
	}
	return RandomID()
}

// ForCell derives a key for a single cell. The cell's name, type,
// multi-value state, and secret flag populate the Item-specific segments.
func ForCell(prefix, module string, st StoreType, method Method, c *cell.Cell) (Key, error) {
	k := Key{
		Prefix:      prefix,
		Module:      module,
		StoreType:   st,
		DataObject:  ObjectItem,
		Method:      method,
		Name:        c.Name(),
		DataType:    c.Type(),
		ValueType:   valueTypeOf(c),
		ValueFormat: valueFormatOf(c),
	}
	switch method {
	case MethodName:
	case MethodHash:
		h, err := c.ContentHash()
		if err != nil {
			return Key{}, fmt.Errorf("keys: cell %q: %w", c.Name(), err)
		}
		k.ID = h
	case MethodRandom, MethodPrimary:
		// A cell has no primary item; Primary degrades to Random.
		k.ID = RandomID()
	default:
		return Key{}, fmt.Errorf("%w: unknown method %q", ErrMalformedKey, method)
	}
	return k, nil
}

// ForRecord derives a key for a record.
func ForRecord(prefix, module string, st StoreType, method Method, r *record.Record) (Key, error) {
	k := Key{
		Prefix:     prefix,
		Module:     module,
		StoreType:  st,
		DataObject: ObjectDoc,
		Method:     method,
		Name:       r.Name(),
	}
	switch method {
	case MethodName:
	case MethodHash:
		h, err := r.ContentHash(false)
		if err != nil {
			return Key{}, fmt.Errorf("keys: record %q: %w", r.Name(), err)
		}
		k.ID = h
	case MethodRandom:
		k.ID = RandomID()
	case MethodPrimary:
		k.ID = PrimaryID(r)
	default:
		return Key{}, fmt.Errorf("%w: unknown method %q", ErrMalformedKey, method)
	}
	return k, nil
}

// ForGrid derives a key for a grid, using its schema record for hash and
// primary identity.
func ForGrid(prefix, module string, st StoreType, method Method, g *grid.Grid) (Key, error) {
	k := Key{
		Prefix:     prefix,
		Module:     module,
		StoreType:  st,
		DataObject: ObjectGrid,
		Method:     method,
		Name:       g.Name(),
	}
	switch method {
	case MethodName:
	case MethodHash:
		h, err := g.SchemaHash()
		if err != nil {
			return Key{}, fmt.Errorf("keys: grid %q: %w", g.Name(), err)
		}
		k.ID = h
	case MethodRandom, MethodPrimary:
		k.ID = RandomID()
	default:
		return Key{}, fmt.Errorf("%w: unknown method %q", ErrMalformedKey, method)
	}
	return k, nil
}

// ForGraph derives a key for a graph. Hash identity digests the graph's
// name, data model, and structure.
func ForGraph(prefix, module string, st StoreType, method Method, g *graph.Graph) (Key, error) {
	k := Key{
		Prefix:     prefix,
		Module:     module,
		StoreType:  st,
		DataObject: ObjectGraph,
		Method:     method,
		Name:       g.Name(),
	}
	switch method {
	case MethodName:
	case MethodHash:
		h, err := g.ContentHash()
		if err != nil {
			return Key{}, fmt.Errorf("keys: graph %q: %w", g.Name(), err)
		}
		k.ID = h
	case MethodRandom, MethodPrimary:
		k.ID = RandomID()
	default:
		return Key{}, fmt.Errorf("%w: unknown method %q", ErrMalformedKey, method)
	}
	return k, nil
}
