// Package keys implements the colon-delimited naming grammar that derives
// stable store keys and hash-field names from the datakit record model.
// Encoding is a pure function of an immutable Key value; parsing rebuilds
// enough metadata to produce a skeleton cell or record from a key string
// alone. Encode-then-parse recovers module, store type, data object,
// method, name, and id exactly; malformed input is rejected, not repaired.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/record"
)

// Sentinel errors.
var (
	// ErrMalformedKey is returned when a key string has too few segments
	// or an unknown enum segment.
	ErrMalformedKey = errors.New("keys: malformed key")
)

// Separator delimits key and field-name segments.
const Separator = ":"

// DataObject names the kind of payload a key addresses.
type DataObject string

// Data objects.
const (
	ObjectItem  DataObject = "Item"
	ObjectDoc   DataObject = "Doc"
	ObjectGrid  DataObject = "Grid"
	ObjectGraph DataObject = "Graph"
)

// Method selects how a key's identity segment is derived.
type Method string

// Identity methods.
const (
	// MethodName keys carry no id segment: the payload name is the
	// identity.
	MethodName Method = "Name"

	// MethodHash keys use the payload's content hash as id.
	MethodHash Method = "Hash"

	// MethodRandom keys use a freshly generated unique token as id.
	MethodRandom Method = "Random"

	// MethodPrimary keys use the value of the record's primary-flagged
	// item, falling back to a random token when none is flagged.
	MethodPrimary Method = "Primary"
)

// StoreType names the store-side value type the key addresses.
type StoreType string

// Store value types.
const (
	StoreString    StoreType = "String"
	StoreHash      StoreType = "Hash"
	StoreList      StoreType = "List"
	StoreSet       StoreType = "Set"
	StoreSortedSet StoreType = "SortedSet"
)

// ValueType distinguishes single- from multi-valued cells in field names.
type ValueType string

// Value types.
const (
	ValueSingle ValueType = "Single"
	ValueMulti  ValueType = "Multi"
)

// ValueFormat distinguishes plain from secret cell values in field names.
type ValueFormat string

// Value formats.
const (
	FormatDefault ValueFormat = "Default"
	FormatSecret  ValueFormat = "Secret"
)

// Key is the decomposed form of a store key. It is a plain value: String
// recomputes the encoded form on every call, so there is no cached string
// to invalidate.
type Key struct {
	// Prefix is the application prefix, the first segment of every key.
	Prefix string

	// Module is the application module name.
	Module string

	// StoreType is the store-side value type.
	StoreType StoreType

	// DataObject is the addressed payload kind.
	DataObject DataObject

	// Method is the identity derivation method.
	Method Method

	// Name is the payload name.
	Name string

	// ID is the derived identity. Empty exactly when Method is MethodName.
	ID string

	// DataType, ValueType, and ValueFormat describe a single cell. They
	// are encoded only for Item keys.
	DataType    cell.Type
	ValueType   ValueType
	ValueFormat ValueFormat
}

// String encodes the key. Segment order is fixed: prefix, module, store
// type, data object, method, name, then the id when the method produced
// one, then the (data type, value type, value format) triple for Item keys.
func (k Key) String() string {
	segs := []string{k.Prefix, k.Module, string(k.StoreType),
		string(k.DataObject), string(k.Method), k.Name}
	if k.ID != "" {
		segs = append(segs, k.ID)
	}
	if k.DataObject == ObjectItem {
		segs = append(segs, string(k.DataType), string(k.ValueType), string(k.ValueFormat))
	}
	return strings.Join(segs, Separator)
}

// FieldName encodes the field name used for a cell inside a hash-type
// store entry: name, data type, value type, value format.
func FieldName(c *cell.Cell) string {
	return strings.Join([]string{
		c.Name(),
		string(c.Type()),
		string(valueTypeOf(c)),
		string(valueFormatOf(c)),
	}, Separator)
}

func valueTypeOf(c *cell.Cell) ValueType {
	if c.MultiValue() || c.Flag(cell.FeatureMultiValue) {
		return ValueMulti
	}
	return ValueSingle
}

func valueFormatOf(c *cell.Cell) ValueFormat {
	if c.Flag(cell.FeatureSecret) {
		return FormatSecret
	}
	return FormatDefault
}

// ParseField decodes a field name into a skeleton cell: name and type are
// restored, multi-value and secret flags are set from the trailing
// segments, values stay unpopulated.
func ParseField(s string) (*cell.Cell, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: field %q has %d segments, want 4", ErrMalformedKey, s, len(parts))
	}
	return skeletonCell(parts[0], parts[1], parts[2], parts[3]), nil
}

func skeletonCell(name, dataType, valueType, valueFormat string) *cell.Cell {
	c := cell.NewTyped(name, cell.ParseType(dataType))
	if ValueType(valueType) == ValueMulti {
		c.SetFlag(cell.FeatureMultiValue)
	}
	if ValueFormat(valueFormat) == FormatSecret {
		c.SetFlag(cell.FeatureSecret)
	}
	return c
}

// Parse decodes a key string. Keys with four or fewer separators are
// rejected. The method segment decides whether an id segment is consumed;
// Item keys then consume the trailing cell-metadata triple.
func Parse(s string) (*Key, error) {
	if strings.Count(s, Separator) <= 4 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	parts := strings.Split(s, Separator)

	k := &Key{
		Prefix:     parts[0],
		Module:     parts[1],
		StoreType:  StoreType(parts[2]),
		DataObject: DataObject(parts[3]),
		Method:     Method(parts[4]),
		Name:       parts[5],
	}
	switch k.DataObject {
	case ObjectItem, ObjectDoc, ObjectGrid, ObjectGraph:
	default:
		return nil, fmt.Errorf("%w: unknown data object %q", ErrMalformedKey, parts[3])
	}
	switch k.Method {
	case MethodName, MethodHash, MethodRandom, MethodPrimary:
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrMalformedKey, parts[4])
	}

	rest := parts[6:]
	if k.Method != MethodName {
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: method %s requires an id segment", ErrMalformedKey, k.Method)
		}
		k.ID = rest[0]
		rest = rest[1:]
	}
	if k.DataObject == ObjectItem {
		if len(rest) < 3 {
			return nil, fmt.Errorf("%w: item key %q lacks the type triple", ErrMalformedKey, s)
		}
		k.DataType = cell.ParseType(rest[0])
		k.ValueType = ValueType(rest[1])
		k.ValueFormat = ValueFormat(rest[2])
		rest = rest[3:]
	}
	// Reject, don't repair: a key with leftover segments is not a key
	// this grammar produced.
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %q has %d trailing segments", ErrMalformedKey, s, len(rest))
	}
	return k, nil
}

// SkeletonCell rebuilds the cell skeleton described by an Item key.
func (k Key) SkeletonCell() (*cell.Cell, error) {
	if k.DataObject != ObjectItem {
		return nil, fmt.Errorf("%w: %s key has no cell skeleton", ErrMalformedKey, k.DataObject)
	}
	return skeletonCell(k.Name, string(k.DataType), string(k.ValueType), string(k.ValueFormat)), nil
}

// SkeletonRecord rebuilds a name-only record placeholder for Doc, Grid, and
// Graph keys. Values stay unpopulated; the caller fetches the stored
// payload separately.
func (k Key) SkeletonRecord() *record.Record {
	return record.New(k.Name)
}
