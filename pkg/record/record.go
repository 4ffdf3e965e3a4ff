// Package record provides the ordered, name-unique cell collection at the
// heart of the datakit data model. A record owns its cells in insertion
// order, may nest child records under named one-to-many relations, and can
// derive a deterministic content hash from its ordered content.
package record

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/cordata/datakit/pkg/cell"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when an item lookup by name fails.
	ErrNotFound = errors.New("record: item not found")
)

// Record is an ordered collection of named cells plus nested child records.
//
// Item names are unique: setting a cell whose name already exists overwrites
// the previous cell in place, preserving its position. Iteration order is
// insertion order; the content hash depends on it.
//
// A Record is not safe for concurrent mutation.
type Record struct {
	name     string
	title    string
	action   string
	order    []string
	items    map[string]*cell.Cell
	children map[string][]*Record
	features map[string]string
	props    map[string]any
}

// New creates an empty record with the given name.
func New(name string) *Record {
	return &Record{
		name:  name,
		items: make(map[string]*cell.Cell),
	}
}

// Name returns the record name.
func (r *Record) Name() string { return r.name }

// Title returns the display label, falling back to the name when unset.
func (r *Record) Title() string {
	if r.title == "" {
		return r.name
	}
	return r.title
}

// SetTitle sets the display label.
func (r *Record) SetTitle(title string) { r.title = title }

// Action returns the free-form action tag (e.g. "add", "update", "delete").
func (r *Record) Action() string { return r.action }

// SetAction sets the action tag.
func (r *Record) SetAction(action string) { r.action = action }

// Set adds a cell, or overwrites the cell with the same name in place.
func (r *Record) Set(c *cell.Cell) {
	if _, ok := r.items[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.items[c.Name()] = c
}

// Item returns the cell with the given name, or ErrNotFound.
func (r *Record) Item(name string) (*cell.Cell, error) {
	c, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in record %q", ErrNotFound, name, r.name)
	}
	return c, nil
}

// Has reports whether an item with the given name exists.
func (r *Record) Has(name string) bool {
	_, ok := r.items[name]
	return ok
}

// Remove deletes the item with the given name, reporting whether it existed.
func (r *Record) Remove(name string) bool {
	if _, ok := r.items[name]; !ok {
		return false
	}
	delete(r.items, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of items.
func (r *Record) Len() int { return len(r.order) }

// Names returns the item names in insertion order.
func (r *Record) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Items iterates over the cells in insertion order.
func (r *Record) Items() iter.Seq[*cell.Cell] {
	return func(yield func(*cell.Cell) bool) {
		for _, name := range r.order {
			if !yield(r.items[name]) {
				return
			}
		}
	}
}

// Primary returns the first item flagged as the primary key, in insertion
// order, or false when none is flagged.
func (r *Record) Primary() (*cell.Cell, bool) {
	for _, name := range r.order {
		if r.items[name].Flag(cell.FeaturePrimary) {
			return r.items[name], true
		}
	}
	return nil, false
}

// --- child relations ---

// AddChild appends a child record under the given relation name.
func (r *Record) AddChild(relation string, child *Record) {
	if r.children == nil {
		r.children = make(map[string][]*Record)
	}
	r.children[relation] = append(r.children[relation], child)
}

// Children returns the child records under the given relation.
func (r *Record) Children(relation string) []*Record {
	return r.children[relation]
}

// Relations returns the relation names in sorted order. Ordering across
// relation names is not semantically significant; sorting keeps encoders
// deterministic.
func (r *Record) Relations() []string {
	if len(r.children) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.children))
	for rel := range r.children {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// --- features and properties ---

// Feature returns a feature value, or "" when unset.
func (r *Record) Feature(name string) string { return r.features[name] }

// SetFeature sets a feature value.
func (r *Record) SetFeature(name, value string) {
	if r.features == nil {
		r.features = make(map[string]string)
	}
	r.features[name] = value
}

// Flag reports whether a feature is set to the canonical true value.
func (r *Record) Flag(name string) bool { return r.features[name] == cell.FlagTrue }

// SetFlag sets a feature to the canonical true value.
func (r *Record) SetFlag(name string) { r.SetFeature(name, cell.FlagTrue) }

// Features returns a copy of the feature map.
func (r *Record) Features() map[string]string {
	if len(r.features) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.features))
	for k, v := range r.features {
		out[k] = v
	}
	return out
}

// Property returns a transient property. Properties are excluded from
// hashing, equality, and serialization.
func (r *Record) Property(name string) (any, bool) {
	v, ok := r.props[name]
	return v, ok
}

// SetProperty sets a transient property.
func (r *Record) SetProperty(name string, value any) {
	if r.props == nil {
		r.props = make(map[string]any)
	}
	r.props[name] = value
}

// --- validation and comparison ---

// Validate checks every item and returns the aggregated violations. The
// record is valid when the slice is empty: violations are collected, not
// raised, so callers can batch-report all failing items at once.
func (r *Record) Validate() []cell.Violation {
	var out []cell.Violation
	for _, name := range r.order {
		out = append(out, r.items[name].Validate()...)
	}
	return out
}

// ValuesEqual compares item values name by name against another record. It
// returns whether all shared items agree, together with the names of items
// whose values differ or that exist on only one side, in this record's
// insertion order followed by items unique to other.
func (r *Record) ValuesEqual(other *Record) (bool, []string) {
	var changed []string
	for _, name := range r.order {
		oc, ok := other.items[name]
		if !ok {
			changed = append(changed, name)
			continue
		}
		if r.items[name].Collapsed() != oc.Collapsed() {
			changed = append(changed, name)
		}
	}
	for _, name := range other.order {
		if _, ok := r.items[name]; !ok {
			changed = append(changed, name)
		}
	}
	return len(changed) == 0, changed
}

// Clone returns a deep copy of the record: items and child records are
// cloned, feature maps are copied entry-by-entry, properties are carried
// over as-is.
func (r *Record) Clone() *Record {
	cp := New(r.name)
	cp.title = r.title
	cp.action = r.action
	for _, name := range r.order {
		cp.Set(r.items[name].Clone())
	}
	for rel, kids := range r.children {
		for _, kid := range kids {
			cp.AddChild(rel, kid.Clone())
		}
	}
	if len(r.features) > 0 {
		cp.features = make(map[string]string, len(r.features))
		for k, v := range r.features {
			cp.features[k] = v
		}
	}
	if len(r.props) > 0 {
		cp.props = make(map[string]any, len(r.props))
		for k, v := range r.props {
			cp.props[k] = v
		}
	}
	return cp
}
