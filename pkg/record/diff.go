package record

import (
	"slices"
	"strings"

	"github.com/cordata/datakit/pkg/cell"
)

// DiffStatus classifies one item in a diff result.
type DiffStatus string

// Diff statuses.
const (
	StatusAdded   DiffStatus = "Added"
	StatusDeleted DiffStatus = "Deleted"
	StatusUpdated DiffStatus = "Updated"
)

// DiffEntry describes how one item differs between two records.
type DiffEntry struct {
	// Name is the item name.
	Name string

	// Status is Added (only in the second record), Deleted (only in the
	// first), or Updated (present in both with differences).
	Status DiffStatus

	// Description lists the aspects that changed for Updated entries.
	Description string
}

// DiffResult holds the outcome of comparing two records. Entries appear in
// the first record's insertion order (shared and deleted items) followed by
// the second record's order (added items).
type DiffResult struct {
	left    *Record
	right   *Record
	entries []DiffEntry
}

// Diff compares two records item by item. Items present in both are checked
// for changes to type, title, display size, sort order, range, and value
// (plus all remaining features when includeFeatures is set); differing
// items are reported as Updated. Items only in a are Deleted, items only in
// b are Added. Identical shared items produce no entry.
func Diff(a, b *Record, includeFeatures bool) *DiffResult {
	res := &DiffResult{left: a, right: b}
	for ca := range a.Items() {
		cb, err := b.Item(ca.Name())
		if err != nil {
			res.entries = append(res.entries, DiffEntry{Name: ca.Name(), Status: StatusDeleted})
			continue
		}
		if changed := compareCells(ca, cb, includeFeatures); len(changed) > 0 {
			res.entries = append(res.entries, DiffEntry{
				Name:        ca.Name(),
				Status:      StatusUpdated,
				Description: strings.Join(changed, ", "),
			})
		}
	}
	for cb := range b.Items() {
		if !a.Has(cb.Name()) {
			res.entries = append(res.entries, DiffEntry{Name: cb.Name(), Status: StatusAdded})
		}
	}
	return res
}

// Entries returns the diff entries.
func (r *DiffResult) Entries() []DiffEntry {
	return slices.Clone(r.entries)
}

// Empty reports whether the two records had no differences.
func (r *DiffResult) Empty() bool { return len(r.entries) == 0 }

// Record returns a sub-record holding clones of the items with the given
// status. Added and Updated items are drawn from the second record (the new
// state), Deleted items from the first.
func (r *DiffResult) Record(status DiffStatus) *Record {
	src := r.right
	if status == StatusDeleted {
		src = r.left
	}
	out := New(src.Name())
	out.SetAction(strings.ToLower(string(status)))
	for _, e := range r.entries {
		if e.Status != status {
			continue
		}
		if c, err := src.Item(e.Name); err == nil {
			out.Set(c.Clone())
		}
	}
	return out
}

// compareCells returns the names of the aspects that differ between two
// cells sharing a name.
func compareCells(a, b *cell.Cell, includeFeatures bool) []string {
	var changed []string
	if a.Type() != b.Type() {
		changed = append(changed, "type")
	}
	if a.Title() != b.Title() {
		changed = append(changed, "title")
	}
	if a.Feature(cell.FeatureDisplaySize) != b.Feature(cell.FeatureDisplaySize) {
		changed = append(changed, "display size")
	}
	if a.Feature(cell.FeatureSortOrder) != b.Feature(cell.FeatureSortOrder) {
		changed = append(changed, "sort order")
	}
	if !rangeEqual(a.Range(), b.Range()) {
		changed = append(changed, "range")
	}
	if a.Collapsed() != b.Collapsed() {
		changed = append(changed, "value")
	}
	if includeFeatures && !featuresEqual(a, b) {
		changed = append(changed, "features")
	}
	return changed
}

func rangeEqual(a, b *cell.Range) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	}
	return slices.Equal(a.Enum, b.Enum) &&
		a.Min == b.Min && a.Max == b.Max &&
		a.MinExclusive == b.MinExclusive && a.MaxExclusive == b.MaxExclusive
}

// featuresEqual compares feature maps, ignoring display size and sort order
// which are reported separately.
func featuresEqual(a, b *cell.Cell) bool {
	fa, fb := a.Features(), b.Features()
	skip := map[string]bool{cell.FeatureDisplaySize: true, cell.FeatureSortOrder: true}
	count := func(m map[string]string) int {
		n := 0
		for k := range m {
			if !skip[k] {
				n++
			}
		}
		return n
	}
	if count(fa) != count(fb) {
		return false
	}
	for k, v := range fa {
		if skip[k] {
			continue
		}
		if fb[k] != v {
			return false
		}
	}
	return true
}
