// Package grid provides the tabular view of the datakit record model: a
// column schema (a record whose cell values are irrelevant and cleared)
// paired with row-oriented data conforming to it. Rows are snapshots, not
// live references; mutating a retrieved row does not touch the grid until
// it is written back.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/record"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a row offset is out of range or a column
	// name is unknown.
	ErrNotFound = errors.New("grid: not found")

	// ErrSchemaFixed is returned when attempting to replace the schema of a
	// grid that already holds rows.
	ErrSchemaFixed = errors.New("grid: schema is fixed once rows exist")

	// ErrSchemaMismatch is returned by Append when the two grids' schema
	// content hashes disagree.
	ErrSchemaMismatch = errors.New("grid: schema mismatch")

	// ErrNotNumeric is returned when statistics are requested for a column
	// whose type is not numeric.
	ErrNotNumeric = errors.New("grid: column is not numeric")
)

// Row maps column names to value lists. Rows handed out by the grid are
// always copies.
type Row map[string][]string

// clone deep-copies a row.
func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, vs := range r {
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}
	return out
}

// Grid is a named column schema plus an ordered list of rows.
//
// A Grid is not safe for concurrent mutation.
type Grid struct {
	name     string
	columns  *record.Record
	rows     []Row
	staged   Row
	features map[string]string
	props    map[string]any
}

// New creates an empty grid with no schema. The schema is derived from the
// first inserted record.
func New(name string) *Grid {
	return &Grid{name: name}
}

// NewWithSchema creates a grid whose columns are cloned from the given
// record. Cell values in the schema are cleared: only names, types, titles,
// and features describe a column.
func NewWithSchema(name string, columns *record.Record) *Grid {
	g := &Grid{name: name}
	g.columns = schemaOf(columns)
	return g
}

// schemaOf clones a record into schema form, clearing all cell values.
func schemaOf(r *record.Record) *record.Record {
	s := r.Clone()
	for c := range s.Items() {
		c.ClearValues()
	}
	return s
}

// Name returns the grid name.
func (g *Grid) Name() string { return g.name }

// Schema returns the column schema record, or nil when not yet derived.
func (g *Grid) Schema() *record.Record { return g.columns }

// SetSchema replaces the schema. Allowed only while the grid has no rows.
func (g *Grid) SetSchema(columns *record.Record) error {
	if len(g.rows) > 0 {
		return ErrSchemaFixed
	}
	g.columns = schemaOf(columns)
	return nil
}

// SchemaHash returns the content hash of the column schema.
func (g *Grid) SchemaHash() (string, error) {
	if g.columns == nil {
		return "", fmt.Errorf("%w: no schema", ErrNotFound)
	}
	return g.columns.ContentHash(false)
}

// ColCount returns the number of columns.
func (g *Grid) ColCount() int {
	if g.columns == nil {
		return 0
	}
	return g.columns.Len()
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// Row returns a snapshot of the row at the given offset.
func (g *Grid) Row(i int) (Row, error) {
	if i < 0 || i >= len(g.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrNotFound, i, len(g.rows))
	}
	return g.rows[i].clone(), nil
}

// Rows iterates over row snapshots in order.
func (g *Grid) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, r := range g.rows {
			if !yield(i, r.clone()) {
				return
			}
		}
	}
}

// RowRecord materializes the row at the given offset as a record typed by
// the schema. The record is a snapshot: mutating it does not touch the grid
// until it is written back via UpdateRow.
func (g *Grid) RowRecord(i int) (*record.Record, error) {
	row, err := g.Row(i)
	if err != nil {
		return nil, err
	}
	out := record.New(g.name)
	for sc := range g.columns.Items() {
		c := sc.Clone()
		c.ClearValues()
		for _, v := range row[sc.Name()] {
			c.Add(v)
		}
		c.ClearFeature(cell.FeatureUpdated)
		out.Set(c)
	}
	return out, nil
}

// rowOf projects a record onto the schema, keeping only schema-named items.
// Deriving the schema from the first inserted record happens in ensureSchema.
func (g *Grid) rowOf(rec *record.Record) Row {
	row := make(Row)
	for sc := range g.columns.Items() {
		c, err := rec.Item(sc.Name())
		if err != nil || !c.Assigned() {
			continue
		}
		row[sc.Name()] = c.Values()
	}
	return row
}

// ensureSchema derives the schema from the first inserted record while the
// grid is still empty.
func (g *Grid) ensureSchema(rec *record.Record) {
	if g.columns == nil && len(g.rows) == 0 {
		g.columns = schemaOf(rec)
	}
}

// AddRow appends a record as a new row. If the grid has no schema yet, the
// record's items become the schema.
func (g *Grid) AddRow(rec *record.Record) error {
	g.ensureSchema(rec)
	g.rows = append(g.rows, g.rowOf(rec))
	return nil
}

// InsertRow inserts a record as a row at the given offset.
func (g *Grid) InsertRow(i int, rec *record.Record) error {
	if i < 0 || i > len(g.rows) {
		return fmt.Errorf("%w: insert offset %d of %d", ErrNotFound, i, len(g.rows))
	}
	g.ensureSchema(rec)
	row := g.rowOf(rec)
	g.rows = append(g.rows, nil)
	copy(g.rows[i+1:], g.rows[i:])
	g.rows[i] = row
	return nil
}

// UpdateRow replaces the row at the given offset.
func (g *Grid) UpdateRow(i int, rec *record.Record) error {
	if i < 0 || i >= len(g.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrNotFound, i, len(g.rows))
	}
	g.rows[i] = g.rowOf(rec)
	return nil
}

// DeleteRow removes the row at the given offset.
func (g *Grid) DeleteRow(i int) error {
	if i < 0 || i >= len(g.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrNotFound, i, len(g.rows))
	}
	g.rows = append(g.rows[:i], g.rows[i+1:]...)
	return nil
}

// primaryColumn returns the name of the schema item flagged as primary.
func (g *Grid) primaryColumn() (string, bool) {
	if g.columns == nil {
		return "", false
	}
	pc, ok := g.columns.Primary()
	if !ok {
		return "", false
	}
	return pc.Name(), true
}

// findByPrimary locates the row whose primary-column value matches the
// record's primary value.
func (g *Grid) findByPrimary(rec *record.Record) (int, bool) {
	col, ok := g.primaryColumn()
	if !ok {
		return 0, false
	}
	c, err := rec.Item(col)
	if err != nil || !c.Assigned() {
		return 0, false
	}
	want := strings.Join(c.Values(), ",")
	for i, row := range g.rows {
		if strings.Join(row[col], ",") == want {
			return i, true
		}
	}
	return 0, false
}

// Update replaces the row whose primary-key value matches the record's.
// It reports false, without error, when no primary column is flagged or no
// row matches.
func (g *Grid) Update(rec *record.Record) bool {
	i, ok := g.findByPrimary(rec)
	if !ok {
		return false
	}
	g.rows[i] = g.rowOf(rec)
	return true
}

// Delete removes the row whose primary-key value matches the record's,
// reporting false when no primary column is flagged or no row matches.
func (g *Grid) Delete(rec *record.Record) bool {
	i, ok := g.findByPrimary(rec)
	if !ok {
		return false
	}
	g.rows = append(g.rows[:i], g.rows[i+1:]...)
	return true
}

// Append bulk-merges another grid's rows. The schemas must agree by content
// hash. When a primary column exists, rows whose primary value already
// appears in this grid are skipped, enforcing set semantics.
func (g *Grid) Append(other *Grid) error {
	gh, err := g.SchemaHash()
	if err != nil {
		return err
	}
	oh, err := other.SchemaHash()
	if err != nil {
		return err
	}
	if gh != oh {
		return ErrSchemaMismatch
	}
	col, hasPrimary := g.primaryColumn()
	seen := make(map[string]bool)
	if hasPrimary {
		for _, row := range g.rows {
			seen[strings.Join(row[col], ",")] = true
		}
	}
	for _, row := range other.rows {
		if hasPrimary {
			key := strings.Join(row[col], ",")
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		g.rows = append(g.rows, row.clone())
	}
	return nil
}

// --- staged row construction ---

// Stage buffers a column value for the row under construction. Repeated
// calls for the same column append values.
func (g *Grid) Stage(column string, values ...string) {
	if g.staged == nil {
		g.staged = make(Row)
	}
	g.staged[column] = append(g.staged[column], values...)
}

// CommitStaged appends the staged row and resets the buffer. It is a no-op
// when nothing is staged.
func (g *Grid) CommitStaged() {
	if len(g.staged) == 0 {
		return
	}
	row := make(Row, len(g.staged))
	for k, vs := range g.staged {
		if g.columns != nil && !g.columns.Has(k) {
			continue
		}
		row[k] = vs
	}
	g.rows = append(g.rows, row)
	g.staged = nil
}

// DiscardStaged drops the staged row buffer.
func (g *Grid) DiscardStaged() { g.staged = nil }

// --- aggregation ---

// GroupCount groups rows by the combined values of the given columns and
// returns a new grid with one row per distinct key combination plus a
// "count" column. Output rows are ordered by first appearance.
func (g *Grid) GroupCount(columns ...string) (*Grid, error) {
	for _, col := range columns {
		if g.columns == nil || !g.columns.Has(col) {
			return nil, fmt.Errorf("%w: column %q", ErrNotFound, col)
		}
	}
	schema := record.New(g.name)
	for _, col := range columns {
		sc, _ := g.columns.Item(col)
		schema.Set(sc.Clone())
	}
	schema.Set(cell.NewTyped("count", cell.Long))

	out := NewWithSchema(g.name+"-groups", schema)
	counts := make(map[string]int)
	var order []string
	keyRows := make(map[string]Row)
	for _, row := range g.rows {
		parts := make([]string, len(columns))
		for i, col := range columns {
			parts[i] = strings.Join(row[col], ",")
		}
		key := strings.Join(parts, "\x1f")
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			kr := make(Row, len(columns))
			for _, col := range columns {
				kr[col] = append([]string(nil), row[col]...)
			}
			keyRows[key] = kr
		}
		counts[key]++
	}
	for _, key := range order {
		row := keyRows[key].clone()
		row["count"] = []string{fmt.Sprintf("%d", counts[key])}
		out.rows = append(out.rows, row)
	}
	return out, nil
}

// --- features and properties ---

// Feature returns a feature value, or "" when unset.
func (g *Grid) Feature(name string) string { return g.features[name] }

// SetFeature sets a feature value.
func (g *Grid) SetFeature(name, value string) {
	if g.features == nil {
		g.features = make(map[string]string)
	}
	g.features[name] = value
}

// Flag reports whether a feature is set to the canonical true value.
func (g *Grid) Flag(name string) bool { return g.features[name] == cell.FlagTrue }

// SetFlag sets a feature to the canonical true value.
func (g *Grid) SetFlag(name string) { g.SetFeature(name, cell.FlagTrue) }

// Property returns a transient property.
func (g *Grid) Property(name string) (any, bool) {
	v, ok := g.props[name]
	return v, ok
}

// SetProperty sets a transient property.
func (g *Grid) SetProperty(name string, value any) {
	if g.props == nil {
		g.props = make(map[string]any)
	}
	g.props[name] = value
}

// FromDiff projects a record diff into a grid of (name, status,
// description) rows, one per diff entry.
func FromDiff(d *record.DiffResult) *Grid {
	schema := record.New("diff")
	schema.Set(cell.NewTyped("name", cell.Text))
	schema.Set(cell.NewTyped("status", cell.Text))
	schema.Set(cell.NewTyped("description", cell.Text))
	g := NewWithSchema("diff", schema)
	for _, e := range d.Entries() {
		g.rows = append(g.rows, Row{
			"name":        {e.Name},
			"status":      {string(e.Status)},
			"description": {e.Description},
		})
	}
	return g
}

// columnType returns the schema type of a column.
func (g *Grid) columnType(name string) (cell.Type, error) {
	if g.columns == nil {
		return cell.Undefined, fmt.Errorf("%w: no schema", ErrNotFound)
	}
	c, err := g.columns.Item(name)
	if err != nil {
		return cell.Undefined, fmt.Errorf("%w: column %q", ErrNotFound, name)
	}
	return c.Type(), nil
}

// cloneShell copies name, schema, and features into a new grid for derived
// results, leaving the rows empty.
func (g *Grid) cloneShell() *Grid {
	out := &Grid{name: g.name}
	if g.columns != nil {
		out.columns = g.columns.Clone()
	}
	if len(g.features) > 0 {
		out.features = make(map[string]string, len(g.features))
		for k, v := range g.features {
			out.features[k] = v
		}
	}
	return out
}
