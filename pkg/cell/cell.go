// Package cell provides the typed value cell, the leaf of the datakit record
// model. A cell is a named, typed, possibly multi-valued datum: values are
// stored string-encoded and parsed on demand through typed getters. Cells
// carry display metadata (title), an optional range constraint, feature
// flags, and transient properties that are excluded from hashing, equality,
// and serialization.
package cell

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cordata/datakit/pkg/encoding"
)

// Sentinel errors.
var (
	// ErrNoValue is returned by typed getters when the cell has neither an
	// assigned value nor a default.
	ErrNoValue = errors.New("cell: no value assigned")

	// ErrHashUnavailable is returned when a content digest cannot be
	// computed. Identity derivation must fail loudly rather than fall back
	// to a random token.
	ErrHashUnavailable = errors.New("cell: hash unavailable")
)

// Type identifies the value type of a cell. The string form is stable: it
// participates in content hashing and in the store key grammar.
type Type string

// Supported cell types.
const (
	Undefined Type = "Undefined"
	Text      Type = "Text"
	Integer   Type = "Integer"
	Long      Type = "Long"
	Float     Type = "Float"
	Double    Type = "Double"
	Boolean   Type = "Boolean"
	Date      Type = "Date"
	DateTime  Type = "DateTime"
)

// Numeric reports whether the type holds a numeric value.
func (t Type) Numeric() bool {
	switch t {
	case Integer, Long, Float, Double:
		return true
	}
	return false
}

// Temporal reports whether the type holds a date or date-time value.
func (t Type) Temporal() bool {
	return t == Date || t == DateTime
}

// ParseType converts a string form back to a Type. Unknown strings map to
// Undefined.
func ParseType(s string) Type {
	switch Type(s) {
	case Text, Integer, Long, Float, Double, Boolean, Date, DateTime:
		return Type(s)
	}
	return Undefined
}

// Value layouts for temporal types.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// Canonical feature values. A feature whose value is FlagTrue acts as a
// boolean flag.
const (
	FlagTrue  = "true"
	FlagFalse = "false"
)

// Well-known feature names.
const (
	FeatureRequired    = "required"
	FeaturePrimary     = "primary"
	FeatureSecret      = "secret"
	FeatureUpdated     = "updated"
	FeatureMultiValue  = "multivalue"
	FeatureDisplaySize = "display_size"
	FeatureSortOrder   = "sort_order"
)

// collapseSep joins multi-values when a cell is reduced to a single string
// for comparison and hashing.
const collapseSep = ","

// Cell is a named, typed, possibly multi-valued datum.
//
// The zero value is not usable; construct with New or Define. A Cell is not
// safe for concurrent mutation; callers must synchronize externally.
type Cell struct {
	typ      Type
	name     string
	title    string
	values   []string
	def      string
	rng      *Range
	features map[string]string
	props    map[string]any
}

// New creates a cell with the given name and an Undefined type. The type is
// inferred from the first value assignment.
func New(name string) *Cell {
	return &Cell{typ: Undefined, name: name}
}

// NewTyped creates a cell with an explicit type.
func NewTyped(name string, typ Type) *Cell {
	return &Cell{typ: typ, name: name}
}

// Name returns the cell name. The name is the cell's identity within a
// record and is immutable after construction.
func (c *Cell) Name() string { return c.name }

// Type returns the cell type.
func (c *Cell) Type() Type { return c.typ }

// SetType overrides the cell type. Values already assigned are not
// re-validated against the new type.
func (c *Cell) SetType(t Type) { c.typ = t }

// Title returns the display label, falling back to the name when unset.
func (c *Cell) Title() string {
	if c.title == "" {
		return c.name
	}
	return c.title
}

// SetTitle sets the display label.
func (c *Cell) SetTitle(title string) { c.title = title }

// Default returns the default value.
func (c *Cell) Default() string { return c.def }

// SetDefault sets the default value. Defaults do not affect MultiValue or
// the updated flag.
func (c *Cell) SetDefault(v string) { c.def = v }

// Values returns a copy of the assigned values.
func (c *Cell) Values() []string {
	if len(c.values) == 0 {
		return nil
	}
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// ValueCount returns the number of assigned values.
func (c *Cell) ValueCount() int { return len(c.values) }

// Assigned reports whether the cell has at least one value.
func (c *Cell) Assigned() bool { return len(c.values) > 0 }

// MultiValue reports whether the cell holds more than one value.
func (c *Cell) MultiValue() bool { return len(c.values) > 1 }

// Collapsed returns all values joined into a single string. Single-valued
// cells return the value itself.
func (c *Cell) Collapsed() string {
	return strings.Join(c.values, collapseSep)
}

// raw returns the first value, falling back to the default.
func (c *Cell) raw() (string, bool) {
	if len(c.values) > 0 {
		return c.values[0], true
	}
	if c.def != "" {
		return c.def, true
	}
	return "", false
}

// assign replaces or appends a string value, inferring the type when still
// Undefined and raising the updated flag.
func (c *Cell) assign(v string, inferred Type, replace bool) {
	if c.typ == Undefined {
		c.typ = inferred
	}
	if replace {
		c.values = c.values[:0]
	}
	c.values = append(c.values, v)
	c.SetFlag(FeatureUpdated)
}

// Set replaces all values with the given string. An Undefined cell becomes
// Text.
func (c *Cell) Set(v string) { c.assign(v, Text, true) }

// Add appends a string value. An Undefined cell becomes Text.
func (c *Cell) Add(v string) { c.assign(v, Text, false) }

// SetInt replaces all values with the given int. An Undefined cell becomes
// Integer.
func (c *Cell) SetInt(v int) { c.assign(strconv.Itoa(v), Integer, true) }

// AddInt appends an int value.
func (c *Cell) AddInt(v int) { c.assign(strconv.Itoa(v), Integer, false) }

// SetInt64 replaces all values with the given int64. An Undefined cell
// becomes Long.
func (c *Cell) SetInt64(v int64) { c.assign(strconv.FormatInt(v, 10), Long, true) }

// AddInt64 appends an int64 value.
func (c *Cell) AddInt64(v int64) { c.assign(strconv.FormatInt(v, 10), Long, false) }

// SetFloat32 replaces all values with the given float32. An Undefined cell
// becomes Float.
func (c *Cell) SetFloat32(v float32) {
	c.assign(strconv.FormatFloat(float64(v), 'g', -1, 32), Float, true)
}

// AddFloat32 appends a float32 value.
func (c *Cell) AddFloat32(v float32) {
	c.assign(strconv.FormatFloat(float64(v), 'g', -1, 32), Float, false)
}

// SetFloat64 replaces all values with the given float64. An Undefined cell
// becomes Double.
func (c *Cell) SetFloat64(v float64) {
	c.assign(strconv.FormatFloat(v, 'g', -1, 64), Double, true)
}

// AddFloat64 appends a float64 value.
func (c *Cell) AddFloat64(v float64) {
	c.assign(strconv.FormatFloat(v, 'g', -1, 64), Double, false)
}

// SetBool replaces all values with the given bool. An Undefined cell becomes
// Boolean.
func (c *Cell) SetBool(v bool) { c.assign(strconv.FormatBool(v), Boolean, true) }

// AddBool appends a bool value.
func (c *Cell) AddBool(v bool) { c.assign(strconv.FormatBool(v), Boolean, false) }

// SetTime replaces all values with the given time. An Undefined cell becomes
// DateTime; Date-typed cells store the date layout only.
func (c *Cell) SetTime(v time.Time) { c.assign(c.formatTime(v), DateTime, true) }

// AddTime appends a time value.
func (c *Cell) AddTime(v time.Time) { c.assign(c.formatTime(v), DateTime, false) }

func (c *Cell) formatTime(v time.Time) string {
	if c.typ == Date {
		return v.Format(DateLayout)
	}
	return v.Format(DateTimeLayout)
}

// ClearValues removes all values and lowers the updated flag.
func (c *Cell) ClearValues() {
	c.values = c.values[:0]
	c.ClearFeature(FeatureUpdated)
}

// String returns the first value, falling back to the default, or "".
func (c *Cell) String() string {
	v, _ := c.raw()
	return v
}

// Int parses the value as an int. Values carrying an exponent marker are
// parsed as float64 first and narrowed.
func (c *Cell) Int() (int, error) {
	n, err := c.Int64()
	return int(n), err
}

// Int64 parses the value as an int64.
func (c *Cell) Int64() (int64, error) {
	v, ok := c.raw()
	if !ok {
		return 0, ErrNoValue
	}
	if hasExponent(v) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("cell %q: parse %q as int64: %w", c.name, v, err)
		}
		return int64(f), nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cell %q: parse %q as int64: %w", c.name, v, err)
	}
	return n, nil
}

// Float32 parses the value as a float32.
func (c *Cell) Float32() (float32, error) {
	v, ok := c.raw()
	if !ok {
		return 0, ErrNoValue
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("cell %q: parse %q as float32: %w", c.name, v, err)
	}
	return float32(f), nil
}

// Float64 parses the value as a float64.
func (c *Cell) Float64() (float64, error) {
	v, ok := c.raw()
	if !ok {
		return 0, ErrNoValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("cell %q: parse %q as float64: %w", c.name, v, err)
	}
	return f, nil
}

// Bool parses the value as a bool.
func (c *Cell) Bool() (bool, error) {
	v, ok := c.raw()
	if !ok {
		return false, ErrNoValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("cell %q: parse %q as bool: %w", c.name, v, err)
	}
	return b, nil
}

// Time parses the value as a time, trying the date-time layout first and the
// date layout second.
func (c *Cell) Time() (time.Time, error) {
	v, ok := c.raw()
	if !ok {
		return time.Time{}, ErrNoValue
	}
	if t, err := time.Parse(DateTimeLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("cell %q: parse %q as time: %w", c.name, v, err)
	}
	return t, nil
}

// hasExponent reports whether a numeric string uses scientific notation.
func hasExponent(s string) bool {
	return strings.ContainsAny(s, "eE") && !strings.EqualFold(s, "e")
}

// --- features and properties ---

// Feature returns a feature value, or "" when unset.
func (c *Cell) Feature(name string) string { return c.features[name] }

// SetFeature sets a feature value.
func (c *Cell) SetFeature(name, value string) {
	if c.features == nil {
		c.features = make(map[string]string)
	}
	c.features[name] = value
}

// ClearFeature removes a feature.
func (c *Cell) ClearFeature(name string) { delete(c.features, name) }

// Flag reports whether a feature is set to the canonical true value.
func (c *Cell) Flag(name string) bool { return c.features[name] == FlagTrue }

// SetFlag sets a feature to the canonical true value.
func (c *Cell) SetFlag(name string) { c.SetFeature(name, FlagTrue) }

// Features returns a copy of the feature map.
func (c *Cell) Features() map[string]string {
	if len(c.features) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.features))
	for k, v := range c.features {
		out[k] = v
	}
	return out
}

// Property returns a transient property. Properties are excluded from
// hashing, equality, and serialization.
func (c *Cell) Property(name string) (any, bool) {
	v, ok := c.props[name]
	return v, ok
}

// SetProperty sets a transient property.
func (c *Cell) SetProperty(name string, value any) {
	if c.props == nil {
		c.props = make(map[string]any)
	}
	c.props[name] = value
}

// ClearProperties removes all transient properties.
func (c *Cell) ClearProperties() { c.props = nil }

// --- identity ---

// Equal reports whether two cells agree on type, name, and collapsed
// values. Features and properties do not participate.
func (c *Cell) Equal(other *Cell) bool {
	if other == nil {
		return false
	}
	return c.typ == other.typ && c.name == other.name && c.Collapsed() == other.Collapsed()
}

// ContentHash returns a deterministic digest over the cell's name, type,
// title, and values, encoded as a raw-URL base64 string safe for use as a
// store key segment.
func (c *Cell) ContentHash() (string, error) {
	h := sha256.New()
	for _, part := range []string{c.name, string(c.typ), c.Title(), c.Collapsed()} {
		if _, err := h.Write([]byte(part)); err != nil {
			return "", fmt.Errorf("%w: %v", ErrHashUnavailable, err)
		}
	}
	return encoding.RawURLData(h.Sum(nil)).String(), nil
}

// Clone returns a copy of the cell: values are deep-copied, feature and
// property maps are copied entry-by-entry.
func (c *Cell) Clone() *Cell {
	cp := &Cell{
		typ:   c.typ,
		name:  c.name,
		title: c.title,
		def:   c.def,
	}
	if len(c.values) > 0 {
		cp.values = make([]string, len(c.values))
		copy(cp.values, c.values)
	}
	if c.rng != nil {
		r := *c.rng
		if len(c.rng.Enum) > 0 {
			r.Enum = make([]string, len(c.rng.Enum))
			copy(r.Enum, c.rng.Enum)
		}
		cp.rng = &r
	}
	if len(c.features) > 0 {
		cp.features = make(map[string]string, len(c.features))
		for k, v := range c.features {
			cp.features[k] = v
		}
	}
	if len(c.props) > 0 {
		cp.props = make(map[string]any, len(c.props))
		for k, v := range c.props {
			cp.props[k] = v
		}
	}
	return cp
}
