package cell

import (
	"fmt"
	"strconv"
	"time"
)

// Range constrains the values a cell may hold. For Text cells the constraint
// is an enumerated set; for numeric and temporal cells it is a min/max pair
// with declared inclusivity. Empty Min/Max means unbounded on that side.
type Range struct {
	// Enum is the allowed value set for Text cells.
	Enum []string

	// Min and Max bound numeric and temporal cells. They use the cell's
	// string encoding (decimal for numbers, DateLayout/DateTimeLayout for
	// temporal types).
	Min string
	Max string

	// MinExclusive and MaxExclusive select open bounds. The default is
	// inclusive on both sides.
	MinExclusive bool
	MaxExclusive bool
}

// SetRange assigns a range constraint to the cell.
func (c *Cell) SetRange(r *Range) { c.rng = r }

// Range returns the cell's range constraint, or nil.
func (c *Cell) Range() *Range { return c.rng }

// ClearRange removes the range constraint.
func (c *Cell) ClearRange() { c.rng = nil }

// Violation describes one failed validation check. Violations are values,
// not errors: callers collect them to batch-report every failing item.
type Violation struct {
	// Item is the name of the offending cell.
	Item string

	// Reason is a human-readable description of the failure.
	Reason string
}

// Validate checks the required flag and the range constraint against every
// assigned value. It returns nil when the cell is valid.
func (c *Cell) Validate() []Violation {
	var out []Violation
	if c.Flag(FeatureRequired) && !c.Assigned() {
		out = append(out, Violation{Item: c.name, Reason: "required but no value assigned"})
	}
	if c.rng == nil {
		return out
	}
	for _, v := range c.values {
		if reason := c.rng.check(c.typ, v); reason != "" {
			out = append(out, Violation{Item: c.name, Reason: reason})
		}
	}
	return out
}

// check validates one string-encoded value against the range. It returns ""
// when the value conforms.
func (r *Range) check(typ Type, v string) string {
	if len(r.Enum) > 0 {
		for _, e := range r.Enum {
			if v == e {
				return ""
			}
		}
		return fmt.Sprintf("value %q not in enumerated set", v)
	}
	switch {
	case typ.Numeric():
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Sprintf("value %q is not numeric", v)
		}
		return r.checkOrdered(v, func(bound string) (int, bool) {
			b, err := strconv.ParseFloat(bound, 64)
			if err != nil {
				return 0, false
			}
			switch {
			case f < b:
				return -1, true
			case f > b:
				return 1, true
			}
			return 0, true
		})
	case typ.Temporal():
		t, err := parseTemporal(v)
		if err != nil {
			return fmt.Sprintf("value %q is not a date", v)
		}
		return r.checkOrdered(v, func(bound string) (int, bool) {
			b, err := parseTemporal(bound)
			if err != nil {
				return 0, false
			}
			switch {
			case t.Before(b):
				return -1, true
			case t.After(b):
				return 1, true
			}
			return 0, true
		})
	}
	return ""
}

// checkOrdered applies the min/max bounds using cmp, which compares the
// value against a bound string and reports whether the bound parsed.
func (r *Range) checkOrdered(v string, cmp func(bound string) (int, bool)) string {
	if r.Min != "" {
		if c, ok := cmp(r.Min); ok {
			if c < 0 || (c == 0 && r.MinExclusive) {
				return fmt.Sprintf("value %q below minimum %q", v, r.Min)
			}
		}
	}
	if r.Max != "" {
		if c, ok := cmp(r.Max); ok {
			if c > 0 || (c == 0 && r.MaxExclusive) {
				return fmt.Sprintf("value %q above maximum %q", v, r.Max)
			}
		}
	}
	return ""
}

func parseTemporal(v string) (time.Time, error) {
	if t, err := time.Parse(DateTimeLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, v)
}
