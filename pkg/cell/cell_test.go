package cell_test

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cordata/datakit/pkg/cell"
)

func TestTypeInference(t *testing.T) {
	tests := []struct {
		name   string
		assign func(c *cell.Cell)
		want   cell.Type
		value  string
	}{
		{"string", func(c *cell.Cell) { c.Set("hello") }, cell.Text, "hello"},
		{"int", func(c *cell.Cell) { c.SetInt(42) }, cell.Integer, "42"},
		{"int64", func(c *cell.Cell) { c.SetInt64(1 << 40) }, cell.Long, "1099511627776"},
		{"float32", func(c *cell.Cell) { c.SetFloat32(1.5) }, cell.Float, "1.5"},
		{"float64", func(c *cell.Cell) { c.SetFloat64(2.25) }, cell.Double, "2.25"},
		{"bool", func(c *cell.Cell) { c.SetBool(true) }, cell.Boolean, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cell.New("x")
			if c.Type() != cell.Undefined {
				t.Fatalf("new cell type = %v, want Undefined", c.Type())
			}
			tt.assign(c)
			if c.Type() != tt.want {
				t.Fatalf("type = %v, want %v", c.Type(), tt.want)
			}
			if c.String() != tt.value {
				t.Fatalf("value = %q, want %q", c.String(), tt.value)
			}
		})
	}
}

func TestTypeStableAfterInference(t *testing.T) {
	c := cell.New("n")
	c.SetInt(1)
	c.Set("not a number")
	if c.Type() != cell.Integer {
		t.Fatalf("type changed to %v after string assignment", c.Type())
	}
}

func TestSetTimeLayouts(t *testing.T) {
	ts := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

	c := cell.New("when")
	c.SetTime(ts)
	if c.Type() != cell.DateTime {
		t.Fatalf("type = %v, want DateTime", c.Type())
	}
	if c.String() != "2026-08-31T10:30:00Z" {
		t.Fatalf("value = %q", c.String())
	}

	d := cell.NewTyped("day", cell.Date)
	d.SetTime(ts)
	if d.String() != "2026-08-31" {
		t.Fatalf("date value = %q", d.String())
	}
	got, err := d.Time()
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if !got.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Time = %v", got)
	}
}

func TestMultiValue(t *testing.T) {
	c := cell.New("tags")
	if c.MultiValue() {
		t.Fatal("empty cell reports MultiValue")
	}
	c.Add("a")
	if c.MultiValue() {
		t.Fatal("single-valued cell reports MultiValue")
	}
	c.Add("b")
	c.Add("c")
	if !c.MultiValue() {
		t.Fatal("three-valued cell does not report MultiValue")
	}
	if got := c.Collapsed(); got != "a,b,c" {
		t.Fatalf("Collapsed = %q, want %q", got, "a,b,c")
	}
	if got := c.Values(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Values = %v", got)
	}

	// Set replaces everything.
	c.Set("only")
	if c.MultiValue() || c.ValueCount() != 1 {
		t.Fatalf("after Set: count = %d", c.ValueCount())
	}
}

func TestDefaultFallback(t *testing.T) {
	c := cell.New("retries")
	c.SetType(cell.Integer)
	c.SetDefault("3")

	if c.Assigned() {
		t.Fatal("cell with only a default reports Assigned")
	}
	n, err := c.Int()
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	if n != 3 {
		t.Fatalf("Int = %d, want 3", n)
	}

	c.SetInt(7)
	n, err = c.Int()
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	if n != 7 {
		t.Fatalf("Int = %d, want 7", n)
	}
}

func TestNoValue(t *testing.T) {
	c := cell.New("empty")
	if _, err := c.Int(); !errors.Is(err, cell.ErrNoValue) {
		t.Fatalf("Int err = %v, want ErrNoValue", err)
	}
	if _, err := c.Bool(); !errors.Is(err, cell.ErrNoValue) {
		t.Fatalf("Bool err = %v, want ErrNoValue", err)
	}
	if _, err := c.Time(); !errors.Is(err, cell.ErrNoValue) {
		t.Fatalf("Time err = %v, want ErrNoValue", err)
	}
	if c.String() != "" {
		t.Fatalf("String = %q, want empty", c.String())
	}
}

func TestIntWithExponent(t *testing.T) {
	c := cell.New("big")
	c.Set("1.5e3")
	n, err := c.Int64()
	if err != nil {
		t.Fatalf("Int64: %v", err)
	}
	if n != 1500 {
		t.Fatalf("Int64 = %d, want 1500", n)
	}
}

func TestParseErrors(t *testing.T) {
	c := cell.New("bad")
	c.Set("not-a-number")
	if _, err := c.Int(); err == nil {
		t.Fatal("Int on non-numeric value did not error")
	}
	if _, err := c.Float64(); err == nil {
		t.Fatal("Float64 on non-numeric value did not error")
	}
	if _, err := c.Bool(); err == nil {
		t.Fatal("Bool on non-boolean value did not error")
	}
}

func TestUpdatedFlag(t *testing.T) {
	c := cell.New("x")
	if c.Flag(cell.FeatureUpdated) {
		t.Fatal("new cell has updated flag")
	}
	c.Set("v")
	if !c.Flag(cell.FeatureUpdated) {
		t.Fatal("assignment did not raise updated flag")
	}
	c.ClearValues()
	if c.Flag(cell.FeatureUpdated) {
		t.Fatal("ClearValues did not lower updated flag")
	}
	if c.Assigned() {
		t.Fatal("cell still assigned after ClearValues")
	}
}

func TestTitleFallback(t *testing.T) {
	c := cell.New("user_name")
	if c.Title() != "user_name" {
		t.Fatalf("Title = %q, want name fallback", c.Title())
	}
	c.SetTitle("User Name")
	if c.Title() != "User Name" {
		t.Fatalf("Title = %q", c.Title())
	}
}

func TestEqual(t *testing.T) {
	a := cell.New("x")
	a.Set("1")
	b := cell.New("x")
	b.Set("1")
	if !a.Equal(b) {
		t.Fatal("identical cells not equal")
	}

	// Title and features do not participate.
	b.SetTitle("different")
	b.SetFlag(cell.FeatureSecret)
	if !a.Equal(b) {
		t.Fatal("title/feature difference broke equality")
	}

	c := cell.New("y")
	c.Set("1")
	if a.Equal(c) {
		t.Fatal("different names compare equal")
	}

	d := cell.NewTyped("x", cell.Integer)
	d.Set("1")
	if a.Equal(d) {
		t.Fatal("different types compare equal")
	}

	if a.Equal(nil) {
		t.Fatal("Equal(nil) returned true")
	}
}

func TestContentHash(t *testing.T) {
	a := cell.New("x")
	a.Set("1")
	h1, err := a.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	h2, err := a.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash not stable: %q vs %q", h1, h2)
	}
	if strings.Contains(h1, ":") {
		t.Fatalf("hash %q contains key separator", h1)
	}

	a.Set("2")
	h3, err := a.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	if h1 == h3 {
		t.Fatal("value change did not change hash")
	}
}

func TestValidateRequired(t *testing.T) {
	c := cell.Define("name").Type(cell.Text).Required().Build()
	vs := c.Validate()
	if len(vs) != 1 {
		t.Fatalf("violations = %v, want 1", vs)
	}
	if vs[0].Item != "name" {
		t.Fatalf("violation item = %q", vs[0].Item)
	}

	c.Set("Alice")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
}

func TestValidateNumericRange(t *testing.T) {
	c := cell.Define("age").Type(cell.Integer).Min("0").Max("150").Build()

	c.Set("42")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}

	c.Set("-1")
	if vs := c.Validate(); len(vs) != 1 {
		t.Fatalf("violations = %v, want 1", vs)
	}

	c.Set("151")
	if vs := c.Validate(); len(vs) != 1 {
		t.Fatalf("violations = %v, want 1", vs)
	}

	// Inclusive bounds by default.
	c.Set("0")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("inclusive min rejected: %v", vs)
	}
	c.Set("150")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("inclusive max rejected: %v", vs)
	}
}

func TestValidateExclusiveBounds(t *testing.T) {
	c := cell.Define("ratio").Type(cell.Double).
		Min("0").MinExclusive().Max("1").MaxExclusive().Build()

	c.Set("0")
	if vs := c.Validate(); len(vs) != 1 {
		t.Fatalf("exclusive min accepted boundary: %v", vs)
	}
	c.Set("1")
	if vs := c.Validate(); len(vs) != 1 {
		t.Fatalf("exclusive max accepted boundary: %v", vs)
	}
	c.Set("0.5")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
}

func TestValidateEnum(t *testing.T) {
	c := cell.Define("state").Type(cell.Text).Enum("on", "off").Build()

	c.Set("on")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	c.Set("standby")
	vs := c.Validate()
	if len(vs) != 1 {
		t.Fatalf("violations = %v, want 1", vs)
	}
}

func TestValidateTemporalRange(t *testing.T) {
	c := cell.Define("born").Type(cell.Date).
		Min("1900-01-01").Max("2026-12-31").Build()

	c.Set("1985-05-20")
	if vs := c.Validate(); vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	c.Set("1899-12-31")
	if vs := c.Validate(); len(vs) != 1 {
		t.Fatalf("violations = %v, want 1", vs)
	}
}

func TestValidateMultiValue(t *testing.T) {
	c := cell.Define("scores").Type(cell.Integer).Min("0").Max("100").Build()
	c.Add("50")
	c.Add("-3")
	c.Add("120")
	vs := c.Validate()
	if len(vs) != 2 {
		t.Fatalf("violations = %v, want 2", vs)
	}
}

func TestClone(t *testing.T) {
	c := cell.Define("tags").Type(cell.Text).Title("Tags").Default("none").Build()
	c.Add("a")
	c.Add("b")
	c.SetFeature("color", "blue")
	c.SetProperty("cache", 1)

	cp := c.Clone()
	if !c.Equal(cp) {
		t.Fatal("clone not equal to original")
	}

	// Mutations to the clone must not leak back.
	cp.Add("c")
	cp.SetFeature("color", "red")
	if c.ValueCount() != 2 {
		t.Fatalf("original values grew: %v", c.Values())
	}
	if c.Feature("color") != "blue" {
		t.Fatalf("original feature changed: %q", c.Feature("color"))
	}
}

func TestParseType(t *testing.T) {
	if got := cell.ParseType("Integer"); got != cell.Integer {
		t.Fatalf("ParseType(Integer) = %v", got)
	}
	if got := cell.ParseType("bogus"); got != cell.Undefined {
		t.Fatalf("ParseType(bogus) = %v", got)
	}
	if got := cell.ParseType(""); got != cell.Undefined {
		t.Fatalf("ParseType(empty) = %v", got)
	}
}

func TestTypePredicates(t *testing.T) {
	for _, typ := range []cell.Type{cell.Integer, cell.Long, cell.Float, cell.Double} {
		if !typ.Numeric() {
			t.Fatalf("%v not Numeric", typ)
		}
	}
	for _, typ := range []cell.Type{cell.Text, cell.Boolean, cell.Date, cell.DateTime, cell.Undefined} {
		if typ.Numeric() {
			t.Fatalf("%v is Numeric", typ)
		}
	}
	if !cell.Date.Temporal() || !cell.DateTime.Temporal() {
		t.Fatal("temporal types not Temporal")
	}
	if cell.Text.Temporal() {
		t.Fatal("Text is Temporal")
	}
}

func TestBuilder(t *testing.T) {
	c := cell.Define("id").Type(cell.Long).Title("ID").
		Primary().Required().Values("9001").Build()

	if c.Name() != "id" || c.Type() != cell.Long || c.Title() != "ID" {
		t.Fatalf("built cell: name=%q type=%v title=%q", c.Name(), c.Type(), c.Title())
	}
	if !c.Flag(cell.FeaturePrimary) || !c.Flag(cell.FeatureRequired) {
		t.Fatal("flags not set")
	}
	if c.String() != "9001" {
		t.Fatalf("value = %q", c.String())
	}
	// Builder values do not raise the updated flag.
	if c.Flag(cell.FeatureUpdated) {
		t.Fatal("builder raised updated flag")
	}
}
