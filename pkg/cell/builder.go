package cell

// Builder assembles a cell fluently. Obtain one with Define, chain the
// option methods, and finish with Build:
//
//	c := cell.Define("age").Type(cell.Integer).Title("Age").
//		Min("0").Required().Build()
type Builder struct {
	c *Cell
}

// Define starts building a cell with the given name.
func Define(name string) *Builder {
	return &Builder{c: New(name)}
}

// Type sets the cell type.
func (b *Builder) Type(t Type) *Builder {
	b.c.typ = t
	return b
}

// Title sets the display label.
func (b *Builder) Title(title string) *Builder {
	b.c.title = title
	return b
}

// Default sets the default value.
func (b *Builder) Default(v string) *Builder {
	b.c.def = v
	return b
}

// Values assigns initial values without raising the updated flag.
func (b *Builder) Values(vs ...string) *Builder {
	b.c.values = append(b.c.values[:0], vs...)
	if b.c.typ == Undefined && len(vs) > 0 {
		b.c.typ = Text
	}
	return b
}

// Enum constrains a Text cell to the given value set.
func (b *Builder) Enum(vs ...string) *Builder {
	b.ensureRange().Enum = vs
	return b
}

// Min sets the lower bound (inclusive unless MinExclusive is applied).
func (b *Builder) Min(v string) *Builder {
	b.ensureRange().Min = v
	return b
}

// Max sets the upper bound (inclusive unless MaxExclusive is applied).
func (b *Builder) Max(v string) *Builder {
	b.ensureRange().Max = v
	return b
}

// MinExclusive makes the lower bound open.
func (b *Builder) MinExclusive() *Builder {
	b.ensureRange().MinExclusive = true
	return b
}

// MaxExclusive makes the upper bound open.
func (b *Builder) MaxExclusive() *Builder {
	b.ensureRange().MaxExclusive = true
	return b
}

// Feature sets an arbitrary feature value.
func (b *Builder) Feature(name, value string) *Builder {
	b.c.SetFeature(name, value)
	return b
}

// Required flags the cell as required.
func (b *Builder) Required() *Builder {
	b.c.SetFlag(FeatureRequired)
	return b
}

// Primary flags the cell as the record's primary key item.
func (b *Builder) Primary() *Builder {
	b.c.SetFlag(FeaturePrimary)
	return b
}

// Secret flags the cell as secret.
func (b *Builder) Secret() *Builder {
	b.c.SetFlag(FeatureSecret)
	return b
}

func (b *Builder) ensureRange() *Range {
	if b.c.rng == nil {
		b.c.rng = &Range{}
	}
	return b.c.rng
}

// Build returns the assembled cell.
func (b *Builder) Build() *Cell {
	return b.c
}
