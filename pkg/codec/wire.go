package codec

import (
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/graph"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

// The wire shape avoids maps everywhere: items, features, and relations are
// ordered lists so that every format, XML included, round-trips with a
// stable layout. Features are sorted by name on encode.

type attrDoc struct {
	Name  string `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Value string `json:"value" yaml:"value" xml:"value,attr" msgpack:"value"`
}

type rangeDoc struct {
	Enum         []string `json:"enum,omitempty" yaml:"enum,omitempty" xml:"enum>value,omitempty" msgpack:"enum,omitempty"`
	Min          string   `json:"min,omitempty" yaml:"min,omitempty" xml:"min,omitempty" msgpack:"min,omitempty"`
	Max          string   `json:"max,omitempty" yaml:"max,omitempty" xml:"max,omitempty" msgpack:"max,omitempty"`
	MinExclusive bool     `json:"minExclusive,omitempty" yaml:"minExclusive,omitempty" xml:"minExclusive,omitempty" msgpack:"minExclusive,omitempty"`
	MaxExclusive bool     `json:"maxExclusive,omitempty" yaml:"maxExclusive,omitempty" xml:"maxExclusive,omitempty" msgpack:"maxExclusive,omitempty"`
}

type cellDoc struct {
	Name     string    `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Type     string    `json:"type" yaml:"type" xml:"type,attr" msgpack:"type"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty" xml:"title,attr,omitempty" msgpack:"title,omitempty"`
	Default  string    `json:"default,omitempty" yaml:"default,omitempty" xml:"default,omitempty" msgpack:"default,omitempty"`
	Values   []string  `json:"values,omitempty" yaml:"values,omitempty" xml:"values>value" msgpack:"values,omitempty"`
	Range    *rangeDoc `json:"range,omitempty" yaml:"range,omitempty" xml:"range,omitempty" msgpack:"range,omitempty"`
	Features []attrDoc `json:"features,omitempty" yaml:"features,omitempty" xml:"features>feature" msgpack:"features,omitempty"`
}

type relationDoc struct {
	Name    string      `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Records []recordDoc `json:"records" yaml:"records" xml:"record" msgpack:"records"`
}

type recordDoc struct {
	XMLName  xml.Name      `json:"-" yaml:"-" xml:"record" msgpack:"-"`
	Name     string        `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Title    string        `json:"title,omitempty" yaml:"title,omitempty" xml:"title,attr,omitempty" msgpack:"title,omitempty"`
	Action   string        `json:"action,omitempty" yaml:"action,omitempty" xml:"action,attr,omitempty" msgpack:"action,omitempty"`
	Items    []cellDoc     `json:"items" yaml:"items" xml:"items>item" msgpack:"items"`
	Children []relationDoc `json:"children,omitempty" yaml:"children,omitempty" xml:"children>relation" msgpack:"children,omitempty"`
	Features []attrDoc     `json:"features,omitempty" yaml:"features,omitempty" xml:"features>feature" msgpack:"features,omitempty"`
}

type colDoc struct {
	Name   string   `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Values []string `json:"values" yaml:"values" xml:"values>value" msgpack:"values"`
}

type rowDoc struct {
	Cols []colDoc `json:"cols" yaml:"cols" xml:"col" msgpack:"cols"`
}

type gridDoc struct {
	XMLName  xml.Name  `json:"-" yaml:"-" xml:"grid" msgpack:"-"`
	Name     string    `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Columns  []cellDoc `json:"columns" yaml:"columns" xml:"columns>column" msgpack:"columns"`
	Rows     []rowDoc  `json:"rows" yaml:"rows" xml:"rows>row" msgpack:"rows"`
	Features []attrDoc `json:"features,omitempty" yaml:"features,omitempty" xml:"features>feature" msgpack:"features,omitempty"`
}

type payloadDoc struct {
	Kind string     `json:"kind" yaml:"kind" xml:"kind,attr" msgpack:"kind"`
	Item *cellDoc   `json:"item,omitempty" yaml:"item,omitempty" xml:"item,omitempty" msgpack:"item,omitempty"`
	Doc  *recordDoc `json:"doc,omitempty" yaml:"doc,omitempty" xml:"record,omitempty" msgpack:"doc,omitempty"`
}

type edgeDoc struct {
	Source  int        `json:"source" yaml:"source" xml:"source,attr" msgpack:"source"`
	Target  int        `json:"target" yaml:"target" xml:"target,attr" msgpack:"target"`
	Weight  float64    `json:"weight" yaml:"weight" xml:"weight,attr" msgpack:"weight"`
	Payload payloadDoc `json:"payload" yaml:"payload" xml:"payload" msgpack:"payload"`
}

type graphDoc struct {
	XMLName   xml.Name     `json:"-" yaml:"-" xml:"graph" msgpack:"-"`
	Name      string       `json:"name" yaml:"name" xml:"name,attr" msgpack:"name"`
	Structure string       `json:"structure" yaml:"structure" xml:"structure,attr" msgpack:"structure"`
	Model     string       `json:"model" yaml:"model" xml:"model,attr" msgpack:"model"`
	Vertices  []payloadDoc `json:"vertices" yaml:"vertices" xml:"vertices>vertex" msgpack:"vertices"`
	Edges     []edgeDoc    `json:"edges" yaml:"edges" xml:"edges>edge" msgpack:"edges"`
}

// --- model -> wire ---

func featuresToDoc(m map[string]string) []attrDoc {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]attrDoc, len(keys))
	for i, k := range keys {
		out[i] = attrDoc{Name: k, Value: m[k]}
	}
	return out
}

func cellToDoc(c *cell.Cell) cellDoc {
	d := cellDoc{
		Name:     c.Name(),
		Type:     string(c.Type()),
		Default:  c.Default(),
		Values:   c.Values(),
		Features: featuresToDoc(c.Features()),
	}
	if c.Title() != c.Name() {
		d.Title = c.Title()
	}
	if r := c.Range(); r != nil {
		d.Range = &rangeDoc{
			Enum:         r.Enum,
			Min:          r.Min,
			Max:          r.Max,
			MinExclusive: r.MinExclusive,
			MaxExclusive: r.MaxExclusive,
		}
	}
	return d
}

func recordToDoc(r *record.Record) *recordDoc {
	d := &recordDoc{
		Name:     r.Name(),
		Action:   r.Action(),
		Features: featuresToDoc(r.Features()),
	}
	if r.Title() != r.Name() {
		d.Title = r.Title()
	}
	for c := range r.Items() {
		d.Items = append(d.Items, cellToDoc(c))
	}
	for _, rel := range r.Relations() {
		rd := relationDoc{Name: rel}
		for _, kid := range r.Children(rel) {
			rd.Records = append(rd.Records, *recordToDoc(kid))
		}
		d.Children = append(d.Children, rd)
	}
	return d
}

func gridToDoc(g *grid.Grid) *gridDoc {
	d := &gridDoc{Name: g.Name()}
	var colNames []string
	if s := g.Schema(); s != nil {
		for c := range s.Items() {
			d.Columns = append(d.Columns, cellToDoc(c))
			colNames = append(colNames, c.Name())
		}
	}
	for _, row := range g.Rows() {
		rd := rowDoc{}
		for _, name := range colNames {
			if vs, ok := row[name]; ok {
				rd.Cols = append(rd.Cols, colDoc{Name: name, Values: vs})
			}
		}
		d.Rows = append(d.Rows, rd)
	}
	return d
}

func payloadToDoc(p graph.Payload) payloadDoc {
	switch v := p.(type) {
	case graph.Item:
		cd := cellToDoc(v.Cell)
		return payloadDoc{Kind: "item", Item: &cd}
	case graph.Doc:
		return payloadDoc{Kind: "doc", Doc: recordToDoc(v.Record)}
	}
	return payloadDoc{}
}

func graphToDoc(g *graph.Graph) *graphDoc {
	d := &graphDoc{
		Name:      g.Name(),
		Structure: g.Structure().String(),
		Model:     g.Model().String(),
	}
	index := make(map[graph.Payload]int)
	for v := range g.Vertices() {
		index[v] = len(d.Vertices)
		d.Vertices = append(d.Vertices, payloadToDoc(v))
	}
	for e := range g.Edges() {
		d.Edges = append(d.Edges, edgeDoc{
			Source:  index[e.Source()],
			Target:  index[e.Target()],
			Weight:  e.Weight(),
			Payload: payloadToDoc(e.Payload()),
		})
	}
	return d
}

// --- wire -> model ---

func docToCell(d *cellDoc) *cell.Cell {
	b := cell.Define(d.Name).Type(cell.ParseType(d.Type))
	if len(d.Values) > 0 {
		b = b.Values(d.Values...)
	}
	c := b.Build()
	if d.Title != "" {
		c.SetTitle(d.Title)
	}
	if d.Default != "" {
		c.SetDefault(d.Default)
	}
	if d.Range != nil {
		c.SetRange(&cell.Range{
			Enum:         d.Range.Enum,
			Min:          d.Range.Min,
			Max:          d.Range.Max,
			MinExclusive: d.Range.MinExclusive,
			MaxExclusive: d.Range.MaxExclusive,
		})
	}
	for _, f := range d.Features {
		c.SetFeature(f.Name, f.Value)
	}
	return c
}

func docToRecord(d *recordDoc) *record.Record {
	r := record.New(d.Name)
	if d.Title != "" {
		r.SetTitle(d.Title)
	}
	if d.Action != "" {
		r.SetAction(d.Action)
	}
	for i := range d.Items {
		r.Set(docToCell(&d.Items[i]))
	}
	for _, rel := range d.Children {
		for i := range rel.Records {
			r.AddChild(rel.Name, docToRecord(&rel.Records[i]))
		}
	}
	for _, f := range d.Features {
		r.SetFeature(f.Name, f.Value)
	}
	return r
}

func docToGrid(d *gridDoc) (*grid.Grid, error) {
	schema := record.New(d.Name)
	for i := range d.Columns {
		schema.Set(docToCell(&d.Columns[i]))
	}
	g := grid.NewWithSchema(d.Name, schema)
	for _, rd := range d.Rows {
		rec := record.New(d.Name)
		for _, col := range rd.Cols {
			c := cell.Define(col.Name).Values(col.Values...).Build()
			rec.Set(c)
		}
		if err := g.AddRow(rec); err != nil {
			return nil, fmt.Errorf("codec: grid %q: %w", d.Name, err)
		}
	}
	return g, nil
}

func docToPayload(d *payloadDoc) (graph.Payload, error) {
	switch d.Kind {
	case "item":
		if d.Item == nil {
			return nil, fmt.Errorf("codec: item payload without cell")
		}
		return graph.Item{Cell: docToCell(d.Item)}, nil
	case "doc":
		if d.Doc == nil {
			return nil, fmt.Errorf("codec: doc payload without record")
		}
		return graph.Doc{Record: docToRecord(d.Doc)}, nil
	}
	return nil, fmt.Errorf("codec: unknown payload kind %q", d.Kind)
}

func docToGraph(d *graphDoc) (*graph.Graph, error) {
	structure, err := graph.ParseStructure(d.Structure)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	model, err := graph.ParseDataModel(d.Model)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	g := graph.New(d.Name, structure, model)

	vertices := make([]graph.Payload, len(d.Vertices))
	for i := range d.Vertices {
		p, err := docToPayload(&d.Vertices[i])
		if err != nil {
			return nil, err
		}
		vertices[i] = p
		if err := g.AddVertex(p); err != nil {
			return nil, fmt.Errorf("codec: graph %q: %w", d.Name, err)
		}
	}
	for _, ed := range d.Edges {
		if ed.Source < 0 || ed.Source >= len(vertices) || ed.Target < 0 || ed.Target >= len(vertices) {
			return nil, fmt.Errorf("codec: graph %q: edge endpoint out of range", d.Name)
		}
		p, err := docToPayload(&ed.Payload)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddWeightedEdge(vertices[ed.Source], vertices[ed.Target], p, ed.Weight); err != nil {
			return nil, fmt.Errorf("codec: graph %q: %w", d.Name, err)
		}
	}
	return g, nil
}
