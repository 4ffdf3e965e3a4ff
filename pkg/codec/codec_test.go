package codec_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/codec"
	"github.com/cordata/datakit/pkg/graph"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

var treeFormats = []codec.Format{codec.JSON, codec.YAML, codec.XML, codec.Msgpack}

func sampleRecord(t *testing.T) *record.Record {
	t.Helper()
	r := record.New("user")
	r.SetTitle("User")
	r.SetFlag("active")

	id := cell.Define("id").Type(cell.Long).Primary().Build()
	id.SetInt64(42)
	r.Set(id)

	name := cell.Define("name").Type(cell.Text).Title("Full Name").Required().Build()
	name.Set("Alice")
	r.Set(name)

	tags := cell.New("tags")
	tags.Add("a")
	tags.Add("b")
	r.Set(tags)

	state := cell.Define("state").Type(cell.Text).Enum("on", "off").Default("off").Build()
	r.Set(state)

	addr := record.New("address")
	city := cell.New("city")
	city.Set("Zurich")
	addr.Set(city)
	r.AddChild("addresses", addr)
	return r
}

func TestRecordRoundTrip(t *testing.T) {
	for _, f := range treeFormats {
		t.Run(string(f), func(t *testing.T) {
			orig := sampleRecord(t)
			b, err := codec.MarshalRecord(orig, f)
			if err != nil {
				t.Fatalf("MarshalRecord: %v", err)
			}
			got, err := codec.UnmarshalRecord(b, f)
			if err != nil {
				t.Fatalf("UnmarshalRecord: %v", err)
			}

			if got.Name() != "user" || got.Title() != "User" || !got.Flag("active") {
				t.Fatalf("metadata: name=%q title=%q", got.Name(), got.Title())
			}
			// Insertion order survives.
			if !slices.Equal(got.Names(), orig.Names()) {
				t.Fatalf("order = %v, want %v", got.Names(), orig.Names())
			}
			if eq, changed := orig.ValuesEqual(got); !eq {
				t.Fatalf("values changed: %v", changed)
			}

			nc, err := got.Item("name")
			if err != nil {
				t.Fatalf("Item: %v", err)
			}
			if nc.Title() != "Full Name" || !nc.Flag(cell.FeatureRequired) {
				t.Fatalf("cell metadata lost: title=%q", nc.Title())
			}
			idc, _ := got.Item("id")
			if idc.Type() != cell.Long || !idc.Flag(cell.FeaturePrimary) {
				t.Fatalf("id column: type=%v", idc.Type())
			}
			sc, _ := got.Item("state")
			if sc.Default() != "off" {
				t.Fatalf("default = %q", sc.Default())
			}
			if rng := sc.Range(); rng == nil || !slices.Equal(rng.Enum, []string{"on", "off"}) {
				t.Fatalf("range = %+v", sc.Range())
			}

			kids := got.Children("addresses")
			if len(kids) != 1 {
				t.Fatalf("children = %d", len(kids))
			}
			cc, err := kids[0].Item("city")
			if err != nil || cc.String() != "Zurich" {
				t.Fatalf("child city = %v, %v", cc, err)
			}

			// The hash is the identity check for a lossless round trip.
			h1, _ := orig.ContentHash(false)
			h2, _ := got.ContentHash(false)
			if h1 != h2 {
				t.Fatalf("content hash changed across %s round trip", f)
			}
		})
	}
}

func sampleGrid(t *testing.T) *grid.Grid {
	t.Helper()
	s := record.New("person")
	s.Set(cell.Define("id").Type(cell.Long).Primary().Build())
	s.Set(cell.NewTyped("name", cell.Text))
	g := grid.NewWithSchema("people", s)
	for _, p := range [][2]string{{"1", "Alice"}, {"2", "Bob"}} {
		r := record.New("person")
		id := cell.NewTyped("id", cell.Long)
		id.Set(p[0])
		r.Set(id)
		n := cell.New("name")
		n.Set(p[1])
		r.Set(n)
		g.AddRow(r)
	}
	return g
}

func TestGridRoundTrip(t *testing.T) {
	for _, f := range treeFormats {
		t.Run(string(f), func(t *testing.T) {
			orig := sampleGrid(t)
			b, err := codec.MarshalGrid(orig, f)
			if err != nil {
				t.Fatalf("MarshalGrid: %v", err)
			}
			got, err := codec.UnmarshalGrid("ignored", b, f)
			if err != nil {
				t.Fatalf("UnmarshalGrid: %v", err)
			}
			if got.Name() != "people" {
				t.Fatalf("name = %q", got.Name())
			}
			if got.RowCount() != 2 || got.ColCount() != 2 {
				t.Fatalf("shape = %dx%d", got.RowCount(), got.ColCount())
			}
			oh, _ := orig.SchemaHash()
			gh, _ := got.SchemaHash()
			if oh != gh {
				t.Fatal("schema hash changed")
			}
			row, _ := got.Row(1)
			if row["name"][0] != "Bob" || row["id"][0] != "2" {
				t.Fatalf("row = %v", row)
			}
		})
	}
}

func TestGridCSV(t *testing.T) {
	orig := sampleGrid(t)
	b, err := codec.MarshalGrid(orig, codec.CSV)
	if err != nil {
		t.Fatalf("MarshalGrid: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d: %q", len(lines), b)
	}
	if lines[0] != "id,name" {
		t.Fatalf("header = %q", lines[0])
	}

	got, err := codec.UnmarshalGrid("people", b, codec.CSV)
	if err != nil {
		t.Fatalf("UnmarshalGrid: %v", err)
	}
	if got.RowCount() != 2 {
		t.Fatalf("RowCount = %d", got.RowCount())
	}
	// CSV carries no type information: everything is Text.
	c, _ := got.Schema().Item("id")
	if c.Type() != cell.Text {
		t.Fatalf("csv column type = %v", c.Type())
	}
	row, _ := got.Row(0)
	if row["name"][0] != "Alice" {
		t.Fatalf("row = %v", row)
	}
}

func TestRecordCSVUnsupported(t *testing.T) {
	if _, err := codec.MarshalRecord(sampleRecord(t), codec.CSV); !errors.Is(err, codec.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if _, err := codec.UnmarshalRecord(nil, codec.CSV); !errors.Is(err, codec.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if _, err := codec.MarshalGraph(graph.New("g", graph.Simple, graph.ItemItem), codec.CSV); !errors.Is(err, codec.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	for _, f := range treeFormats {
		t.Run(string(f), func(t *testing.T) {
			orig := graph.New("net", graph.SimpleDirectedWeighted, graph.DocItem)
			a := graph.Doc{Record: sampleRecord(t)}
			b := graph.Doc{Record: record.New("user")}
			rel := cell.New("rel")
			rel.Set("knows")
			if _, err := orig.AddWeightedEdge(a, b, graph.Item{Cell: rel}, 2.5); err != nil {
				t.Fatalf("AddWeightedEdge: %v", err)
			}

			data, err := codec.MarshalGraph(orig, f)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}
			got, err := codec.UnmarshalGraph(data, f)
			if err != nil {
				t.Fatalf("UnmarshalGraph: %v", err)
			}

			if got.Name() != "net" || got.Structure() != graph.SimpleDirectedWeighted || got.Model() != graph.DocItem {
				t.Fatalf("graph meta: %q %v %v", got.Name(), got.Structure(), got.Model())
			}
			if got.VertexCount() != 2 || got.EdgeCount() != 1 {
				t.Fatalf("shape = %d/%d", got.VertexCount(), got.EdgeCount())
			}
			var edge *graph.Edge
			for e := range got.Edges() {
				edge = e
			}
			if edge.Weight() != 2.5 || edge.Name() != "rel" {
				t.Fatalf("edge = %q weight %v", edge.Name(), edge.Weight())
			}
			src, ok := edge.Source().(graph.Doc)
			if !ok {
				t.Fatalf("source kind: %T", edge.Source())
			}
			h1, _ := a.Record.ContentHash(false)
			h2, _ := src.Record.ContentHash(false)
			if h1 != h2 {
				t.Fatal("source record changed across round trip")
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "yaml", "xml", "csv", "msgpack"} {
		f, err := codec.ParseFormat(s)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", s, err)
		}
		if string(f) != s {
			t.Fatalf("ParseFormat(%q) = %q", s, f)
		}
	}
	if f, err := codec.ParseFormat("yml"); err != nil || f != codec.YAML {
		t.Fatalf("yml alias: %v %v", f, err)
	}
	if _, err := codec.ParseFormat("toml"); !errors.Is(err, codec.ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestUnmarshalBadInput(t *testing.T) {
	if _, err := codec.UnmarshalRecord([]byte("{not json"), codec.JSON); err == nil {
		t.Fatal("bad json accepted")
	}
	if _, err := codec.UnmarshalGrid("g", []byte(nil), codec.CSV); err == nil {
		t.Fatal("empty csv accepted")
	}
}
