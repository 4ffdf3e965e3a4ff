package graph

import (
	"fmt"

	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

// VerticesGrid projects the vertex set into a grid. The schema is read off
// the data: every distinct item name across all vertices becomes a column
// (first-appearance order), and each vertex becomes one row, with absent
// items left empty.
func (g *Graph) VerticesGrid() (*grid.Grid, error) {
	return projectGrid(g.name+"-vertices", g.vertices)
}

// EdgesGrid projects the edge payloads into a grid, one row per edge,
// with the same schema-on-read rule as VerticesGrid.
func (g *Graph) EdgesGrid() (*grid.Grid, error) {
	payloads := make([]Payload, len(g.edges))
	for i, e := range g.edges {
		payloads[i] = e.payload
	}
	return projectGrid(g.name+"-edges", payloads)
}

// projectGrid unions the payloads' item names into one schema and emits one
// row per payload.
func projectGrid(name string, payloads []Payload) (*grid.Grid, error) {
	schema := record.New(name)
	for _, p := range payloads {
		switch v := p.(type) {
		case Item:
			if !schema.Has(v.Cell.Name()) {
				c := v.Cell.Clone()
				c.ClearValues()
				schema.Set(c)
			}
		case Doc:
			for c := range v.Record.Items() {
				if !schema.Has(c.Name()) {
					sc := c.Clone()
					sc.ClearValues()
					schema.Set(sc)
				}
			}
		}
	}

	out := grid.NewWithSchema(name, schema)
	for _, p := range payloads {
		row := record.New(name)
		switch v := p.(type) {
		case Item:
			row.Set(v.Cell)
		case Doc:
			for c := range v.Record.Items() {
				row.Set(c)
			}
		}
		if err := out.AddRow(row); err != nil {
			return nil, fmt.Errorf("graph: project %q: %w", name, err)
		}
	}
	return out, nil
}

// SeedFromGrid adds one vertex per row of the grid, materializing each row
// as a record. The graph's vertex kind must be Doc.
func (g *Graph) SeedFromGrid(src *grid.Grid) error {
	if g.model.VertexKind() != KindDoc {
		return fmt.Errorf("%w: grid rows seed record vertices only", ErrModelMismatch)
	}
	for i := 0; i < src.RowCount(); i++ {
		rec, err := src.RowRecord(i)
		if err != nil {
			return err
		}
		if err := g.AddVertex(Doc{rec}); err != nil {
			return err
		}
	}
	return nil
}
