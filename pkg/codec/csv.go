package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

// csvMultiSep joins the extra values of a multi-valued cell into one CSV
// field. CSV has no nesting, so the collapse is lossy for values that
// themselves contain the separator.
const csvMultiSep = ","

// marshalGridCSV renders a grid as a header row of column names followed by
// one row per grid row.
func marshalGridCSV(g *grid.Grid) ([]byte, error) {
	if g.Schema() == nil {
		return nil, fmt.Errorf("codec: grid %q has no schema", g.Name())
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := g.Schema().Names()
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("codec: encode csv: %w", err)
	}
	for _, row := range g.Rows() {
		fields := make([]string, len(header))
		for i, name := range header {
			fields[i] = strings.Join(row[name], csvMultiSep)
		}
		if err := w.Write(fields); err != nil {
			return nil, fmt.Errorf("codec: encode csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("codec: encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// unmarshalGridCSV parses CSV into a grid whose columns are Text cells
// named by the header row.
func unmarshalGridCSV(name string, b []byte) (*grid.Grid, error) {
	r := csv.NewReader(bytes.NewReader(b))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("codec: decode csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("codec: decode csv: missing header row")
	}

	schema := record.New(name)
	for _, col := range rows[0] {
		schema.Set(cell.NewTyped(col, cell.Text))
	}
	g := grid.NewWithSchema(name, schema)
	for _, fields := range rows[1:] {
		rec := record.New(name)
		for i, col := range rows[0] {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			c := cell.NewTyped(col, cell.Text)
			c.Set(fields[i])
			rec.Set(c)
		}
		if err := g.AddRow(rec); err != nil {
			return nil, fmt.Errorf("codec: grid %q: %w", name, err)
		}
	}
	return g, nil
}
