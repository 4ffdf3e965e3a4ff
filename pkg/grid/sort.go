package grid

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cordata/datakit/pkg/cell"
)

// Order selects a sort direction.
type Order int

// Sort directions.
const (
	Ascending Order = iota
	Descending
)

// SortByColumn returns a new grid whose rows are ordered by the given
// column, using a comparator chosen by the column's schema type. The
// receiver is not mutated. The sort is stable, so sorting an already sorted
// grid yields an identical row order.
func (g *Grid) SortByColumn(name string, order Order) (*Grid, error) {
	typ, err := g.columnType(name)
	if err != nil {
		return nil, err
	}
	less := lessFunc(typ)

	out := g.cloneShell()
	out.rows = make([]Row, len(g.rows))
	for i, row := range g.rows {
		out.rows[i] = row.clone()
	}
	sort.SliceStable(out.rows, func(i, j int) bool {
		a := first(out.rows[i][name])
		b := first(out.rows[j][name])
		if order == Descending {
			a, b = b, a
		}
		return less(a, b)
	})
	return out, nil
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// lessFunc returns a comparator for string-encoded values of the given
// type. Unparsable values sort before parsable ones so that empty cells
// group at the ascending head.
func lessFunc(typ cell.Type) func(a, b string) bool {
	switch typ {
	case cell.Integer, cell.Long:
		return func(a, b string) bool {
			na, ea := strconv.ParseInt(a, 10, 64)
			nb, eb := strconv.ParseInt(b, 10, 64)
			if ea != nil || eb != nil {
				return ea != nil && eb == nil
			}
			return na < nb
		}
	case cell.Float, cell.Double:
		return func(a, b string) bool {
			fa, ea := strconv.ParseFloat(a, 64)
			fb, eb := strconv.ParseFloat(b, 64)
			if ea != nil || eb != nil {
				return ea != nil && eb == nil
			}
			return fa < fb
		}
	case cell.Date, cell.DateTime:
		return func(a, b string) bool {
			ta, ea := parseWhen(a)
			tb, eb := parseWhen(b)
			if ea != nil || eb != nil {
				return ea != nil && eb == nil
			}
			return ta.Before(tb)
		}
	default:
		return func(a, b string) bool { return strings.Compare(a, b) < 0 }
	}
}

func parseWhen(v string) (time.Time, error) {
	if t, err := time.Parse(cell.DateTimeLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(cell.DateLayout, v)
}
