package grid

import (
	"fmt"
	"math"
	"strconv"
)

// Stats holds descriptive statistics for one numeric column.
type Stats struct {
	// Count is the number of values that participated.
	Count int

	// Mean is the arithmetic mean.
	Mean float64

	// StdDev is the sample standard deviation (n-1 denominator). It is 0
	// when fewer than two values participate.
	StdDev float64

	// Min and Max are the smallest and largest values.
	Min float64
	Max float64
}

// Stats computes descriptive statistics over the values of one column. The
// column's schema type must be numeric; every value of every row
// participates, including the extra values of multi-valued cells.
func (g *Grid) Stats(name string) (Stats, error) {
	typ, err := g.columnType(name)
	if err != nil {
		return Stats{}, err
	}
	if !typ.Numeric() {
		return Stats{}, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, typ)
	}

	var vals []float64
	for _, row := range g.rows {
		for _, v := range row[name] {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Stats{}, fmt.Errorf("grid: column %q: parse %q: %w", name, v, err)
			}
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return Stats{}, nil
	}

	s := Stats{Count: len(vals), Min: vals[0], Max: vals[0]}
	var sum float64
	for _, f := range vals {
		sum += f
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
	}
	s.Mean = sum / float64(len(vals))
	if len(vals) > 1 {
		var ss float64
		for _, f := range vals {
			d := f - s.Mean
			ss += d * d
		}
		s.StdDev = math.Sqrt(ss / float64(len(vals)-1))
	}
	return s, nil
}
