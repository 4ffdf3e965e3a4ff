package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

// Theme defines the color scheme for styled terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Dim    lipgloss.Style
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Value:  lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
		Border: lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// RenderRecord renders a record as an indented field listing. Child
// records nest one level deeper per relation.
func (s Styles) RenderRecord(r *record.Record) string {
	var b strings.Builder
	s.renderRecord(&b, r, 0)
	return b.String()
}

func (s Styles) renderRecord(b *strings.Builder, r *record.Record, depth int) {
	indent := strings.Repeat("  ", depth)

	title := r.Name()
	if r.Title() != r.Name() {
		title += " " + s.Dim.Render("("+r.Title()+")")
	}
	fmt.Fprintf(b, "%s%s\n", indent, s.Title.Render(title))

	for c := range r.Items() {
		fmt.Fprintf(b, "%s  %s %s %s\n",
			indent,
			s.Label.Render(c.Name()+":"),
			s.Value.Render(strings.Join(c.Values(), ", ")),
			s.Dim.Render(cellBadges(c)))
	}
	for _, rel := range r.Relations() {
		fmt.Fprintf(b, "%s  %s\n", indent, s.Dim.Render("["+rel+"]"))
		for _, child := range r.Children(rel) {
			s.renderRecord(b, child, depth+2)
		}
	}
}

// cellBadges summarizes a cell's type and notable features.
func cellBadges(c *cell.Cell) string {
	badges := []string{string(c.Type())}
	if c.Feature(cell.FeaturePrimary) != "" {
		badges = append(badges, "primary")
	}
	if c.Flag(cell.FeatureRequired) {
		badges = append(badges, "required")
	}
	if c.Flag(cell.FeatureMultiValue) {
		badges = append(badges, "multi")
	}
	if c.Flag(cell.FeatureSecret) {
		badges = append(badges, "secret")
	}
	return "<" + strings.Join(badges, ",") + ">"
}

// RenderGrid renders a grid as an aligned table. Columns follow the
// schema order; multi-values are comma-joined in their cell.
func (s Styles) RenderGrid(g *grid.Grid) string {
	schema := g.Schema()
	if schema == nil {
		return s.Dim.Render("(empty grid)") + "\n"
	}
	cols := schema.Names()

	widths := make([]int, len(cols))
	for i, name := range cols {
		widths[i] = lipgloss.Width(name)
	}
	body := make([][]string, 0, g.RowCount())
	for _, row := range g.Rows() {
		line := make([]string, len(cols))
		for i, name := range cols {
			line[i] = strings.Join(row[name], ", ")
			if w := lipgloss.Width(line[i]); w > widths[i] {
				widths[i] = w
			}
		}
		body = append(body, line)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(g.Name()))
	fmt.Fprintf(&b, " %s\n", s.Dim.Render(fmt.Sprintf("(%d rows)", g.RowCount())))

	for i, name := range cols {
		if i > 0 {
			b.WriteString(s.Border.Render(" │ "))
		}
		b.WriteString(s.Label.Render(pad(name, widths[i])))
	}
	b.WriteString("\n")
	for i := range cols {
		if i > 0 {
			b.WriteString(s.Border.Render("─┼─"))
		}
		b.WriteString(s.Border.Render(strings.Repeat("─", widths[i])))
	}
	b.WriteString("\n")
	for _, line := range body {
		for i, v := range line {
			if i > 0 {
				b.WriteString(s.Border.Render(" │ "))
			}
			b.WriteString(pad(v, widths[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
