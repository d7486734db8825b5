package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/volatiletech/null/v8"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/trezcool/conselho/core/grade"
)

const (
	lowGrade  = 5.0
	highGrade = 7.0
)

// CellStyle is the inline style of a grade cell. The zero value means unstyled.
type CellStyle struct {
	Background string
	Color      string
}

func (s CellStyle) CSS() string {
	if s.Background == "" {
		return ""
	}
	return fmt.Sprintf("background-color: %s; color: %s;", s.Background, s.Color)
}

var (
	lowStyle  = CellStyle{Background: "#b30000", Color: "white"}
	highStyle = CellStyle{Background: "#003366", Color: "white"}

	heatmapStops = []struct {
		at    float64
		color drawing.Color
	}{
		{0.0, drawing.ColorFromHex("8B0000")},
		{0.4, drawing.ColorFromHex("A16D63")},
		{0.5, drawing.ColorFromHex("7398ED")},
		{0.6, drawing.ColorFromHex("4F6DB2")},
		{1.0, drawing.ColorFromHex("006400")},
	}
	heatmapMin, heatmapMax = 0.0, 10.0

	classNoiseRegex = regexp.MustCompile(`(?i)INTEGRAL 9H ANUAL`)
)

// GradeStyle highlights grades below 5 and from 7 up.
func GradeStyle(v null.Float64) CellStyle {
	switch {
	case !v.Valid:
		return CellStyle{}
	case v.Float64 < lowGrade:
		return lowStyle
	case v.Float64 >= highGrade:
		return highStyle
	}
	return CellStyle{}
}

// FormatGrade formats a grade with one decimal; null grades are blank.
func FormatGrade(v null.Float64) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.1f", v.Float64)
}

// HeatmapColor maps a grade on the 0-10 scale to the heatmap color ramp, as a CSS hex color.
func HeatmapColor(v float64) string {
	pos := (v - heatmapMin) / (heatmapMax - heatmapMin)
	if pos <= 0 {
		return hex(heatmapStops[0].color)
	}
	last := heatmapStops[len(heatmapStops)-1]
	if pos >= 1 {
		return hex(last.color)
	}
	for i := 1; i < len(heatmapStops); i++ {
		lo, hi := heatmapStops[i-1], heatmapStops[i]
		if pos <= hi.at {
			f := (pos - lo.at) / (hi.at - lo.at)
			return hex(drawing.Color{
				R: lerp(lo.color.R, hi.color.R, f),
				G: lerp(lo.color.G, hi.color.G, f),
				B: lerp(lo.color.B, hi.color.B, f),
				A: 255,
			})
		}
	}
	return hex(last.color)
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}

func hex(c drawing.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// CleanClass strips the shift/period noise from a class label, eg. "Turma: 5A INTEGRAL 9H ANUAL" -> "Turma: 5A".
func CleanClass(class string) string {
	return strings.TrimSpace(classNoiseRegex.ReplaceAllString(class, ""))
}

// Cell is a formatted, styled grade.
type Cell struct {
	Text  string
	Style string
}

func pivotCell(v null.Float64) Cell {
	return Cell{Text: FormatGrade(v), Style: GradeStyle(v).CSS()}
}

// Table is a pivot ready to be rendered.
type Table struct {
	Columns []string
	Rows    []TableRow
}

type TableRow struct {
	Label string
	Cells []Cell
}

// NewTable formats and styles a pivot.
func NewTable(p grade.Pivot) Table {
	tbl := Table{Columns: p.Terms, Rows: make([]TableRow, 0, len(p.Rows))}
	for _, row := range p.Rows {
		tr := TableRow{Label: row.Subject, Cells: make([]Cell, len(row.Cells))}
		for i, c := range row.Cells {
			tr.Cells[i] = pivotCell(c)
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return tbl
}
