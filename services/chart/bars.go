package chartsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/trezcool/conselho/core/grade"
)

const (
	gradeMin      = 0.0
	gradeMax      = 10.0
	passingGrade  = 5.0
	barWidth      = 26
	barSpacing    = 6
	chartHeight   = 600
	minChartWidth = 900
)

var (
	// ErrNoData is returned when there is no grade to plot.
	ErrNoData = errors.New("no grade to plot")

	// one color per term, in term order
	termColors = []drawing.Color{
		drawing.ColorFromHex("636EFA"),
		drawing.ColorFromHex("EF553B"),
		drawing.ColorFromHex("00CC96"),
		drawing.ColorFromHex("AB63FA"),
		drawing.ColorFromHex("FFA15A"),
		drawing.ColorFromHex("19D3F3"),
	}
	referenceColor = drawing.ColorFromHex("FF0000")
)

// RenderBars draws subject means as a PNG bar chart: one group of bars per subject, one color per term,
// on a fixed 0-10 scale with a dashed reference line at the passing grade.
func RenderBars(w io.Writer, title string, means []grade.Mean) error {
	terms := make([]string, 0)
	for _, m := range means {
		if m.Grade.Valid && !grade.Has(terms, m.Term) {
			terms = append(terms, m.Term)
		}
	}
	if len(terms) == 0 {
		return ErrNoData
	}
	grade.SortTerms(terms)

	bars := make([]chart.Value, 0, len(means)+len(means)/len(terms))
	var prevSubject string
	for _, m := range means {
		if !m.Grade.Valid {
			continue
		}
		if prevSubject != "" && m.Subject != prevSubject {
			bars = append(bars, spacer())
		}
		prevSubject = m.Subject

		color := termColors[termIndex(terms, m.Term)%len(termColors)]
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%s)", m.Subject, shortTerm(m.Term)),
			Value: m.Grade.Float64,
			Style: chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
		})
	}

	width := len(bars)*(barWidth+barSpacing) + 160
	if width < minChartWidth {
		width = minChartWidth
	}
	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 170}},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{TextRotationDegrees: 45.0, FontSize: 8},
		YAxis: chart.YAxis{
			Name:  "Nota",
			Range: &chart.ContinuousRange{Min: gradeMin, Max: gradeMax},
		},
		Bars:     bars,
		Elements: []chart.Renderable{referenceLine(passingGrade, "Média 5.0")},
	}
	return errors.Wrap(bc.Render(chart.PNG, w), "rendering bar chart")
}

// referenceLine draws a dashed horizontal line at `value` across the plot area.
func referenceLine(value float64, label string) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		y := box.Bottom - int(float64(box.Height())*(value-gradeMin)/(gradeMax-gradeMin))

		r.SetStrokeColor(referenceColor)
		r.SetStrokeWidth(2)
		r.SetStrokeDashArray([]float64{8, 6})
		r.MoveTo(box.Left, y)
		r.LineTo(box.Right, y)
		r.Stroke()
		r.SetStrokeDashArray(nil)

		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontColor(referenceColor)
		r.SetFontSize(10)
		r.Text(label, box.Left+4, y-4)
	}
}

func spacer() chart.Value {
	return chart.Value{
		Value: 0,
		Style: chart.Style{FillColor: drawing.ColorTransparent, StrokeColor: drawing.ColorTransparent},
	}
}

func termIndex(terms []string, term string) int {
	for i, t := range terms {
		if t == term {
			return i
		}
	}
	return 0
}

// shortTerm turns "2º Bimestre" into "2º".
func shortTerm(term string) string {
	for i, r := range term {
		if r == ' ' {
			return term[:i]
		}
	}
	return term
}
