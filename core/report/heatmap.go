package report

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/conselho/core/grade"
)

// Heatmap compares subject means across classes for one term.
type Heatmap struct {
	Term     string
	Subjects []string // every subject of the whole table, so terms line up
	Classes  []string // cleaned labels of the classes having this term
	Values   [][]null.Float64
}

type HeatmapCell struct {
	Text  string
	Color string // empty when there is no grade
}

// NewHeatmap averages the grades of `term` per subject and cleaned class label.
func NewHeatmap(t grade.Table, term string) Heatmap {
	hm := Heatmap{Term: term, Subjects: t.Subjects()}

	inTerm := t.ForTerm(term)
	cleaned := make(grade.Table, len(inTerm))
	for i, r := range inTerm {
		r.Class = CleanClass(r.Class)
		cleaned[i] = r
	}
	hm.Classes = cleaned.Classes()

	subjIdx := make(map[string]int, len(hm.Subjects))
	for i, s := range hm.Subjects {
		subjIdx[s] = i
	}
	classIdx := make(map[string]int, len(hm.Classes))
	for i, c := range hm.Classes {
		classIdx[c] = i
	}

	sums := make([][]float64, len(hm.Subjects))
	counts := make([][]int, len(hm.Subjects))
	for i := range sums {
		sums[i] = make([]float64, len(hm.Classes))
		counts[i] = make([]int, len(hm.Classes))
	}
	for _, r := range cleaned {
		si, sok := subjIdx[r.Subject]
		ci, cok := classIdx[r.Class]
		if !sok || !cok || !r.Grade.Valid {
			continue
		}
		sums[si][ci] += r.Grade.Float64
		counts[si][ci]++
	}

	hm.Values = make([][]null.Float64, len(hm.Subjects))
	for si := range hm.Subjects {
		hm.Values[si] = make([]null.Float64, len(hm.Classes))
		for ci := range hm.Classes {
			if n := counts[si][ci]; n > 0 {
				hm.Values[si][ci] = null.Float64From(sums[si][ci] / float64(n))
			}
		}
	}
	return hm
}

// Cell returns the formatted cell of subject row `si` and class column `ci`.
func (hm Heatmap) Cell(si, ci int) HeatmapCell {
	v := hm.Values[si][ci]
	if !v.Valid {
		return HeatmapCell{}
	}
	return HeatmapCell{Text: FormatGrade(v), Color: HeatmapColor(v.Float64)}
}

// Rows returns the heatmap ready to be rendered, one row per subject.
func (hm Heatmap) Rows() []TableRow {
	rows := make([]TableRow, len(hm.Subjects))
	for si, s := range hm.Subjects {
		row := TableRow{Label: s, Cells: make([]Cell, len(hm.Classes))}
		for ci := range hm.Classes {
			c := hm.Cell(si, ci)
			row.Cells[ci] = Cell{Text: c.Text}
			if c.Color != "" {
				row.Cells[ci].Style = "background-color: " + c.Color + "; color: white;"
			}
		}
		rows[si] = row
	}
	return rows
}
