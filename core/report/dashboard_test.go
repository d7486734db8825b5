package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/conselho/core/grade"
)

func rec(class, student, subject string, g float64, term string) grade.Record {
	r := grade.Record{Class: class, Student: student, Subject: subject, Term: term}
	if g >= 0 {
		r.Grade = null.Float64From(g)
	}
	return r
}

func sampleTable() grade.Table {
	return grade.Table{
		rec("Turma: 5A INTEGRAL 9H ANUAL", "Ana", "MAT", 4, "1º Bimestre"),
		rec("Turma: 5A INTEGRAL 9H ANUAL", "Bia", "MAT", 8, "1º Bimestre"),
		rec("Turma: 5A INTEGRAL 9H ANUAL", "Ana", "MAT", 7, "2º Bimestre"),
		rec("Turma: 5A INTEGRAL 9H ANUAL", "Ana", "PORT", -1, "2º Bimestre"),
		rec("Turma: 6B", "Caio", "MAT", 9, "1º Bimestre"),
		rec("Turma: 6B", "Caio", "GEO", 3, "1º Bimestre"),
	}
}

func TestNewHeatmap(t *testing.T) {
	hm := NewHeatmap(sampleTable(), "1º Bimestre")

	assert.Equal(t, []string{"GEO", "MAT", "PORT"}, hm.Subjects)
	assert.Equal(t, []string{"Turma: 5A", "Turma: 6B"}, hm.Classes)
	assert.Equal(t, [][]null.Float64{
		{{}, null.Float64From(3)},
		{null.Float64From(6), null.Float64From(9)},
		{{}, {}},
	}, hm.Values)

	assert.Equal(t, HeatmapCell{}, hm.Cell(0, 0))
	assert.Equal(t, HeatmapCell{Text: "6.0", Color: "#4F6DB2"}, hm.Cell(1, 0))

	rows := hm.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "MAT", rows[1].Label)
	assert.Equal(t, Cell{Text: "6.0", Style: "background-color: #4F6DB2; color: white;"}, rows[1].Cells[0])
	assert.Equal(t, Cell{}, rows[2].Cells[1])

	// only classes having the term are columns
	hm = NewHeatmap(sampleTable(), "2º Bimestre")
	assert.Equal(t, []string{"Turma: 5A"}, hm.Classes)
}

func TestNewDashboard(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := NewDashboard(sampleTable(), Selection{})

		assert.Equal(t, Selection{
			Class:       "Turma: 5A INTEGRAL 9H ANUAL",
			Term:        grade.AllTerms,
			Student:     "Ana",
			HeatmapTerm: "1º Bimestre",
		}, d.Selection)
		assert.Equal(t, []string{"Turma: 5A INTEGRAL 9H ANUAL", "Turma: 6B"}, d.Classes)
		assert.Equal(t, []string{grade.AllTerms, "1º Bimestre", "2º Bimestre"}, d.ClassTerms)
		assert.Equal(t, "Médias da Turma Turma: 5A INTEGRAL 9H ANUAL por Disciplina", d.ClassTitle)
		assert.Equal(t, []grade.Mean{
			{Subject: "MAT", Term: "1º Bimestre", Grade: null.Float64From(6)},
			{Subject: "MAT", Term: "2º Bimestre", Grade: null.Float64From(7)},
			{Subject: "PORT", Term: "2º Bimestre"},
		}, d.ClassMeans)
		require.Len(t, d.ClassTable.Rows, 1) // PORT has no grade
		assert.Equal(t, []string{"Ana", "Bia"}, d.Students)
		assert.Equal(t, d.ClassMeans, d.AllClassMeans)
		assert.Equal(t, "Evolução das Notas - Ana", d.StudentTitle)
		assert.Equal(t, []grade.Mean{
			{Subject: "MAT", Term: "1º Bimestre", Grade: null.Float64From(4)},
			{Subject: "MAT", Term: "2º Bimestre", Grade: null.Float64From(7)},
			{Subject: "PORT", Term: "2º Bimestre"},
		}, d.StudentMeans)
		assert.Equal(t, []string{"1º Bimestre", "2º Bimestre"}, d.HeatmapTerms)
		assert.Equal(t, "Comparativo de Médias - 1º Bimestre", d.HeatmapTitle)
		assert.Len(t, d.HeatmapRows, 3)
	})

	t.Run("explicit selection", func(t *testing.T) {
		d := NewDashboard(sampleTable(), Selection{
			Class:       "Turma: 5A INTEGRAL 9H ANUAL",
			Term:        "2º Bimestre",
			Student:     "Bia",
			HeatmapTerm: "2º Bimestre",
		})
		assert.Equal(t, "Médias da Turma Turma: 5A INTEGRAL 9H ANUAL - 2º Bimestre", d.ClassTitle)
		assert.Equal(t, []grade.Mean{
			{Subject: "MAT", Term: "2º Bimestre", Grade: null.Float64From(7)},
			{Subject: "PORT", Term: "2º Bimestre"},
		}, d.ClassMeans)
		assert.Equal(t, "Bia", d.Selection.Student)
		assert.Equal(t, []grade.Mean{{Subject: "MAT", Term: "1º Bimestre", Grade: null.Float64From(8)}}, d.StudentMeans)
		assert.Equal(t, []string{"Turma: 5A"}, d.Heatmap.Classes)
	})

	t.Run("stale selection", func(t *testing.T) {
		// the student and term belong to another class
		d := NewDashboard(sampleTable(), Selection{Class: "Turma: 6B", Term: "2º Bimestre", Student: "Ana", HeatmapTerm: "9º Bimestre"})
		assert.Equal(t, grade.AllTerms, d.Selection.Term)
		assert.Equal(t, "Caio", d.Selection.Student)
		assert.Equal(t, "1º Bimestre", d.Selection.HeatmapTerm)
		assert.Equal(t, []string{grade.AllTerms, "1º Bimestre"}, d.ClassTerms)
	})

	t.Run("empty table", func(t *testing.T) {
		d := NewDashboard(nil, Selection{Class: "Turma: 5A"})
		assert.Equal(t, Selection{Term: grade.AllTerms}, d.Selection)
		assert.Empty(t, d.Classes)
		assert.Empty(t, d.ClassTable.Rows)
		assert.Empty(t, d.HeatmapRows)
	})
}
