// Package report builds the dashboard views from a consolidated grade table.
// Every view is recomputed from the table and the current selection; nothing is cached.
package report

import (
	"fmt"

	"github.com/trezcool/conselho/core/grade"
)

// Selection is what the user picked in the dashboard controls. Empty fields fall back to the first option.
type Selection struct {
	Class       string `query:"turma" form:"turma"`
	Term        string `query:"bimestre" form:"bimestre" validate:"term"`
	Student     string `query:"aluno" form:"aluno"`
	HeatmapTerm string `query:"heatmap" form:"heatmap" validate:"term"`
}

// Dashboard holds the three tabs of the dashboard for one selection.
type (
	Dashboard struct {
		Selection Selection
		Classes   []string

		// by class
		ClassTerms []string // AllTerms first
		ClassTitle string
		ClassMeans []grade.Mean
		ClassTable Table

		// by student
		Students       []string
		ClassMeanTitle string
		AllClassMeans  []grade.Mean
		StudentTitle   string
		StudentMeans   []grade.Mean
		StudentTable   Table

		// across classes
		HeatmapTerms []string
		HeatmapTitle string
		Heatmap      Heatmap
		HeatmapRows  []TableRow
	}
)

// Normalize resolves the selection against the table: unknown or empty picks become the first available option.
func (sel Selection) Normalize(t grade.Table) Selection {
	classes := t.Classes()
	if !grade.Has(classes, sel.Class) {
		sel.Class = first(classes)
	}
	classTable := t.ForClass(sel.Class)

	if sel.Term != grade.AllTerms && !grade.Has(classTable.Terms(), sel.Term) {
		sel.Term = grade.AllTerms
	}
	if students := classTable.Students(); !grade.Has(students, sel.Student) {
		sel.Student = first(students)
	}
	if terms := t.Terms(); !grade.Has(terms, sel.HeatmapTerm) {
		sel.HeatmapTerm = first(terms)
	}
	return sel
}

// NewDashboard computes every view for the selection.
func NewDashboard(t grade.Table, sel Selection) Dashboard {
	sel = sel.Normalize(t)
	d := Dashboard{Selection: sel, Classes: t.Classes()}

	classTable := t.ForClass(sel.Class)

	d.ClassTerms = append([]string{grade.AllTerms}, classTable.Terms()...)
	d.ClassMeans = grade.MeanBySubjectTerm(classTable.ForTerm(sel.Term))
	d.ClassTable = NewTable(grade.NewPivot(d.ClassMeans))
	d.ClassTitle = ClassTitle(sel.Class, sel.Term)

	d.Students = classTable.Students()
	d.AllClassMeans = grade.MeanBySubjectTerm(classTable)
	d.ClassMeanTitle = fmt.Sprintf("Média da Turma %s", sel.Class)
	d.StudentMeans = grade.MeanBySubjectTerm(classTable.ForStudent(sel.Student))
	d.StudentTable = NewTable(grade.NewPivot(d.StudentMeans))
	d.StudentTitle = StudentTitle(sel.Student)

	d.HeatmapTerms = t.Terms()
	d.Heatmap = NewHeatmap(t, sel.HeatmapTerm)
	d.HeatmapRows = d.Heatmap.Rows()
	d.HeatmapTitle = fmt.Sprintf("Comparativo de Médias - %s", sel.HeatmapTerm)
	return d
}

func ClassTitle(class, term string) string {
	if term == "" || term == grade.AllTerms {
		return fmt.Sprintf("Médias da Turma %s por Disciplina", class)
	}
	return fmt.Sprintf("Médias da Turma %s - %s", class, term)
}

func StudentTitle(student string) string {
	return fmt.Sprintf("Evolução das Notas - %s", student)
}

func first(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
