package tests

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/tests"
)

const (
	class5A = "Turma: 5A INTEGRAL 9H ANUAL"
	class6B = "Turma: 6B"
)

func termFiles(t *testing.T) []upload {
	subjects := []string{"MATEMÁTICA", "PORTUGUÊS"}
	return []upload{
		{name: "6B_3bim.xlsx", data: testutil.NewWorkbook(t, testutil.ReportCard("6B", []string{"MATEMÁTICA"},
			testutil.SheetStudent{Name: "Caio", Grades: []string{"9"}},
		))},
		{name: "notes.txt", data: []byte("not a spreadsheet")},
		{name: "5A_2bim.xlsx", data: testutil.NewWorkbook(t, testutil.ReportCard("5A INTEGRAL 9H ANUAL", subjects,
			testutil.SheetStudent{Name: "Ana", Grades: []string{"7", "8.5"}},
			testutil.SheetStudent{Name: "Bruno", Grades: []string{"5", ""}},
		))},
		{name: "broken.xlsx", data: []byte("PK not really a zip")},
		{name: "5A_1bim.xlsx", data: testutil.NewWorkbook(t, testutil.ReportCard("5A INTEGRAL 9H ANUAL", subjects,
			testutil.SheetStudent{Name: "Ana", Grades: []string{"4", "8"}},
			testutil.SheetStudent{Name: "Bruno", Grades: []string{"6", "9"}},
		))},
	}
}

func loggedIn(t *testing.T) *browser {
	b := newBrowser(t, newServer(t, testutil.TestPassword))
	require.Equal(t, http.StatusSeeOther, b.login(testutil.TestPassword).Code)
	return b
}

// tableCells returns the text of every body cell of a table, row by row.
func tableCells(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, texts(tr.Find("td")))
	})
	return rows
}

func Test_dashboardApi_upload(t *testing.T) {
	b := loggedIn(t)

	rec := b.upload(termFiles(t)...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	notices := texts(doc.Find(".notice"))
	require.Len(t, notices, 2)
	assert.Equal(t, "notes.txt ignorado: apenas arquivos .xlsx são aceitos", notices[0])
	assert.True(t, strings.HasPrefix(notices[1], "erro ao ler broken.xlsx: "), notices[1])
	assert.Len(t, doc.Find("#files li").Nodes, 3)

	assert.Equal(t, []string{class5A, class6B}, texts(doc.Find("select#turma option")))
	assert.Equal(t, class5A, doc.Find("select#turma option[selected]").Text())
	assert.Equal(t, []string{grade.AllTerms, "1º Bimestre", "2º Bimestre"}, texts(doc.Find("select#bimestre option")))

	// by class
	classTable := doc.Find("#class-table table")
	assert.Equal(t, []string{"Disciplina", "1º Bimestre", "2º Bimestre"}, texts(classTable.Find("thead th")))
	assert.Equal(t, [][]string{
		{"MATEMÁTICA", "5.0", "6.0"},
		{"PORTUGUÊS", "8.5", "8.5"},
	}, tableCells(classTable))
	style, _ := classTable.Find("tbody tr").Eq(1).Find("td").Eq(1).Attr("style")
	assert.Equal(t, "background-color: #003366; color: white;", style)

	// by student
	assert.Equal(t, []string{"Ana", "Bruno"}, texts(doc.Find("select#aluno option")))
	studentTable := doc.Find("#student-table table")
	assert.Equal(t, [][]string{
		{"MATEMÁTICA", "4.0", "7.0"},
		{"PORTUGUÊS", "8.0", "8.5"},
	}, tableCells(studentTable))
	style, _ = studentTable.Find("tbody tr").Eq(0).Find("td").Eq(1).Attr("style")
	assert.Equal(t, "background-color: #b30000; color: white;", style)

	// across classes: 6B's only sheet is its 1st term
	heatmap := doc.Find("#heatmap-table")
	assert.Equal(t, []string{"Disciplina", "Turma: 5A", "Turma: 6B"}, texts(heatmap.Find("thead th")))
	assert.Equal(t, [][]string{
		{"MATEMÁTICA", "5.0", "9.0"},
		{"PORTUGUÊS", "8.5", ""},
	}, tableCells(heatmap))
	assert.Equal(t, "Comparativo de Médias - 1º Bimestre", strings.TrimSpace(doc.Find("#heatmap h4").Text()))

	// charts follow the selection
	for _, id := range []string{"#class-chart", "#class-mean-chart", "#student-chart"} {
		src, ok := doc.Find(id).Attr("src")
		require.True(t, ok, id)
		rec := b.get(src)
		assert.Equal(t, http.StatusOK, rec.Code, src)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"), src)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")), src)
	}

	// notices are shown once
	doc = document(t, b.get("/"))
	assert.Empty(t, texts(doc.Find(".notice")))
}

func Test_dashboardApi_selection(t *testing.T) {
	b := loggedIn(t)
	require.Equal(t, http.StatusSeeOther, b.upload(termFiles(t)...).Code)

	q := url.Values{"turma": {class5A}, "bimestre": {"2º Bimestre"}, "aluno": {"Bruno"}, "heatmap": {"2º Bimestre"}}
	rec := b.get("/?" + q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	assert.Equal(t, "Médias da Turma "+class5A+" - 2º Bimestre", strings.TrimSpace(doc.Find("#by-class h4").First().Text()))
	assert.Equal(t, [][]string{
		{"MATEMÁTICA", "6.0"},
		{"PORTUGUÊS", "8.5"},
	}, tableCells(doc.Find("#class-table table")))
	assert.Equal(t, "Bruno", doc.Find("select#aluno option[selected]").Text())
	assert.Equal(t, [][]string{
		{"MATEMÁTICA", "6.0", "5.0"},
		{"PORTUGUÊS", "9.0", ""},
	}, tableCells(doc.Find("#student-table table")))
	assert.Equal(t, []string{"Disciplina", "Turma: 5A"}, texts(doc.Find("#heatmap-table thead th")))

	// switching class resets the picks that do not exist there
	rec = b.get("/?" + url.Values{"turma": {class6B}, "aluno": {"Ana"}}.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	doc = document(t, rec)
	assert.Equal(t, class6B, doc.Find("select#turma option[selected]").Text())
	assert.Equal(t, []string{grade.AllTerms, "1º Bimestre"}, texts(doc.Find("select#bimestre option")))
	assert.Equal(t, "Caio", doc.Find("select#aluno option[selected]").Text())

	// invalid term
	req, _ := http.NewRequest(http.MethodGet, "/?bimestre=bogus", nil)
	req.Header.Set("Accept", "application/json")
	rec = b.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"bimestre": "bimestre deve ser um bimestre válido"}`, rec.Body.String())
}

func Test_dashboardApi_uploadErrors(t *testing.T) {
	b := loggedIn(t)

	rec := b.upload()
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Selecione ao menos um arquivo XLSX.", strings.TrimSpace(document(t, rec).Find("#error").Text()))

	rec = b.postForm("/upload", url.Values{"files": {"a.xlsx"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// only unreadable files: nothing to show, one notice each
	require.Equal(t, http.StatusSeeOther, b.upload(upload{name: "a.xlsx", data: []byte("nope")}, upload{name: "b.csv"}).Code)
	doc := document(t, b.get("/"))
	assert.Len(t, doc.Find(".notice").Nodes, 2)
	assert.Equal(t, 1, doc.Find("#empty").Length())
	assert.Equal(t, http.StatusNotFound, b.get("/export.csv").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/charts/class.png").Code)
}

func Test_dashboardApi_replaceTable(t *testing.T) {
	b := loggedIn(t)
	require.Equal(t, http.StatusSeeOther, b.upload(termFiles(t)...).Code)

	only6B := termFiles(t)[0]
	require.Equal(t, http.StatusSeeOther, b.upload(only6B).Code)

	doc := document(t, b.get("/"))
	assert.Equal(t, []string{class6B}, texts(doc.Find("select#turma option")))
}

func Test_dashboardApi_exportCSV(t *testing.T) {
	b := loggedIn(t)
	require.Equal(t, http.StatusSeeOther, b.upload(termFiles(t)...).Code)

	rec := b.get("/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dados_conselho.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Turma,Aluno,Disciplina,Nota,Bimestre\n"))

	table, err := grade.ReadCSV(rec.Body)
	require.NoError(t, err)
	assert.Len(t, table, 9)
	assert.Equal(t, []string{class5A, class6B}, table.Classes())
	assert.Equal(t, []string{"1º Bimestre"}, table.ForClass(class6B).Terms())
	assert.Equal(t, []string{"1º Bimestre", "2º Bimestre"}, table.ForClass(class5A).Terms())
}
