package grade

import (
	"math"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"
)

type (
	// Grid is a raw, header-less sheet: rows of cell texts. A blank cell is a missing value.
	Grid [][]string

	// Layout is what DetectColumns found in a Grid.
	Layout struct {
		Class         string // class label line; empty when no marker was found
		HeaderRow     int
		HeaderFound   bool // false when HeaderRow is the fallback row
		Columns       []string
		DataStart     int
		StudentCol    int  // -1 when the sheet has no columns
		StudentByName bool // false when the column was picked by its share of text values
		GradeCols     []int
	}

	// Extractor reads one term sheet into grade records.
	Extractor struct {
		rules Rules
	}
)

func NewExtractor(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

func (g Grid) row(i int) []string {
	if i < 0 || i >= len(g) {
		return nil
	}
	return g[i]
}

func (g Grid) width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func cell(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// DetectColumns locates the class label, the header row, the student column and the grade columns.
func (ex *Extractor) DetectColumns(grid Grid) Layout {
	layout := Layout{StudentCol: -1}

	// class label
	for i := 0; i < ex.rules.ClassScanRows && i < len(grid); i++ {
		parts := make([]string, 0, len(grid[i]))
		for _, c := range grid[i] {
			if !isBlank(c) {
				parts = append(parts, strings.TrimSpace(c))
			}
		}
		if line := strings.Join(parts, " "); strings.Contains(line, ex.rules.ClassMarker) {
			layout.Class = strings.TrimSpace(line)
			break
		}
	}

	// header row
	layout.HeaderRow = ex.rules.FallbackHeaderRow
found:
	for i, row := range grid {
		for _, c := range row {
			if ex.rules.HeaderPattern.MatchString(c) {
				layout.HeaderRow = i
				layout.HeaderFound = true
				break found
			}
		}
	}
	layout.DataStart = layout.HeaderRow + 2

	// column names: subjects forward-filled over merged cells, suffixed by their sub-label
	header, subs := grid.row(layout.HeaderRow), grid.row(layout.HeaderRow+1)
	width := grid.width()
	if header == nil {
		width = 0
	}
	layout.Columns = make([]string, width)
	var subject string
	for c := 0; c < width; c++ {
		if s := cell(header, c); !isBlank(s) {
			subject = s
		}
		name := subject
		if sub := cell(subs, c); !isBlank(sub) {
			if name == "" {
				name = sub
			} else {
				name += "_" + sub
			}
		}
		layout.Columns[c] = name
	}
	if width == 0 {
		return layout
	}

	// student column
	var rows Grid
	if layout.DataStart < len(grid) {
		rows = grid[layout.DataStart:]
	}
	for c, name := range layout.Columns {
		if ex.rules.NamePattern.MatchString(name) && !ex.rules.isExcludedName(name) {
			layout.StudentCol = c
			layout.StudentByName = true
			break
		}
	}
	if !layout.StudentByName {
		layout.StudentCol = mostTextualColumn(rows, width)
	}

	// grade columns
	for c, name := range layout.Columns {
		if c != layout.StudentCol && ex.rules.GradePattern.MatchString(name) {
			layout.GradeCols = append(layout.GradeCols, c)
		}
	}
	return layout
}

// mostTextualColumn returns the column with the highest share of values containing a letter.
// Ties go to the leftmost column.
func mostTextualColumn(rows Grid, width int) int {
	best, bestRatio := 0, -1.0
	for c := 0; c < width; c++ {
		var ratio float64
		if len(rows) > 0 {
			var n int
			for _, row := range rows {
				if hasLetter(cell(row, c)) {
					n++
				}
			}
			ratio = float64(n) / float64(len(rows))
		}
		if ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	return best
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// Extract reads one term sheet. It never fails: a sheet without grade columns yields an empty table.
// Records are emitted column by column: every student for the first subject, then the next subject.
func (ex *Extractor) Extract(grid Grid, term string) Table {
	layout := ex.DetectColumns(grid)
	if layout.StudentCol < 0 || len(layout.GradeCols) == 0 {
		return Table{}
	}

	class := layout.Class
	if class == "" {
		class = ex.rules.UnknownClass
	}

	var rows Grid
	for i := layout.DataStart; i < len(grid); i++ {
		if !isBlank(cell(grid[i], layout.StudentCol)) {
			rows = append(rows, grid[i])
		}
	}

	table := make(Table, 0, len(rows)*len(layout.GradeCols))
	for _, c := range layout.GradeCols {
		subject := ex.cleanSubject(layout.Columns[c])
		concept := ex.rules.isConceptSubject(subject)
		for _, row := range rows {
			table = append(table, Record{
				Class:   class,
				Student: strings.TrimSpace(cell(row, layout.StudentCol)),
				Subject: subject,
				Grade:   ex.parseGrade(cell(row, c), concept),
				Term:    term,
			})
		}
	}
	return table
}

// cleanSubject strips grade suffixes and keeps the first line of the column name.
func (ex *Extractor) cleanSubject(col string) string {
	s := ex.rules.SubjectSuffixPattern.ReplaceAllString(col, "")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseGrade converts a cell to a grade. Concept codes override the numeric parse for concept-graded subjects.
func (ex *Extractor) parseGrade(raw string, concept bool) null.Float64 {
	if concept {
		if score, ok := ex.rules.Concepts[strings.ToUpper(strings.TrimSpace(raw))]; ok {
			return null.Float64From(score)
		}
	}
	if v, ok := ParseNumber(raw); ok {
		return null.Float64From(v)
	}
	return null.Float64{}
}

// ParseNumber parses a grade text. A comma is accepted as the decimal separator.
// Hex and underscore-separated forms are not grades.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
