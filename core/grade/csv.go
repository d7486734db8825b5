package grade

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

const (
	colClass   = "Turma"
	colStudent = "Aluno"
	colSubject = "Disciplina"
	colGrade   = "Nota"
	colTerm    = "Bimestre"
)

// CSVHeader is the header row of the consolidated export.
var CSVHeader = []string{colClass, colStudent, colSubject, colGrade, colTerm}

// WriteCSV writes the table as UTF-8, comma-delimited CSV with a header row. Null grades are empty fields.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, r := range t {
		var g string
		if r.Grade.Valid {
			g = strconv.FormatFloat(r.Grade.Float64, 'f', -1, 64)
		}
		if err := cw.Write([]string{r.Class, r.Student, r.Subject, g, r.Term}); err != nil {
			return errors.Wrap(err, "writing record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing")
}

// ReadCSV reads a consolidated export back. Columns are matched by header name;
// a file without the term column is rejected with ErrMissingTerm.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return Table{}, nil
		}
		return nil, errors.Wrap(err, "reading header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx[colTerm]; !ok {
		return nil, ErrMissingTerm
	}
	for _, col := range CSVHeader {
		if _, ok := idx[col]; !ok {
			return nil, errors.Errorf("missing column %q", col)
		}
	}

	t := make(Table, 0)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading record")
		}
		get := func(col string) string { return cell(row, idx[col]) }

		rec := Record{
			Class:   get(colClass),
			Student: get(colStudent),
			Subject: get(colSubject),
			Term:    get(colTerm),
		}
		if v, ok := ParseNumber(get(colGrade)); ok {
			rec.Grade = null.Float64From(v)
		}
		t = append(t, rec)
	}
	return t, nil
}
