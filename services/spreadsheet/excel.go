package spreadsheet

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/conselho/core/grade"
)

var errNoWorksheet = errors.New("no worksheet found")

// ExcelReader reads the first worksheet of an XLSX workbook as raw cell values.
type ExcelReader struct{}

var _ grade.GridReader = (*ExcelReader)(nil)

func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

func (ExcelReader) ReadGrid(r io.Reader) (grade.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errNoWorksheet
	}

	// raw values keep numbers as typed ("7.5"), not as displayed ("7,50")
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	return grade.Grid(rows), nil
}
