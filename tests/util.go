// Package testutil holds fixtures shared by the tests: report-card sheets, XLSX workbooks and a test config.
package testutil

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/conselho/core"
)

const (
	TestPassword  = "conselho-2024"
	TestSecretKey = "test-secret-key"
)

// SheetStudent is one data row of a report card: the student name and one grade per subject.
type SheetStudent struct {
	Name   string
	Grades []string
}

// NewConfig returns a test configuration. An empty password means the access gate is not configured.
func NewConfig(password string) *core.Config {
	return &core.Config{
		AppName:   "Conselho",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: TestSecretKey,
		Password:  password,
		Server: core.ServerConfig{
			Address:         ":0",
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			SessionTTL:      time.Hour,
		},
		Upload: core.UploadConfig{
			MaxFiles:    40,
			MaxFileSize: 10 << 20,
		},
	}
}

// ReportCard builds the grid of a report-card export the way the school system lays it out:
// a few title lines, the class line, a two-row header (subject, then "M"/"F" sub-labels) and one row per student.
func ReportCard(class string, subjects []string, students ...SheetStudent) [][]string {
	grid := [][]string{
		{"COLÉGIO PORPHYRIO DA PAZ"},
		{"Ata de Conselho de Classe"},
		{"Turma: " + class},
		{"Período: Anual"},
	}

	header := []string{"Nº", "Aluno"}
	subs := []string{"", ""}
	for _, s := range subjects {
		header = append(header, s, "")
		subs = append(subs, "M", "F")
	}
	grid = append(grid, header, subs)

	for i, st := range students {
		row := []string{strconv.Itoa(i + 1), st.Name}
		for j := range subjects {
			var g string
			if j < len(st.Grades) {
				g = st.Grades[j]
			}
			row = append(row, g, "0")
		}
		grid = append(grid, row)
	}
	return grid
}

// NewWorkbook writes the rows to the first sheet of a new XLSX workbook and returns its bytes.
// Cells that parse as numbers are stored as numbers, like the school export does.
func NewWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]interface{}, len(row))
		for j, c := range row {
			if v, err := strconv.ParseFloat(c, 64); err == nil {
				cells[j] = v
			} else {
				cells[j] = c
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("NewWorkbook(): %v", err)
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			t.Fatalf("NewWorkbook(): %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("NewWorkbook(): %v", err)
	}
	return buf.Bytes()
}

// Logger is a core.Logger writing to the test log.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	if len(args) > 0 {
		msg += fmt.Sprintf(" %v", args)
	}
	l.t.Logf("%s: %s", level, msg)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }
