package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/report"
)

func (cli *commandLine) summary(in string) error {
	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(err, "opening csv")
	}
	defer f.Close()

	t, err := grade.ReadCSV(f)
	if err != nil {
		return err
	}

	for _, class := range t.Classes() {
		pivot := grade.NewPivot(grade.MeanBySubjectTerm(t.ForClass(class)))

		fmt.Fprintf(cli.out, "\n%s\n", report.ClassTitle(class, grade.AllTerms))
		table := tablewriter.NewWriter(cli.out)
		table.SetHeader(append([]string{"Disciplina"}, pivot.Terms...))
		for _, row := range pivot.Rows {
			line := make([]string, 0, len(row.Cells)+1)
			line = append(line, row.Subject)
			for _, c := range row.Cells {
				line = append(line, report.FormatGrade(c))
			}
			table.Append(line)
		}
		table.Render()
	}
	return nil
}
