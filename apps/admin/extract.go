package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core/grade"
)

// localFile is a spreadsheet on disk.
type localFile string

func (f localFile) Name() string { return filepath.Base(string(f)) }

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

func (cli *commandLine) extract(paths []string, out string) error {
	files := make([]grade.File, len(paths))
	for i, p := range paths {
		files[i] = localFile(p)
	}

	res, err := cli.batch.Run(files)
	if err != nil {
		return err
	}
	for _, fErr := range res.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", fErr)
	}

	w := cli.out
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer f.Close()
		w = f
	}
	if err := grade.WriteCSV(w, res.Table); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	if out != "" {
		fmt.Fprintf(cli.out, "%d records from %d files written to %s\n", len(res.Table), len(res.Files), out)
	}
	return nil
}
