package grade

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/conselho/core"
)

type (
	// File is an uploaded term spreadsheet.
	File interface {
		Name() string
		Open() (io.ReadCloser, error)
	}

	// GridReader decodes a spreadsheet into a Grid.
	GridReader interface {
		ReadGrid(r io.Reader) (Grid, error)
	}

	// FileError reports a file that could not be read. Its contribution to the batch is empty.
	FileError struct {
		File string
		Err  error
	}

	// FileSummary describes what one file contributed.
	FileSummary struct {
		File    string
		Term    string // term assigned by upload order, before per-class ranking
		Class   string
		Records int
	}

	BatchResult struct {
		Table  Table
		Files  []FileSummary
		Errors []FileError
	}

	// Batch extracts a set of uploaded files, one term per file.
	Batch struct {
		extractor *Extractor
		reader    GridReader
		logger    core.Logger
	}
)

func (e FileError) Error() string {
	return fmt.Sprintf("erro ao ler %s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

func NewBatch(extractor *Extractor, reader GridReader, logger core.Logger) *Batch {
	return &Batch{extractor: extractor, reader: reader, logger: logger}
}

// Run processes the files sorted by name; the i-th file is labeled "iº Bimestre" before terms are ranked per class.
// A file that fails to read is reported in BatchResult.Errors and the others go on.
// Only a structural problem with the consolidated table (ErrMissingTerm) is returned as an error.
func (b *Batch) Run(files []File) (BatchResult, error) {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	var res BatchResult
	tables := make([]Table, 0, len(sorted))
	for i, f := range sorted {
		term := TermLabel(i + 1)
		grid, err := b.read(f)
		if err != nil {
			fErr := FileError{File: f.Name(), Err: err}
			b.logger.Warn("batch: skipping unreadable file", fErr)
			res.Errors = append(res.Errors, fErr)
			continue
		}

		t := b.extractor.Extract(grid, term)
		summary := FileSummary{File: f.Name(), Term: term, Records: len(t)}
		if len(t) > 0 {
			summary.Class = t[0].Class
		}
		b.logger.Info(fmt.Sprintf("batch: %s -> %d records (%s, %s)", f.Name(), len(t), summary.Class, term))
		res.Files = append(res.Files, summary)
		tables = append(tables, t)
	}

	table, err := RankTerms(Concat(tables...))
	if err != nil {
		return res, errors.Wrap(err, "ranking terms")
	}
	res.Table = table
	return res, nil
}

func (b *Batch) read(f File) (Grid, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer rc.Close()

	grid, err := b.reader.ReadGrid(rc)
	if err != nil {
		return nil, errors.Wrap(err, "reading spreadsheet")
	}
	return grid, nil
}
