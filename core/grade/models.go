// Package grade turns per-term spreadsheet exports into one typed grade table and projects it
// into the views used by the dashboard.
package grade

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

const (
	// AllTerms is the selection value that keeps every term.
	AllTerms = "Todos os Bimestres"

	termLabelFormat = "%dº Bimestre"
)

var (
	// ErrMissingTerm means the consolidated table has no term information; nothing can be rendered from it.
	ErrMissingTerm = errors.New("arquivo inválido: falta coluna Bimestre")

	termOrdinalRegex = regexp.MustCompile(`\d+`)
)

type (
	// Record is one student's grade in one subject for one term.
	Record struct {
		Class   string       `json:"Turma"`
		Student string       `json:"Aluno"`
		Subject string       `json:"Disciplina"`
		Grade   null.Float64 `json:"Nota"`
		Term    string       `json:"Bimestre"`
	}

	// Table is an ordered set of records. Projections never modify the receiver.
	Table []Record
)

// TermLabel formats the n-th term label, eg. "2º Bimestre".
func TermLabel(n int) string {
	return fmt.Sprintf(termLabelFormat, n)
}

// termOrdinal extracts the first integer found in a term label.
func termOrdinal(term string) (int, bool) {
	m := termOrdinalRegex.FindString(term)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortTerms orders term labels by ordinal, then alphabetically (so "10º" comes after "9º").
func SortTerms(terms []string) {
	sort.SliceStable(terms, func(i, j int) bool {
		ni, iok := termOrdinal(terms[i])
		nj, jok := termOrdinal(terms[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return terms[i] < terms[j]
	})
}

func (t Table) Len() int { return len(t) }

// Classes returns the sorted distinct class labels.
func (t Table) Classes() []string {
	return t.distinct(func(r Record) string { return r.Class })
}

// Students returns the sorted distinct student names.
func (t Table) Students() []string {
	return t.distinct(func(r Record) string { return r.Student })
}

// Subjects returns the sorted distinct subjects.
func (t Table) Subjects() []string {
	return t.distinct(func(r Record) string { return r.Subject })
}

// Terms returns the distinct term labels in term order.
func (t Table) Terms() []string {
	terms := t.distinct(func(r Record) string { return r.Term })
	SortTerms(terms)
	return terms
}

func (t Table) distinct(key func(Record) string) []string {
	seen := make(map[string]struct{})
	vals := make([]string, 0)
	for _, r := range t {
		k := key(r)
		if strings.TrimSpace(k) == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		vals = append(vals, k)
	}
	sort.Strings(vals)
	return vals
}

func (t Table) filter(keep func(Record) bool) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ForClass returns the records of one class.
func (t Table) ForClass(class string) Table {
	return t.filter(func(r Record) bool { return r.Class == class })
}

// ForTerm returns the records of one term. AllTerms (or an empty term) keeps everything.
func (t Table) ForTerm(term string) Table {
	if term == "" || term == AllTerms {
		return t.filter(func(Record) bool { return true })
	}
	return t.filter(func(r Record) bool { return r.Term == term })
}

// ForStudent returns the records of one student.
func (t Table) ForStudent(student string) Table {
	return t.filter(func(r Record) bool { return r.Student == student })
}

// Has reports whether a value is among the given options.
func Has(options []string, val string) bool {
	for _, o := range options {
		if o == val {
			return true
		}
	}
	return false
}
