package grade

import (
	"math"
	"sort"
	"strings"

	"github.com/volatiletech/null/v8"
)

type (
	// Mean is the average grade of a subject in a term.
	Mean struct {
		Subject string
		Term    string
		Grade   null.Float64
	}

	// Pivot is a subject (rows) by term (columns) matrix of grades.
	Pivot struct {
		Terms []string
		Rows  []PivotRow
	}

	PivotRow struct {
		Subject string
		Cells   []null.Float64 // aligned with Pivot.Terms
	}
)

// Concat joins the tables in order.
func Concat(tables ...Table) Table {
	var n int
	for _, t := range tables {
		n += len(t)
	}
	out := make(Table, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// RankTerms renumbers terms per class: the term ordinals found in a class are dense-ranked,
// so a class whose sheets are the 3rd and 4th uploads still shows "1º Bimestre" and "2º Bimestre".
// Labels without an ordinal are kept as is. A record without a term is a structural error.
func RankTerms(t Table) (Table, error) {
	ordinals := make(map[string][]int)
	for _, r := range t {
		if strings.TrimSpace(r.Term) == "" {
			return nil, ErrMissingTerm
		}
		if n, ok := termOrdinal(r.Term); ok {
			ordinals[r.Class] = append(ordinals[r.Class], n)
		}
	}

	ranks := make(map[string]map[int]int, len(ordinals))
	for class, ns := range ordinals {
		sort.Ints(ns)
		rank := make(map[int]int)
		for _, n := range ns {
			if _, ok := rank[n]; !ok {
				rank[n] = len(rank) + 1
			}
		}
		ranks[class] = rank
	}

	out := make(Table, len(t))
	for i, r := range t {
		if n, ok := termOrdinal(r.Term); ok {
			r.Term = TermLabel(ranks[r.Class][n])
		}
		out[i] = r
	}
	return out, nil
}

// MeanBySubjectTerm averages the non-null grades per (subject, term), rounded to 2 decimals.
// Groups without any grade have a null mean. Results are sorted by subject, then term.
func MeanBySubjectTerm(t Table) []Mean {
	type key struct{ subject, term string }
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[key]*acc)
	keys := make([]key, 0)
	for _, r := range t {
		k := key{r.Subject, r.Term}
		a, ok := groups[k]
		if !ok {
			a = new(acc)
			groups[k] = a
			keys = append(keys, k)
		}
		if r.Grade.Valid {
			a.sum += r.Grade.Float64
			a.n++
		}
	}

	terms := make([]string, 0)
	for _, k := range keys {
		if !Has(terms, k.term) {
			terms = append(terms, k.term)
		}
	}
	SortTerms(terms)
	termIdx := make(map[string]int, len(terms))
	for i, term := range terms {
		termIdx[term] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].subject != keys[j].subject {
			return keys[i].subject < keys[j].subject
		}
		return termIdx[keys[i].term] < termIdx[keys[j].term]
	})

	means := make([]Mean, 0, len(keys))
	for _, k := range keys {
		m := Mean{Subject: k.subject, Term: k.term}
		if a := groups[k]; a.n > 0 {
			m.Grade = null.Float64From(Round(a.sum/float64(a.n), 2))
		}
		means = append(means, m)
	}
	return means
}

// NewPivot lays means out as subjects by terms. Subjects without any grade are left out.
func NewPivot(means []Mean) Pivot {
	terms := make([]string, 0)
	subjects := make([]string, 0)
	for _, m := range means {
		if !Has(terms, m.Term) {
			terms = append(terms, m.Term)
		}
		if !Has(subjects, m.Subject) {
			subjects = append(subjects, m.Subject)
		}
	}
	SortTerms(terms)
	sort.Strings(subjects)

	termIdx := make(map[string]int, len(terms))
	for i, term := range terms {
		termIdx[term] = i
	}
	rowIdx := make(map[string]int, len(subjects))
	rows := make([]PivotRow, len(subjects))
	for i, s := range subjects {
		rowIdx[s] = i
		rows[i] = PivotRow{Subject: s, Cells: make([]null.Float64, len(terms))}
	}
	for _, m := range means {
		rows[rowIdx[m.Subject]].Cells[termIdx[m.Term]] = m.Grade
	}

	kept := rows[:0]
	for _, row := range rows {
		for _, c := range row.Cells {
			if c.Valid {
				kept = append(kept, row)
				break
			}
		}
	}
	return Pivot{Terms: terms, Rows: kept}
}

// Round rounds half to even to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
