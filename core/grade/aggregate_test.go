package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func rec(class, student, subject string, grade interface{}, term string) Record {
	r := Record{Class: class, Student: student, Subject: subject, Term: term}
	switch g := grade.(type) {
	case float64:
		r.Grade = null.Float64From(g)
	case int:
		r.Grade = null.Float64From(float64(g))
	}
	return r
}

func termsOf(t Table) []string {
	terms := make([]string, len(t))
	for i, r := range t {
		terms[i] = r.Term
	}
	return terms
}

func TestRankTerms(t *testing.T) {
	t.Run("ranks are class relative", func(t *testing.T) {
		table := Concat(
			Table{rec("A", "Ana", "MAT", 5, "1º Bimestre")},
			Table{rec("B", "Bia", "MAT", 5, "1º Bimestre")},
			Table{rec("B", "Bia", "MAT", 6, "2º Bimestre")},
			Table{rec("A", "Ana", "MAT", 7, "3º Bimestre"), rec("B", "Bia", "MAT", 7, "3º Bimestre")},
			Table{rec("B", "Bia", "MAT", 8, "4º Bimestre")},
		)
		got, err := RankTerms(table)
		require.NoError(t, err)

		assert.Equal(t, []string{"1º Bimestre", "2º Bimestre"}, got.ForClass("A").Terms())
		assert.Equal(t, []string{"1º Bimestre", "2º Bimestre", "3º Bimestre", "4º Bimestre"}, got.ForClass("B").Terms())
		assert.Equal(t,
			[]string{"1º Bimestre", "1º Bimestre", "2º Bimestre", "2º Bimestre", "3º Bimestre", "4º Bimestre"},
			termsOf(got),
		)
		// the input is left untouched
		assert.Equal(t, "3º Bimestre", table[3].Term)
	})

	t.Run("already dense", func(t *testing.T) {
		table := Table{
			rec("5A", "Ana", "MAT", 5, "1º Bimestre"),
			rec("5A", "Ana", "MAT", 6, "2º Bimestre"),
		}
		got, err := RankTerms(table)
		require.NoError(t, err)
		assert.Equal(t, []string{"1º Bimestre", "2º Bimestre"}, termsOf(got))
	})

	t.Run("labels without ordinal are kept", func(t *testing.T) {
		table := Table{
			rec("5A", "Ana", "MAT", 5, "Recuperação"),
			rec("5A", "Ana", "MAT", 6, "4º Bimestre"),
		}
		got, err := RankTerms(table)
		require.NoError(t, err)
		assert.Equal(t, []string{"Recuperação", "1º Bimestre"}, termsOf(got))
	})

	t.Run("missing term", func(t *testing.T) {
		table := Table{rec("5A", "Ana", "MAT", 5, "1º Bimestre"), rec("5A", "Ana", "MAT", 5, " ")}
		_, err := RankTerms(table)
		assert.Equal(t, ErrMissingTerm, err)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := RankTerms(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestTable_projections(t *testing.T) {
	table := Table{
		rec("5B", "Caio", "MAT", 5, "2º Bimestre"),
		rec("5A", "Ana", "PORT", 6, "10º Bimestre"),
		rec("5A", "Bia", "MAT", nil, "1º Bimestre"),
		rec("", "", "", nil, "2º Bimestre"),
		rec("5A", "Ana", "MAT", 7, "2º Bimestre"),
	}

	assert.Equal(t, []string{"5A", "5B"}, table.Classes())
	assert.Equal(t, []string{"Ana", "Bia", "Caio"}, table.Students())
	assert.Equal(t, []string{"MAT", "PORT"}, table.Subjects())
	assert.Equal(t, []string{"1º Bimestre", "2º Bimestre", "10º Bimestre"}, table.Terms())

	assert.Len(t, table.ForClass("5A"), 3)
	assert.Len(t, table.ForTerm("2º Bimestre"), 3)
	assert.Len(t, table.ForTerm(AllTerms), 5)
	assert.Len(t, table.ForTerm(""), 5)
	assert.Len(t, table.ForStudent("Ana"), 2)
	assert.Empty(t, table.ForClass("9Z"))
}

func TestSortTerms(t *testing.T) {
	terms := []string{"Recuperação", "10º Bimestre", "2º Bimestre", "1º Bimestre", "Anual"}
	SortTerms(terms)
	assert.Equal(t, []string{"1º Bimestre", "2º Bimestre", "10º Bimestre", "Anual", "Recuperação"}, terms)
}

func TestMeanBySubjectTerm(t *testing.T) {
	table := Table{
		rec("5A", "Ana", "PORT", 6, "2º Bimestre"),
		rec("5A", "Ana", "MAT", 7, "2º Bimestre"),
		rec("5A", "Bia", "MAT", 8.5, "2º Bimestre"),
		rec("5A", "Caio", "MAT", nil, "2º Bimestre"),
		rec("5A", "Ana", "MAT", 1, "1º Bimestre"),
		rec("5A", "Bia", "MAT", 2, "1º Bimestre"),
		rec("5A", "Caio", "MAT", 2, "1º Bimestre"),
		rec("5A", "Ana", "ARTE", nil, "1º Bimestre"),
	}

	got := MeanBySubjectTerm(table)
	want := []Mean{
		{Subject: "ARTE", Term: "1º Bimestre"},
		{Subject: "MAT", Term: "1º Bimestre", Grade: null.Float64From(1.67)},
		{Subject: "MAT", Term: "2º Bimestre", Grade: null.Float64From(7.75)},
		{Subject: "PORT", Term: "2º Bimestre", Grade: null.Float64From(6)},
	}
	assert.Equal(t, want, got)
	assert.Empty(t, MeanBySubjectTerm(nil))
}

func TestNewPivot(t *testing.T) {
	means := []Mean{
		{Subject: "ARTE", Term: "1º Bimestre"},
		{Subject: "MAT", Term: "1º Bimestre", Grade: null.Float64From(1.67)},
		{Subject: "MAT", Term: "2º Bimestre", Grade: null.Float64From(7.75)},
		{Subject: "PORT", Term: "2º Bimestre", Grade: null.Float64From(6)},
	}

	p := NewPivot(means)
	assert.Equal(t, []string{"1º Bimestre", "2º Bimestre"}, p.Terms)
	require.Len(t, p.Rows, 2) // ARTE has no grade
	assert.Equal(t, PivotRow{Subject: "MAT", Cells: []null.Float64{null.Float64From(1.67), null.Float64From(7.75)}}, p.Rows[0])
	assert.Equal(t, PivotRow{Subject: "PORT", Cells: []null.Float64{{}, null.Float64From(6)}}, p.Rows[1])

	empty := NewPivot(nil)
	assert.Empty(t, empty.Terms)
	assert.Empty(t, empty.Rows)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.67, Round(5.0/3, 2))
	assert.Equal(t, 2.5, Round(2.499999, 2))
	assert.Equal(t, 7.0, Round(6.996, 2))
	// halves go to the even neighbour
	assert.Equal(t, 2.0, Round(2.5, 0))
	assert.Equal(t, 4.0, Round(3.5, 0))
	assert.Equal(t, 6.12, Round(6.125, 2))
	assert.Equal(t, 6.38, Round(6.375, 2))
}
