package grade

import (
	"regexp"
	"strings"

	"github.com/trezcool/conselho/core"
)

// Rules hold the heuristics used to read a term spreadsheet.
// The defaults match the school's report-card export template.
type Rules struct {
	// ClassScanRows is how many leading rows are searched for ClassMarker.
	ClassScanRows int
	ClassMarker   string
	UnknownClass  string

	HeaderPattern     *regexp.Regexp
	FallbackHeaderRow int

	NamePattern    *regexp.Regexp
	NameExclusions []string // upper-cased substrings disqualifying a name column

	GradePattern         *regexp.Regexp
	SubjectSuffixPattern *regexp.Regexp

	ConceptSubjects []string           // compared upper-cased
	Concepts        map[string]float64 // upper-cased concept -> score
}

func DefaultRules() Rules {
	return Rules{
		ClassScanRows:        15,
		ClassMarker:          "Turma:",
		UnknownClass:         "Turma Desconhecida",
		HeaderPattern:        regexp.MustCompile(`(?i)ALUNO|Disciplina`),
		FallbackHeaderRow:    10,
		NamePattern:          regexp.MustCompile(`(?i)aluno|nome`),
		NameExclusions:       []string{"EP", "ES", "EI", "EE", "ENGAJAMENTO", "PARCIAL", "PRESENÇA", "FALTA"},
		GradePattern:         regexp.MustCompile(`(?i)(MÉDIA|_M\n?$|M\n?$|NOTA)`),
		SubjectSuffixPattern: regexp.MustCompile(`(?i)(_M\n?$|_MÉDIA|MÉDIA|NOTA)`),
		ConceptSubjects:      []string{"ESPORTE-MÚSICA-ARTE"},
		Concepts:             map[string]float64{"ET": 10, "ES": 5, "EP": 4},
	}
}

// RulesFromConfig returns the default rules overridden by the configured values.
func RulesFromConfig(conf core.ExtractConfig) Rules {
	rules := DefaultRules()
	if conf.ClassScanRows > 0 {
		rules.ClassScanRows = conf.ClassScanRows
	}
	if conf.FallbackHeaderRow > 0 {
		rules.FallbackHeaderRow = conf.FallbackHeaderRow
	}
	if len(conf.ConceptSubjects) > 0 {
		subjects := make([]string, 0, len(conf.ConceptSubjects))
		for _, s := range conf.ConceptSubjects {
			if s = core.CleanString(s); s != "" {
				subjects = append(subjects, strings.ToUpper(s))
			}
		}
		rules.ConceptSubjects = subjects
	}
	if len(conf.Concepts) > 0 {
		rules.Concepts = conf.Concepts
	}
	return rules
}

func (rules Rules) isConceptSubject(subject string) bool {
	subject = strings.ToUpper(subject)
	for _, s := range rules.ConceptSubjects {
		if strings.ToUpper(s) == subject {
			return true
		}
	}
	return false
}

func (rules Rules) isExcludedName(col string) bool {
	col = strings.ToUpper(col)
	for _, ex := range rules.NameExclusions {
		if strings.Contains(col, ex) {
			return true
		}
	}
	return false
}
