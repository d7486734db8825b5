package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	termTag   = "term"
	termText  = "{0} deve ser um bimestre válido"
	termRegex = regexp.MustCompile(`^(Todos os Bimestres|\d+º Bimestre)$`)

	requiredTag  = "required"
	requiredText = "{0} é obrigatório"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(termTag, termValidation)
	RegisterCustomTranslation(validate, translator, termTag, termText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// termValidation only allows term labels ("2º Bimestre") or the all-terms option. Empty values are left to `required`.
func termValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || termRegex.MatchString(s)
}
