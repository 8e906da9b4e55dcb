package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EmailRX is the simple anything@anything.anything pattern the signup and
// login forms check against.
var EmailRX = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form wraps parsed request data with its validation errors. Validation
// lives here, at the boundary; the stores accept any well-typed input.
type Form struct {
	url.Values
	Errors errors
}

// New initializes a Form for the given request data.
func New(data url.Values) *Form {
	return &Form{
		data,
		errors(map[string][]string{}),
	}
}

// Required marks the listed fields as mandatory.
func (f *Form) Required(fields ...string) {
	for _, field := range fields {
		value := f.Get(field)
		if strings.TrimSpace(value) == "" {
			f.Errors.Add(field, "Este campo é obrigatório")
		}
	}
}

// MaxLength rejects field values longer than d characters.
func (f *Form) MaxLength(field string, d int) {
	value := f.Get(field)
	if value == "" {
		return
	}
	if utf8.RuneCountInString(value) > d {
		f.Errors.Add(field, fmt.Sprintf("Este campo é muito longo (máximo %d caracteres)", d))
	}
}

// MatchesPattern rejects field values that do not match pattern.
func (f *Form) MatchesPattern(field string, pattern *regexp.Regexp) {
	value := f.Get(field)
	if value == "" {
		return
	}
	if !pattern.MatchString(value) {
		f.Errors.Add(field, "Este campo é inválido")
	}
}

// PermittedValues rejects field values outside the given set.
func (f *Form) PermittedValues(field string, opts ...string) {
	value := f.Get(field)
	if value == "" {
		return
	}
	for _, opt := range opts {
		if value == opt {
			return
		}
	}
	f.Errors.Add(field, "Este campo é inválido")
}

// PasswordPolicy enforces the signup password rule: at least six
// characters and at least one character that is neither a letter nor a
// digit.
func (f *Form) PasswordPolicy(field string) {
	value := f.Get(field)
	if value == "" {
		return
	}
	special := false
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			special = true
			break
		}
	}
	if utf8.RuneCountInString(value) < 6 || !special {
		f.Errors.Add(field, "Senha deve ter pelo menos 6 caracteres e um caractere especial")
	}
}

// Valid reports whether the form passed every check.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}
