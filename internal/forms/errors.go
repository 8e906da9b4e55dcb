package forms

// errors holds the validation messages for a form, keyed by field name.
// The name "generic" is used for failures not tied to a single field.
type errors map[string][]string

// Add appends a message for the given field.
func (e errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the first message for the given field, or "".
func (e errors) Get(field string) string {
	es := e[field]
	if len(es) == 0 {
		return ""
	}
	return es[0]
}
