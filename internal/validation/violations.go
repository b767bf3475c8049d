package validation

import "strings"

// FieldError is one field-attributed violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the list of field errors for one payload.
type Violations []FieldError

func (v Violations) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + " " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has a violation.
func (v Violations) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the violations keyed by field name.
func (v Violations) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Message
	}
	return out
}
