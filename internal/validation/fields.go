package validation

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

type fieldType int

const (
	stringField fieldType = iota
	intField
	numberField
)

type fieldSpec struct {
	name string
	typ  fieldType
}

// values holds coerced field values keyed by field name.
type values map[string]any

func (v values) str(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v values) integer(name string) int {
	n, _ := v[name].(int)
	return n
}

func (v values) num(name string) *float64 {
	f, ok := v[name].(float64)
	if !ok {
		return nil
	}
	return &f
}

// recordFields are set by the store and echoed back on reads. Write payloads
// may carry them (a fetched record sent back on update) and they are dropped.
var recordFields = map[string]bool{
	"id":         true,
	"created_by": true,
	"created_at": true,
	"updated_at": true,
}

// withoutRecordFields returns raw minus recordFields.
func withoutRecordFields(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for name, v := range raw {
		if !recordFields[name] {
			out[name] = v
		}
	}
	return out
}

// coerce converts raw values to the declared field types. nil counts as
// absent; unknown field names are violations.
func coerce(raw map[string]any, specs []fieldSpec) (values, fieldErrors) {
	vals := values{}
	errs := fieldErrors{}
	known := make(map[string]fieldType, len(specs))
	for _, s := range specs {
		known[s.name] = s.typ
	}

	for name, rv := range raw {
		typ, ok := known[name]
		if !ok {
			errs = errs.add(name, "is not a recognized field")
			continue
		}
		if rv == nil {
			continue
		}
		switch typ {
		case stringField:
			s, ok := rv.(string)
			if !ok {
				errs = errs.add(name, "must be a string")
				continue
			}
			vals[name] = strings.TrimSpace(s)
		case intField:
			n, ok := toInt(rv)
			if !ok {
				errs = errs.add(name, "must be an integer")
				continue
			}
			vals[name] = n
		case numberField:
			f, ok := toFloat(rv)
			if !ok {
				errs = errs.add(name, "must be a number")
				continue
			}
			vals[name] = f
		}
	}
	return vals, errs
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// fieldErrors collects at most one message per field.
type fieldErrors map[string]string

func (e fieldErrors) add(field, msg string) fieldErrors {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
	return e
}

// ordered lists errors in schema order, then unknown fields alphabetically.
func (e fieldErrors) ordered(specs []fieldSpec) Violations {
	out := make(Violations, 0, len(e))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		seen[s.name] = true
		if msg, ok := e[s.name]; ok {
			out = append(out, FieldError{Field: s.name, Message: msg})
		}
	}
	var extra []string
	for name := range e {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, FieldError{Field: name, Message: e[name]})
	}
	return out
}
