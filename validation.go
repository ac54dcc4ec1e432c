package safeaction

import "reflect"

// Issue is a single validation problem reported by a schema.
// Path locates the offending field inside the input: a sequence of
// object keys (string) and array indexes (int), empty for the root.
// Message is the validator's human-readable description of the
// violated rule; its exact text is validator-defined.
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// ValidationError is the value an Action resolves to when input fails
// schema validation. It is data, not an error: it does not implement
// the error interface and is meant to cross process boundaries as plain
// JSON, where a fault would not serialize cleanly.
//
// IsValidationError is the discriminant tag and is always true on
// values built by NewValidationError. Errors holds the validator's
// issues in the order the validator produced them.
type ValidationError struct {
	IsValidationError bool    `json:"isValidationError"`
	Errors            []Issue `json:"errors"`
}

// NewValidationError builds a ValidationError from the given issues.
// The slice is copied; the returned value is never mutated afterwards.
func NewValidationError(issues []Issue) *ValidationError {
	errs := make([]Issue, 0, len(issues))
	errs = append(errs, issues...)
	return &ValidationError{
		IsValidationError: true,
		Errors:            errs,
	}
}

// IsValidationError reports whether v is a validation-error value.
//
// The check is purely structural (duck-typed), by contract: any value
// carrying an isValidationError flag strictly equal to boolean true
// classifies as a validation error, even if it was not produced by this
// package. Recognized shapes: *ValidationError and ValidationError,
// map[string]any with a true "isValidationError" entry, and any struct
// (or pointer to struct) whose bool field is named IsValidationError or
// json-tagged isValidationError and holds true.
//
// It never panics, for any input including nil, nil pointers,
// primitives, and slices. Caller hazard: a handler result that happens
// to match this shape as legitimate business data is indistinguishable
// from a real rejection.
func IsValidationError(v any) bool {
	switch e := v.(type) {
	case nil:
		return false
	case *ValidationError:
		return e != nil && e.IsValidationError
	case ValidationError:
		return e.IsValidationError
	case map[string]any:
		flag, ok := e["isValidationError"].(bool)
		return ok && flag
	}
	return hasValidationTag(reflect.ValueOf(v))
}

// hasValidationTag is the reflective slow path of IsValidationError:
// true if rv is a struct (behind any number of pointers) with a true
// bool field named IsValidationError or json-tagged isValidationError.
func hasValidationTag(rv reflect.Value) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return false
	}
	typ := rv.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Bool {
			continue
		}
		if field.Name != "IsValidationError" && jsonFieldName(field) != "isValidationError" {
			continue
		}
		return rv.Field(i).Bool()
	}
	return false
}

// jsonFieldName returns the effective JSON key of a struct field
// (first part of the json tag), or "" when the field has no tag.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}
