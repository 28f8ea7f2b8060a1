package domain

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Attributes holds loosely structured metadata such as module prerequisites or
// the author and publish date of a resource. Keys are non-empty strings; values
// are primitives (string, bool, number, nil) or flat arrays of primitives.
// Nested objects are rejected so the stored JSON stays queryable.
type Attributes map[string]any

// Validate checks that every key is non-blank and every value is a primitive
// or an array of primitives.
func (a Attributes) Validate() error {
	for key, value := range a {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidAttributes)
		}
		if !isAttributeValue(value) {
			return fmt.Errorf("%w: unsupported value for key %q (%T)", ErrInvalidAttributes, key, value)
		}
	}
	return nil
}

// Clone returns a shallow copy of the attributes.
// Array values are shared; callers treat them as read-only.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func isAttributeValue(v any) bool {
	if isPrimitive(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if !isPrimitive(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}

func isPrimitive(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// validateKeyConcepts rejects blank concept names.
func validateKeyConcepts(concepts []string) error {
	for i, c := range concepts {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: key concept %d is empty", ErrInvalidAttributes, i)
		}
	}
	return nil
}

// formatTimestamp renders t as an ISO-8601 string, or nil for the zero time.
func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTimestamp(*t)
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
