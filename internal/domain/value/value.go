// Where: cli/internal/domain/value/value.go
// What: Value conversion helpers for decoded template data.
// Why: Keep template parsing concise without infrastructure dependencies.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AsMap converts a value to map form when possible.
func AsMap(value any) map[string]any {
	if value == nil {
		return nil
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return nil
}

// AsString returns the string representation of a scalar value.
// Numbers decoded from JSON keep their integral form ("3", not "3e+00").
func AsString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1e15 {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

// AsIntPointer attempts to coerce a value into an int pointer.
// Fractional numbers are rejected rather than truncated.
func AsIntPointer(value any) (*int, bool) {
	switch typed := value.(type) {
	case int:
		return &typed, true
	case int64:
		intVal := int(typed)
		return &intVal, true
	case float64:
		if typed != math.Trunc(typed) || math.IsInf(typed, 0) {
			return nil, false
		}
		intVal := int(typed)
		return &intVal, true
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}

// StringMap converts a decoded object into a string map, stringifying scalars.
// Non-object input yields nil.
func StringMap(value any) map[string]string {
	m := AsMap(value)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for key, raw := range m {
		out[key] = AsString(raw)
	}
	return out
}

// EnvSliceToMap converts process-style env entries (KEY=VALUE) into a map.
func EnvSliceToMap(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, entry := range env {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		value := ""
		if len(parts) > 1 {
			value = parts[1]
		}
		out[key] = value
	}
	return out
}
