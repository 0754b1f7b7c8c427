package types

import (
	"strconv"
	"strings"
)

// Field reads key from a decoded JSON object as text.
func Field(body map[string]interface{}, key string) (string, bool) {
	return Text(body[key])
}

// Text renders a decoded JSON scalar. Strings are returned as-is, numbers
// without a trailing ".0" and true as "true". ok is false for nil, "", 0,
// false and nested values, so callers fall back to their defaults.
func Text(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		if !v {
			return "", false
		}
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// FieldOrDefault is Field with a fallback for absent values.
func FieldOrDefault(body map[string]interface{}, key string, fallback string) string {
	if v, ok := Field(body, key); ok {
		return v
	}
	return fallback
}

// Path walks nested objects and arrays. Path elements are object keys or
// array indexes written as decimal strings.
func Path(value interface{}, elems ...string) (interface{}, bool) {
	current := value
	for _, elem := range elems {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[elem]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(strings.TrimSpace(elem))
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, current != nil
}
