package normalize

import (
	"fmt"
	"strconv"
)

// NormalizeError means the supplier payload could not be parsed as JSON at
// all. Missing or malformed optional fields never produce it; those fall back
// to documented defaults instead.
type NormalizeError struct {
	Stage string
	Err   error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("%s payload is not valid JSON: %v", e.Stage, e.Err)
}

func (e *NormalizeError) Unwrap() error {
	return e.Err
}

// The supplier's schema drifts between flows, so every field is probed
// through an ordered list of candidate keys and the first usable value wins.

// firstString returns the first non-empty string found under the candidate keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstNumber returns the first positive number found under the candidate
// keys. Numeric strings count; zero does not.
func firstNumber(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v > 0 {
				return v
			}
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
		}
	}
	return 0
}

// firstInt is firstNumber truncated to int.
func firstInt(m map[string]any, keys ...string) int {
	return int(firstNumber(m, keys...))
}

// firstID returns the first usable numeric identity under the candidate keys.
func firstID(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return int64(v), true
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
				return n, true
			}
		}
	}
	return 0, false
}

// asMap narrows an any to a JSON object.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asSlice narrows an any to a JSON array.
func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// dig walks nested objects along the given path and returns the object at the
// end of it.
func dig(m map[string]any, path ...string) (map[string]any, bool) {
	cur := m
	for _, key := range path {
		next, ok := asMap(cur[key])
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// stringList extracts a list of strings from the first candidate key holding
// an array; non-string members are skipped.
func stringList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		arr, ok := asSlice(m[k])
		if !ok {
			continue
		}
		var out []string
		for _, v := range arr {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
