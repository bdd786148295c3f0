package model

import (
	"strconv"
	"strings"
)

// RawRecord is an untyped source payload: one JSON object from the API, one
// CSV row keyed by header, or one element of a flat-file array. Records are
// ephemeral and discarded after transformation or rejection.
type RawRecord map[string]any

// Str returns the first non-empty string value among the given keys.
// Non-string scalars are stringified.
func (r RawRecord) Str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// Float returns the first parseable numeric value among the given keys.
func (r RawRecord) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case int:
			return float64(t), true
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
