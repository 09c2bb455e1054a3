// Package convert provides type conversion utilities for loosely typed input.
package convert

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Float64 converts numeric types and numeric strings to float64 and reports
// whether the conversion succeeded.
func Float64(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// LeadingFloat parses the text before the first whitespace, so "-65 dBm"
// yields -65. Numbers are returned as is.
func LeadingFloat(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return 0, false
		}
		return Float64(fields[0])
	}
	return Float64(v)
}
