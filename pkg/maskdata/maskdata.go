// Package maskdata redacts values before they reach the audit log. Strings
// keep a visible tail (or head) so entries stay recognizable without exposing
// the full value.
package maskdata

import "strings"

const defaultPercent = 80

// String masks percent of s. With fromStart the leading characters are
// replaced, leaving the tail visible; otherwise the head stays visible.
func String(s string, fromStart bool, percent int) string {
	runes := []rune(s)
	length := len(runes)
	if length == 0 {
		return s
	}

	maskLen := percent * length / 100
	if maskLen >= length {
		return strings.Repeat("*", length)
	}

	if fromStart {
		return strings.Repeat("*", maskLen) + string(runes[maskLen:])
	}
	return string(runes[:length-maskLen]) + strings.Repeat("*", maskLen)
}

// Value masks any JSON-shaped value recursively with the default 80 percent.
// Maps and slices are walked; strings are partially masked; anything else is
// replaced wholesale since partial masking has no meaning for it.
func Value(v any) any {
	return mask(v, true, defaultPercent)
}

func mask(v any, fromStart bool, percent int) any {
	switch t := v.(type) {
	case string:
		return String(t, fromStart, percent)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = mask(item, fromStart, percent)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = mask(item, fromStart, percent)
		}
		return out
	default:
		return "***MASKED***"
	}
}
