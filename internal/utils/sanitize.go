package utils

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString removes characters that cannot survive downstream
// JSON/text encoding: unpaired surrogate code units (which reach us as
// invalid UTF-8 bytes) and NUL, which postgres jsonb rejects. Valid
// characters are never touched, so sanitizing twice is a no-op.
func SanitizeString(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || r == 0 {
			i += size
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

// SanitizeValue walks an arbitrary decoded-JSON value tree and
// sanitizes every string in it, map keys included. Non-string scalars
// pass through untouched.
func SanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return SanitizeString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[SanitizeString(k)] = SanitizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = SanitizeValue(item)
		}
		return out
	default:
		return v
	}
}
