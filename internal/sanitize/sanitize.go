// Package sanitize strips markup from untrusted JSON-like request payloads.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	keyCharRe     = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// Sanitize returns a cleaned copy of v. Strings lose script blocks and any
// remaining angle-bracket markup and are trimmed; slices are mapped
// element-wise; map keys are reduced to [A-Za-z0-9_] and entries whose key
// cleans to the empty string are dropped. Other values pass through
// unchanged. The input is never mutated.
func Sanitize(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Sanitize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			cleaned := keyCharRe.ReplaceAllString(k, "")
			if cleaned == "" {
				continue
			}
			out[cleaned] = Sanitize(item)
		}
		return out
	default:
		return v
	}
}

// String cleans a single string value.
func String(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
