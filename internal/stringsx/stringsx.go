package stringsx

import "strings"

// NormalizeEmail trims spaces and lower-cases an email address so that it
// can be used as a login key.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsBlank reports whether s is empty after trimming spaces.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SplitList splits a comma separated list, dropping blank items.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
