package stringsx

import "strings"

// SnippetLen is the maximum number of runes kept by Snippet.
const SnippetLen = 80

// Clip returns at most max runes of s.
// If max <= 0, an empty string is returned.
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Normalize trims spaces and converts a string to lower case.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEmpty reports whether s is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Collapse replaces every run of whitespace with a single space and trims the result.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Snippet returns a compact one-line preview of content.
func Snippet(content string) string {
	s := Collapse(content)
	if s == "" {
		return "No content"
	}
	if clipped := Clip(s, SnippetLen); clipped != s {
		return clipped + "…"
	}
	return s
}

// ContainsFold reports whether the case-folded haystack contains an already
// normalized needle. An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}
