// Package question derives a cleaned natural-language prompt for a field
// from its candidate sources.
package question

import (
	"strings"

	"formnerd/internal/form"
)

// Extract returns the prompt for a field: the first candidate source that
// still has content after cleaning, in priority order label > accessibility
// description > placeholder > surrounding text. An empty result is not an
// error; it means the field has no usable question and should be skipped.
func Extract(f form.Field) string {
	for _, candidate := range []string{f.Label, f.AriaDescription, f.Placeholder, f.ContextText} {
		if cleaned := Clean(candidate); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// Clean normalizes a raw prompt candidate: trims, collapses internal
// whitespace runs to single spaces, and strips leading/trailing required
// markers (asterisks and the word "required").
func Clean(s string) string {
	fields := strings.Fields(s)
	cleaned := strings.Join(fields, " ")

	cleaned = strings.Trim(cleaned, "* \t")
	lower := strings.ToLower(cleaned)
	if strings.HasPrefix(lower, "(required)") {
		cleaned = strings.TrimSpace(cleaned[len("(required)"):])
		lower = strings.ToLower(cleaned)
	}
	if strings.HasPrefix(lower, "required") && len(cleaned) > len("required") {
		rest := strings.TrimSpace(cleaned[len("required"):])
		// Only strip when "required" is a leading marker, not the first word
		// of the question itself ("Required documents" keeps its first word).
		if strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "-") {
			cleaned = strings.TrimSpace(strings.TrimLeft(rest, ":- "))
			lower = strings.ToLower(cleaned)
		}
	}
	if strings.HasSuffix(lower, "(required)") {
		cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len("(required)")])
	}
	if strings.HasSuffix(strings.ToLower(cleaned), "required") && len(cleaned) > len("required") {
		trimmed := strings.TrimSpace(cleaned[:len(cleaned)-len("required")])
		// Only strip when "required" is a trailing marker, not part of the
		// question itself ("Is sponsorship required" keeps its last word).
		if strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, "-") {
			cleaned = strings.TrimSpace(strings.TrimRight(trimmed, ":-"))
		}
	}
	return strings.Trim(cleaned, "* ")
}
