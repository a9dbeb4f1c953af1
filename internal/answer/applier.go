package answer

import (
	"context"
	"strings"

	"formnerd/internal/form"
)

// Resolve maps a stored answer onto a field's concrete value according to the
// answer type. It returns the value to apply and whether a safe resolution
// exists; when ok is false the field must be left untouched.
//
// Resolution never guesses: an imperfect choice match is only accepted via
// bidirectional substring containment, and exact fields accept nothing short
// of (case-insensitive, trimmed) equality.
func Resolve(f form.Field, at form.AnswerType, answer string) (value string, ok bool) {
	switch at {
	case form.AnswerChoice:
		return resolveChoice(answer, f.Options)
	case form.AnswerExact:
		if len(f.Options) == 0 {
			return answer, true
		}
		want := normalize(answer)
		for _, opt := range f.Options {
			if normalize(opt) == want {
				return opt, true
			}
		}
		return "", false
	default:
		return answer, true
	}
}

// resolveChoice picks an option for the answer: exact normalized equality
// first, then the first option (in supplied order) related to the answer by
// substring containment in either direction.
func resolveChoice(answer string, options []string) (string, bool) {
	want := normalize(answer)
	if want == "" {
		return "", false
	}

	for _, opt := range options {
		if normalize(opt) == want {
			return opt, true
		}
	}
	for _, opt := range options {
		have := normalize(opt)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return opt, true
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Apply resolves the answer and, on success, writes it through the surface
// (which owns change-notification duties). The boolean reports whether the
// field was touched; surface failures are returned as-is so the caller can
// treat them as fatal.
func Apply(ctx context.Context, surface form.Surface, f form.Field, at form.AnswerType, answer string) (bool, error) {
	value, ok := Resolve(f, at, answer)
	if !ok {
		return false, nil
	}
	if err := surface.ApplyValue(ctx, f, value); err != nil {
		return false, err
	}
	return true, nil
}
