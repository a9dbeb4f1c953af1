// Package match scores prompt strings against the knowledge base using a
// token-set Jaccard index and selects the best entry above a threshold.
package match

import (
	"strings"
	"unicode"

	"formnerd/internal/form"
)

// DefaultThreshold is the minimum similarity a knowledge entry must strictly
// exceed to be proposed. Tunable configuration, not a load-bearing constant.
const DefaultThreshold = 0.6

// Tokenize lower-cases the string, strips everything that is not a word
// character or whitespace, and returns the resulting token set (duplicates
// collapsed).
func Tokenize(s string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// Similarity returns the Jaccard index of the two strings' token sets,
// in [0, 1]. Symmetric. Two token-less strings score 0, not NaN.
func Similarity(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Result pairs a matched entry with its similarity score.
type Result struct {
	Entry form.QAEntry
	Score float64
}

// Matcher finds the best-scoring knowledge entry for a prompt.
type Matcher struct {
	threshold float64
}

// NewMatcher returns a matcher gated at the given threshold. A non-positive
// threshold falls back to DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured gating threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// FindBest returns the single highest-scoring entry for the prompt, or nil
// when no entry strictly exceeds the threshold. Ties resolve in favor of the
// earliest entry in store order.
func (m *Matcher) FindBest(prompt string, entries []form.QAEntry) *Result {
	var best *Result
	for i := range entries {
		score := Similarity(prompt, entries[i].Question)
		if best == nil || score > best.Score {
			best = &Result{Entry: entries[i], Score: score}
		}
	}
	if best == nil || best.Score <= m.threshold {
		return nil
	}
	return best
}
