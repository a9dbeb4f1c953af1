// Package safety classifies host-surface action controls and is the single
// choke point deciding whether a control may ever be triggered automatically.
package safety

import (
	"strings"

	"formnerd/internal/form"
)

// Class is the safety classification of a control.
type Class int

const (
	Neutral Class = iota
	Proceed
	Dangerous
)

func (c Class) String() string {
	switch c {
	case Proceed:
		return "proceed"
	case Dangerous:
		return "dangerous"
	default:
		return "neutral"
	}
}

// dangerousKeywords mark controls that trigger irreversible actions. Checked
// before proceed keywords: "Continue & Submit" is dangerous.
var dangerousKeywords = []string{
	"submit", "send", "complete", "finish", "finalize", "confirm", "apply", "review",
}

var proceedKeywords = []string{
	"next", "continue", "proceed", "forward", "go", "advance",
}

// Classify returns the safety class of a control based on case-insensitive
// substring matching against its text. Dangerous keywords take precedence.
func Classify(c form.Control) Class {
	text := strings.ToLower(c.Text)
	for _, kw := range dangerousKeywords {
		if strings.Contains(text, kw) {
			return Dangerous
		}
	}
	for _, kw := range proceedKeywords {
		if strings.Contains(text, kw) {
			return Proceed
		}
	}
	return Neutral
}

// MayAutoInvoke reports whether the engine is allowed to trigger the control
// without a human in the loop: only visible, enabled controls classified as
// Proceed. No configuration can widen this.
func MayAutoInvoke(c form.Control) bool {
	return Classify(c) == Proceed && c.Visible && c.Enabled
}
