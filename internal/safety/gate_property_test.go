package safety

import (
	"testing"

	"pgregory.net/rapid"

	"formnerd/internal/form"
)

// genControlText builds a control label from random filler mixed with drawn
// dangerous and proceed keywords in arbitrary order and casing.
func genControlText(t *rapid.T, dangerous, proceed string) string {
	parts := []string{dangerous, proceed}
	if rapid.Bool().Draw(t, "swap") {
		parts[0], parts[1] = parts[1], parts[0]
	}
	sep := rapid.SampledFrom([]string{" ", " & ", " and ", " / ", ""}).Draw(t, "sep")
	prefix := rapid.SampledFrom([]string{"", "Click ", ">> ", "Please "}).Draw(t, "prefix")
	return prefix + parts[0] + sep + parts[1]
}

// TestDangerousAlwaysWins verifies the hard safety invariant: any control
// whose text contains a dangerous keyword is never auto-invokable, even when
// a proceed keyword is present too, regardless of visibility and enablement.
func TestDangerousAlwaysWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dangerous := rapid.SampledFrom(dangerousKeywords).Draw(t, "dangerous")
		proceed := rapid.SampledFrom(proceedKeywords).Draw(t, "proceed")

		c := form.Control{
			Text:    genControlText(t, dangerous, proceed),
			Visible: rapid.Bool().Draw(t, "visible"),
			Enabled: rapid.Bool().Draw(t, "enabled"),
		}

		if Classify(c) != Dangerous {
			t.Fatalf("control %q not classified dangerous", c.Text)
		}
		if MayAutoInvoke(c) {
			t.Fatalf("dangerous control %q may auto-invoke", c.Text)
		}
	})
}

// TestProceedRequiresVisibleEnabled verifies auto-invocation additionally
// requires the surface to report the control visible and enabled.
func TestProceedRequiresVisibleEnabled(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		proceed := rapid.SampledFrom(proceedKeywords).Draw(t, "proceed")
		visible := rapid.Bool().Draw(t, "visible")
		enabled := rapid.Bool().Draw(t, "enabled")

		c := form.Control{Text: "Please " + proceed, Visible: visible, Enabled: enabled}
		want := visible && enabled
		if got := MayAutoInvoke(c); got != want {
			t.Fatalf("MayAutoInvoke(%q, visible=%v, enabled=%v) = %v, want %v",
				c.Text, visible, enabled, got, want)
		}
	})
}
