package safety

import (
	"testing"

	"formnerd/internal/form"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Class
	}{
		{name: "Submit", text: "Submit application", want: Dangerous},
		{name: "Send", text: "Send", want: Dangerous},
		{name: "Finalize mixed case", text: "FINALIZE order", want: Dangerous},
		{name: "Review", text: "Review & submit", want: Dangerous},
		{name: "Apply", text: "Apply now", want: Dangerous},
		{name: "Next", text: "Next", want: Proceed},
		{name: "Continue", text: "Continue", want: Proceed},
		{name: "Go", text: "Let's go", want: Proceed},
		{name: "Dangerous beats proceed", text: "Continue & Submit", want: Dangerous},
		{name: "Proceed substring inside dangerous word order", text: "Confirm and continue", want: Dangerous},
		{name: "Plain label", text: "Help", want: Neutral},
		{name: "Empty", text: "", want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(form.Control{Text: tt.text})
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestMayAutoInvoke(t *testing.T) {
	tests := []struct {
		name    string
		control form.Control
		want    bool
	}{
		{
			name:    "Visible enabled proceed",
			control: form.Control{Text: "Next", Visible: true, Enabled: true},
			want:    true,
		},
		{
			name:    "Hidden proceed",
			control: form.Control{Text: "Next", Visible: false, Enabled: true},
			want:    false,
		},
		{
			name:    "Disabled proceed",
			control: form.Control{Text: "Next", Visible: true, Enabled: false},
			want:    false,
		},
		{
			name:    "Dangerous never auto-invokable",
			control: form.Control{Text: "Submit", Visible: true, Enabled: true},
			want:    false,
		},
		{
			name:    "Neutral never auto-invokable",
			control: form.Control{Text: "Help", Visible: true, Enabled: true},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MayAutoInvoke(tt.control); got != tt.want {
				t.Errorf("MayAutoInvoke(%q) = %v, want %v", tt.control.Text, got, tt.want)
			}
		})
	}
}
