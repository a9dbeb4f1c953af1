// Package form defines the domain types shared by the field resolution
// pipeline: fields discovered on a host surface, persisted question/answer
// entries, and the collaborator interfaces the engine consumes.
package form

import (
	"context"
	"time"
)

// FieldKind identifies the structural kind of a fillable field.
type FieldKind string

const (
	KindText       FieldKind = "text"
	KindTextarea   FieldKind = "textarea"
	KindSelect     FieldKind = "select"
	KindRadioGroup FieldKind = "radio-group"
	KindCheckbox   FieldKind = "checkbox"
)

// AnswerType describes how an answer value should be resolved onto a field.
type AnswerType string

const (
	AnswerExact  AnswerType = "exact"
	AnswerChoice AnswerType = "choice"
	AnswerText   AnswerType = "text"
)

// Field is one fillable element of a form, abstracted away from the host
// surface. It is immutable for the duration of one resolution pass.
//
// The candidate prompt sources (Label, AriaDescription, Placeholder,
// ContextText) are captured at discovery time so the extraction step stays a
// pure string transform.
type Field struct {
	ID      string    `json:"id"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"` // empty for free-text kinds

	// InputType is the host surface's content-format hint for text kinds
	// (e.g. "number", "email", "tel"). Empty when the surface has none.
	InputType string `json:"input_type,omitempty"`

	// Prompt candidate sources, in extraction priority order.
	Label           string `json:"label,omitempty"`
	AriaDescription string `json:"aria_description,omitempty"`
	Placeholder     string `json:"placeholder,omitempty"`
	ContextText     string `json:"context_text,omitempty"`

	// Ref is an ownership-neutral handle into the host surface. The engine
	// never interprets it; it is passed back verbatim on application.
	Ref any `json:"-"`
}

// Control is an action element (button-like) on the host surface.
type Control struct {
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`

	// Invoke triggers the control on the host surface. May be nil for
	// controls that were discovered but cannot be acted on.
	Invoke func(ctx context.Context) error `json:"-"`
}

// QAEntry is a persisted question/answer pair. Entries are keyed for storage
// by exact (whitespace-normalized, case-sensitive) question text; lookup uses
// fuzzy similarity instead.
type QAEntry struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	AnswerType AnswerType `json:"answer_type"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Surface is the form-surface collaborator: the only component that touches
// the concrete page/tab/document a session operates on.
type Surface interface {
	// DiscoverFields returns the ordered fillable fields of the surface.
	DiscoverFields(ctx context.Context) ([]Field, error)

	// ApplyValue writes a value into a field and emits whatever change
	// notification convention the host environment expects.
	ApplyValue(ctx context.Context, field Field, value string) error

	// FindControls returns the ordered action controls of the surface.
	FindControls(ctx context.Context) ([]Control, error)
}

// KnowledgeStore is the knowledge base collaborator. GetAll must be safe for
// concurrent readers; writes happen only through explicit record actions.
type KnowledgeStore interface {
	// GetAll returns every stored entry in stable store order.
	GetAll(ctx context.Context) ([]QAEntry, error)

	// UpsertByQuestion replaces the entry whose question text is identical,
	// or inserts a new one.
	UpsertByQuestion(ctx context.Context, question, answer string, at AnswerType) error
}

// Decision is the user's verdict on a proposed answer.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionReject
	DecisionPause
)

// ApprovalRequest is surfaced to the user-approval collaborator when a
// session suspends on a matched field.
type ApprovalRequest struct {
	SessionID        string   `json:"session_id"`
	Question         string   `json:"question"`
	ProposedAnswer   string   `json:"proposed_answer"`
	AvailableOptions []string `json:"available_options,omitempty"`
	Current          int      `json:"current"` // 1-based field position
	Total            int      `json:"total"`
}

// Approver is the user-approval collaborator. Request blocks until the user
// acts or ctx is cancelled; the engine assumes nothing about the UI behind it.
type Approver interface {
	Request(ctx context.Context, req ApprovalRequest) (Decision, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (Decision, error)

func (f ApproverFunc) Request(ctx context.Context, req ApprovalRequest) (Decision, error) {
	return f(ctx, req)
}
