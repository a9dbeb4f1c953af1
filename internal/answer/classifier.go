// Package answer maps field kinds to answer types and resolves answer values
// onto fields in a type-aware way.
package answer

import "formnerd/internal/form"

// exactInputTypes are content-format hints whose accepted values are rigidly
// formatted atomic strings rather than free prose.
var exactInputTypes = map[string]bool{
	"number": true,
	"tel":    true,
	"email":  true,
	"date":   true,
	"month":  true,
	"week":   true,
	"time":   true,
}

// Classify maps a field's structural kind to the answer type governing how a
// stored value may be applied to it. Option-bearing kinds are choice fields;
// rigidly-formatted inputs are exact; everything free-form is text.
func Classify(f form.Field) form.AnswerType {
	switch f.Kind {
	case form.KindSelect, form.KindRadioGroup, form.KindCheckbox:
		return form.AnswerChoice
	}
	if exactInputTypes[f.InputType] {
		return form.AnswerExact
	}
	return form.AnswerText
}
