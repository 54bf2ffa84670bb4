// Package workflow implements workflow drafts, their field validation,
// the creation wizard state machine and the committed collection.
package workflow

import (
	"strings"
	"unicode/utf8"
)

// Field length bounds, counted in characters, not bytes.
const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMinLen = 10
	DescriptionMaxLen = 500
)

// Validation messages. The front-end renders these verbatim, so they
// are part of the contract.
const (
	MsgTitleRequired       = "Title is required"
	MsgTitleTooShort       = "Title must be at least 3 characters long"
	MsgTitleTooLong        = "Title must be at most 100 characters long"
	MsgTitleDuplicate      = "A workflow with this title already exists"
	MsgDescriptionRequired = "Description is required"
	MsgDescriptionTooShort = "Description must be at least 10 characters long"
	MsgDescriptionTooLong  = "Description must be at most 500 characters long"
)

// ExistingTitle pairs a committed workflow identity with its title.
type ExistingTitle struct {
	ID    int64
	Title string
}

// FieldValidator validates draft fields against their rule lists and
// the committed collection. It is pure: same inputs, same output.
type FieldValidator struct {
	existing  []ExistingTitle
	editingID int64
}

// NewFieldValidator creates a validator over the committed titles.
// editingID names the record being edited, or 0 when creating; the
// uniqueness rule skips that record when the editing context says so.
func NewFieldValidator(existing []ExistingTitle, editingID int64) *FieldValidator {
	return &FieldValidator{existing: existing, editingID: editingID}
}

// Field validates one field value and returns the message of the first
// failing rule, or "" when the value passes. Rule order per field:
// required, length-min, length-max, uniqueness.
func (v *FieldValidator) Field(name, value string, editing bool) string {
	switch name {
	case "title":
		return v.title(value, editing)
	case "description":
		return v.description(value)
	default:
		return ""
	}
}

func (v *FieldValidator) title(value string, editing bool) string {
	trimmed := strings.TrimSpace(value)

	switch {
	case trimmed == "":
		return MsgTitleRequired
	case utf8.RuneCountInString(trimmed) < TitleMinLen:
		return MsgTitleTooShort
	case utf8.RuneCountInString(trimmed) > TitleMaxLen:
		return MsgTitleTooLong
	}

	normalized := strings.ToLower(trimmed)
	for _, existing := range v.existing {
		if editing && existing.ID == v.editingID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(existing.Title)) == normalized {
			return MsgTitleDuplicate
		}
	}

	return ""
}

func (v *FieldValidator) description(value string) string {
	trimmed := strings.TrimSpace(value)

	switch {
	case trimmed == "":
		return MsgDescriptionRequired
	case utf8.RuneCountInString(trimmed) < DescriptionMinLen:
		return MsgDescriptionTooShort
	case utf8.RuneCountInString(trimmed) > DescriptionMaxLen:
		return MsgDescriptionTooLong
	default:
		return ""
	}
}

// BasicInfo validates title and description together. Map semantics:
// every invalid field is reported independently, one message per
// field. An empty map means the draft's basic info is valid.
func (v *FieldValidator) BasicInfo(title, description string, editing bool) map[string]string {
	fieldErrors := map[string]string{}

	if msg := v.Field("title", title, editing); msg != "" {
		fieldErrors["title"] = msg
	}
	if msg := v.Field("description", description, editing); msg != "" {
		fieldErrors["description"] = msg
	}

	return fieldErrors
}
