package workflow

import (
	"slices"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/db/models"
)

// Draft is an uncommitted, in-progress workflow held only in wizard
// state. Trigger and action lists are ordered and reject duplicates.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Template    string   `json:"template"`
	Triggers    []string `json:"triggers"`
	Actions     []string `json:"actions"`
	Schedule    string   `json:"schedule"`
	Enabled     bool     `json:"enabled"`
}

// Step is a wizard state.
type Step int

// Wizard steps in order.
const (
	StepBasicInfo Step = iota + 1
	StepTriggers
	StepActionsAndSettings
	StepCommitted
)

// Wizard drives the three-step creation flow. A draft is created empty
// when the wizard opens, discarded on cancel, and committed through
// the service on success.
type Wizard struct {
	svc         *Service
	step        Step
	draft       Draft
	fieldErrors map[string]string
}

// NewWizard opens a wizard with an empty draft.
func NewWizard(svc *Service) *Wizard {
	return &Wizard{
		svc:         svc,
		step:        StepBasicInfo,
		fieldErrors: map[string]string{},
	}
}

// Step returns the current wizard state.
func (w *Wizard) Step() Step {
	return w.step
}

// Draft returns a copy of the in-progress draft.
func (w *Wizard) Draft() Draft {
	d := w.draft
	d.Triggers = slices.Clone(d.Triggers)
	d.Actions = slices.Clone(d.Actions)

	return d
}

// FieldErrors returns the validation errors from the last guarded
// transition attempt.
func (w *Wizard) FieldErrors() map[string]string {
	out := make(map[string]string, len(w.fieldErrors))
	for k, v := range w.fieldErrors {
		out[k] = v
	}

	return out
}

// SetBasicInfo updates the draft's first-step fields. Successful
// revalidation clears the field's stale error.
func (w *Wizard) SetBasicInfo(title, description, template string) {
	w.draft.Title = title
	w.draft.Description = description
	w.draft.Template = template

	validator, err := w.svc.fieldValidator(0)
	if err != nil {
		return
	}

	for field, value := range map[string]string{"title": title, "description": description} {
		if validator.Field(field, value, false) == "" {
			delete(w.fieldErrors, field)
		}
	}
}

// SetSchedule updates the third-step schedule fields.
func (w *Wizard) SetSchedule(schedule string, enabled bool) {
	w.draft.Schedule = schedule
	w.draft.Enabled = enabled
}

// AddTrigger appends a trigger. Duplicates are rejected.
func (w *Wizard) AddTrigger(trigger string) error {
	if slices.Contains(w.draft.Triggers, trigger) {
		return apperr.New(apperr.KindDuplicate, "trigger already added: "+trigger)
	}

	w.draft.Triggers = append(w.draft.Triggers, trigger)

	return nil
}

// RemoveTrigger removes a trigger if present.
func (w *Wizard) RemoveTrigger(trigger string) {
	if i := slices.Index(w.draft.Triggers, trigger); i >= 0 {
		w.draft.Triggers = slices.Delete(w.draft.Triggers, i, i+1)
	}
}

// AddAction appends an action. Duplicates are rejected.
func (w *Wizard) AddAction(action string) error {
	if slices.Contains(w.draft.Actions, action) {
		return apperr.New(apperr.KindDuplicate, "action already added: "+action)
	}

	w.draft.Actions = append(w.draft.Actions, action)

	return nil
}

// RemoveAction removes an action if present.
func (w *Wizard) RemoveAction(action string) {
	if i := slices.Index(w.draft.Actions, action); i >= 0 {
		w.draft.Actions = slices.Delete(w.draft.Actions, i, i+1)
	}
}

// Next attempts the transition to the following step. Step1 to Step2
// is guarded by basic-info validation; a failed guard leaves the state
// unchanged and populates FieldErrors. Step2 to Step3 is unguarded
// (triggers are optional). It reports whether the transition happened.
func (w *Wizard) Next() bool {
	switch w.step {
	case StepBasicInfo:
		validator, err := w.svc.fieldValidator(0)
		if err != nil {
			w.fieldErrors = map[string]string{"title": "Unable to validate right now"}
			return false
		}

		w.fieldErrors = validator.BasicInfo(w.draft.Title, w.draft.Description, false)
		if len(w.fieldErrors) > 0 {
			return false
		}

		w.step = StepTriggers
		return true

	case StepTriggers:
		w.step = StepActionsAndSettings
		return true

	default:
		return false
	}
}

// Back returns to the previous step where one exists.
func (w *Wizard) Back() {
	switch w.step {
	case StepTriggers:
		w.step = StepBasicInfo
	case StepActionsAndSettings:
		w.step = StepTriggers
	}
}

// Commit validates the whole draft and commits it through the service,
// assigning its identity. Only valid from the final step. On success
// the wizard reaches StepCommitted and the new record is first in the
// committed list.
func (w *Wizard) Commit() (*models.Workflow, error) {
	if w.step != StepActionsAndSettings {
		return nil, apperr.New(apperr.KindValidation, "wizard is not on the final step")
	}

	created, fieldErrors, err := w.svc.Create(w.draft)
	if err != nil {
		if len(fieldErrors) > 0 {
			w.fieldErrors = fieldErrors
		}
		return nil, err
	}

	w.step = StepCommitted
	w.fieldErrors = map[string]string{}

	return created, nil
}

// Cancel discards the draft and all wizard state.
func (w *Wizard) Cancel() {
	w.draft = Draft{}
	w.fieldErrors = map[string]string{}
	w.step = StepBasicInfo
}
