package workflow

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	controller "github.com/ai-scholar/scholar-admin/internal/db/controller/workflow"
	"github.com/ai-scholar/scholar-admin/internal/db/models"
)

// Service owns the committed workflow collection. Identities come from
// the injected clock (UnixMilli), so commit order and list order agree.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	lastID int64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the service clock.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// NewService creates a workflow service.
func NewService(db *gorm.DB, opts ...ServiceOption) *Service {
	s := &Service{
		db:    db,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewWizard opens a creation wizard bound to this service.
func (s *Service) NewWizard() *Wizard {
	return NewWizard(s)
}

// List returns the committed workflows, newest first.
func (s *Service) List() ([]models.Workflow, error) {
	return controller.List(s.db)
}

// Get returns one workflow by identity.
func (s *Service) Get(id int64) (*models.Workflow, error) {
	workflow, err := controller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrWorkflowNotFound) {
			return nil, apperr.Wrap(apperr.KindValidation, "workflow not found", err)
		}
		return nil, err
	}

	return workflow, nil
}

// Validate checks a single draft field in the given editing context,
// for the wizard's per-keystroke endpoint.
func (s *Service) Validate(field, value string, editingID int64) (string, error) {
	validator, err := s.fieldValidator(editingID)
	if err != nil {
		return "", err
	}

	return validator.Field(field, value, editingID != 0), nil
}

// Create validates the whole draft and commits it. On validation
// failure the per-field message map is returned alongside the error.
func (s *Service) Create(draft Draft) (*models.Workflow, map[string]string, error) {
	validator, err := s.fieldValidator(0)
	if err != nil {
		return nil, nil, err
	}

	fieldErrors := validator.BasicInfo(draft.Title, draft.Description, false)
	if len(fieldErrors) > 0 {
		if fieldErrors["title"] == MsgTitleDuplicate {
			return nil, fieldErrors, apperr.New(apperr.KindDuplicate, "a workflow with this title already exists")
		}
		return nil, fieldErrors, apperr.New(apperr.KindValidation, "workflow draft validation failed")
	}

	now := s.clock()
	workflow := &models.Workflow{
		ID:          s.nextID(now),
		Title:       draft.Title,
		Description: draft.Description,
		Template:    draft.Template,
		Triggers:    normalizeList(draft.Triggers),
		Actions:     normalizeList(draft.Actions),
		Schedule:    draft.Schedule,
		Enabled:     draft.Enabled,
		Status:      statusFor(draft.Enabled),
		Executions:  0,
		SuccessRate: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := controller.Create(s.db, workflow); err != nil {
		return nil, nil, err
	}

	log.Info().Int64("id", workflow.ID).Str("title", workflow.Title).Msg("workflow committed")

	return workflow, nil, nil
}

// Update edits a committed workflow in place: the single-step edit
// flow. It reuses the draft validators, with the uniqueness check
// skipping the record being edited, and writes back to the existing
// identity.
func (s *Service) Update(id int64, draft Draft) (*models.Workflow, map[string]string, error) {
	existing, err := controller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrWorkflowNotFound) {
			return nil, nil, apperr.Wrap(apperr.KindValidation, "workflow not found", err)
		}
		return nil, nil, err
	}

	validator, err := s.fieldValidator(id)
	if err != nil {
		return nil, nil, err
	}

	fieldErrors := validator.BasicInfo(draft.Title, draft.Description, true)
	if len(fieldErrors) > 0 {
		if fieldErrors["title"] == MsgTitleDuplicate {
			return nil, fieldErrors, apperr.New(apperr.KindDuplicate, "a workflow with this title already exists")
		}
		return nil, fieldErrors, apperr.New(apperr.KindValidation, "workflow draft validation failed")
	}

	existing.Title = draft.Title
	existing.Description = draft.Description
	existing.Template = draft.Template
	existing.Triggers = normalizeList(draft.Triggers)
	existing.Actions = normalizeList(draft.Actions)
	existing.Schedule = draft.Schedule
	existing.Enabled = draft.Enabled
	existing.Status = statusFor(draft.Enabled)
	existing.UpdatedAt = s.clock()

	if err := controller.Save(s.db, existing); err != nil {
		return nil, nil, err
	}

	return existing, nil, nil
}

// Delete removes a committed workflow.
func (s *Service) Delete(id int64) error {
	if err := controller.Delete(s.db, id); err != nil {
		if errors.Is(err, controller.ErrWorkflowNotFound) {
			return apperr.Wrap(apperr.KindValidation, "workflow not found", err)
		}
		return err
	}

	return nil
}

// RecordRun updates run counters after an execution.
func (s *Service) RecordRun(id int64, success bool) (*models.Workflow, error) {
	workflow, err := controller.RecordRun(s.db, id, success)
	if err != nil {
		if errors.Is(err, controller.ErrWorkflowNotFound) {
			return nil, apperr.Wrap(apperr.KindValidation, "workflow not found", err)
		}
		return nil, err
	}

	return workflow, nil
}

// fieldValidator builds a validator over the current committed titles.
func (s *Service) fieldValidator(editingID int64) (*FieldValidator, error) {
	rows, err := controller.Titles(s.db)
	if err != nil {
		return nil, err
	}

	existing := make([]ExistingTitle, len(rows))
	for i, row := range rows {
		existing[i] = ExistingTitle{ID: row.ID, Title: row.Title}
	}

	return NewFieldValidator(existing, editingID), nil
}

// nextID derives a distinct identity from the clock. Commits within
// the same millisecond still get increasing IDs.
func (s *Service) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	return id
}

func statusFor(enabled bool) string {
	if enabled {
		return models.WorkflowStatusActive
	}

	return models.WorkflowStatusDraft
}

// normalizeList trims entries and drops empties and duplicates while
// preserving order.
func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" && !slices.Contains(out, trimmed) {
			out = append(out, trimmed)
		}
	}

	return out
}
