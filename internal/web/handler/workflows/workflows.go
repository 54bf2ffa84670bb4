// Package workflows implements the workflow collection API: list,
// commit, edit, delete, per-field draft validation and run recording.
package workflows

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/web/handler"
	"github.com/ai-scholar/scholar-admin/internal/workflow"
)

const (
	// Path is the path of the workflows API.
	Path = handler.APIPrefix + "/workflows"
)

// Service is the workflows handler service.
type Service struct {
	cfg       *config.Config
	workflows *workflow.Service
}

// Handler is the workflows handler.
var Handler = Service{}

// Init initializes the workflows handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, workflows *workflow.Service) error {
	if app == nil || cfg == nil || workflows == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.workflows = workflows

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Create)
		router.Post("/validate", s.ValidateField)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
		router.Post("/:id/run", s.Run)
	})

	return nil
}

// List returns the committed workflows, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	list, err := s.workflows.List()
	if err != nil {
		log.Error().Err(err).Msg("failed to list workflows")
		return handler.JSONError(c, err)
	}

	return c.JSON(list)
}

// Get returns one workflow.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	found, err := s.workflows.Get(id)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(found)
}

// Create validates a draft and commits it as a new workflow.
func (s *Service) Create(c *fiber.Ctx) error {
	var draft workflow.Draft
	if err := c.BodyParser(&draft); err != nil {
		return handler.JSONError(c, apperr.Wrap(apperr.KindValidation, "request body is not valid JSON", err))
	}

	committed, fieldErrors, err := s.workflows.Create(draft)
	if err != nil {
		log.Debug().Err(err).Str("title", draft.Title).Msg("workflow commit rejected")
		return handler.JSONFieldErrors(c, err, fieldErrors)
	}

	return c.Status(fiber.StatusCreated).JSON(committed)
}

// Update edits a committed workflow in place.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	var draft workflow.Draft
	if err := c.BodyParser(&draft); err != nil {
		return handler.JSONError(c, apperr.Wrap(apperr.KindValidation, "request body is not valid JSON", err))
	}

	updated, fieldErrors, err := s.workflows.Update(id, draft)
	if err != nil {
		log.Debug().Err(err).Int64("id", id).Msg("workflow update rejected")
		return handler.JSONFieldErrors(c, err, fieldErrors)
	}

	return c.JSON(updated)
}

// Delete removes a committed workflow.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	if err := s.workflows.Delete(id); err != nil {
		return handler.JSONError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// fieldCheck is the body of a per-field validation request.
type fieldCheck struct {
	Field     string `json:"field"`
	Value     string `json:"value"`
	EditingID int64  `json:"editingId"`
}

// fieldCheckResult carries the validation outcome. Message is empty
// when the value is acceptable.
type fieldCheckResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidateField checks a single draft field without committing
// anything, for validation while the user types.
func (s *Service) ValidateField(c *fiber.Ctx) error {
	var body fieldCheck
	if err := c.BodyParser(&body); err != nil {
		return handler.JSONError(c, apperr.Wrap(apperr.KindValidation, "request body is not valid JSON", err))
	}

	message, err := s.workflows.Validate(body.Field, body.Value, body.EditingID)
	if err != nil {
		log.Error().Err(err).Msg("field validation failed")
		return handler.JSONError(c, err)
	}

	return c.JSON(fieldCheckResult{Valid: message == "", Message: message})
}

// runOutcome is the body of a run recording request.
type runOutcome struct {
	Success bool `json:"success"`
}

// Run records one execution outcome and returns the updated counters.
func (s *Service) Run(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	var body runOutcome
	if err := c.BodyParser(&body); err != nil {
		return handler.JSONError(c, apperr.Wrap(apperr.KindValidation, "request body is not valid JSON", err))
	}

	updated, err := s.workflows.RecordRun(id, body.Success)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(updated)
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, "workflow id must be numeric", err)
	}

	return id, nil
}
