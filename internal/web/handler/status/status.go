// Package status renders the operator status page.
package status

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/retry"
	"github.com/ai-scholar/scholar-admin/internal/settings"
	"github.com/ai-scholar/scholar-admin/internal/web/handler"
	"github.com/ai-scholar/scholar-admin/internal/workflow"
)

const (
	// Path is the path of the status page.
	Path = "/status"
)

// Service is the status page handler service.
type Service struct {
	cfg       *config.Config
	repo      *settings.Repository
	workflows *workflow.Service
	pipeline  *retry.Pipeline
}

// Handler is the status page handler.
var Handler = Service{}

// Init initializes the status page handler.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	repo *settings.Repository,
	workflows *workflow.Service,
	pipeline *retry.Pipeline,
) error {
	if app == nil || cfg == nil || repo == nil || workflows == nil || pipeline == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.repo = repo
	s.workflows = workflows
	s.pipeline = pipeline

	app.Get(Path, s.Get)

	return nil
}

// Get renders the status page.
func (s *Service) Get(c *fiber.Ctx) error {
	workflowCount := 0
	if list, err := s.workflows.List(); err == nil {
		workflowCount = len(list)
	} else {
		log.Error().Err(err).Msg("failed to count workflows for status page")
	}

	busy, label := s.pipeline.Busy()

	data := fiber.Map{
		"Title":         s.cfg.Title,
		"Settings":      s.repo.Settings(),
		"Notifications": s.repo.Notifications(),
		"WorkflowCount": workflowCount,
		"Busy":          busy,
		"BusyLabel":     label,
		"LastFailure":   s.pipeline.LastFailure(),
	}

	return c.Render("status", data, handler.BaseLayout)
}
