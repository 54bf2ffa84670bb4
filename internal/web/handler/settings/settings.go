// Package settings implements the settings API: read, validated patch,
// reset and clear. Writes run through the retry pipeline.
package settings

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/retry"
	"github.com/ai-scholar/scholar-admin/internal/settings"
	"github.com/ai-scholar/scholar-admin/internal/web/handler"
)

const (
	// Path is the path of the settings API.
	Path = handler.APIPrefix + "/settings"

	// SaveLabel identifies settings persistence in pipeline events.
	SaveLabel = "save-settings"
)

// Service is the settings handler service.
type Service struct {
	cfg      *config.Config
	repo     *settings.Repository
	pipeline *retry.Pipeline
}

// Handler is the settings handler.
var Handler = Service{}

// Init initializes the settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, repo *settings.Repository, pipeline *retry.Pipeline) error {
	if app == nil || cfg == nil || repo == nil || pipeline == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.repo = repo
	s.pipeline = pipeline

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Put(handler.RouterRootPath, s.Put)
		router.Post("/reset", s.Reset)
		router.Delete(handler.RouterRootPath, s.Clear)
	})

	return nil
}

// Get returns the current settings record.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(s.repo.Settings())
}

// Put applies a partial update. The body is a JSON object whose keys
// override the current record; everything else keeps its value. The
// merged candidate is validated before anything is committed, then
// persisted through the retry pipeline.
func (s *Service) Put(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return handler.JSONError(c, apperr.New(apperr.KindValidation, "request body is not valid JSON"))
	}

	fieldErrors, err := s.repo.Update(func(record *settings.Settings) {
		// the merge target is the current record, so absent keys
		// keep their values
		_ = json.Unmarshal(body, record)
	})
	if err != nil {
		log.Debug().Err(err).Msg("settings update rejected")
		return handler.JSONFieldErrors(c, err, fieldErrors)
	}

	if _, err := retry.Run(c.Context(), s.pipeline, SaveLabel, func() (struct{}, error) {
		return struct{}{}, s.repo.Save()
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist settings")
		return handler.JSONError(c, err)
	}

	return c.JSON(s.repo.Settings())
}

// Reset restores the default settings and persists them.
func (s *Service) Reset(c *fiber.Ctx) error {
	if _, err := retry.Run(c.Context(), s.pipeline, SaveLabel, func() (struct{}, error) {
		return struct{}{}, s.repo.Reset()
	}); err != nil {
		log.Error().Err(err).Msg("failed to reset settings")
		return handler.JSONError(c, err)
	}

	return c.JSON(s.repo.Settings())
}

// Clear removes the persisted record entirely. The in-memory state
// falls back to defaults.
func (s *Service) Clear(c *fiber.Ctx) error {
	if err := s.repo.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear stored settings")
		return handler.JSONError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
