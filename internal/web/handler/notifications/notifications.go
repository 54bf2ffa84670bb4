// Package notifications implements the notification preferences API.
// Toggles are persisted immediately through the retry pipeline, so a
// disabled auto-save cannot strand them in memory.
package notifications

import (
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
	// Path is the path of the notifications API.
	Path = handler.APIPrefix + "/notifications"

	// SaveLabel identifies notification persistence in pipeline events.
	SaveLabel = "save-notifications"
)

// Service is the notification preferences handler service.
type Service struct {
	cfg      *config.Config
	repo     *settings.Repository
	pipeline *retry.Pipeline
}

// Handler is the notification preferences handler.
var Handler = Service{}

// Init initializes the notification preferences handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, repo *settings.Repository, pipeline *retry.Pipeline) error {
	if app == nil || cfg == nil || repo == nil || pipeline == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.repo = repo
	s.pipeline = pipeline

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Put("/:id", s.Put)
	})

	return nil
}

// Get returns the notification settings list.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(s.repo.Notifications())
}

// channelToggle is the body of a channel update.
type channelToggle struct {
	Channel string `json:"channel"`
	Enabled bool   `json:"enabled"`
}

// Put toggles one delivery channel of one notification setting and
// persists the list through the retry pipeline.
func (s *Service) Put(c *fiber.Ctx) error {
	var body channelToggle
	if err := c.BodyParser(&body); err != nil {
		return handler.JSONError(c, apperr.Wrap(apperr.KindValidation, "request body is not valid JSON", err))
	}

	id := c.Params("id")
	if err := s.repo.SetNotificationChannel(id, body.Channel, body.Enabled); err != nil {
		log.Debug().Err(err).Str("id", id).Str("channel", body.Channel).Msg("notification toggle rejected")
		return handler.JSONError(c, err)
	}

	if _, err := retry.Run(c.Context(), s.pipeline, SaveLabel, func() (struct{}, error) {
		return struct{}{}, s.repo.Save()
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist notification settings")
		return handler.JSONError(c, err)
	}

	return c.JSON(s.repo.Notifications())
}
