// Package announcements exposes the transient announcement queue to
// the front-end's polling live region.
package announcements

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ai-scholar/scholar-admin/internal/announce"
	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/web/handler"
)

const (
	// Path is the path of the announcements API.
	Path = handler.APIPrefix + "/announcements"
)

// Service is the announcements handler service.
type Service struct {
	cfg       *config.Config
	announcer *announce.Announcer
}

// Handler is the announcements handler.
var Handler = Service{}

// Init initializes the announcements handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, announcer *announce.Announcer) error {
	if app == nil || cfg == nil || announcer == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.announcer = announcer

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Delete("/:id", s.Dismiss)
	})

	return nil
}

// Get returns the live announcements, oldest first.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(s.announcer.Messages())
}

// Dismiss removes an announcement before it expires.
func (s *Service) Dismiss(c *fiber.Ctx) error {
	if !s.announcer.Dismiss(c.Params("id")) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
