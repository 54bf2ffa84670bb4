// Package export implements settings export and import as downloadable
// JSON files.
package export

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/settings"
	"github.com/ai-scholar/scholar-admin/internal/web/handler"
)

const (
	// Path is the path of the export API.
	Path = handler.APIPrefix + "/settings/export"

	// ImportPath is the path of the import API.
	ImportPath = handler.APIPrefix + "/settings/import"

	// FilenamePrefix is the download filename prefix. The export date
	// is appended.
	FilenamePrefix = "ai-scholar-settings-"
)

// Service is the export handler service.
type Service struct {
	cfg  *config.Config
	repo *settings.Repository
}

// Handler is the export handler.
var Handler = Service{}

// Init initializes the export handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, repo *settings.Repository) error {
	if app == nil || cfg == nil || repo == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = cfg
	s.repo = repo

	app.Get(Path, s.Get)
	app.Post(ImportPath, s.Post)

	return nil
}

// Get returns the settings export file as a JSON download.
func (s *Service) Get(c *fiber.Ctx) error {
	file := s.repo.Export(c.Get(fiber.HeaderUserAgent))

	payload, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal settings export")
		return handler.JSONError(c, err)
	}

	filename := FilenamePrefix + file.ExportDate[:10] + ".json"
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(payload)
}

// Post imports a previously exported settings file. The contained
// record is validated before anything is applied.
func (s *Service) Post(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return handler.JSONError(c, apperr.New(apperr.KindValidation, "import file is not valid JSON"))
	}

	if err := s.repo.Import(body); err != nil {
		log.Debug().Err(err).Msg("settings import rejected")
		return handler.JSONError(c, err)
	}

	return c.JSON(s.repo.Settings())
}
