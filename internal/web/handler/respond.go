package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
)

// ErrorBody is the JSON error envelope of the API. Fields carries the
// per-field validation messages when present.
type ErrorBody struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// StatusForKind maps an error kind to an HTTP status code.
func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindDuplicate:
		return fiber.StatusConflict
	case apperr.KindPermission:
		return fiber.StatusForbidden
	case apperr.KindNetwork:
		return fiber.StatusBadGateway
	case apperr.KindStorage:
		return fiber.StatusInsufficientStorage
	default:
		return fiber.StatusInternalServerError
	}
}

// JSONError classifies err and writes the error envelope.
func JSONError(c *fiber.Ctx, err error) error {
	return JSONFieldErrors(c, err, nil)
}

// JSONFieldErrors writes the error envelope including per-field
// validation messages.
func JSONFieldErrors(c *fiber.Ctx, err error, fields map[string]string) error {
	kind := apperr.Classify(err)

	return c.Status(StatusForKind(kind)).JSON(ErrorBody{
		Kind:    string(kind),
		Message: apperr.UserMessage(kind),
		Fields:  fields,
	})
}
