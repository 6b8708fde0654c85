package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// NewErrorHandler returns the app-level fiber error handler. It catches
// everything the route handlers did not map themselves, such as oversized
// bodies or panics surfaced by the recover middleware, and renders the same
// {"detail": ...} body the API uses everywhere else.
func NewErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := "Internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			detail = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error",
				zap.String("request_id", requestID(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(models.ErrorResponse{Detail: detail})
	}
}
