package serverutils

import (
	"errors"

	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps the error taxonomy to HTTP statuses. Upstream provider
// failures surface as 502; everything unclassified is a plain 500.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindConfiguration:
		return fiber.StatusInternalServerError
	case apperror.KindEmbedding, apperror.KindRetrieval, apperror.KindWebSearch, apperror.KindLLM:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware converts errors bubbling out of controllers into
// the structured error envelope. The caller either gets a complete answer
// or an explicit failure, never a partial body.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := statusFor(appErr.Kind)
			if status >= 500 {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"kind":  string(appErr.Kind),
					"error": appErr.Error(),
				})
			}
			return ctx.Status(status).JSON(TypedErrorResponse(status, appErr.Message, string(appErr.Kind)))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}
