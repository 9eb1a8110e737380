package serverutils

import (
	"errors"

	"ai-interview-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbled up from controllers into
// JSON envelopes. AppError carries its own status and details; fiber.Error
// keeps its status; anything else is a 500 with a generic message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			return ctx.Status(appErr.Code).JSON(APIErrorResponse{
				Success: false,
				Message: appErr.Message,
				Kind:    appErr.Kind,
				Details: appErr.Details,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(APIErrorResponse{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(APIErrorResponse{
			Success: false,
			Message: "internal server error",
		})
	}
}
