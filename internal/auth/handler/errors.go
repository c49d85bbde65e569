package handler

import (
	"errors"
	"log/slog"

	autherror "github.com/IVYLIFE/Authly/internal/errors"
	"github.com/gofiber/fiber/v2"
)

const (
	serverErrorMessage   = "Server error"
	routeNotFoundMessage = "Route not found"
)

// errorResponse maps domain errors to a status code and the message shown to
// clients. Unknown errors become a 500 with a generic message.
func errorResponse(err error) (int, string) {
	var fieldErr *autherror.FieldError
	if errors.As(err, &fieldErr) {
		if errors.Is(fieldErr.Err, autherror.ErrMissingRequiredField) {
			return fiber.StatusBadRequest, "Missing required field: " + fieldErr.Field
		}
		return fiber.StatusBadRequest, "Invalid value for field: " + fieldErr.Field
	}

	switch {
	case errors.Is(err, autherror.ErrInvalidRequestBody):
		return fiber.StatusBadRequest, "Invalid request body"
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return fiber.StatusConflict, "User already exists"
	case errors.Is(err, autherror.ErrUserNotFound):
		return fiber.StatusNotFound, "User not found"
	case errors.Is(err, autherror.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, autherror.ErrRefreshTokenMissing):
		return fiber.StatusUnauthorized, "No refresh token"
	case errors.Is(err, autherror.ErrInvalidRefreshToken):
		return fiber.StatusForbidden, "Invalid refresh token"
	case errors.Is(err, autherror.ErrTokenMissing):
		return fiber.StatusUnauthorized, "Not authorized, no token"
	case errors.Is(err, autherror.ErrTokenExpired):
		return fiber.StatusUnauthorized, "Token expired"
	case errors.Is(err, autherror.ErrTokenInvalid):
		return fiber.StatusUnauthorized, "Not authorized, invalid token"
	case errors.Is(err, autherror.ErrForbidden):
		return fiber.StatusForbidden, "Forbidden: You can't access this profile"
	case errors.Is(err, autherror.ErrTooManyLoginAttempts):
		return fiber.StatusTooManyRequests, "Too many login attempts, please try again later."
	default:
		return fiber.StatusInternalServerError, serverErrorMessage
	}
}

func (h *AuthHandler) respondError(c *fiber.Ctx, err error) error {
	status, message := errorResponse(err)
	if status == fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return writeMessage(c, status, message)
}

func writeMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// ErrorHandler renders errors that escape route handlers in the same
// {message} shape as handled errors.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code == fiber.StatusNotFound {
				return writeMessage(c, fe.Code, routeNotFoundMessage)
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeMessage(c, fe.Code, fe.Message)
			}
		}

		status, message := errorResponse(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return writeMessage(c, status, message)
	}
}

// NotFound answers any request no route matched.
func NotFound(c *fiber.Ctx) error {
	return writeMessage(c, fiber.StatusNotFound, routeNotFoundMessage)
}
