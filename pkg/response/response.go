package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/poller"
)

// Error codes
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeJobFailed          = "JOB_FAILED"
	CodeServiceError       = "SERVICE_ERROR"
	CodeBackendError       = "BACKEND_ERROR"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Error(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ValidationError(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, CodeValidationError, message, details)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, CodeForbidden, message, nil)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, message, nil)
}

func RateLimited(c *fiber.Ctx) error {
	return Error(c, fiber.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded", nil)
}

func ServiceError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, CodeServiceError, message, nil)
}

// FromError writes the envelope matching err's kind. Backend 4xx statuses
// are passed through; 5xx become 502.
func FromError(c *fiber.Ctx, err error) error {
	if errors.Is(err, poller.ErrBusy) {
		return Error(c, fiber.StatusConflict, CodeConflict, "A job is already running", nil)
	}

	var se *client.ServiceError
	if !errors.As(err, &se) {
		return ServiceError(c, err.Error())
	}

	msg := client.Message(err)
	switch se.Kind {
	case client.KindValidation:
		var details interface{}
		if se.Code != "" {
			details = fiber.Map{"code": se.Code}
		}
		return ValidationError(c, msg, details)
	case client.KindAuth:
		return Unauthorized(c, msg)
	case client.KindNetwork:
		return Error(c, fiber.StatusBadGateway, CodeBackendUnavailable, msg, nil)
	case client.KindServer:
		switch {
		case se.StatusCode == fiber.StatusNotFound:
			return NotFound(c, msg)
		case se.StatusCode == fiber.StatusTooManyRequests:
			return RateLimited(c)
		case se.StatusCode >= 400 && se.StatusCode < 500:
			return Error(c, se.StatusCode, CodeBackendError, msg, codeDetails(se.Code))
		}
		return Error(c, fiber.StatusBadGateway, CodeBackendError, msg, codeDetails(se.Code))
	default:
		return ServiceError(c, msg)
	}
}

func codeDetails(code string) interface{} {
	if code == "" {
		return nil
	}
	return fiber.Map{"code": code}
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func Accepted(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(data)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
