package presenters

import (
	"encoding/json"
	"errors"

	"mein-essen/domain"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse writes data with "success" and "message" added next to its
// own fields. Non-object payloads are placed under "data".
func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	body := map[string]any{}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return ErrorResponse(c, fiber.StatusInternalServerError, message, err)
		}

		fields := map[string]json.RawMessage{}
		if len(raw) > 0 && raw[0] == '{' && json.Unmarshal(raw, &fields) == nil {
			for k, v := range fields {
				body[k] = v
			}
		} else {
			body["data"] = json.RawMessage(raw)
		}
	}

	body["success"] = true
	body["message"] = message
	return c.Status(statusCode).JSON(body)
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(statusCode).JSON(body)
}

// ErrorHandler is the app-wide fiber error handler. It keeps errors raised
// outside handlers, like an oversized body, in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			return ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, domain.ErrFileTooLarge)
		}
		return ErrorResponse(c, fe.Code, fe.Message, fe)
	}
	return ErrorResponse(c, fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message, err)
}
