package presenters

import (
	"errors"

	"mein-essen/domain"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a service error to the HTTP status the API answers with:
// request problems are 400, unknown receipts 404 and anything coming from
// storage, the database or the model 500.
func StatusFor(err error) int {
	switch {
	case domain.IsClientError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrReceiptNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
