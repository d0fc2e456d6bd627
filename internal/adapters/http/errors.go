package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

// Error codes carried in the "error" field of error bodies.
const (
	codeNoData              = "nodata"
	codeBadJSON             = "badjson"
	codeBBox                = "bbox"
	codeCredentialsRequired = "credentials_required"
	codeInvalidToken        = "invalid_token"
	codeUser                = "user"
	codeRole                = "role"
	codeDB                  = "db"
)

const noDataMessage = "requires *some* data to be posted"

// APIError is a structured error response.
type APIError struct {
	Error     string            `json:"error"`   // Error code: nodata, role, db, etc.
	Message   string            `json:"message"` // Human-readable message
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     code,
		Message:   message,
		RequestID: reqID,
	})
}

// errNoData returns a 400 for empty push bodies.
func errNoData(c *fiber.Ctx) error {
	return newError(c, fiber.StatusBadRequest, codeNoData, noDataMessage)
}

// errBadRequest returns a 400 with the given code.
func errBadRequest(c *fiber.Ctx, code, msg string) error {
	return newError(c, fiber.StatusBadRequest, code, msg)
}

// errUnauthorized returns a 401 with the given code.
func errUnauthorized(c *fiber.Ctx, code, msg string) error {
	return newError(c, fiber.StatusUnauthorized, code, msg)
}

// errDB returns a 500 carrying the store error message and, for
// validation failures, the per-field errors.
func errDB(c *fiber.Ctx, err error) error {
	reqID, _ := c.Locals("requestid").(string)
	body := APIError{Error: codeDB, Message: err.Error(), RequestID: reqID}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Message = verr.Message
		body.Errors = verr.Errors
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
