package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message.
// Plain errors are written as text/plain, an empty Message means an empty body.
type E struct {
	Status  int    `json:"-" example:"400"`
	Message string `json:"error" example:"Bad Request"`
	Plain   bool   `json:"-"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// Write renders the error on c.
func (e E) Write(c *fiber.Ctx) error {
	c.Status(e.Status)
	switch {
	case e.Message == "":
		return nil
	case e.Plain:
		return c.SendString(e.Message)
	default:
		return c.JSON(e)
	}
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// Text is a plain-text error body.
func Text(status int, message string) error {
	return E{Status: status, Message: message, Plain: true}
}

// Empty is a status code with no body at all.
func Empty(status int) error {
	return E{Status: status}
}

// InvalidInput wraps a validation error and returns the standard response.
func InvalidInput(err error) error {
	return Fail(E{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid input: " + err.Error(),
	})
}

// BadRequest reports err's message as a JSON 400.
func BadRequest(err error) error {
	return Fail(E{Status: fiber.StatusBadRequest, Message: err.Error()})
}

// InternalError returns an internal server error with the given message
func InternalError(message string) E {
	return E{Status: fiber.StatusInternalServerError, Message: message}
}

// Pre-defined HTTP errors
var (
	ErrBadRequest   = E{Status: fiber.StatusBadRequest, Message: "Bad Request"}
	ErrAuthenticate = E{Status: fiber.StatusUnauthorized, Message: "Please authenticate."}
	ErrInternal     = InternalError("Internal Server Error")
)

// Handler is the global error handler for Fiber
func Handler(c *fiber.Ctx, err error) error {
	var e E
	if errors.As(err, &e) {
		return e.Write(c)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(E{
			Status:  fiberError.Code,
			Message: fiberError.Message,
		})
	}

	return ErrInternal.Write(c)
}
