// Package httpapi is the demo Fiber HTTP server's request layer: typed
// API errors, request validation, and handlers wrapping a rag.Pipeline.
//
// Grounded directly on app/api/errors.go's Error/ValidationError/
// ErrorHandler convention: a typed Error implementing the error
// interface, rendered by a fiber.Config.ErrorHandler that type-switches
// on it, generalized here to also branch on the ragerr sentinel taxonomy
// (SPEC_FULL.md §7) so an InvalidArgument or EmbedderUnavailable failure
// surfaces its own HTTP status (400 or 503) instead of falling through to
// 500; IndexCorrupt and DimensionMismatch map to 500.
package httpapi

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/uni-regulations/rag-core/internal/ragerr"
)

// Error is the handler layer's typed API error, rendered as
// {"code": ..., "error": ...}.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string { return e.Message }

// NewError builds an Error with an explicit status code and message.
func NewError(code int, msg string) Error {
	return Error{Code: code, Message: msg}
}

// ErrBadRequest is returned when a request body fails to parse or fails
// validation.
func ErrBadRequest(msg string) Error {
	return Error{Code: fiber.StatusBadRequest, Message: msg}
}

// ErrNotFound is returned when a referenced document or chunk id does
// not exist.
func ErrNotFound(resource, id string) Error {
	return Error{Code: fiber.StatusNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// ValidationError carries go-playground/validator field-level failures.
type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string { return "validation failed" }

// NewValidationError wraps a field->reason map as a ValidationError.
func NewValidationError(fieldErrors map[string]string) ValidationError {
	return ValidationError{Status: fiber.StatusUnprocessableEntity, Errors: fieldErrors}
}

// ErrorHandler is the server's fiber.Config.ErrorHandler. It type-switches
// on Error and ValidationError first (the handler layer's own typed
// errors), then on the ragerr sentinel taxonomy, falling back to 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Code).JSON(apiErr)
	}
	var valErr ValidationError
	if errors.As(err, &valErr) {
		return c.Status(valErr.Status).JSON(valErr)
	}

	code, msg := classify(err)
	log.Printf("request failed: status=%d err=%v\n", code, err)
	return c.Status(code).JSON(Error{Code: code, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ragerr.ErrInvalidArgument):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ragerr.ErrEmbedderUnavailable), errors.Is(err, ragerr.ErrGeneratorUnavailable):
		return fiber.StatusServiceUnavailable, err.Error()
	case errors.Is(err, ragerr.ErrIndexCorrupt), errors.Is(err, ragerr.ErrDimensionMismatch):
		return fiber.StatusInternalServerError, err.Error()
	default:
		if fe, ok := err.(*fiber.Error); ok {
			return fe.Code, fe.Message
		}
		return fiber.StatusInternalServerError, err.Error()
	}
}
