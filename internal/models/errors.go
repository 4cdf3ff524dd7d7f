// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Response is the uniform JSON envelope returned by every handler.
type Response struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
	}
}

// NewUpstreamError wraps a failure from an external collaborator (media store, mailer).
func NewUpstreamError(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstreamFailure,
		Message: fmt.Sprintf("%s failed", operation),
		Err:     err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorStatus maps an error to its HTTP status code. Upstream failures map to 400:
// the media upload aborting post creation is reported as a generic request failure,
// never as an internal error.
func ErrorStatus(err error) int {
	appErr, ok := err.(*AppError)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeValidationError, CodeUpstreamFailure:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes a success envelope with the given status, message and optional data.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Message: message,
		Success: true,
		Data:    data,
	})
}

// RespondWithError writes a failure envelope; internal error details are never leaked.
func RespondWithError(c *fiber.Ctx, err error) error {
	message := "Internal server error"
	if appErr, ok := err.(*AppError); ok && appErr.Code != CodeInternalError {
		message = appErr.Message
	}
	return c.Status(ErrorStatus(err)).JSON(Response{
		Message: message,
		Success: false,
	})
}
