// Package apperror defines the application's error taxonomy.
//
// Every error the HTTP layer needs to translate into a status code wraps one of
// the sentinel values below. Callers check the category with errors.Is and pull
// the human-readable message out with errors.As(err, &*AppError).
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Upload gate rejections (client input, HTTP 400).
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")

	// Generation pipeline failures (HTTP 500).
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrMalformedAIResponse = errors.New("malformed AI response")
	ErrInvalidSetContent   = errors.New("invalid set content")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure, kept for logs
}

// Error returns the message, followed by the cause when there is one. A
// trailing period on the message is dropped before the cause is joined.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return strings.TrimSuffix(e.Message, ".") + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the category sentinel and the underlying cause, so
// errors.Is matches either one (e.g. ErrExtractionFailed and
// context.DeadlineExceeded).
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func InvalidFileType(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidFileType,
		Message: message,
		Field:   "pdfFile",
	}
}

func FileTooLarge(limit int64) *AppError {
	return &AppError{
		Err:     ErrFileTooLarge,
		Message: fmt.Sprintf("File is too large. Maximum size allowed is %dMB.", limit/(1024*1024)),
		Field:   "pdfFile",
	}
}

// ExtractionFailed reports a failed or empty call to the completion endpoint.
// cause may be nil.
func ExtractionFailed(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrExtractionFailed,
		Message: message,
		Cause:   cause,
	}
}

// MalformedAIResponse reports model output that could not be recovered into
// the expected JSON shape. cause may be nil.
func MalformedAIResponse(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrMalformedAIResponse,
		Message: message,
		Cause:   cause,
	}
}

func InvalidSetContent(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidSetContent,
		Message: message,
		Field:   field,
	}
}
