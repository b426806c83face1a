// Package errors provides custom error types for the ordsync system.
// These errors enable programmatic error checking across the pipeline
// stages and let the CLI map every failure to a stable exit code.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As re-export the standard library helpers so callers need a single import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the ordsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCursor indicates that the sync cursor is not an ISO date
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrTransport indicates a network or HTTP failure at any fetch call
	ErrTransport = errors.New("transport error")

	// ErrEmptyResult indicates that the change feed returned no records
	ErrEmptyResult = errors.New("empty result")

	// ErrMissingTemplateResource indicates a static template resource is unavailable
	ErrMissingTemplateResource = errors.New("missing template resource")

	// ErrUnavailable indicates that the API is temporarily unavailable
	ErrUnavailable = errors.New("api unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrRolledBack indicates that a write handle was already rolled back
	ErrRolledBack = errors.New("rolled back")

	// ErrCommitted indicates that a write handle was already committed
	ErrCommitted = errors.New("already committed")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// InvalidCursorError is returned when a sync cursor fails date validation.
// It is always raised before any network access.
type InvalidCursorError struct {
	Value  string
	Reason string
}

// Error implements the error interface
func (e *InvalidCursorError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid cursor %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid cursor %q", e.Value)
}

// Is implements errors.Is support
func (e *InvalidCursorError) Is(target error) bool {
	return target == ErrInvalidCursor || target == ErrInvalidInput
}

// NewInvalidCursorError creates a new InvalidCursorError
func NewInvalidCursorError(value, reason string) *InvalidCursorError {
	return &InvalidCursorError{Value: value, Reason: reason}
}

// TransportError represents any failure to fetch a resource from the API,
// whether the request never completed or the server answered with a non-2xx status.
type TransportError struct {
	Operation  string // "query", "resolve", "taxonomy"
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Operation, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Operation, e.URL, msg)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	case ErrTimeout:
		return errors.Is(e.Err, context.DeadlineExceeded)
	case ErrCanceled:
		return errors.Is(e.Err, context.Canceled)
	}
	return false
}

// NewTransportError creates a new TransportError for a failed request
func NewTransportError(operation, url string, err error) *TransportError {
	return &TransportError{Operation: operation, URL: url, Err: err}
}

// NewStatusError creates a new TransportError for a non-2xx response
func NewStatusError(operation, url string, statusCode int, status string) *TransportError {
	return &TransportError{
		Operation:  operation,
		URL:        url,
		StatusCode: statusCode,
		Message:    status,
	}
}

// MissingTemplateResourceError indicates that a static reference resource
// needed to assemble the output document could not be loaded.
type MissingTemplateResourceError struct {
	Resource string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *MissingTemplateResourceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("template resource %s unavailable: %s", e.Resource, msg)
}

// Unwrap implements errors.Unwrap
func (e *MissingTemplateResourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MissingTemplateResourceError) Is(target error) bool {
	return target == ErrMissingTemplateResource
}

// NewMissingTemplateResourceError creates a new MissingTemplateResourceError
func NewMissingTemplateResourceError(resource, message string, err error) *MissingTemplateResourceError {
	return &MissingTemplateResourceError{Resource: resource, Message: message, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "xml", "yaml", ...
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidCursor checks if an error is a cursor validation error
func IsInvalidCursor(err error) bool {
	return errors.Is(err, ErrInvalidCursor)
}

// IsTransport checks if an error is a transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsEmptyResult checks if the change feed returned nothing
func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrEmptyResult)
}

// IsMissingTemplateResource checks if a template resource was unavailable
func IsMissingTemplateResource(err error) bool {
	return errors.Is(err, ErrMissingTemplateResource)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error, including an expired context
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled checks if an error is a cancellation error, including a canceled context
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
