// Package domain defines the resource collections and the error taxonomy shared by
// the policy engine, services, and HTTP layer.
package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// StatusCoder is implemented by errors that carry an explicit HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// UnauthenticatedError indicates the request carries no session.
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }
func (e *UnauthenticatedError) StatusCode() int { return http.StatusUnauthorized }

// ForbiddenError is a policy denial. Reason is the policy reason code.
type ForbiddenError struct {
	Reason  string
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }
func (e *ForbiddenError) StatusCode() int { return http.StatusForbidden }

// MalformedIdentifierError indicates an id that is not 24 hex characters.
type MalformedIdentifierError struct {
	Value string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("Invalid id %q: expected 24 hex characters", e.Value)
}
func (e *MalformedIdentifierError) StatusCode() int { return http.StatusBadRequest }

// BadRequestError indicates a malformed query parameter.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }
func (e *BadRequestError) StatusCode() int { return http.StatusBadRequest }

// FieldError describes one failing field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists field-level validation failures.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}
	if len(msgs) == 0 {
		return "validation failed"
	}
	return strings.Join(msgs, ". ")
}
func (e *ValidationError) StatusCode() int { return http.StatusUnprocessableEntity }

// ConflictError indicates a duplicate email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// NotFoundError indicates a well formed id with no document behind it.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// UpstreamError wraps a persistence or identity provider failure.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}
func (e *UpstreamError) Unwrap() error   { return e.Err }
func (e *UpstreamError) StatusCode() int { return http.StatusInternalServerError }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrBadRequest creates a BadRequestError with a formatted message.
func ErrBadRequest(format string, args ...any) *BadRequestError {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}

// ErrUpstream wraps err as an UpstreamError. nil stays nil.
func ErrUpstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}
