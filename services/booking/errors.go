package booking

import (
	"errors"
	"fmt"
)

// Error codes for the booking engine. Handlers map these onto HTTP statuses;
// services branch on them to decide whether an outcome is terminal or retryable.
const (
	CodeValidation      = "validationError"
	CodeAuthentication  = "authenticationError"
	CodeAuthorization   = "authorizationError"
	CodeNotFound        = "notFoundError"
	CodeStateConflict   = "stateConflictError"
	CodeExternalService = "externalServiceError"
)

// Error is a coded engine error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &Error{Code: CodeValidation, Message: msg}
}

func NewAuthenticationError(msg string) error {
	return &Error{Code: CodeAuthentication, Message: msg}
}

func NewAuthorizationError(msg string) error {
	return &Error{Code: CodeAuthorization, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NewStateConflictError(msg string) error {
	return &Error{Code: CodeStateConflict, Message: msg}
}

func NewExternalServiceError(msg string) error {
	return &Error{Code: CodeExternalService, Message: msg}
}

// CodeOf returns the engine error code carried by err, or "" for plain errors.
func CodeOf(err error) string {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return ""
}
