package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field value")
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTokenMissing         = errors.New("no token provided")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrRefreshTokenMissing  = errors.New("refresh token missing")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrForbidden            = errors.New("forbidden")
	ErrTooManyLoginAttempts = errors.New("too many login attempts")
	ErrInvalidRequestBody   = errors.New("invalid request body")
)

// FieldError names the input field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func MissingField(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrMissingRequiredField}
}

func InvalidField(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrInvalidField}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
