// Package common defines shared constants and sentinel errors used across
// the social backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Request validation errors. Each of the specific ones also matches
	// ErrorValidation.
	ErrorValidation         = errors.New("validation error")
	ErrorSelfFollow         = validation("you can't follow/unfollow yourself")
	ErrorEmptyComment       = validation("text field is required")
	ErrorEmptyPost          = validation("post must have text or image")
	ErrorInvalidCredentials = validation("invalid username or password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

type validationError struct{ msg string }

func validation(msg string) error { return &validationError{msg: msg} }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrorValidation }
