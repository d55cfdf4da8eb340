// Package common defines shared constants and sentinel errors used across
// client and server layers of gridplanner. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrConstraintViolation is returned when a write would give two items of
	// one container the same position.
	ErrConstraintViolation = errors.New("position constraint violation")

	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrorValidation     = errors.New("validation error")

	// ErrUnavailable means the remote side could not be reached.
	ErrUnavailable = errors.New("service unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
