// Package common defines shared constants and sentinel errors used across
// client and server layers of legacyvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrEntryNotFoundOrUnauthorized is returned when an entry mutation
	// targets a record that does not exist or belongs to another user.
	// The two causes are merged so that callers cannot probe for the
	// existence of other users' entries.
	ErrEntryNotFoundOrUnauthorized = errors.New("entry not found or unauthorized")

	// Validation errors.
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPasswordTooWeak = errors.New("password too weak")
	ErrTitleRequired   = errors.New("title is required")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
