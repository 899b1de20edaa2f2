package api

import "errors"

var (
	// ErrUnauthorized means the credentials or tokens were rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired means the access token expired and could not be
	// refreshed; the user has to log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrNotFound covers both a missing entry and one owned by another
	// account; the server does not distinguish them.
	ErrNotFound = errors.New("entry not found or unauthorized")
	// ErrAlreadyExists means the email is already registered.
	ErrAlreadyExists = errors.New("email already registered")
)

// RequestError carries the message the server attached to a failed request.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}
