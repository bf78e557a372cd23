package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, deliberately indistinguishable so login responses don't
	// leak which emails are registered.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email_taken")

	// ErrInvalidRefresh is returned when a refresh token's persisted record
	// has been revoked or rotated away.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrNotFound is returned for lookups of records that don't exist.
	ErrNotFound = errors.New("not_found")
)
