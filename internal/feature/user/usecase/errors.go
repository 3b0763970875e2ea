// Package usecase implements the business logic for the user feature.
package usecase

import "errors"

var (
	// ErrUnauthorized is returned when the caller has no authenticated session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller is authenticated but lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when creating a user with an email already in use.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrStorageUnavailable is returned when object storage is not configured.
	ErrStorageUnavailable = errors.New("object storage unavailable")
)
