// Package domain defines domain-level errors for user accounts.
package domain

import "errors"

// Domain errors for account operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUserAlreadyExists indicates that a user with the given email or username already exists.
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates that the provided credentials are incorrect.
	// This is returned during login when email or password is invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRole indicates that a role outside the defined set was requested.
	ErrInvalidRole = errors.New("invalid role")
)
