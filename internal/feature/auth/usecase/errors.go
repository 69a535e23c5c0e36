// Package usecase implements the business logic for user accounts.
package usecase

import "errors"

var (
	// ErrCalorieLimitNotSet is returned when a calorie check runs before a daily limit was set.
	ErrCalorieLimitNotSet = errors.New("daily calorie limit is not set")
)
