// Package usecase implements the business logic for the meals feature.
package usecase

import "errors"

var (
	// ErrMealNotFound is returned when no meal has the given id.
	ErrMealNotFound = errors.New("meal not found")

	// ErrOwnerNotFound is returned when a meal is created for a user that does not exist.
	ErrOwnerNotFound = errors.New("meal owner not found")

	// ErrForbidden is returned when the caller may not access another user's meals.
	ErrForbidden = errors.New("access to this meal is forbidden")
)
