// Package usecase implements account management for administrators and user managers.
package usecase

import "errors"

var (
	// ErrForbidden is returned when the caller's role may not act on the target account or role.
	ErrForbidden = errors.New("operation not permitted for this role")
)
