package role

import "github.com/google/uuid"

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdministrator reports whether the actor has the Administrator role.
func (a Actor) IsAdministrator() bool { return a.Role == Administrator }

// CanAccess reports whether the actor may read or modify data owned by owner.
// Administrators may access anything; everyone else only their own data.
func (a Actor) CanAccess(owner uuid.UUID) bool {
	return a.IsAdministrator() || (a.UserID != uuid.Nil && a.UserID == owner)
}
