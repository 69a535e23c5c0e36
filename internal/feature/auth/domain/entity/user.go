// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"calories_tracker/internal/shared/role"
)

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100;not null"`

	// Username must be unique across all users.
	Username string `gorm:"uniqueIndex;size:100;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users and is stored lower-cased.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordSalt is mixed into the password before hashing.
	PasswordSalt string `gorm:"not null"`

	// PasswordHash is the encoded hash of the salted password.
	// This should never store plaintext passwords.
	PasswordHash string `gorm:"not null"`

	// Role is the single role assigned to the user.
	Role role.Role `gorm:"size:32;not null"`

	// DailyCalorieLimit is the expected number of calories per day; 0 means unset.
	DailyCalorieLimit float64 `gorm:"not null"`

	// CaloriesDeficient is the result of the last calorie check.
	CaloriesDeficient bool `gorm:"not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// BeforeCreate assigns a new id when none is set.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
