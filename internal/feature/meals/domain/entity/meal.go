// Package entity defines the domain entities for the meals feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal is one logged meal. ID and UserID never change after creation.
type Meal struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// UserID is the owning user.
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_meals_user_created,priority:1"`

	// Text is the free-form description, also used for the nutrition lookup.
	Text string `gorm:"size:100;not null"`

	// NumberOfCalories is in kcal, 0..5000.
	NumberOfCalories float64 `gorm:"not null"`

	// CreatedAt is assigned by the server in UTC.
	CreatedAt time.Time `gorm:"index:idx_meals_user_created,priority:2"`
	UpdatedAt time.Time
}

// BeforeCreate assigns a new id when none is set.
func (m *Meal) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
