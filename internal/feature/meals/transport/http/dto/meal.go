// Package dto defines the request and response bodies of the meals endpoints.
package dto

import (
	"time"

	"github.com/google/uuid"

	"calories_tracker/internal/feature/meals/domain/entity"
)

// CreateMealReq is the body of POST /api/meals.
// A number_of_calories of 0 (or omitted) triggers the nutrition lookup.
type CreateMealReq struct {
	UserID           *uuid.UUID `json:"user_id"`
	Text             string     `json:"text" binding:"required,max=100"`
	NumberOfCalories float64    `json:"number_of_calories" binding:"gte=0,lte=5000"`
}

// UpdateMealReq is the body of PUT /api/meals/:id.
type UpdateMealReq struct {
	Text             string  `json:"text" binding:"required,max=100"`
	NumberOfCalories float64 `json:"number_of_calories" binding:"gte=0,lte=5000"`
}

// MealResponse is the public view of a meal.
type MealResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Text             string    `json:"text"`
	NumberOfCalories float64   `json:"number_of_calories"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewMealResponse converts a meal entity.
func NewMealResponse(m entity.Meal) MealResponse {
	return MealResponse{
		ID:               m.ID,
		UserID:           m.UserID,
		Text:             m.Text,
		NumberOfCalories: m.NumberOfCalories,
		CreatedAt:        m.CreatedAt,
	}
}

// TotalCaloriesResponse is the body of GET /api/meals/calories/today/:id.
type TotalCaloriesResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	TotalCalories float64   `json:"total_calories"`
	Date          string    `json:"date"`
}
