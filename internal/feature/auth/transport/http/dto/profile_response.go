package dto

import (
	"time"

	"github.com/google/uuid"

	"calories_tracker/internal/feature/auth/domain/entity"
	"calories_tracker/internal/feature/auth/usecase"
)

// ProfileResponse is the public view of a user. Credentials are never included.
type ProfileResponse struct {
	ID                  uuid.UUID `json:"id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	Role                string    `json:"role"`
	DailyCalorieLimit   float64   `json:"daily_calorie_limit"`
	IsCaloriesDeficient bool      `json:"is_calories_deficient"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewProfileResponse converts a user entity.
func NewProfileResponse(u entity.User) ProfileResponse {
	return ProfileResponse{
		ID:                  u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Username:            u.Username,
		Email:               u.Email,
		Role:                u.Role.String(),
		DailyCalorieLimit:   u.DailyCalorieLimit,
		IsCaloriesDeficient: u.CaloriesDeficient,
		CreatedAt:           u.CreatedAt,
	}
}

// CalorieReportResponse is the body of PATCH /settings/daily-calorie-limit-exceeded.
type CalorieReportResponse struct {
	DailyCalorieLimit            float64 `json:"daily_calorie_limit"`
	CaloriesToday                float64 `json:"calories_today"`
	IsCaloriesDeficient          bool    `json:"is_calories_deficient"`
	HasExceededDailyCalorieLimit bool    `json:"has_exceeded_daily_calorie_limit"`
}

// NewCalorieReportResponse converts a calorie report.
func NewCalorieReportResponse(r usecase.CalorieReport) CalorieReportResponse {
	return CalorieReportResponse{
		DailyCalorieLimit:            r.DailyCalorieLimit,
		CaloriesToday:                r.CaloriesToday,
		IsCaloriesDeficient:          r.Deficient,
		HasExceededDailyCalorieLimit: r.Exceeded,
	}
}
