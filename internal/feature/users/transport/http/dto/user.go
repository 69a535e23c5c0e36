// Package dto defines the request bodies of the user management endpoints.
package dto

// CreateUserReq is the body of POST /api/users. Role defaults to RegularUser.
type CreateUserReq struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Username  string `json:"username" binding:"max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,strongpassword"`
	Role      string `json:"role" binding:"omitempty,oneof=RegularUser UserManager Administrator"`
}

// UpdateUserReq is the body of PUT /api/users/:id. An omitted role or daily calorie limit
// leaves it unchanged.
type UpdateUserReq struct {
	FirstName         string   `json:"first_name" binding:"required,max=100"`
	LastName          string   `json:"last_name" binding:"required,max=100"`
	Username          string   `json:"username" binding:"max=100"`
	DailyCalorieLimit *float64 `json:"daily_calorie_limit" binding:"omitempty,gte=10,lte=5000"`
	Role              *string  `json:"role" binding:"omitempty,oneof=RegularUser UserManager Administrator"`
}
