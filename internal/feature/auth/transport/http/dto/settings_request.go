package dto

// EditProfileReq is the body of PUT /settings/profile.
type EditProfileReq struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Username  string `json:"username" binding:"required,max=100"`
}

// DailyCalorieLimitReq is the body of PUT /settings/daily-calorie-limit.
type DailyCalorieLimitReq struct {
	DailyCalorieLimit float64 `json:"daily_calorie_limit" binding:"required,gte=10,lte=5000"`
}
