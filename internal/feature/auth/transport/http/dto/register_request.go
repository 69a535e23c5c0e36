package dto

// RegisterReq は/registerエンドポイントのリクエストボディを表します。
// パスワードはstrongpasswordルールで検証されます。
type RegisterReq struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Username  string `json:"username" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,strongpassword"`
}
