// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "time"

// LoginReq は/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse はログイン成功時のレスポンスです。
type TokenResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
