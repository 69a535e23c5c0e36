// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"calories_tracker/internal/feature/auth/domain"
	"calories_tracker/internal/feature/auth/domain/entity"
	"calories_tracker/internal/feature/auth/transport/http/dto"
	"calories_tracker/internal/feature/auth/usecase"
	jwtmw "calories_tracker/internal/platform/jwt"
)

// invalidCredentialsMessage はログイン失敗時に常に返すメッセージです。
const invalidCredentialsMessage = "Invalid sign in credentials"

// AuthUsecase はアカウント操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string) (usecase.Token, error)
	Profile(ctx context.Context, id uuid.UUID) (*entity.User, error)
	EditProfile(ctx context.Context, id uuid.UUID, in usecase.EditProfileInput) (*entity.User, error)
	SetDailyCalorieLimit(ctx context.Context, id uuid.UUID, limit float64) (*entity.User, error)
	CheckCalorieDeficiency(ctx context.Context, id uuid.UUID) (usecase.CalorieReport, error)
}

// AuthHandler はアカウント操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// writeError はユースケースのエラーをHTTPステータスに変換します。
func writeError(c *gin.Context, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, usecase.ErrCalorieLimitNotSet):
		status, msg = http.StatusBadRequest, err.Error()
	}
	slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
	c.JSON(status, gin.H{"error": msg})
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メールアドレスまたはユーザー名の重複時は409を返却
// - 成功時はプロフィール付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, "register", err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewProfileResponse(*user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は理由を区別せず401を返却
// - 認証成功時はJWTトークンと有効期限付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentialsMessage})
		return
	}
	if err != nil {
		writeError(c, "login", err)
		return
	}
	slog.Info("user login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token.Value, Expires: token.ExpiresAt})
}

// Me は認証済みユーザーのプロフィールを返します。
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.auth.Profile(c.Request.Context(), id)
	if err != nil {
		writeError(c, "profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(*user))
}

// EditProfile は氏名とユーザー名を更新します。
func (h *AuthHandler) EditProfile(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.EditProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("edit profile validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.auth.EditProfile(c.Request.Context(), id, usecase.EditProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		writeError(c, "edit profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(*user))
}

// SetDailyCalorieLimit は1日のカロリー上限を設定します。
func (h *AuthHandler) SetDailyCalorieLimit(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.DailyCalorieLimitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("daily calorie limit validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.auth.SetDailyCalorieLimit(c.Request.Context(), id, req.DailyCalorieLimit)
	if err != nil {
		writeError(c, "set daily calorie limit", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(*user))
}

// CheckCalorieDeficiency は本日の摂取カロリーを上限と比較した結果を返します。
func (h *AuthHandler) CheckCalorieDeficiency(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	report, err := h.auth.CheckCalorieDeficiency(c.Request.Context(), id)
	if err != nil {
		writeError(c, "calorie check", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCalorieReportResponse(report))
}
