// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
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
	authdto "calories_tracker/internal/feature/auth/transport/http/dto"
	"calories_tracker/internal/feature/users/transport/http/dto"
	"calories_tracker/internal/feature/users/usecase"
	jwtmw "calories_tracker/internal/platform/jwt"
	"calories_tracker/internal/shared/pagination"
	"calories_tracker/internal/shared/role"
)

// UserUsecase はユーザー管理のユースケースを定義します。
type UserUsecase interface {
	Create(ctx context.Context, actor role.Role, in usecase.CreateUserInput) (*entity.User, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context, q pagination.Query) (pagination.Page[entity.User], error)
	Update(ctx context.Context, actor role.Role, id uuid.UUID, in usecase.UpdateUserInput) (*entity.User, error)
	Delete(ctx context.Context, actor role.Role, id uuid.UUID) error
}

// UserHandler は管理者とユーザーマネージャー向けのアカウント管理を処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

func writeError(c *gin.Context, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUserAlreadyExists):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidRole):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, usecase.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	}
	slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
	c.JSON(status, gin.H{"error": msg})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// callerRole はポリシーミドルウェア通過後のロールを返します。
func callerRole(c *gin.Context) role.Role {
	r, _ := jwtmw.RoleFrom(c)
	return r
}

// List はユーザーを1ページ分返します。?s= で氏名・ユーザー名・メールアドレスを検索します。
func (h *UserHandler) List(c *gin.Context) {
	var q pagination.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.users.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, authdto.NewProfileResponse))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, authdto.NewProfileResponse(*user))
}

// Create はロールを指定してアカウントを作成します。管理者の作成は管理者のみ可能です。
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := role.RegularUser
	if req.Role != "" {
		target = role.Role(req.Role)
	}
	user, err := h.users.Create(c.Request.Context(), callerRole(c), usecase.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      target,
	})
	if err != nil {
		writeError(c, "create user", err)
		return
	}
	slog.Info("user created", "user_id", user.ID, "role", user.Role, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, authdto.NewProfileResponse(*user))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := usecase.UpdateUserInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Username:          req.Username,
		DailyCalorieLimit: req.DailyCalorieLimit,
	}
	if req.Role != nil {
		r := role.Role(*req.Role)
		in.Role = &r
	}
	user, err := h.users.Update(c.Request.Context(), callerRole(c), id, in)
	if err != nil {
		writeError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, authdto.NewProfileResponse(*user))
}

// Delete はユーザーとその食事を削除します。成功時は204を返します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), callerRole(c), id); err != nil {
		writeError(c, "delete user", err)
		return
	}
	slog.Info("user deleted", "user_id", id, "remote_addr", c.ClientIP())
	c.Status(http.StatusNoContent)
}
