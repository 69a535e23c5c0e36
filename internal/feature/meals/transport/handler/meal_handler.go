// Package handler はmealsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"calories_tracker/internal/feature/meals/domain/entity"
	"calories_tracker/internal/feature/meals/transport/http/dto"
	"calories_tracker/internal/feature/meals/usecase"
	jwtmw "calories_tracker/internal/platform/jwt"
	"calories_tracker/internal/shared/pagination"
	"calories_tracker/internal/shared/role"
)

// MealUsecase は食事操作のユースケースを定義します。
type MealUsecase interface {
	Create(ctx context.Context, actor role.Actor, in usecase.CreateMealInput) (*entity.Meal, error)
	Get(ctx context.Context, actor role.Actor, id uuid.UUID) (*entity.Meal, error)
	Update(ctx context.Context, actor role.Actor, id uuid.UUID, in usecase.UpdateMealInput) (*entity.Meal, error)
	Delete(ctx context.Context, actor role.Actor, id uuid.UUID) error
	ListAll(ctx context.Context, q pagination.Query) (pagination.Page[entity.Meal], error)
	ListByUser(ctx context.Context, actor role.Actor, userID uuid.UUID, q pagination.Query) (pagination.Page[entity.Meal], error)
	TotalCaloriesToday(ctx context.Context, actor role.Actor, userID uuid.UUID) (float64, time.Time, error)
}

// MealHandler は食事操作のHTTPリクエストを処理します。
type MealHandler struct {
	meals MealUsecase
}

// NewMealHandler はMealHandlerの新しいインスタンスを生成します。
func NewMealHandler(meals MealUsecase) *MealHandler {
	return &MealHandler{meals: meals}
}

func writeError(c *gin.Context, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, usecase.ErrMealNotFound), errors.Is(err, usecase.ErrOwnerNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, usecase.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	}
	slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
	c.JSON(status, gin.H{"error": msg})
}

func actorFrom(c *gin.Context) (role.Actor, bool) {
	actor, ok := jwtmw.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return actor, ok
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func bindQuery(c *gin.Context) (pagination.Query, bool) {
	var q pagination.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, false
	}
	return q, true
}

func writePage(c *gin.Context, p pagination.Page[entity.Meal]) {
	c.JSON(http.StatusOK, pagination.Map(p, dto.NewMealResponse))
}

// ListAll は全ユーザーの食事を1ページ分返します。
func (h *MealHandler) ListAll(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	page, err := h.meals.ListAll(c.Request.Context(), q)
	if err != nil {
		writeError(c, "list meals", err)
		return
	}
	writePage(c, page)
}

// ListByUser は指定ユーザーの食事を1ページ分返します。
func (h *MealHandler) ListByUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := parseID(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	page, err := h.meals.ListByUser(c.Request.Context(), actor, userID, q)
	if err != nil {
		writeError(c, "list user meals", err)
		return
	}
	writePage(c, page)
}

// TotalCaloriesToday は指定ユーザーの本日（UTC）の摂取カロリー合計を返します。
func (h *MealHandler) TotalCaloriesToday(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := parseID(c)
	if !ok {
		return
	}
	total, day, err := h.meals.TotalCaloriesToday(c.Request.Context(), actor, userID)
	if err != nil {
		writeError(c, "calories today", err)
		return
	}
	c.JSON(http.StatusOK, dto.TotalCaloriesResponse{
		UserID:        userID,
		TotalCalories: total,
		Date:          day.Format(time.DateOnly),
	})
}

// Get は食事を1件返します。
func (h *MealHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	meal, err := h.meals.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, "get meal", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMealResponse(*meal))
}

// Create は食事を記録します。
// - カロリーが0の場合は栄養情報APIで推定
// - 管理者のみuser_idで他ユーザーの食事を作成可能
func (h *MealHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateMealReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create meal validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.meals.Create(c.Request.Context(), actor, usecase.CreateMealInput{
		UserID:           req.UserID,
		Text:             req.Text,
		NumberOfCalories: req.NumberOfCalories,
	})
	if err != nil {
		writeError(c, "create meal", err)
		return
	}
	slog.Info("meal created", "meal_id", meal.ID, "user_id", meal.UserID)
	c.JSON(http.StatusCreated, dto.NewMealResponse(*meal))
}

// Update は食事の内容とカロリーを更新します。
func (h *MealHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateMealReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update meal validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.meals.Update(c.Request.Context(), actor, id, usecase.UpdateMealInput{
		Text:             req.Text,
		NumberOfCalories: req.NumberOfCalories,
	})
	if err != nil {
		writeError(c, "update meal", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMealResponse(*meal))
}

// Delete は食事を削除します。成功時は204を返します。
func (h *MealHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.meals.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, "delete meal", err)
		return
	}
	c.Status(http.StatusNoContent)
}
