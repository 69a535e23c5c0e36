package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"calories_tracker/internal/feature/meals/domain/entity"
	"calories_tracker/internal/shared/pagination"
	"calories_tracker/internal/shared/role"
)

// ListFilter narrows a meal listing. A nil UserID lists every user's meals.
type ListFilter struct {
	UserID *uuid.UUID
	Search string
	Offset int
	Limit  int
}

// MealRepository はMealエンティティの永続化層を抽象化します。
type MealRepository interface {
	Create(ctx context.Context, meal *entity.Meal) error
	// FindByID returns ErrMealNotFound when the id is unknown.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Meal, error)
	// Update writes Text and NumberOfCalories.
	Update(ctx context.Context, meal *entity.Meal) error
	// Delete returns ErrMealNotFound when nothing was deleted.
	Delete(ctx context.Context, meal *entity.Meal) error
	// List returns one page ordered newest first, plus the total that matches the filter.
	List(ctx context.Context, filter ListFilter) ([]entity.Meal, int64, error)
	// SumCaloriesBetween sums the user's meals created in [from, to).
	SumCaloriesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (float64, error)
}

// UserLookup checks whether a meal owner exists.
type UserLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// NutritionLookup estimates the calories of a natural-language meal description.
type NutritionLookup interface {
	Calories(ctx context.Context, text string) (float64, error)
}

// CreateMealInput is the data for a new meal. A nil UserID logs the meal for the caller.
type CreateMealInput struct {
	UserID           *uuid.UUID
	Text             string
	NumberOfCalories float64
}

// UpdateMealInput is the data for updating a meal.
type UpdateMealInput struct {
	Text             string
	NumberOfCalories float64
}

// mealUsecase implements meal business logic.
type mealUsecase struct {
	meals     MealRepository
	users     UserLookup
	nutrition NutritionLookup
	now       func() time.Time
}

// NewMealUsecase creates a meal usecase. nutrition may be nil, in which case
// meals logged without calories are stored with 0.
func NewMealUsecase(meals MealRepository, users UserLookup, nutrition NutritionLookup) *mealUsecase {
	return &mealUsecase{
		meals:     meals,
		users:     users,
		nutrition: nutrition,
		now:       time.Now,
	}
}

// resolveCalories returns the supplied value, or the nutrition estimate when it is 0.
// A lookup failure degrades to 0.
func (u *mealUsecase) resolveCalories(ctx context.Context, text string, supplied float64) float64 {
	if supplied != 0 || u.nutrition == nil {
		return supplied
	}
	kcal, err := u.nutrition.Calories(ctx, text)
	if err != nil {
		slog.Warn("nutrition lookup failed, storing 0 calories", "error", err, "text", text)
		return 0
	}
	return kcal
}

// Create logs a meal for the actor, or for in.UserID. Only an administrator may name another user.
// The owner is checked on every call, since a token can outlive its user.
func (u *mealUsecase) Create(ctx context.Context, actor role.Actor, in CreateMealInput) (*entity.Meal, error) {
	owner := actor.UserID
	if in.UserID != nil && *in.UserID != uuid.Nil {
		if !actor.CanAccess(*in.UserID) {
			return nil, ErrForbidden
		}
		owner = *in.UserID
	}
	ok, err := u.users.Exists(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to check meal owner: %w", err)
	}
	if !ok {
		return nil, ErrOwnerNotFound
	}

	meal := &entity.Meal{
		UserID:           owner,
		Text:             in.Text,
		NumberOfCalories: u.resolveCalories(ctx, in.Text, in.NumberOfCalories),
		CreatedAt:        u.now().UTC(),
	}
	if err := u.meals.Create(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return meal, nil
}

// Get returns a meal the actor may access.
func (u *mealUsecase) Get(ctx context.Context, actor role.Actor, id uuid.UUID) (*entity.Meal, error) {
	meal, err := u.meals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(meal.UserID) {
		return nil, ErrForbidden
	}
	return meal, nil
}

// Update changes the text and calories of a meal, applying the same zero-calorie lookup as Create.
func (u *mealUsecase) Update(ctx context.Context, actor role.Actor, id uuid.UUID, in UpdateMealInput) (*entity.Meal, error) {
	meal, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	meal.Text = in.Text
	meal.NumberOfCalories = u.resolveCalories(ctx, in.Text, in.NumberOfCalories)
	if err := u.meals.Update(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}
	return meal, nil
}

// Delete removes a meal the actor may access.
func (u *mealUsecase) Delete(ctx context.Context, actor role.Actor, id uuid.UUID) error {
	meal, err := u.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return u.meals.Delete(ctx, meal)
}

// ListAll pages over every user's meals.
func (u *mealUsecase) ListAll(ctx context.Context, q pagination.Query) (pagination.Page[entity.Meal], error) {
	return u.list(ctx, nil, q)
}

// ListByUser pages over one user's meals.
func (u *mealUsecase) ListByUser(ctx context.Context, actor role.Actor, userID uuid.UUID, q pagination.Query) (pagination.Page[entity.Meal], error) {
	if !actor.CanAccess(userID) {
		return pagination.Page[entity.Meal]{}, ErrForbidden
	}
	return u.list(ctx, &userID, q)
}

func (u *mealUsecase) list(ctx context.Context, userID *uuid.UUID, q pagination.Query) (pagination.Page[entity.Meal], error) {
	q = q.Normalize()
	items, total, err := u.meals.List(ctx, ListFilter{
		UserID: userID,
		Search: q.Search,
		Offset: q.Offset(),
		Limit:  q.Limit(),
	})
	if err != nil {
		return pagination.Page[entity.Meal]{}, fmt.Errorf("failed to list meals: %w", err)
	}
	return pagination.NewPage(items, q, total), nil
}

// TotalCaloriesToday returns the user's calorie total for the current UTC day.
func (u *mealUsecase) TotalCaloriesToday(ctx context.Context, actor role.Actor, userID uuid.UUID) (float64, time.Time, error) {
	if !actor.CanAccess(userID) {
		return 0, time.Time{}, ErrForbidden
	}
	day := DayStart(u.now())
	total, err := u.CaloriesToday(ctx, userID)
	return total, day, err
}

// CaloriesToday sums the user's meals created since 00:00 UTC today.
func (u *mealUsecase) CaloriesToday(ctx context.Context, userID uuid.UUID) (float64, error) {
	from := DayStart(u.now())
	total, err := u.meals.SumCaloriesBetween(ctx, userID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("failed to sum calories: %w", err)
	}
	return total, nil
}

// DayStart returns 00:00 UTC of t's UTC date.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
