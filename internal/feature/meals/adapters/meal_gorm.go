// Package adapters はmealsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"calories_tracker/internal/feature/meals/domain/entity"
	"calories_tracker/internal/feature/meals/usecase"
)

// mealGorm はMealRepositoryインターフェースのGORM実装です。
type mealGorm struct {
	db *gorm.DB
}

// mealGormがMealRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MealRepository = (*mealGorm)(nil)

// NewMealGorm は指定されたgorm.DB接続でmealGormの新しいインスタンスを生成します。
func NewMealGorm(db *gorm.DB) *mealGorm {
	return &mealGorm{db: db}
}

// Create は食事を保存します。所有者が外部キー制約で拒否された場合、usecase.ErrOwnerNotFoundを返します。
func (r *mealGorm) Create(ctx context.Context, m *entity.Meal) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if isForeignKeyViolation(err) {
		return usecase.ErrOwnerNotFound
	}
	return err
}

// isForeignKeyViolation はgormの変換済みエラーとPostgreSQLの23503の両方を外部キー違反として扱います。
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// FindByID はIDで食事を取得します。存在しない場合、usecase.ErrMealNotFoundを返します。
func (r *mealGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.Meal, error) {
	var m entity.Meal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrMealNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update はテキストとカロリーのみを更新します。
func (r *mealGorm) Update(ctx context.Context, m *entity.Meal) error {
	res := r.db.WithContext(ctx).Model(m).
		Select("text", "number_of_calories").
		Updates(map[string]any{"text": m.Text, "number_of_calories": m.NumberOfCalories})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrMealNotFound
	}
	return nil
}

func (r *mealGorm) Delete(ctx context.Context, m *entity.Meal) error {
	res := r.db.WithContext(ctx).Where("id = ?", m.ID).Delete(&entity.Meal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrMealNotFound
	}
	return nil
}

// List は作成日時の新しい順に1ページ分を返します。検索は大文字小文字を区別しない部分一致です。
func (r *mealGorm) List(ctx context.Context, f usecase.ListFilter) ([]entity.Meal, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Meal{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(text) LIKE ? ESCAPE '\\'", LikePattern(s))
	}
	// CountとFindで同じ条件を再利用する
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var meals []entity.Meal
	if err := q.Order("created_at DESC").Order("id").Offset(f.Offset).Limit(f.Limit).Find(&meals).Error; err != nil {
		return nil, 0, err
	}
	return meals, total, nil
}

func (r *mealGorm) SumCaloriesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.Meal{}).
		Select("COALESCE(SUM(number_of_calories), 0)").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC()).
		Scan(&total).Error
	return total, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern は検索語を小文字化し、LIKEのワイルドカードをエスケープして %...% で囲みます。
func LikePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
