// Package adapters はアカウントのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"calories_tracker/internal/feature/auth/domain"
	"calories_tracker/internal/feature/auth/domain/entity"
	"calories_tracker/internal/feature/auth/usecase"
	mealsusecase "calories_tracker/internal/feature/meals/usecase"
	usersusecase "calories_tracker/internal/feature/users/usecase"
)

// mealsTable はユーザー削除時に同じトランザクションで削除する食事テーブルです。
const mealsTable = "meals"

// userGorm はユーザーリポジトリのGORM実装です。
// アカウント、ユーザー管理、食事の所有者確認の各ユースケースから共有されます。
type userGorm struct {
	db *gorm.DB
}

// userGormが各インターフェースを実装していることをコンパイル時に検証します。
var (
	_ usecase.UserRepository      = (*userGorm)(nil)
	_ usersusecase.UserRepository = (*userGorm)(nil)
	_ mealsusecase.UserLookup     = (*userGorm)(nil)
)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isUniqueViolation はgormの変換済みエラーとPostgreSQLの23505の両方を一意制約違反として扱います。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrUserNotFound
	case isUniqueViolation(err):
		return domain.ErrUserAlreadyExists
	default:
		return err
	}
}

// Create はユーザーをデータベースに追加します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Exists はユーザーが存在するかを返します。
func (r *userGorm) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userGorm) updateColumns(ctx context.Context, id uuid.UUID, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userGorm) UpdateProfile(ctx context.Context, u *entity.User) error {
	return r.updateColumns(ctx, u.ID, map[string]any{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"username":   u.Username,
	})
}

// Update は管理者が変更できる項目をまとめて更新します。
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	return r.updateColumns(ctx, u.ID, map[string]any{
		"first_name":          u.FirstName,
		"last_name":           u.LastName,
		"username":            u.Username,
		"role":                u.Role,
		"daily_calorie_limit": u.DailyCalorieLimit,
	})
}

func (r *userGorm) UpdateDailyCalorieLimit(ctx context.Context, id uuid.UUID, limit float64) error {
	return r.updateColumns(ctx, id, map[string]any{"daily_calorie_limit": limit})
}

func (r *userGorm) UpdateCaloriesDeficient(ctx context.Context, id uuid.UUID, deficient bool) error {
	return r.updateColumns(ctx, id, map[string]any{"calories_deficient": deficient})
}

// Delete はユーザーとその食事を同じトランザクションで削除します。
func (r *userGorm) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+mealsTable+" WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// List は作成日時の新しい順にユーザーを1ページ分返します。
// 検索は氏名、ユーザー名、メールアドレスに対する大文字小文字を区別しない部分一致です。
func (r *userGorm) List(ctx context.Context, search string, offset, limit int) ([]entity.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{})
	if s := strings.TrimSpace(search); s != "" {
		p := likePattern(s)
		q = q.Where(
			"LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\' OR LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'",
			p, p, p, p,
		)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []entity.User
	if err := q.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
