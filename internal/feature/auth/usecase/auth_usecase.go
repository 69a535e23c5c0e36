package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"calories_tracker/internal/feature/auth/domain"
	"calories_tracker/internal/feature/auth/domain/entity"
	"calories_tracker/internal/platform/security"
	"calories_tracker/internal/shared/role"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// メールアドレスまたはユーザー名が重複する場合、domain.ErrUserAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// UpdateProfile は氏名とユーザー名のみを更新します。
	UpdateProfile(ctx context.Context, user *entity.User) error

	// UpdateDailyCalorieLimit は1日のカロリー上限のみを更新します。
	UpdateDailyCalorieLimit(ctx context.Context, id uuid.UUID, limit float64) error

	// UpdateCaloriesDeficient はカロリー判定結果のフラグのみを更新します。
	UpdateCaloriesDeficient(ctx context.Context, id uuid.UUID, deficient bool) error
}

// TokenGenerator はJWTトークン生成のインターフェースを定義します。
type TokenGenerator interface {
	GenerateToken(userID uuid.UUID, username, email string, r role.Role) (string, time.Time, error)
}

// PasswordHasher はソルト済みパスワードのハッシュ化と検証を行います。
type PasswordHasher interface {
	Hash(salted string) (string, error)
	Verify(hash, salted string) (bool, error)
	// DummyHash はユーザーが存在しない場合でも検証を一回実行するためのハッシュです。
	DummyHash() string
}

// CalorieCounter は本日のカロリー合計を返します。
type CalorieCounter interface {
	CaloriesToday(ctx context.Context, userID uuid.UUID) (float64, error)
}

// RegisterInput は新規アカウントの入力です。
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// EditProfileInput はプロフィール編集の入力です。
type EditProfileInput struct {
	FirstName string
	LastName  string
	Username  string
}

// Token は発行済みのアクセストークンです。
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// CalorieReport はカロリー判定の結果です。
type CalorieReport struct {
	DailyCalorieLimit float64
	CaloriesToday     float64
	Deficient         bool
	Exceeded          bool
}

// authUsecase はアカウントのビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	tokens   TokenGenerator
	hasher   PasswordHasher
	calories CalorieCounter
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenGenerator, hasher PasswordHasher, calories CalorieCounter) *authUsecase {
	return &authUsecase{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		calories: calories,
	}
}

// NormalizeEmail はメールアドレスを比較用に正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register はRegularUserロールで新規ユーザーを登録します。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return u.CreateAccount(ctx, in, role.RegularUser)
}

// CreateAccount はソルトを生成し、ソルト済みパスワードをハッシュ化して、指定ロールのユーザーを作成します。
// ロールは作成と同じINSERTで書き込まれます。
func (u *authUsecase) CreateAccount(ctx context.Context, in RegisterInput, r role.Role) (*entity.User, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, r)
	}

	salt, err := security.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := u.hasher.Hash(security.SaltPassword(in.Password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     strings.TrimSpace(in.Username),
		Email:        NormalizeEmail(in.Email),
		PasswordSalt: salt,
		PasswordHash: hash,
		Role:         r,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ検証を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return Token{}, fmt.Errorf("failed to find user: %w", err)
	}

	hash, salt := u.hasher.DummyHash(), ""
	if user != nil {
		hash, salt = user.PasswordHash, user.PasswordSalt
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	ok, verifyErr := u.hasher.Verify(hash, security.SaltPassword(password, salt))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if user == nil || verifyErr != nil || !ok {
		return Token{}, domain.ErrInvalidCredentials
	}

	value, expiresAt, err := u.tokens.GenerateToken(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return Token{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return Token{Value: value, ExpiresAt: expiresAt}, nil
}

// Profile はユーザーのプロフィールを返します。
func (u *authUsecase) Profile(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// EditProfile は氏名とユーザー名を更新します。
func (u *authUsecase) EditProfile(ctx context.Context, id uuid.UUID, in EditProfileInput) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Username = strings.TrimSpace(in.Username)
	if err := u.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetDailyCalorieLimit は1日のカロリー上限を設定します。
func (u *authUsecase) SetDailyCalorieLimit(ctx context.Context, id uuid.UUID, limit float64) (*entity.User, error) {
	if err := u.users.UpdateDailyCalorieLimit(ctx, id, limit); err != nil {
		return nil, err
	}
	return u.users.FindByID(ctx, id)
}

// CheckCalorieDeficiency は本日の摂取カロリーを上限と比較し、結果のフラグを保存します。
// 読み取りと書き込みの間は保護されず、同時実行時は最後の書き込みが残ります。
func (u *authUsecase) CheckCalorieDeficiency(ctx context.Context, id uuid.UUID) (CalorieReport, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return CalorieReport{}, err
	}
	if user.DailyCalorieLimit <= 0 {
		return CalorieReport{}, ErrCalorieLimitNotSet
	}

	total, err := u.calories.CaloriesToday(ctx, id)
	if err != nil {
		return CalorieReport{}, err
	}

	report := CalorieReport{
		DailyCalorieLimit: user.DailyCalorieLimit,
		CaloriesToday:     total,
		Deficient:         total < user.DailyCalorieLimit,
		Exceeded:          total > user.DailyCalorieLimit,
	}
	if err := u.users.UpdateCaloriesDeficient(ctx, id, report.Deficient); err != nil {
		return CalorieReport{}, fmt.Errorf("failed to store calorie check: %w", err)
	}
	return report, nil
}
