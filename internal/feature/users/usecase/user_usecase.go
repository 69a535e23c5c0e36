package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"calories_tracker/internal/feature/auth/domain"
	"calories_tracker/internal/feature/auth/domain/entity"
	authusecase "calories_tracker/internal/feature/auth/usecase"
	"calories_tracker/internal/shared/pagination"
	"calories_tracker/internal/shared/role"
)

// UserRepository はユーザー管理に必要な永続化操作です。
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// List returns one page ordered newest first, plus the total that matches search.
	List(ctx context.Context, search string, offset, limit int) ([]entity.User, int64, error)
	Update(ctx context.Context, user *entity.User) error
	// Delete removes the user and the user's meals.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountCreator はソルト生成とハッシュ化を含むアカウント作成を行います。
type AccountCreator interface {
	CreateAccount(ctx context.Context, in authusecase.RegisterInput, r role.Role) (*entity.User, error)
}

// CreateUserInput is the data for an account created by an administrator or user manager.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Role      role.Role
}

// UpdateUserInput is the data for an account update.
// A nil DailyCalorieLimit or Role leaves the stored value unchanged.
type UpdateUserInput struct {
	FirstName         string
	LastName          string
	Username          string
	DailyCalorieLimit *float64
	Role              *role.Role
}

// SeedAccount is a bootstrap account read from configuration.
type SeedAccount struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Role      role.Role
}

// userUsecase implements account management.
type userUsecase struct {
	users    UserRepository
	accounts AccountCreator
}

// NewUserUsecase creates a user management usecase.
func NewUserUsecase(users UserRepository, accounts AccountCreator) *userUsecase {
	return &userUsecase{users: users, accounts: accounts}
}

// DefaultUsername builds "first.last" in lower case.
func DefaultUsername(first, last string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{first, last} {
		if p = strings.ToLower(strings.Join(strings.Fields(p), "")); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Create creates an account with in.Role. Only an administrator may create an administrator.
func (u *userUsecase) Create(ctx context.Context, actor role.Role, in CreateUserInput) (*entity.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, in.Role)
	}
	if in.Role == role.Administrator && actor != role.Administrator {
		return nil, ErrForbidden
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = DefaultUsername(in.FirstName, in.LastName)
	}
	return u.accounts.CreateAccount(ctx, authusecase.RegisterInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  username,
		Email:     in.Email,
		Password:  in.Password,
	}, in.Role)
}

func (u *userUsecase) CreateRegularUser(ctx context.Context, actor role.Role, in CreateUserInput) (*entity.User, error) {
	in.Role = role.RegularUser
	return u.Create(ctx, actor, in)
}

func (u *userUsecase) CreateUserManager(ctx context.Context, actor role.Role, in CreateUserInput) (*entity.User, error) {
	in.Role = role.UserManager
	return u.Create(ctx, actor, in)
}

func (u *userUsecase) CreateAdministrator(ctx context.Context, actor role.Role, in CreateUserInput) (*entity.User, error) {
	in.Role = role.Administrator
	return u.Create(ctx, actor, in)
}

// Get returns a user by id.
func (u *userUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// List pages over all users.
func (u *userUsecase) List(ctx context.Context, q pagination.Query) (pagination.Page[entity.User], error) {
	q = q.Normalize()
	items, total, err := u.users.List(ctx, q.Search, q.Offset(), q.Limit())
	if err != nil {
		return pagination.Page[entity.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return pagination.NewPage(items, q, total), nil
}

// Update changes names, daily calorie limit and optionally role.
// A user manager may neither edit an administrator nor grant the administrator role.
func (u *userUsecase) Update(ctx context.Context, actor role.Role, id uuid.UUID, in UpdateUserInput) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor != role.Administrator && user.Role == role.Administrator {
		return nil, ErrForbidden
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, *in.Role)
		}
		if *in.Role == role.Administrator && actor != role.Administrator {
			return nil, ErrForbidden
		}
		user.Role = *in.Role
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	if username := strings.TrimSpace(in.Username); username != "" {
		user.Username = username
	}
	if in.DailyCalorieLimit != nil {
		user.DailyCalorieLimit = *in.DailyCalorieLimit
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and the user's meals. A user manager may not delete an administrator.
func (u *userUsecase) Delete(ctx context.Context, actor role.Role, id uuid.UUID) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if actor != role.Administrator && user.Role == role.Administrator {
		return ErrForbidden
	}
	return u.users.Delete(ctx, id)
}

// EnsureAccounts creates each account whose email is not registered yet.
// Accounts without an email or password are skipped. Running it again is a no-op.
func (u *userUsecase) EnsureAccounts(ctx context.Context, accounts []SeedAccount) error {
	for _, a := range accounts {
		if strings.TrimSpace(a.Email) == "" || a.Password == "" {
			continue
		}
		email := authusecase.NormalizeEmail(a.Email)
		_, err := u.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			slog.Debug("seed account already exists", "email", email, "role", a.Role)
			continue
		case !errors.Is(err, domain.ErrUserNotFound):
			return fmt.Errorf("failed to look up seed account %s: %w", email, err)
		}

		username := strings.TrimSpace(a.Username)
		if username == "" {
			username = DefaultUsername(a.FirstName, a.LastName)
		}
		if _, err := u.accounts.CreateAccount(ctx, authusecase.RegisterInput{
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Username:  username,
			Email:     email,
			Password:  a.Password,
		}, a.Role); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", email, err)
		}
		slog.Info("seed account created", "email", email, "role", a.Role)
	}
	return nil
}
