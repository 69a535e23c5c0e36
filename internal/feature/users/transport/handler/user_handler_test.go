package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calories_tracker/internal/feature/auth/domain"
	"calories_tracker/internal/feature/auth/domain/entity"
	"calories_tracker/internal/feature/users/usecase"
	"calories_tracker/internal/platform/http/validation"
	jwtmw "calories_tracker/internal/platform/jwt"
	"calories_tracker/internal/shared/pagination"
	"calories_tracker/internal/shared/role"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Register()
	os.Exit(m.Run())
}

type mockUserUsecase struct {
	CreateFunc func(actor role.Role, in usecase.CreateUserInput) (*entity.User, error)
	GetFunc    func(id uuid.UUID) (*entity.User, error)
	ListFunc   func(q pagination.Query) (pagination.Page[entity.User], error)
	UpdateFunc func(actor role.Role, id uuid.UUID, in usecase.UpdateUserInput) (*entity.User, error)
	DeleteFunc func(actor role.Role, id uuid.UUID) error
}

func (m *mockUserUsecase) Create(_ context.Context, actor role.Role, in usecase.CreateUserInput) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(actor, in)
	}
	return &entity.User{ID: uuid.New(), Email: in.Email, Role: in.Role}, nil
}

func (m *mockUserUsecase) Get(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserUsecase) List(_ context.Context, q pagination.Query) (pagination.Page[entity.User], error) {
	if m.ListFunc != nil {
		return m.ListFunc(q)
	}
	return pagination.NewPage[entity.User](nil, q, 0), nil
}

func (m *mockUserUsecase) Update(_ context.Context, actor role.Role, id uuid.UUID, in usecase.UpdateUserInput) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(actor, id, in)
	}
	return &entity.User{ID: id, FirstName: in.FirstName}, nil
}

func (m *mockUserUsecase) Delete(_ context.Context, actor role.Role, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(actor, id)
	}
	return nil
}

func newRouter(uc UserUsecase, caller role.Role) *gin.Engine {
	h := NewUserHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, uuid.New())
		c.Set(jwtmw.ContextRole, caller)
	})
	r.GET("/users", h.List)
	r.GET("/users/:id", h.Get)
	r.POST("/users", h.Create)
	r.PUT("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody(r string) gin.H {
	b := gin.H{
		"first_name": "Mia",
		"last_name":  "Manager",
		"email":      "mia@example.com",
		"password":   "Secret#123",
	}
	if r != "" {
		b["role"] = r
	}
	return b
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("role defaults to regular", func(t *testing.T) {
		var got usecase.CreateUserInput
		var gotActor role.Role
		uc := &mockUserUsecase{CreateFunc: func(actor role.Role, in usecase.CreateUserInput) (*entity.User, error) {
			gotActor, got = actor, in
			return &entity.User{ID: uuid.New(), Role: in.Role}, nil
		}}
		w := do(t, newRouter(uc, role.UserManager), http.MethodPost, "/users", createBody(""))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, role.RegularUser, got.Role)
		assert.Equal(t, role.UserManager, gotActor)
	})

	t.Run("explicit role", func(t *testing.T) {
		var got role.Role
		uc := &mockUserUsecase{CreateFunc: func(_ role.Role, in usecase.CreateUserInput) (*entity.User, error) {
			got = in.Role
			return &entity.User{ID: uuid.New(), Role: in.Role}, nil
		}}
		w := do(t, newRouter(uc, role.Administrator), http.MethodPost, "/users", createBody("UserManager"))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, role.UserManager, got)
	})

	tests := []struct {
		name       string
		body       gin.H
		err        error
		wantStatus int
	}{
		{name: "unknown role", body: createBody("Root"), wantStatus: http.StatusBadRequest},
		{name: "weak password", body: gin.H{"first_name": "a", "last_name": "b", "email": "a@b.co", "password": "weak"}, wantStatus: http.StatusBadRequest},
		{name: "manager creating admin", body: createBody("Administrator"), err: usecase.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "duplicate", body: createBody(""), err: domain.ErrUserAlreadyExists, wantStatus: http.StatusConflict},
		{name: "storage", body: createBody(""), err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUserUsecase{CreateFunc: func(role.Role, usecase.CreateUserInput) (*entity.User, error) {
				if tt.err == nil {
					t.Fatal("usecase must not be called")
				}
				return nil, tt.err
			}}
			w := do(t, newRouter(uc, role.UserManager), http.MethodPost, "/users", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestUserHandler_GetAndList(t *testing.T) {
	id := uuid.New()
	uc := &mockUserUsecase{
		GetFunc: func(got uuid.UUID) (*entity.User, error) {
			if got != id {
				return nil, domain.ErrUserNotFound
			}
			return &entity.User{ID: id, Username: "jane", PasswordHash: "secret-hash"}, nil
		},
		ListFunc: func(q pagination.Query) (pagination.Page[entity.User], error) {
			return pagination.NewPage([]entity.User{{ID: id, Username: q.Search}}, q, 1), nil
		},
	}
	r := newRouter(uc, role.Administrator)

	w := do(t, r, http.MethodGet, "/users/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/users/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/users/nope", nil).Code)

	w = do(t, r, http.MethodGet, "/users?s=jane&size=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []map[string]any `json:"items"`
		Size  int              `json:"size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, pagination.MaxSize, page.Size)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "jane", page.Items[0]["username"])
}

func TestUserHandler_Update(t *testing.T) {
	id := uuid.New()

	t.Run("role change", func(t *testing.T) {
		var got usecase.UpdateUserInput
		uc := &mockUserUsecase{UpdateFunc: func(_ role.Role, _ uuid.UUID, in usecase.UpdateUserInput) (*entity.User, error) {
			got = in
			return &entity.User{ID: id, Role: *in.Role}, nil
		}}
		w := do(t, newRouter(uc, role.Administrator), http.MethodPut, "/users/"+id.String(),
			gin.H{"first_name": "A", "last_name": "B", "daily_calorie_limit": 1800, "role": "UserManager"})
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.Role)
		assert.Equal(t, role.UserManager, *got.Role)
		require.NotNil(t, got.DailyCalorieLimit)
		assert.Equal(t, 1800.0, *got.DailyCalorieLimit)
	})

	t.Run("role omitted", func(t *testing.T) {
		var got usecase.UpdateUserInput
		uc := &mockUserUsecase{UpdateFunc: func(_ role.Role, _ uuid.UUID, in usecase.UpdateUserInput) (*entity.User, error) {
			got = in
			return &entity.User{ID: id}, nil
		}}
		w := do(t, newRouter(uc, role.UserManager), http.MethodPut, "/users/"+id.String(), gin.H{"first_name": "A", "last_name": "B"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got.Role)
		assert.Nil(t, got.DailyCalorieLimit, "omitted limit must not reset the stored one")
	})

	t.Run("limit out of range", func(t *testing.T) {
		w := do(t, newRouter(&mockUserUsecase{}, role.Administrator), http.MethodPut, "/users/"+id.String(),
			gin.H{"first_name": "A", "last_name": "B", "daily_calorie_limit": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		uc := &mockUserUsecase{UpdateFunc: func(role.Role, uuid.UUID, usecase.UpdateUserInput) (*entity.User, error) {
			return nil, domain.ErrUserNotFound
		}}
		w := do(t, newRouter(uc, role.Administrator), http.MethodPut, "/users/"+id.String(), gin.H{"first_name": "A", "last_name": "B"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", wantStatus: http.StatusNoContent},
		{name: "unknown id", err: domain.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "manager deleting admin", err: usecase.ErrForbidden, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUserUsecase{DeleteFunc: func(role.Role, uuid.UUID) error { return tt.err }}
			w := do(t, newRouter(uc, role.UserManager), http.MethodDelete, "/users/"+uuid.NewString(), nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
