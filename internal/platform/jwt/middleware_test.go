package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calories_tracker/internal/shared/role"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func runAuth(t *testing.T, cfg Config, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AuthRequired(cfg)(c)
	return w, c
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, c := runAuth(t, testConfig(), tt.authHeader)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted(), "expected request to be aborted")
		})
	}
}

// TestAuthRequired_MissingJWTSecret はシークレット未設定の場合に500が返されることを検証します。
func TestAuthRequired_MissingJWTSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Secret = ""
	w, _ := runAuth(t, cfg, "Bearer sometoken")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ・発行者違い等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	valid := registeredFor(cfg, uuid.New().String(), time.Hour)

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := valid
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	notUUID := valid
	notUUID.Subject = "42"
	noExp := valid
	noExp.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", sign(t, "wrong-secret", Claims{RegisteredClaims: valid})},
		{"expired token", sign(t, cfg.Secret, Claims{RegisteredClaims: registeredFor(cfg, uuid.New().String(), -time.Hour)})},
		{"wrong issuer", sign(t, cfg.Secret, Claims{RegisteredClaims: wrongIssuer})},
		{"wrong audience", sign(t, cfg.Secret, Claims{RegisteredClaims: wrongAudience})},
		{"subject is not a uuid", sign(t, cfg.Secret, Claims{RegisteredClaims: notUUID})},
		{"no expiry", sign(t, cfg.Secret, Claims{RegisteredClaims: noExp})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, _ := runAuth(t, cfg, "Bearer "+tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでリクエストが通過し、コンテキストにユーザーIDとロールが設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	gen, err := NewGenerator(cfg)
	require.NoError(t, err)

	for _, r := range role.All() {
		t.Run(r.String(), func(t *testing.T) {
			t.Parallel()
			id := uuid.New()
			token, _, err := gen.GenerateToken(id, "user", "user@example.com", r)
			require.NoError(t, err)

			w, c := runAuth(t, cfg, "Bearer "+token)
			require.False(t, c.IsAborted(), "response: %s", w.Body.String())

			gotID, ok := UserIDFrom(c)
			require.True(t, ok)
			assert.Equal(t, id, gotID)

			gotRole, ok := RoleFrom(c)
			require.True(t, ok)
			assert.Equal(t, r, gotRole)
		})
	}
}

// TestAuthRequired_InvalidSigningMethod はnoneアルゴリズム（未署名）とHS512のトークンが拒否されることを検証します。
func TestAuthRequired_InvalidSigningMethod(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	claims := Claims{RegisteredClaims: registeredFor(cfg, uuid.New().String(), time.Hour)}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	for _, token := range []string{none, hs512} {
		w, _ := runAuth(t, cfg, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestRequirePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userID   bool
		role     any
		policy   role.Policy
		wantCode int
	}{
		{"no identity", false, nil, role.MustBeAnAdministrator, http.StatusUnauthorized},
		{"no role claim", true, nil, role.MustBeAnAdministrator, http.StatusForbidden},
		{"regular user on admin route", true, role.RegularUser, role.MustBeAnAdministrator, http.StatusForbidden},
		{"manager on regular route", true, role.UserManager, role.MustBeARegularUser, http.StatusForbidden},
		{"admin on admin route", true, role.Administrator, role.MustBeAnAdministrator, http.StatusOK},
		{"manager on admin-or-manager route", true, role.UserManager, role.MustBeAnAdministratorOrAUserManager, http.StatusOK},
		{"regular on admin-or-regular route", true, role.RegularUser, role.MustBeAnAdministratorOrARegularUser, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.userID {
					c.Set(ContextUserID, uuid.New())
				}
				if tt.role != nil {
					c.Set(ContextRole, tt.role)
				}
			})
			r.GET("/", RequirePolicy(tt.policy), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

// registeredFor はテスト用に設定に一致する登録済みクレームを生成します。
func registeredFor(cfg Config, subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{cfg.Audience},
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestActorFrom(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ActorFrom(c)
	assert.False(t, ok)

	id := uuid.New()
	c.Set(ContextUserID, id)
	c.Set(ContextRole, role.UserManager)
	actor, ok := ActorFrom(c)
	require.True(t, ok)
	assert.Equal(t, role.Actor{UserID: id, Role: role.UserManager}, actor)
}
