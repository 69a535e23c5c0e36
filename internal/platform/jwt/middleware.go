package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"calories_tracker/internal/shared/role"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextEmail  = "email"
)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired(cfg Config) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	secret := []byte(cfg.Secret)

	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		if len(secret) == 0 {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 2. Parse and verify signature, issuer, audience and expiry
		var claims Claims
		token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3. Expose identity to downstream handlers
		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, claims.Email)
		if r := role.Role(claims.Role); r.Valid() {
			c.Set(ContextRole, r)
		}
		c.Next()
	}
}

// RequirePolicy aborts with 401 when no authenticated user is present,
// and with 403 when the user's role is not allowed by p.
func RequirePolicy(p role.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserIDFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		r, ok := RoleFrom(c)
		if !ok || !p.Allows(r) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated user's id.
func UserIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// RoleFrom returns the authenticated user's role.
func RoleFrom(c *gin.Context) (role.Role, bool) {
	v, ok := c.Get(ContextRole)
	if !ok {
		return "", false
	}
	r, ok := v.(role.Role)
	return r, ok
}

// ActorFrom returns the authenticated user as a role.Actor.
func ActorFrom(c *gin.Context) (role.Actor, bool) {
	id, ok := UserIDFrom(c)
	if !ok {
		return role.Actor{}, false
	}
	r, _ := RoleFrom(c)
	return role.Actor{UserID: id, Role: r}, true
}
