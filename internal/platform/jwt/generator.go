package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"calories_tracker/internal/shared/role"
)

// DefaultExpiration is the token lifetime when Config.Expiration is zero.
const DefaultExpiration = 30 * time.Minute

// ErrMissingConfig is returned when the secret, issuer or audience is not configured.
var ErrMissingConfig = errors.New("jwt: secret, issuer and audience must be configured")

// Config holds the token signing and validation parameters.
type Config struct {
	Secret     string        `env:"SECRET"`
	Issuer     string        `env:"ISSUER" envDefault:"calories_tracker"`
	Audience   string        `env:"AUDIENCE" envDefault:"calories_tracker"`
	Expiration time.Duration `env:"EXPIRATION" envDefault:"30m"`
}

// Validate reports ErrMissingConfig if a required field is empty.
func (c Config) Validate() error {
	if c.Secret == "" || c.Issuer == "" || c.Audience == "" {
		return ErrMissingConfig
	}
	return nil
}

// Claims is the token payload: registered claims plus the user's name, email and role.
type Claims struct {
	UniqueName string `json:"unique_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// generator signs HS256 tokens.
type generator struct {
	secret     []byte
	issuer     string
	audience   string
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a token generator. It fails when the configuration is incomplete.
func NewGenerator(cfg Config) (*generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	exp := cfg.Expiration
	if exp <= 0 {
		exp = DefaultExpiration
	}
	return &generator{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		expiration: exp,
		now:        time.Now,
	}, nil
}

// GenerateToken creates a signed token for the user and returns it with its expiry.
func (g *generator) GenerateToken(userID uuid.UUID, username, email string, r role.Role) (string, time.Time, error) {
	now := g.now().UTC()
	expiresAt := now.Add(g.expiration)
	claims := Claims{
		UniqueName: username,
		Email:      email,
		Role:       r.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}
