// Package config loads the service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"calories_tracker/internal/platform/db"
	"calories_tracker/internal/platform/externalapi/nutritionix"
	jwtmw "calories_tracker/internal/platform/jwt"
	"calories_tracker/internal/platform/redis"
	"calories_tracker/internal/platform/security"
	"calories_tracker/internal/shared/role"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel      slog.Level         `env:"LOG_LEVEL" envDefault:"INFO"`
	HTTP          HTTP               `envPrefix:"HTTP_"`
	Database      db.Config          `envPrefix:"DB_"`
	RunMigrations bool               `env:"RUN_MIGRATIONS" envDefault:"false"`
	Redis         redis.Config       `envPrefix:"REDIS_"`
	JWT           jwtmw.Config       `envPrefix:"JWT_"`
	Nutritionix   nutritionix.Config `envPrefix:"NUTRITIONIX_"`
	Password      security.Params    `envPrefix:"PASSWORD_"`
	Seed          Seed               `envPrefix:"SEED_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Account is one bootstrap account.
type Account struct {
	Email     string `env:"EMAIL"`
	Password  string `env:"PASSWORD"`
	FirstName string `env:"FIRST_NAME"`
	LastName  string `env:"LAST_NAME"`
	Username  string `env:"USERNAME"`
}

// Seed contains the bootstrap accounts. Accounts without an email are skipped.
type Seed struct {
	Enabled bool    `env:"ENABLED" envDefault:"false"`
	Admin   Account `envPrefix:"ADMIN_"`
	Manager Account `envPrefix:"MANAGER_"`
	Regular Account `envPrefix:"REGULAR_"`
}

// Accounts pairs each configured account with its role.
func (s Seed) Accounts() []SeedAccount {
	return []SeedAccount{
		{Account: s.Admin, Role: role.Administrator},
		{Account: s.Manager, Role: role.UserManager},
		{Account: s.Regular, Role: role.RegularUser},
	}
}

// SeedAccount is an Account with the role it is created with.
type SeedAccount struct {
	Account
	Role role.Role
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
