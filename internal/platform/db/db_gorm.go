package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// retryInterval は接続リトライの間隔です。
var retryInterval = 3 * time.Second

// ErrUnknownDriver は未対応のドライバー名が指定された場合に返されます。
var ErrUnknownDriver = errors.New("unknown database driver")

// Config はデータベース接続設定です。
type Config struct {
	Driver         string        `env:"DRIVER" envDefault:"postgres"`
	User           string        `env:"USER"`
	Password       string        `env:"PASSWORD"`
	Name           string        `env:"NAME" envDefault:"calories"`
	Host           string        `env:"HOST" envDefault:"localhost"`
	Port           string        `env:"PORT" envDefault:"5432"`
	SSLMode        string        `env:"SSLMODE" envDefault:"disable"`
	InstanceName   string        `env:"INSTANCE_CONNECTION_NAME"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"./calories.db"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"60s"`
}

// BuildDSN はPostgreSQL用のDSN文字列を生成します。
// InstanceNameが設定されている場合はCloud SQLのUnixソケットを優先します。
func BuildDSN(cfg Config) string {
	host := cfg.Host
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// GormConfig はアプリ共通のgorm設定です。一意制約違反はgorm.ErrDuplicatedKeyに変換されます。
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// ConnectWithRetry はtimeoutまでretryInterval間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(dsn string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open はドライバーに応じてデータベースへ接続します。
func Open(cfg Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), GormConfig())
		})
	case DriverSQLite:
		return gorm.Open(SQLiteDialector(cfg.SQLitePath), GormConfig())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
