package db

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate はスキーマを最新にします。
// PostgreSQLでは埋め込みSQLをgooseで適用し、SQLiteではmodelsをAutoMigrateします。
func Migrate(gdb *gorm.DB, driver string, models ...any) error {
	if driver == DriverSQLite {
		if err := gdb.AutoMigrate(models...); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
