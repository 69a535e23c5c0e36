package db

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	retryInterval = 10 * time.Millisecond
	os.Exit(m.Run())
}

// TestBuildDSN_TCP はTCP接続用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN_TCP(t *testing.T) {
	t.Parallel()

	cfg := Config{
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5432",
		SSLMode:  "disable",
	}

	expected := "host=localhost user=testuser password=testpass dbname=testdb port=5432 sslmode=disable TimeZone=UTC"
	assert.Equal(t, expected, BuildDSN(cfg))
}

// TestBuildDSN_CloudSQLTakesPrecedence はInstanceNameとHostが両方設定されている場合にUnixソケットが優先されることを検証します。
func TestBuildDSN_CloudSQLTakesPrecedence(t *testing.T) {
	t.Parallel()

	cfg := Config{
		User:         "testuser",
		Password:     "testpass",
		Name:         "testdb",
		Host:         "localhost",
		Port:         "5432",
		SSLMode:      "disable",
		InstanceName: "project:region:instance",
	}

	expected := "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb port=5432 sslmode=disable TimeZone=UTC"
	assert.Equal(t, expected, BuildDSN(cfg))
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後に最後のエラーをラップして返すことを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	refused := errors.New("connection refused")
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, refused
	}

	_, err := ConnectWithRetry("test-dsn", 30*time.Millisecond, opener)

	require.ErrorIs(t, err, refused)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	t.Parallel()

	type widget struct {
		ID   uint
		Name string `gorm:"uniqueIndex"`
	}

	gdb, err := Open(Config{Driver: DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb, DriverSQLite, &widget{}))

	require.NoError(t, gdb.Create(&widget{Name: "a"}).Error)
	err = gdb.Create(&widget{Name: "a"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "unique violations must be translated")
}

// TestSQLiteDialector_UnicodeLower はSQLiteのLOWER()が非ASCII文字も小文字化することを検証します。
func TestSQLiteDialector_UnicodeLower(t *testing.T) {
	t.Parallel()

	gdb, err := gorm.Open(SQLiteDialector(":memory:"), GormConfig())
	require.NoError(t, err)

	var got string
	require.NoError(t, gdb.Raw("SELECT LOWER(?)", "CRÈME BRÛLÉE Ünïcode").Scan(&got).Error)
	assert.Equal(t, "crème brûlée ünïcode", got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{Driver: "mysql"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

// TestEmbeddedMigrations は埋め込みSQLがgooseのマイグレーションとして順番に認識されることを検証します。
func TestEmbeddedMigrations(t *testing.T) {
	goose.SetBaseFS(migrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	ms, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, int64(1), ms[0].Version)
	assert.Equal(t, int64(2), ms[1].Version)
}
