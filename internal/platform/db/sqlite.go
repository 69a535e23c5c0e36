package db

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName はUnicode対応のlower()を持つSQLiteドライバーの登録名です。
const SQLiteDriverName = "sqlite3_calories"

var registerSQLite sync.Once

// SQLiteDialector はdsnに接続するgormのSQLiteダイアレクタを返します。
// 組み込みのlower()はASCIIしか小文字化しないため、接続ごとにGoのstrings.ToLowerで置き換えます。
func SQLiteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", strings.ToLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn})
}
