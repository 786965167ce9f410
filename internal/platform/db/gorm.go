package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteLower names a Unicode-aware lower() registered on every SQLite
// connection. The built-in lower() and LIKE only fold ASCII.
const SQLiteLower = "unicode_lower"

const sqliteDriverName = "sqlite3_inventory"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(SQLiteLower, strings.ToLower, true)
		},
	})
}

// OpenSQLite opens a gorm handle on the SQLite database at path. ":memory:"
// gives a private in-memory database, used by tests.
func OpenSQLite(path string, log *slog.Logger) (*gorm.DB, error) {
	level := logger.Silent
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		level = logger.Info
	}
	gdb, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: path}), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("platform/db: open sqlite: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("platform/db: sql handle: %w", err)
	}
	// One connection keeps the pragma and an in-memory database shared by every query.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	// SQLite only enforces REFERENCES clauses with this pragma on.
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("platform/db: enable foreign keys: %w", err)
	}
	return gdb, nil
}
