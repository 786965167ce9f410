package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreVersioned(t *testing.T) {
	// sql.Open is lazy: nothing dials until a migration runs.
	sqlDB, err := sql.Open("pgx", "postgres://inventory@127.0.0.1:1/inventory")
	require.NoError(t, err)
	defer sqlDB.Close()

	provider, err := newMigrationProvider(sqlDB)
	require.NoError(t, err)
	sources := provider.ListSources()
	require.NotEmpty(t, sources)
	require.Equal(t, int64(1), sources[0].Version)

	raw, err := migrations.ReadFile("migrations/0001_inventory.sql")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "-- +goose Up"))
	require.Contains(t, string(raw), "REFERENCES suppliers (id)")
}

func TestIsForeignKeyViolation(t *testing.T) {
	require.True(t, IsForeignKeyViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: ForeignKeyViolation})))
	require.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, IsForeignKeyViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
	require.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	require.False(t, IsForeignKeyViolation(errors.New("boom")))
	require.False(t, IsForeignKeyViolation(nil))
}

func TestOpenSQLiteEnforcesForeignKeys(t *testing.T) {
	gdb, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, gdb.Exec("CREATE TABLE parent (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, gdb.Exec("CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER REFERENCES parent(id))").Error)

	err = gdb.Exec("INSERT INTO child (id, parent_id) VALUES (1, 42)").Error
	require.Error(t, err)
	require.True(t, IsForeignKeyViolation(err))
}

func TestOpenSQLiteRegistersUnicodeLower(t *testing.T) {
	gdb, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	var got string
	require.NoError(t, gdb.Raw("SELECT "+SQLiteLower+"(?)", "ÄPFEL Crème").Scan(&got).Error)
	require.Equal(t, "äpfel crème", got)
}
