package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-management/internal/config"
)

func TestPostgresMapError(t *testing.T) {
	d := &PostgresDialect{}

	assert.NoError(t, d.MapError(nil))

	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	assert.ErrorIs(t, d.MapError(unique), ErrUniqueViolation)

	fk := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	assert.ErrorIs(t, d.MapError(fk), ErrForeignKeyViolation)

	// Flattened driver errors still carry the SQLSTATE in the message.
	flattened := errors.New(`ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)`)
	assert.ErrorIs(t, d.MapError(flattened), ErrUniqueViolation)

	other := errors.New("connection refused")
	assert.NotErrorIs(t, d.MapError(other), ErrUniqueViolation)
	assert.NotErrorIs(t, d.MapError(other), ErrForeignKeyViolation)
}

func TestSQLiteMapError(t *testing.T) {
	d := &SQLiteDialect{}

	assert.ErrorIs(t, d.MapError(errors.New("constraint failed: UNIQUE constraint failed: groups.name")), ErrUniqueViolation)
	assert.ErrorIs(t, d.MapError(errors.New("constraint failed: FOREIGN KEY constraint failed")), ErrForeignKeyViolation)
	assert.NoError(t, d.MapError(nil))
}

func TestNewDialect(t *testing.T) {
	assert.Equal(t, "sqlite", NewDialect("sqlite").Name())
	assert.Equal(t, "postgres", NewDialect("postgres").Name())
	// Unknown drivers fall back to postgres.
	assert.Equal(t, "postgres", NewDialect("").Name())
}

func TestDialectTableOrder(t *testing.T) {
	// user_groups references the other two, so it must come last.
	for _, d := range []Dialect{&PostgresDialect{}, &SQLiteDialect{}} {
		tables := d.Tables()
		require.Len(t, tables, 3)
		assert.Equal(t, "users", tables[0].Name)
		assert.Equal(t, "groups", tables[1].Name)
		assert.Equal(t, "user_groups", tables[2].Name)
	}
}

func TestEnsureTablesCreatesOnlyMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewFromDB(db, &PostgresDialect{})
	m := NewSchemaManager(config.DatabaseConfig{Driver: "postgres", Name: "user_management"})

	// users exists, groups and user_groups do not.
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM information_schema.tables WHERE table_name = \$1`).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM information_schema.tables WHERE table_name = \$1`).
		WithArgs("groups").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "groups"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM information_schema.tables WHERE table_name = \$1`).
		WithArgs("user_groups").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS user_groups`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, m.EnsureTables(context.Background(), s))
	assert.Equal(t, TablesEnsured, m.State())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTablesFailureIsFatalToSetup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewFromDB(db, &PostgresDialect{})
	m := NewSchemaManager(config.DatabaseConfig{Driver: "postgres", Name: "user_management"})

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM information_schema.tables WHERE table_name = \$1`).
		WithArgs("users").
		WillReturnError(errors.New("connection reset"))

	err = m.EnsureTables(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, Unchecked, m.State())
}

func TestIsValidDBName(t *testing.T) {
	assert.True(t, isValidDBName("user_management"))
	assert.True(t, isValidDBName("db1"))
	assert.False(t, isValidDBName(""))
	assert.False(t, isValidDBName("users; DROP TABLE users"))
	assert.False(t, isValidDBName("UserManagement"))
}

func TestSchemaStateString(t *testing.T) {
	assert.Equal(t, "unchecked", Unchecked.String())
	assert.Equal(t, "database-ensured", DatabaseEnsured.String())
	assert.Equal(t, "tables-ensured", TablesEnsured.String())
	assert.Equal(t, "ready", Ready.String())
}
