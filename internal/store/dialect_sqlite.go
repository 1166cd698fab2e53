package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Placeholders() squirrel.PlaceholderFormat {
	return squirrel.Question
}

func (d *SQLiteDialect) TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
		tableName,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (d *SQLiteDialect) Tables() []TableDDL {
	return []TableDDL{
		{Name: "users", SQL: sqliteUsersSQL},
		{Name: "groups", SQL: sqliteGroupsSQL},
		{Name: "user_groups", SQL: sqliteUserGroupsSQL},
	}
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}
	return err
}

// AUTOINCREMENT keeps deleted ids out of circulation, matching the
// sequence behavior of the Postgres schema.
const sqliteUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    surname    TEXT NOT NULL,
    birth_date DATE NOT NULL,
    sex        TEXT NOT NULL CHECK (sex IN ('male', 'female', 'other'))
);
CREATE INDEX IF NOT EXISTS idx_users_name ON users (name);
CREATE INDEX IF NOT EXISTS idx_users_surname ON users (surname);
`

const sqliteGroupsSQL = `
CREATE TABLE IF NOT EXISTS "groups" (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);
`

const sqliteUserGroupsSQL = `
CREATE TABLE IF NOT EXISTS user_groups (
    user_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    group_id INTEGER NOT NULL REFERENCES "groups"(id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, group_id)
);
`

var _ Dialect = (*SQLiteDialect)(nil)
