package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) Placeholders() squirrel.PlaceholderFormat {
	return squirrel.Dollar
}

func (d *PostgresDialect) TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = 'public')`,
		tableName,
	).Scan(&exists)
	return exists, err
}

func (d *PostgresDialect) Tables() []TableDDL {
	return []TableDDL{
		{Name: "users", SQL: pgUsersSQL},
		{Name: "groups", SQL: pgGroupsSQL},
		{Name: "user_groups", SQL: pgUserGroupsSQL},
	}
}

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case "23503":
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		}
		return err
	}
	// pgx/stdlib sometimes flattens errors to strings; keep the PG code check.
	msg := err.Error()
	if strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	if strings.Contains(msg, "23503") || strings.Contains(msg, "violates foreign key") {
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}
	return err
}

const pgUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
    id         SERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    surname    TEXT NOT NULL,
    birth_date DATE NOT NULL,
    sex        TEXT NOT NULL CHECK (sex IN ('male', 'female', 'other'))
);
CREATE INDEX IF NOT EXISTS idx_users_name ON users (name);
CREATE INDEX IF NOT EXISTS idx_users_surname ON users (surname);
`

const pgGroupsSQL = `
CREATE TABLE IF NOT EXISTS "groups" (
    id   SERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);
`

const pgUserGroupsSQL = `
CREATE TABLE IF NOT EXISTS user_groups (
    user_id  INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    group_id INT NOT NULL REFERENCES "groups"(id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, group_id)
);
`

var _ Dialect = (*PostgresDialect)(nil)
