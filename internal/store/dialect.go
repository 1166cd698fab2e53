package store

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
)

// TableDDL pairs a table name with its CREATE statement. Order matters:
// user_groups references the other two.
type TableDDL struct {
	Name string
	SQL  string
}

// Dialect abstracts the database-specific corners: DDL, placeholders and
// driver error shapes.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// Placeholders returns the squirrel placeholder format.
	Placeholders() squirrel.PlaceholderFormat

	// TableExists checks whether a table exists.
	TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error)

	// Tables returns the DDL for the application tables in creation order.
	Tables() []TableDDL

	// MapError inspects a driver error and wraps it with a well-known
	// sentinel where applicable.
	MapError(err error) error
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) Dialect {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}
	default:
		return &PostgresDialect{}
	}
}
