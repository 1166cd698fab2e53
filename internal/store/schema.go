package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgconn"

	"user-management/internal/config"
)

// SchemaState tracks how far startup provisioning has progressed.
type SchemaState int

const (
	Unchecked SchemaState = iota
	DatabaseEnsured
	TablesEnsured
	Ready
)

func (s SchemaState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case DatabaseEnsured:
		return "database-ensured"
	case TablesEnsured:
		return "tables-ensured"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// SchemaManager idempotently provisions the database and its three tables
// at process start. Any failure is terminal: the caller must not serve
// requests unless Setup returns a store and the manager reports Ready.
type SchemaManager struct {
	cfg   config.DatabaseConfig
	state SchemaState
}

func NewSchemaManager(cfg config.DatabaseConfig) *SchemaManager {
	return &SchemaManager{cfg: cfg, state: Unchecked}
}

// State returns the current provisioning state.
func (m *SchemaManager) State() SchemaState {
	return m.state
}

// Setup ensures the database exists, connects to it, and ensures every
// table exists. It returns the connected store once the manager is Ready.
func (m *SchemaManager) Setup(ctx context.Context) (*Store, error) {
	if err := m.ensureDatabase(ctx); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}
	m.state = DatabaseEnsured

	s, err := New(ctx, m.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := m.EnsureTables(ctx, s); err != nil {
		s.Close()
		return nil, err
	}

	m.state = Ready
	log.Printf("Database %s is ready", m.cfg.Name)
	return s, nil
}

// ensureDatabase creates the database if it does not exist. For SQLite the
// database is a file created on first open; only its directory is needed.
func (m *SchemaManager) ensureDatabase(ctx context.Context) error {
	if m.cfg.IsSQLite() {
		return os.MkdirAll(m.cfg.Path, 0o755)
	}

	// Postgres has no CREATE DATABASE IF NOT EXISTS; check then create
	// over a short-lived maintenance connection.
	admin, err := sql.Open("pgx", m.cfg.AdminDSN())
	if err != nil {
		return fmt.Errorf("open admin connection: %w", err)
	}
	defer admin.Close()

	var exists bool
	err = admin.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, m.cfg.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database %s: %w", m.cfg.Name, err)
	}
	if exists {
		log.Printf("Database %s already exists", m.cfg.Name)
		return nil
	}

	if !isValidDBName(m.cfg.Name) {
		return fmt.Errorf("invalid database name: %s", m.cfg.Name)
	}
	if _, err := admin.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", m.cfg.Name)); err != nil {
		// Lost a race with a concurrent creator; 42P04 means it exists now.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P04" {
			return nil
		}
		return fmt.Errorf("create database %s: %w", m.cfg.Name, err)
	}
	log.Printf("Database %s created", m.cfg.Name)
	return nil
}

// EnsureTables checks each table and creates the missing ones, in FK
// dependency order.
func (m *SchemaManager) EnsureTables(ctx context.Context, s *Store) error {
	for _, t := range s.Dialect.Tables() {
		exists, err := s.Dialect.TableExists(ctx, s.DB, t.Name)
		if err != nil {
			return fmt.Errorf("check table %s: %w", t.Name, err)
		}
		if exists {
			log.Printf("Table %s already exists", t.Name)
			continue
		}
		if _, err := s.DB.ExecContext(ctx, t.SQL); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
		log.Printf("Table %s created", t.Name)
	}
	m.state = TablesEnsured
	return nil
}

// isValidDBName checks that a database name contains only safe characters,
// since database names cannot be bound as statement parameters.
func isValidDBName(name string) bool {
	if len(name) == 0 || len(name) > 63 {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}
