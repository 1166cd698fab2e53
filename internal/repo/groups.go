package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"user-management/internal/model"
	"user-management/internal/store"
)

// ErrDuplicateName is returned when a group with the requested name
// already exists.
var ErrDuplicateName = errors.New("group name already exists")

// groupsTable is quoted: GROUPS is a keyword in both dialects.
const groupsTable = `"groups"`

// Groups owns all SQL touching the groups table.
type Groups struct {
	s *store.Store
}

func NewGroups(s *store.Store) *Groups {
	return &Groups{s: s}
}

// Create inserts a new group and returns the generated id. The name is
// checked first so a collision yields ErrDuplicateName instead of a raw
// constraint error; two creators can still race past the check, in which
// case the unique index rejects the second insert and that error maps to
// ErrDuplicateName as well.
func (r *Groups) Create(ctx context.Context, g model.Group) (int64, error) {
	query, args, err := r.s.Builder().
		Select("COUNT(*)").
		From(groupsTable).
		Where(sq.Eq{"name": g.Name}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("check group name: %w", err)
	}
	if count > 0 {
		return 0, ErrDuplicateName
	}

	query, args, err = r.s.Builder().
		Insert(groupsTable).
		Columns("name").
		Values(g.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.s.DB.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(r.s.Dialect.MapError(err), store.ErrUniqueViolation) {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("create group: %w", err)
	}
	return id, nil
}

// GetByID returns store.ErrNotFound when no row matches.
func (r *Groups) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	query, args, err := r.s.Builder().
		Select("id", "name").
		From(groupsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var g model.Group
	err = r.s.DB.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	return &g, nil
}

// List returns every group ordered by id.
func (r *Groups) List(ctx context.Context) ([]model.Group, error) {
	query, args, err := r.s.Builder().
		Select("id", "name").
		From(groupsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Update renames the group and reports whether a row matched.
func (r *Groups) Update(ctx context.Context, id int64, g model.Group) (bool, error) {
	query, args, err := r.s.Builder().
		Update(groupsTable).
		Set("name", g.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := r.s.Exec(ctx, r.s.DB, query, args...)
	if err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return false, ErrDuplicateName
		}
		return false, fmt.Errorf("update group %d: %w", id, err)
	}
	return n > 0, nil
}

// Delete reports whether a row matched; memberships cascade.
func (r *Groups) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.s.Builder().
		Delete(groupsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := r.s.Exec(ctx, r.s.DB, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete group %d: %w", id, err)
	}
	return n > 0, nil
}
