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

var userColumns = []string{"id", "name", "surname", "birth_date", "sex"}

// Users owns all SQL touching the users table. Duplicate users by
// name/surname are allowed; only the id is unique.
type Users struct {
	s *store.Store
}

func NewUsers(s *store.Store) *Users {
	return &Users{s: s}
}

// Create inserts a new user and returns the generated id.
func (r *Users) Create(ctx context.Context, u model.User) (int64, error) {
	query, args, err := r.s.Builder().
		Insert("users").
		Columns("name", "surname", "birth_date", "sex").
		Values(u.Name, u.Surname, u.BirthDate, u.Sex).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.s.DB.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create user: %w", r.s.Dialect.MapError(err))
	}
	return id, nil
}

// GetByID returns store.ErrNotFound when no row matches.
func (r *Users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query, args, err := r.s.Builder().
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u model.User
	err = r.s.DB.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Name, &u.Surname, &u.BirthDate, &u.Sex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// List returns one page of users ordered by id plus the total row count.
// Both queries run inside one transaction so the count and the page
// reflect the same point in time.
func (r *Users) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	tx, err := r.s.BeginTx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin list tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := r.s.Builder().
		Select(userColumns...).
		From("users").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.BirthDate, &u.Sex); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery, countArgs, err := r.s.Builder().
		Select("COUNT(*)").
		From("users").
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit list tx: %w", err)
	}
	return users, total, nil
}

// Update replaces every mutable column and reports whether a row matched.
func (r *Users) Update(ctx context.Context, id int64, u model.User) (bool, error) {
	query, args, err := r.s.Builder().
		Update("users").
		Set("name", u.Name).
		Set("surname", u.Surname).
		Set("birth_date", u.BirthDate).
		Set("sex", u.Sex).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := r.s.Exec(ctx, r.s.DB, query, args...)
	if err != nil {
		return false, fmt.Errorf("update user %d: %w", id, err)
	}
	return n > 0, nil
}

// Delete reports whether a row matched. Memberships referencing the user
// go with it via ON DELETE CASCADE.
func (r *Users) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.s.Builder().
		Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := r.s.Exec(ctx, r.s.DB, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	return n > 0, nil
}
