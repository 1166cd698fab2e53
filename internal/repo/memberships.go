package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"user-management/internal/store"
)

// Memberships owns all SQL touching the user_groups table. It performs no
// referential pre-checks: a bad user or group id surfaces as a foreign key
// violation from the storage layer.
type Memberships struct {
	s *store.Store
}

func NewMemberships(s *store.Store) *Memberships {
	return &Memberships{s: s}
}

// Add inserts the pair and reports whether a row was written. A duplicate
// pair is not an error: ON CONFLICT DO NOTHING affects zero rows and Add
// returns false, leaving the response code to the handler.
func (r *Memberships) Add(ctx context.Context, userID, groupID int64) (bool, error) {
	query, args, err := r.s.Builder().
		Insert("user_groups").
		Columns("user_id", "group_id").
		Values(userID, groupID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := r.s.Exec(ctx, r.s.DB, query, args...)
	if err != nil {
		return false, fmt.Errorf("add user %d to group %d: %w", userID, groupID, err)
	}
	return n > 0, nil
}

// Remove deletes the pair and reports whether a row matched.
func (r *Memberships) Remove(ctx context.Context, userID, groupID int64) (bool, error) {
	query, args, err := r.s.Builder().
		Delete("user_groups").
		Where(sq.Eq{"user_id": userID, "group_id": groupID}).
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := r.s.Exec(ctx, r.s.DB, query, args...)
	if err != nil {
		return false, fmt.Errorf("remove user %d from group %d: %w", userID, groupID, err)
	}
	return n > 0, nil
}

// ListUsersInGroup returns the member user ids in ascending order.
func (r *Memberships) ListUsersInGroup(ctx context.Context, groupID int64) ([]int64, error) {
	return r.listIDs(ctx, "user_id", sq.Eq{"group_id": groupID})
}

// ListGroupsForUser returns the joined group ids in ascending order.
func (r *Memberships) ListGroupsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return r.listIDs(ctx, "group_id", sq.Eq{"user_id": userID})
}

func (r *Memberships) listIDs(ctx context.Context, column string, where sq.Eq) ([]int64, error) {
	query, args, err := r.s.Builder().
		Select(column).
		From("user_groups").
		Where(where).
		OrderBy(column + " ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", column, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", column, err)
	}
	return ids, nil
}
