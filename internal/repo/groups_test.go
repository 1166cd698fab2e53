package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-management/internal/model"
	"user-management/internal/store"
)

func TestGroupsCreate(t *testing.T) {
	t.Run("name is free", func(t *testing.T) {
		s, mock := newMockStore(t)
		groups := NewGroups(s)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "groups" WHERE name = \$1`).
			WithArgs("Admins").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO "groups" \(name\) VALUES \(\$1\) RETURNING id`).
			WithArgs("Admins").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		id, err := groups.Create(context.Background(), model.Group{Name: "Admins"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pre-check stops a duplicate before the insert", func(t *testing.T) {
		s, mock := newMockStore(t)
		groups := NewGroups(s)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "groups" WHERE name = \$1`).
			WithArgs("Admins").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := groups.Create(context.Background(), model.Group{Name: "Admins"})
		assert.ErrorIs(t, err, ErrDuplicateName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique index backstops a pre-check race", func(t *testing.T) {
		s, mock := newMockStore(t)
		groups := NewGroups(s)

		// Both creators passed the pre-check; this one loses the insert.
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "groups" WHERE name = \$1`).
			WithArgs("Admins").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO "groups" \(name\) VALUES \(\$1\) RETURNING id`).
			WithArgs("Admins").
			WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "groups_name_key" (SQLSTATE 23505)`))

		_, err := groups.Create(context.Background(), model.Group{Name: "Admins"})
		assert.ErrorIs(t, err, ErrDuplicateName)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGroupsGetByID(t *testing.T) {
	s, mock := newMockStore(t)
	groups := NewGroups(s)

	mock.ExpectQuery(`SELECT id, name FROM "groups" WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "Admins"))

	g, err := groups.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Admins", g.Name)

	mock.ExpectQuery(`SELECT id, name FROM "groups" WHERE id = \$1`).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err = groups.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupsList(t *testing.T) {
	s, mock := newMockStore(t)
	groups := NewGroups(s)

	mock.ExpectQuery(`SELECT id, name FROM "groups" ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Admins").
			AddRow(2, "Editors"))

	got, err := groups.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Admins", got[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupsUpdate(t *testing.T) {
	s, mock := newMockStore(t)
	groups := NewGroups(s)

	mock.ExpectExec(`UPDATE "groups" SET name = \$1 WHERE id = \$2`).
		WithArgs("Moderators", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := groups.Update(context.Background(), 1, model.Group{Name: "Moderators"})
	require.NoError(t, err)
	assert.True(t, updated)

	mock.ExpectExec(`UPDATE "groups" SET name = \$1 WHERE id = \$2`).
		WithArgs("Moderators", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = groups.Update(context.Background(), 999, model.Group{Name: "Moderators"})
	require.NoError(t, err)
	assert.False(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupsDelete(t *testing.T) {
	s, mock := newMockStore(t)
	groups := NewGroups(s)

	mock.ExpectExec(`DELETE FROM "groups" WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := groups.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
