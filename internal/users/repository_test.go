package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password_hash", "created_at"}

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Create(t *testing.T) {
	created := time.Unix(10, 0).UTC()

	t.Run("success commits", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users \(email, password_hash\) VALUES \(\$1, \$2\)`).
			WithArgs("a@b.io", "hash").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "a@b.io", "hash", created))
		mock.ExpectCommit()

		u, err := repo.Create(context.Background(), "a@b.io", "hash")
		require.NoError(t, err)
		require.Equal(t, User{ID: 1, Email: "a@b.io", PasswordHash: "hash", CreatedAt: created}, u)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email rolls back", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("a@b.io", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), "a@b.io", "hash")
		require.ErrorIs(t, err, ErrEmailTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).WillReturnError(boom)
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), "a@b.io", "hash")
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, ErrEmailTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin fails", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

		_, err := repo.Create(context.Background(), "a@b.io", "hash")
		require.Error(t, err)
	})
}

func TestRepository_ByID(t *testing.T) {
	created := time.Unix(20, 0).UTC()

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(5), "x@y.io", "h", created))

		u, err := repo.ByID(context.Background(), 5)
		require.NoError(t, err)
		require.Equal(t, int64(5), u.ID)
		require.Equal(t, "x@y.io", u.Email)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(int64(6)).
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.ByID(context.Background(), 6)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_ByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("x@y.io").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(9), "x@y.io", "h", time.Unix(1, 0)))
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("nobody@y.io").
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err := repo.ByEmail(context.Background(), "x@y.io")
	require.NoError(t, err)
	require.Equal(t, int64(9), u.ID)

	_, err = repo.ByEmail(context.Background(), "nobody@y.io")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
