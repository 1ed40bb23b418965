package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventrsvp/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &domain.User{
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Salt:         "salt",
		Name:         "Alice",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("created", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.Email, user.PasswordHash, user.Salt, user.Name, user.CreatedAt, user.UpdatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

		repo := NewUserRepository(db)
		require.NoError(t, repo.Create(context.Background(), user))
		require.Equal(t, "u-1", user.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		repo := NewUserRepository(db)
		require.ErrorIs(t, repo.Create(context.Background(), user), domain.ErrDuplicateEmail)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(sql.ErrConnDone)

		repo := NewUserRepository(db)
		require.ErrorIs(t, repo.Create(context.Background(), user), domain.ErrStoreUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "email", "password_hash", "salt", "name", "created_at", "updated_at"}

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("u-1", "alice@example.com", "hash", "salt", "Alice", now, now))

		repo := NewUserRepository(db)
		user, err := repo.GetByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, "u-1", user.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "email", "password_hash", "salt", "name", "created_at", "updated_at"}

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("u-1", "alice@example.com", "hash", "salt", "Alice", now, now))

		repo := NewUserRepository(db)
		user, err := repo.GetByID(context.Background(), "u-1")
		require.NoError(t, err)
		require.Equal(t, "Alice", user.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
			WithArgs("u-x").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByID(context.Background(), "u-x")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
