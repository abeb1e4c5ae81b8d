package user

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perkhub/perkhub/internal/api"
)

var userRowColumns = []string{
	"id", "username", "email", "user_avatar", "user_country", "team_name",
	"job_name", "role", "hashed_password", "deactivated", "created_at", "updated_at",
}

func newTestRepo(t *testing.T) (*PostgresUserRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresUserRepo(mockPool, logger), mockPool
}

func userRow(id uuid.UUID, username string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userRowColumns).
		AddRow(id, username, (*string)(nil), (*string)(nil), (*string)(nil),
			(*string)(nil), (*string)(nil), RoleUser, "hashed", false, now, now)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		id := uuid.New()

		mockPool.ExpectBegin()
		mockPool.ExpectQuery("INSERT INTO users").
			WithArgs("alice", (*string)(nil), (*string)(nil), (*string)(nil),
				(*string)(nil), (*string)(nil), RoleUser, "hashed").
			WillReturnRows(userRow(id, "alice"))
		mockPool.ExpectCommit()
		mockPool.ExpectRollback()

		created, err := repo.CreateUser(ctx, &User{
			Username:       "alice",
			Role:           RoleUser,
			HashedPassword: "hashed",
		})
		assert.NoError(t, err)
		assert.Equal(t, id, created.ID)
		assert.Equal(t, "alice", created.Username)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)

		mockPool.ExpectBegin()
		mockPool.ExpectQuery("INSERT INTO users").
			WithArgs("alice", (*string)(nil), (*string)(nil), (*string)(nil),
				(*string)(nil), (*string)(nil), RoleUser, "hashed").
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mockPool.ExpectRollback()

		_, err := repo.CreateUser(ctx, &User{
			Username:       "alice",
			Role:           RoleUser,
			HashedPassword: "hashed",
		})
		assert.ErrorIs(t, err, api.ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestGetUserByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("CaseInsensitiveMatch", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)
		id := uuid.New()

		// The comparison is lowered on both sides, so the mixed-case
		// argument passes through unchanged.
		mockPool.ExpectQuery(`LOWER\(username\) = LOWER\(\$1\)`).
			WithArgs("ALICE").
			WillReturnRows(userRow(id, "alice"))

		u, err := repo.GetUserByUsername(ctx, "ALICE")
		assert.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newTestRepo(t)

		mockPool.ExpectQuery(`LOWER\(username\) = LOWER\(\$1\)`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetUserByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, api.ErrNotFound)
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newTestRepo(t)
	id := uuid.New()

	mockPool.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetUserByID(ctx, id)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestGetUsers(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newTestRepo(t)

	first := uuid.New()
	second := uuid.New()
	now := time.Now()
	rows := pgxmock.NewRows(userRowColumns).
		AddRow(first, "alice", (*string)(nil), (*string)(nil), (*string)(nil),
			(*string)(nil), (*string)(nil), RoleUser, "hashed", false, now, now).
		AddRow(second, "bob", (*string)(nil), (*string)(nil), (*string)(nil),
			(*string)(nil), (*string)(nil), RoleAdmin, "hashed", false, now, now)

	mockPool.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at, id").
		WillReturnRows(rows)

	users, err := repo.GetUsers(ctx)
	assert.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
