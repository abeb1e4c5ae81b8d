package scores

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserEvents(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	repo := NewPostgresScoresRepo(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	userID := uuid.New()

	t.Run("JoinsActivityPoints", func(t *testing.T) {
		first := uuid.New()
		second := uuid.New()
		rows := pgxmock.NewRows([]string{"id", "added_at", "points"}).
			AddRow(first, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 5).
			AddRow(second, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), 2)

		mockPool.ExpectQuery("FROM tracking t").
			WithArgs(userID).
			WillReturnRows(rows)

		events, err := repo.GetUserEvents(ctx, userID)
		assert.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, first, events[0].ID)
		assert.Equal(t, 5, events[0].Points)
		assert.Equal(t, 2, events[1].Points)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NoRows", func(t *testing.T) {
		mockPool.ExpectQuery("FROM tracking t").
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "added_at", "points"}))

		events, err := repo.GetUserEvents(ctx, userID)
		assert.NoError(t, err)
		assert.Empty(t, events)
	})
}
