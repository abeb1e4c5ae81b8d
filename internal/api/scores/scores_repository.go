package scores

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/perkhub/perkhub/internal/api"
)

var _ Repo = (*PostgresScoresRepo)(nil)

// Repo reads tracking rows joined to activity point values from the points store.
type Repo interface {
	// GetUserEvents returns a user's tracked events sorted ascending by
	// timestamp, with the row id as deterministic secondary key.
	GetUserEvents(ctx context.Context, userID uuid.UUID) ([]TrackedEvent, error)
}

type PostgresScoresRepo struct {
	logger *slog.Logger
	pgpool api.PgxPool
}

func NewPostgresScoresRepo(pgpool api.PgxPool, logger *slog.Logger) *PostgresScoresRepo {
	return &PostgresScoresRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresScoresRepo) GetUserEvents(ctx context.Context, userID uuid.UUID) ([]TrackedEvent, error) {
	ctx, span := otel.Tracer("ScoresRepo").Start(ctx, "GetUserEvents", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "tracking"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
		SELECT t.id, t.added_at, a.points
		FROM tracking t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.user_id = $1
		ORDER BY t.added_at, t.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked events: %w", err)
	}
	defer rows.Close()

	var events []TrackedEvent
	for rows.Next() {
		var e TrackedEvent
		if err := rows.Scan(&e.ID, &e.AddedAt, &e.Points); err != nil {
			return nil, fmt.Errorf("failed to scan tracked event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading tracked events: %w", err)
	}
	return events, nil
}
