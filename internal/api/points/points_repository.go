package points

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/perkhub/perkhub/internal/api"
)

var _ Repo = (*PostgresPointsRepo)(nil)

// Repo defines the contract for the points-store tables (rewards, activities,
// tracking). Every write runs in its own transaction and is rolled back on
// failure.
type Repo interface {
	CreateReward(ctx context.Context, in RewardCreate) (*Reward, error)
	CreateActivity(ctx context.Context, in ActivityCreate) (*Activity, error)
	// CreateTracking logs an activity for a user at the given timestamp.
	CreateTracking(ctx context.Context, userID, activityID uuid.UUID, addedAt time.Time) (*Tracking, error)

	ListRewards(ctx context.Context) ([]Reward, error)
	ListActivities(ctx context.Context) ([]Activity, error)
	// ListTracking returns all tracking rows joined to their activity.
	ListTracking(ctx context.Context) ([]TrackingWithActivity, error)
	// GetUserActivities returns the activities behind a user's tracking rows.
	GetUserActivities(ctx context.Context, userID uuid.UUID) ([]Activity, error)

	UpdateReward(ctx context.Context, id uuid.UUID, in RewardUpdate) (*Reward, error)
	UpdateActivity(ctx context.Context, id uuid.UUID, in ActivityUpdate) (*Activity, error)

	DeleteReward(ctx context.Context, id uuid.UUID) error
	// DeleteActivity removes an activity; its tracking rows cascade away.
	DeleteActivity(ctx context.Context, id uuid.UUID) error
	DeleteTracking(ctx context.Context, id uuid.UUID) error
}

type PostgresPointsRepo struct {
	logger *slog.Logger
	pgpool api.PgxPool
}

func NewPostgresPointsRepo(pgpool api.PgxPool, logger *slog.Logger) *PostgresPointsRepo {
	return &PostgresPointsRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func wrapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: data already exists: %s", api.ErrConflict, pgErr.Detail)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (r *PostgresPointsRepo) CreateReward(ctx context.Context, in RewardCreate) (*Reward, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var reward Reward
	err = tx.QueryRow(ctx,
		`INSERT INTO rewards (name, points) VALUES ($1, $2) RETURNING id, name, points`,
		in.Name, in.Points).Scan(&reward.ID, &reward.Name, &reward.Points)
	if err != nil {
		return nil, wrapWriteErr("add reward", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &reward, nil
}

func (r *PostgresPointsRepo) CreateActivity(ctx context.Context, in ActivityCreate) (*Activity, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var activity Activity
	err = tx.QueryRow(ctx,
		`INSERT INTO activities (name, points) VALUES ($1, $2) RETURNING id, name, points`,
		in.Name, in.Points).Scan(&activity.ID, &activity.Name, &activity.Points)
	if err != nil {
		return nil, wrapWriteErr("add activity", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &activity, nil
}

func (r *PostgresPointsRepo) CreateTracking(ctx context.Context, userID, activityID uuid.UUID, addedAt time.Time) (*Tracking, error) {
	ctx, span := otel.Tracer("PointsRepo").Start(ctx, "CreateTracking", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "tracking"),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var t Tracking
	err = tx.QueryRow(ctx,
		`INSERT INTO tracking (user_id, activity_id, added_at) VALUES ($1, $2, $3)
		 RETURNING id, user_id, activity_id, added_at`,
		userID, activityID, addedAt).Scan(&t.ID, &t.UserID, &t.ActivityID, &t.AddedAt)
	if err != nil {
		// 23503 means the referenced activity is gone.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("%w: activity %s", api.ErrNotFound, activityID)
		}
		return nil, wrapWriteErr("add tracking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &t, nil
}

func (r *PostgresPointsRepo) ListRewards(ctx context.Context) ([]Reward, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT id, name, points FROM rewards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards: %w", err)
	}
	defer rows.Close()

	var rewards []Reward
	for rows.Next() {
		var reward Reward
		if err := rows.Scan(&reward.ID, &reward.Name, &reward.Points); err != nil {
			return nil, fmt.Errorf("failed to scan reward row: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading reward rows: %w", err)
	}
	return rewards, nil
}

func (r *PostgresPointsRepo) ListActivities(ctx context.Context) ([]Activity, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT id, name, points FROM activities ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var activity Activity
		if err := rows.Scan(&activity.ID, &activity.Name, &activity.Points); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading activity rows: %w", err)
	}
	return activities, nil
}

const trackingJoinQuery = `
	SELECT t.id, t.user_id, t.activity_id, t.added_at, a.id, a.name, a.points
	FROM tracking t
	JOIN activities a ON a.id = t.activity_id`

func scanTrackingJoin(rows pgx.Rows) ([]TrackingWithActivity, error) {
	var out []TrackingWithActivity
	for rows.Next() {
		var t TrackingWithActivity
		err := rows.Scan(&t.ID, &t.UserID, &t.ActivityID, &t.AddedAt,
			&t.Activity.ID, &t.Activity.Name, &t.Activity.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracking row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading tracking rows: %w", err)
	}
	return out, nil
}

func (r *PostgresPointsRepo) ListTracking(ctx context.Context) ([]TrackingWithActivity, error) {
	rows, err := r.pgpool.Query(ctx, trackingJoinQuery+` ORDER BY t.added_at, t.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking: %w", err)
	}
	defer rows.Close()
	return scanTrackingJoin(rows)
}

func (r *PostgresPointsRepo) GetUserActivities(ctx context.Context, userID uuid.UUID) ([]Activity, error) {
	rows, err := r.pgpool.Query(ctx, `
		SELECT a.id, a.name, a.points
		FROM tracking t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.user_id = $1
		ORDER BY t.added_at, t.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var activity Activity
		if err := rows.Scan(&activity.ID, &activity.Name, &activity.Points); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading activity rows: %w", err)
	}
	return activities, nil
}

func (r *PostgresPointsRepo) UpdateReward(ctx context.Context, id uuid.UUID, in RewardUpdate) (*Reward, error) {
	set, args := buildSetClauses(in.Name, in.Points)
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", api.ErrBadRequest)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	args = append(args, id)
	var reward Reward
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`UPDATE rewards SET %s WHERE id = $%d RETURNING id, name, points`,
			strings.Join(set, ", "), len(args)),
		args...).Scan(&reward.ID, &reward.Name, &reward.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reward %s", api.ErrNotFound, id)
		}
		return nil, wrapWriteErr("update reward", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &reward, nil
}

func (r *PostgresPointsRepo) UpdateActivity(ctx context.Context, id uuid.UUID, in ActivityUpdate) (*Activity, error) {
	set, args := buildSetClauses(in.Name, in.Points)
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", api.ErrBadRequest)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	args = append(args, id)
	var activity Activity
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`UPDATE activities SET %s WHERE id = $%d RETURNING id, name, points`,
			strings.Join(set, ", "), len(args)),
		args...).Scan(&activity.ID, &activity.Name, &activity.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", api.ErrNotFound, id)
		}
		return nil, wrapWriteErr("update activity", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &activity, nil
}

// buildSetClauses assembles the SET fragment for the name/points pair shared
// by rewards and activities, skipping nil fields.
func buildSetClauses(name *string, points *int) ([]string, []interface{}) {
	var set []string
	var args []interface{}
	argID := 1

	if name != nil {
		set = append(set, fmt.Sprintf("name = $%d", argID))
		args = append(args, *name)
		argID++
	}
	if points != nil {
		set = append(set, fmt.Sprintf("points = $%d", argID))
		args = append(args, *points)
		argID++
	}
	return set, args
}

func (r *PostgresPointsRepo) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: data not found", api.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresPointsRepo) DeleteReward(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "rewards", id)
}

func (r *PostgresPointsRepo) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "activities", id)
}

func (r *PostgresPointsRepo) DeleteTracking(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "tracking", id)
}
