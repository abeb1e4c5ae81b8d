package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/perkhub/perkhub/internal/api"
)

var _ Repo = (*PostgresUserRepo)(nil)

// Repo defines the contract for user data persistence.
type Repo interface {
	// CreateUser inserts a new user and returns the stored record.
	// Returns api.ErrConflict when the username is already taken.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByUsername retrieves a user by username, compared case-insensitively.
	// Returns api.ErrNotFound if no user matches.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByID retrieves a user by its unique ID.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error)

	// GetUsers returns all users in stable listing order.
	GetUsers(ctx context.Context) ([]User, error)
}

const userColumns = `id, username, email, user_avatar, user_country, team_name, job_name,
       role, hashed_password, deactivated, created_at, updated_at`

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool api.PgxPool
}

func NewPostgresUserRepo(pgpool api.PgxPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.UserAvatar, &u.UserCountry,
		&u.TeamName, &u.JobName, &u.Role, &u.HashedPassword, &u.Deactivated,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, u *User) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, user_avatar, user_country, team_name, job_name, role, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.Username, u.Email, u.UserAvatar, u.UserCountry, u.TeamName, u.JobName, u.Role, u.HashedPassword)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: username %q already exists", api.ErrConflict, u.Username)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (r *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pgpool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`,
		username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %q", api.ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error) {
	row := r.pgpool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", api.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) GetUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading user rows: %w", err)
	}
	return users, nil
}
