package user

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/perkhub/perkhub/internal/api"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines user registration and lookup operations.
type Service interface {
	// Register creates a new user with a freshly hashed password.
	// Returns api.ErrConflict when the username is already taken.
	Register(ctx context.Context, req CreateUserRequest) (*User, error)

	// GetUsers returns all users in stable listing order.
	GetUsers(ctx context.Context) ([]User, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repo
}

func NewService(repo Repo, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", api.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, &User{
		Username:       req.Username,
		Email:          req.Email,
		UserAvatar:     req.UserAvatar,
		UserCountry:    req.UserCountry,
		TeamName:       req.TeamName,
		JobName:        req.JobName,
		Role:           RoleUser,
		HashedPassword: string(hashed),
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", slog.String("username", created.Username))
	return created, nil
}

func (s *ServiceImpl) GetUsers(ctx context.Context) ([]User, error) {
	return s.repo.GetUsers(ctx)
}
