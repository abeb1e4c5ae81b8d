package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/perkhub/perkhub/config"
	"github.com/perkhub/perkhub/internal/api"
	"github.com/perkhub/perkhub/internal/api/user"
)

var _ Service = (*ServiceImpl)(nil)

// Service composes credential verification, token issuance and user lookup
// into the login and request-authorization flows.
type Service interface {
	// Authenticate verifies a username/password pair. The username is matched
	// case-insensitively. Returns api.ErrUnauthenticated on unknown user or
	// password mismatch.
	Authenticate(ctx context.Context, username, password string) (*user.User, error)

	// Login authenticates and issues an access token with the username as subject.
	Login(ctx context.Context, username, password string) (string, error)

	// Authorize validates a token and re-looks-up the subject user, so tokens
	// for since-removed users fail with api.ErrUnauthenticated.
	Authorize(ctx context.Context, tokenString string) (*user.User, error)
}

// VerifyPassword checks a plaintext password against a stored bcrypt hash.
func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// HashPassword derives a salted bcrypt hash; a fresh salt is generated per call.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

type ServiceImpl struct {
	logger *slog.Logger
	cfg    config.JWTConfig
	users  user.Repo
}

func NewService(users user.Repo, cfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		cfg:    cfg,
		users:  users,
	}
}

func (s *ServiceImpl) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: incorrect username or password", api.ErrUnauthenticated)
		}
		return nil, err
	}
	if !VerifyPassword(password, u.HashedPassword) {
		return nil, fmt.Errorf("%w: incorrect username or password", api.ErrUnauthenticated)
	}
	return u, nil
}

func (s *ServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	ttl := time.Duration(s.cfg.ExpireMinutes) * time.Minute
	token, err := IssueToken(u.Username, s.cfg.Issuer, []byte(s.cfg.SecretKey), ttl)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "User logged in", slog.String("username", u.Username))
	return token, nil
}

func (s *ServiceImpl) Authorize(ctx context.Context, tokenString string) (*user.User, error) {
	subject, err := ValidateToken(tokenString, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: could not validate credentials", api.ErrUnauthenticated)
		}
		return nil, err
	}
	return u, nil
}

// RequireActive rejects deactivated users. The error is distinct from the
// unauthorized case and maps onto a 400 response.
func RequireActive(u *user.User) error {
	if u.Deactivated {
		return fmt.Errorf("%w: inactive user", api.ErrForbidden)
	}
	return nil
}
