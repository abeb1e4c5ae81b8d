package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perkhub/perkhub/app/observability/metrics"
	"github.com/perkhub/perkhub/internal/api"
	"github.com/perkhub/perkhub/internal/api/user"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	args := m.Called(ctx, username, password)
	var u *user.User
	if args.Get(0) != nil {
		u = args.Get(0).(*user.User)
	}
	return u, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authorize(ctx context.Context, tokenString string) (*user.User, error) {
	args := m.Called(ctx, tokenString)
	var u *user.User
	if args.Get(0) != nil {
		u = args.Get(0).(*user.User)
	}
	return u, args.Error(1)
}

func loginRequest(username, password string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "alice", "password123").Return("signed-token", nil)

		handler := NewHandler(svc, discardLogger())
		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest("alice", "password123"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "signed-token", resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
	})

	t.Run("BadCredentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "alice", "wrong").Return("", api.ErrUnauthenticated)

		handler := NewHandler(svc, discardLogger())
		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest("alice", "wrong"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Contains(t, rec.Body.String(), "Incorrect username or password")
	})
}

func TestAuthenticateMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Username", u.Username)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("ValidToken", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Authorize", mock.Anything, "good-token").Return(&user.User{Username: "alice"}, nil)

		mw := Authenticate(svc, discardLogger())
		req := httptest.NewRequest(http.MethodGet, "/user/all", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Header().Get("X-Username"))
	})

	t.Run("MissingHeader", func(t *testing.T) {
		svc := new(MockAuthService)
		mw := Authenticate(svc, discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/user/all", nil)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		svc.AssertNotCalled(t, "Authorize")
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		svc := new(MockAuthService)
		mw := Authenticate(svc, discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/user/all", nil)
		req.Header.Set("Authorization", "Token xyz")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RejectedToken", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Authorize", mock.Anything, "bad-token").Return(nil, api.ErrUnauthenticated)

		mw := Authenticate(svc, discardLogger())
		req := httptest.NewRequest(http.MethodGet, "/user/all", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Could not validate credentials")
	})
}

func TestRequireActiveUserMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withUser := func(req *http.Request, u *user.User) *http.Request {
		return req.WithContext(ContextWithUser(req.Context(), u))
	}

	t.Run("ActiveUserPasses", func(t *testing.T) {
		mw := RequireActiveUser(discardLogger())
		req := withUser(httptest.NewRequest(http.MethodGet, "/user/all", nil), &user.User{Username: "alice"})
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("DeactivatedUserRejected", func(t *testing.T) {
		mw := RequireActiveUser(discardLogger())
		req := withUser(httptest.NewRequest(http.MethodGet, "/user/all", nil),
			&user.User{Username: "bob", Deactivated: true})
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Inactive user")
	})

	t.Run("NoUserInContext", func(t *testing.T) {
		mw := RequireActiveUser(discardLogger())
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/all", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
