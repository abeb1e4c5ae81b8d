package points

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perkhub/perkhub/internal/api"
	"github.com/perkhub/perkhub/internal/api/auth"
	"github.com/perkhub/perkhub/internal/api/user"
)

func newTestRouter(svc Service) chi.Router {
	handler := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Get("/data/{table}/all", handler.ListByKind)
	r.Post("/data/reward/add", handler.CreateReward)
	r.Post("/data/activity/add", handler.CreateActivity)
	r.Post("/data/tracking/add", handler.CreateTracking)
	r.Get("/data/tracking/{userID}/get", handler.UserActivities)
	r.Patch("/data/reward/{id}/update", handler.UpdateReward)
	r.Patch("/data/activity/{id}/update", handler.UpdateActivity)
	r.Delete("/data/{table}/{id}/delete", handler.Delete)
	return r
}

func TestListByKindHandler(t *testing.T) {
	t.Run("Rewards", func(t *testing.T) {
		svc := new(MockRepo)
		svc.On("ListRewards", mock.Anything).Return([]Reward{
			{ID: uuid.New(), Name: "coffee", Points: 10},
		}, nil)

		router := newTestRouter(newTestService(svc))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/rewards/all", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var page api.Page[Reward]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, "coffee", page.Items[0].Name)
	})

	t.Run("UnknownTable", func(t *testing.T) {
		svc := new(MockRepo)
		router := newTestRouter(newTestService(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/users/all", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateRewardHandler(t *testing.T) {
	svc := new(MockRepo)
	svc.On("CreateReward", mock.Anything, RewardCreate{Name: "coffee", Points: 10}).
		Return(&Reward{ID: uuid.New(), Name: "coffee", Points: 10}, nil)

	router := newTestRouter(newTestService(svc))
	req := httptest.NewRequest(http.MethodPost, "/data/reward/add",
		strings.NewReader(`{"name":"coffee","points":10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCreateTrackingHandler(t *testing.T) {
	activityID := uuid.New()
	currentUser := &user.User{ID: uuid.New(), Username: "alice"}

	t.Run("UsesAuthenticatedUser", func(t *testing.T) {
		svc := new(MockRepo)
		addedAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		svc.On("CreateTracking", mock.Anything, currentUser.ID, activityID, addedAt).
			Return(&Tracking{ID: uuid.New(), UserID: currentUser.ID, ActivityID: activityID, AddedAt: addedAt}, nil)

		router := newTestRouter(newTestService(svc))
		req := httptest.NewRequest(http.MethodPost, "/data/tracking/add",
			strings.NewReader(`{"activity_id":"`+activityID.String()+`","added_at":"2024-01-01T09:00:00Z"}`))
		req = req.WithContext(auth.ContextWithUser(req.Context(), currentUser))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("NoAuthenticatedUser", func(t *testing.T) {
		svc := new(MockRepo)
		router := newTestRouter(newTestService(svc))

		req := httptest.NewRequest(http.MethodPost, "/data/tracking/add",
			strings.NewReader(`{"activity_id":"`+activityID.String()+`","added_at":"2024-01-01T09:00:00Z"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingAddedAt", func(t *testing.T) {
		svc := new(MockRepo)
		router := newTestRouter(newTestService(svc))

		req := httptest.NewRequest(http.MethodPost, "/data/tracking/add",
			strings.NewReader(`{"activity_id":"`+activityID.String()+`"}`))
		req = req.WithContext(auth.ContextWithUser(req.Context(), currentUser))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "added_at")
	})
}

func TestUpdateRewardHandler(t *testing.T) {
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		svc := new(MockRepo)
		points := 20
		svc.On("UpdateReward", mock.Anything, id, RewardUpdate{Points: &points}).
			Return(&Reward{ID: id, Name: "coffee", Points: 20}, nil)

		router := newTestRouter(newTestService(svc))
		req := httptest.NewRequest(http.MethodPatch, "/data/reward/"+id.String()+"/update",
			strings.NewReader(`{"points":20}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		svc := new(MockRepo)
		router := newTestRouter(newTestService(svc))

		req := httptest.NewRequest(http.MethodPatch, "/data/reward/not-a-uuid/update",
			strings.NewReader(`{"points":20}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteHandler(t *testing.T) {
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		svc := new(MockRepo)
		svc.On("DeleteActivity", mock.Anything, id).Return(nil)

		router := newTestRouter(newTestService(svc))
		req := httptest.NewRequest(http.MethodDelete, "/data/activities/"+id.String()+"/delete", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp api.DeleteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id.String(), resp.ID)
		assert.Equal(t, "success", resp.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockRepo)
		svc.On("DeleteReward", mock.Anything, id).Return(api.ErrNotFound)

		router := newTestRouter(newTestService(svc))
		req := httptest.NewRequest(http.MethodDelete, "/data/rewards/"+id.String()+"/delete", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
