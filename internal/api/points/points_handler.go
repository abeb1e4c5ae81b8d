package points

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perkhub/perkhub/internal/api"
	"github.com/perkhub/perkhub/internal/api/auth"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// ListByKind handles GET /data/{table}/all.
func (h *Handler) ListByKind(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseEntityKind(chi.URLParam(r, "table"))
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	res, err := h.service.List(r.Context(), kind)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	page, size := api.ParamsFromRequest(r)
	switch res.Kind {
	case KindRewards:
		api.WriteJSONResponse(w, r, http.StatusOK, api.Paginate(res.Rewards, page, size))
	case KindActivities:
		api.WriteJSONResponse(w, r, http.StatusOK, api.Paginate(res.Activities, page, size))
	case KindTracking:
		api.WriteJSONResponse(w, r, http.StatusOK, api.Paginate(res.Tracking, page, size))
	}
}

// CreateReward handles POST /data/reward/add.
func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	var body RewardCreate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Add(r.Context(), CreateInput{Kind: KindRewards, Reward: &body})
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// CreateActivity handles POST /data/activity/add.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var body ActivityCreate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Add(r.Context(), CreateInput{Kind: KindActivities, Activity: &body})
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// CreateTracking handles POST /data/tracking/add. The tracking row belongs to
// the authenticated user.
func (h *Handler) CreateTracking(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var body TrackingCreate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.AddTracking(r.Context(), u.ID, body)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UserActivities handles GET /data/tracking/{userID}/get.
func (h *Handler) UserActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "userID")
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	activities, err := h.service.UserActivities(r.Context(), userID)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	page, size := api.ParamsFromRequest(r)
	api.WriteJSONResponse(w, r, http.StatusOK, api.Paginate(activities, page, size))
}

// UpdateReward handles PATCH /data/reward/{id}/update.
func (h *Handler) UpdateReward(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid reward id")
		return
	}

	var body RewardUpdate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, UpdateInput{Kind: KindRewards, Reward: &body})
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// UpdateActivity handles PATCH /data/activity/{id}/update.
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid activity id")
		return
	}

	var body ActivityUpdate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, UpdateInput{Kind: KindActivities, Activity: &body})
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /data/{table}/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseEntityKind(chi.URLParam(r, "table"))
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	id, ok := parseIDParam(r, "id")
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	resp, err := h.service.Delete(r.Context(), kind, id)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
