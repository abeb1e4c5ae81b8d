package scores

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perkhub/perkhub/internal/api"
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

// TotalScore handles GET /data/total_score/{userID}/get.
func (h *Handler) TotalScore(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	score, err := h.service.TotalScore(r.Context(), userID)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, score)
}

// DailyScores handles GET /data/tracking/{userID}/aggregate.
func (h *Handler) DailyScores(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	agg, err := h.service.DailyScores(r.Context(), userID)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, agg)
}

// Leaderboard handles GET /data/total_score/get.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.Leaderboard(r.Context())
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	page, size := api.ParamsFromRequest(r)
	api.WriteJSONResponse(w, r, http.StatusOK, api.Paginate(scores, page, size))
}
