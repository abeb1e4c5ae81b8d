package user

import (
	"log/slog"
	"net/http"

	"github.com/perkhub/perkhub/app/observability/metrics"
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

// CreateUser handles POST /user/create.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Register(r.Context(), req)
	metrics.Get().RegisterRequestsTotal.Add(r.Context(), 1)
	if err != nil {
		h.logger.WarnContext(r.Context(), "User registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// GetUsers handles GET /user/all.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetUsers(r.Context())
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	page, size := api.ParamsFromRequest(r)
	api.WriteJSONResponse(w, r, http.StatusOK, api.Paginate(users, page, size))
}
