package auth

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

// Login handles POST /auth/token. It accepts password-grant style form fields
// (username, password) and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.service.Login(r.Context(), username, password)
	metrics.Get().LoginRequestsTotal.Add(r.Context(), 1)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Login failed", slog.String("username", username), slog.Any("error", err))
		w.Header().Set("WWW-Authenticate", "Bearer")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}
