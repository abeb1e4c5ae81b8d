package api

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by every service. Handlers map them onto HTTP
// status codes; anything unwrapped falls through as a generic bad request,
// matching the flattened classification of the data operations.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("invalid request")
)

// StatusForError translates a service error into an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		// Inactive users get a 400, not a 403.
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// DeleteResponse confirms a delete across every entity kind.
type DeleteResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
