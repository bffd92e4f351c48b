package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/api/shared"
	"github.com/medirent/opsdesk/internal/store"
)

// UserHandler serves the staff directory backing the assignee filter.
type UserHandler struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users store.UserStore, log *slog.Logger) *UserHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: log.With(slog.String("component", "user_handler")),
	}
}

// UserResponse is the directory entry served to the console: a display
// name assembled from the stored name parts, plus the role used for
// grouping in the assignment dropdown.
type UserResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// ListUsers handles GET /api/users requests, returning all active staff
// users for assignment and filter dropdowns.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, UserResponse{
			ID:   user.ID,
			Name: user.Name(),
			Role: user.Role,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
