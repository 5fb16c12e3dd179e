package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/pkg/httpx"
)

// AdminUsersHandler exposes the privileged account-management surface.
type AdminUsersHandler struct {
	Users *service.UserService
}

type userResponse struct {
	ID             int64      `json:"id"`
	GithubID       string     `json:"github_id"`
	GithubUsername string     `json:"github_username,omitempty"`
	GithubAvatar   string     `json:"github_avatar,omitempty"`
	IsAdmin        bool       `json:"is_admin"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		GithubID:       u.GithubID,
		GithubUsername: u.GithubUsername,
		GithubAvatar:   u.GithubAvatar,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
	}
}

func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type updateUserRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *AdminUsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor, _ := UserFromContext(r.Context())

	updated, err := h.Users.UpdateAdmin(r.Context(), targetID, req.IsAdmin, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrSelfModification):
			httpx.WriteError(w, http.StatusBadRequest, "cannot change your own admin status")
		case errors.Is(err, service.ErrProtectedInitialAdmin):
			httpx.WriteError(w, http.StatusBadRequest, "cannot change the initial admin to member")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *AdminUsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Users.DeleteUser(r.Context(), targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrProtectedAccount):
			httpx.WriteError(w, http.StatusBadRequest, "cannot delete admin users")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
