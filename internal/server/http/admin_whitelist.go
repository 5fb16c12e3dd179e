package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/pkg/httpx"
)

// AdminWhitelistHandler exposes whitelist management. Removal here is the
// revocation path: it takes effect on the identity's next request.
type AdminWhitelistHandler struct {
	Whitelist *service.WhitelistService
}

type whitelistEntryResponse struct {
	GithubID       string    `json:"github_id"`
	GithubUsername string    `json:"github_username,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toWhitelistResponse(e domain.WhitelistEntry) whitelistEntryResponse {
	return whitelistEntryResponse{
		GithubID:       e.GithubID,
		GithubUsername: e.GithubUsername,
		CreatedAt:      e.CreatedAt,
	}
}

func (h *AdminWhitelistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Whitelist.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]whitelistEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWhitelistResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type addWhitelistRequest struct {
	GithubID       string `json:"github_id"`
	GithubUsername string `json:"github_username"`
}

func (h *AdminWhitelistHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addWhitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GithubID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "github_id is required")
		return
	}

	entry, err := h.Whitelist.Add(r.Context(), req.GithubID, req.GithubUsername)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEntry) {
			httpx.WriteError(w, http.StatusConflict, "github_id already whitelisted")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toWhitelistResponse(entry))
}

func (h *AdminWhitelistHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	githubID := r.PathValue("githubID")

	removed, err := h.Whitelist.Remove(r.Context(), githubID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !removed {
		httpx.WriteError(w, http.StatusNotFound, "entry not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
