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

// DictionaryHandler serves both the caller's own dictionary and, on the
// admin routes, the global one.
type DictionaryHandler struct {
	Dictionary *service.DictionaryService
}

type dictionaryEntryResponse struct {
	ID          int64     `json:"id"`
	Pattern     string    `json:"pattern"`
	Replacement string    `json:"replacement"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type dictionaryEntryRequest struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

func (h *DictionaryHandler) HandleListUser(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	entries, err := h.Dictionary.UserEntries(r.Context(), user.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]dictionaryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dictionaryEntryResponse{
			ID:          e.ID,
			Pattern:     e.Pattern,
			Replacement: e.Replacement,
			CreatedAt:   e.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *DictionaryHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req dictionaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Dictionary.AddUserEntry(r.Context(), user.ID, req.Pattern, req.Replacement)
	if err != nil {
		writeDictionaryError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dictionaryEntryResponse{
		ID:          entry.ID,
		Pattern:     entry.Pattern,
		Replacement: entry.Replacement,
		CreatedAt:   entry.CreatedAt,
	})
}

func (h *DictionaryHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	entryID, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	deleted, err := h.Dictionary.DeleteUserEntry(r.Context(), user.ID, entryID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !deleted {
		httpx.WriteError(w, http.StatusNotFound, "entry not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DictionaryHandler) HandleListGlobal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Dictionary.GlobalEntries(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]dictionaryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toGlobalResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *DictionaryHandler) HandleCreateGlobal(w http.ResponseWriter, r *http.Request) {
	admin, _ := UserFromContext(r.Context())

	var req dictionaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Dictionary.AddGlobalEntry(r.Context(), req.Pattern, req.Replacement, admin.ID)
	if err != nil {
		writeDictionaryError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toGlobalResponse(entry))
}

func (h *DictionaryHandler) HandleDeleteGlobal(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	deleted, err := h.Dictionary.DeleteGlobalEntry(r.Context(), entryID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !deleted {
		httpx.WriteError(w, http.StatusNotFound, "entry not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toGlobalResponse(e domain.GlobalDictionaryEntry) dictionaryEntryResponse {
	return dictionaryEntryResponse{
		ID:          e.ID,
		Pattern:     e.Pattern,
		Replacement: e.Replacement,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func writeDictionaryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDictionaryLimit):
		httpx.WriteError(w, http.StatusBadRequest, "dictionary entry limit exceeded")
	case errors.Is(err, service.ErrInvalidEntry):
		httpx.WriteError(w, http.StatusBadRequest, "invalid dictionary entry")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
