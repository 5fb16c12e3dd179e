package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserDictionaryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	_, token := env.seedUser(t, "gh-1001", "alice", false)
	_, otherToken := env.seedUser(t, "gh-2002", "bob", false)

	var entryID int64

	t.Run("create", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/dictionary", token,
			map[string]string{"pattern": "teh", "replacement": "the"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeJSON[map[string]any](t, resp)
		require.Equal(t, "teh", body["pattern"])
		entryID = int64(body["id"].(float64))
		require.NotZero(t, entryID)
	})

	t.Run("blank pattern", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/dictionary", token,
			map[string]string{"pattern": "  ", "replacement": "x"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list shows only the caller's entries", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/dictionary", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, decodeJSON[[]map[string]any](t, resp), 1)

		resp = env.do(t, http.MethodGet, "/api/dictionary", otherToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, decodeJSON[[]map[string]any](t, resp))
	})

	t.Run("delete is scoped to the owner", func(t *testing.T) {
		path := fmt.Sprintf("/api/dictionary/%d", entryID)

		resp := env.do(t, http.MethodDelete, path, otherToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.do(t, http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.do(t, http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("requires authentication", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/dictionary", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGlobalDictionaryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	admin, adminToken := env.seedUser(t, "gh-root", "root", true)
	_, memberToken := env.seedUser(t, "gh-1001", "alice", false)

	var entryID int64

	t.Run("create records the acting admin", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/admin/api/dictionary", adminToken,
			map[string]string{"pattern": "btw", "replacement": "by the way"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeJSON[map[string]any](t, resp)
		require.EqualValues(t, admin.ID, body["created_by"])
		entryID = int64(body["id"].(float64))
	})

	t.Run("members cannot create", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/admin/api/dictionary", memberToken,
			map[string]string{"pattern": "x", "replacement": "y"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/admin/api/dictionary", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, decodeJSON[[]map[string]any](t, resp), 1)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/admin/api/dictionary/%d", entryID)

		resp := env.do(t, http.MethodDelete, path, adminToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.do(t, http.MethodDelete, path, adminToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
