package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func postAudio(t *testing.T, env *testEnv, token, filename, payload string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/transcribe", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestTranscribeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.withWhisper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inference", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "the kube api is down"}`))
	}))

	admin, adminToken := env.seedUser(t, "gh-root", "root", true)
	user, token := env.seedUser(t, "gh-1001", "alice", false)

	ctx := context.Background()
	_, err := env.dictionary.AddGlobalEntry(ctx, "api", "API", admin.ID)
	require.NoError(t, err)
	_, err = env.dictionary.AddUserEntry(ctx, user.ID, "kube", "Kubernetes")
	require.NoError(t, err)

	t.Run("returns the transcript with replacements applied", func(t *testing.T) {
		resp := postAudio(t, env, token, "clip.wav", "fake-audio")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeJSON[map[string]string](t, resp)
		require.Equal(t, "the Kubernetes API is down", body["text"])
	})

	t.Run("other callers get only the global entries", func(t *testing.T) {
		resp := postAudio(t, env, adminToken, "clip.wav", "fake-audio")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeJSON[map[string]string](t, resp)
		require.Equal(t, "the kube API is down", body["text"])
	})

	t.Run("rejects non-multipart bodies", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/transcribe", token,
			map[string]string{"audio": "nope"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires authentication", func(t *testing.T) {
		resp := postAudio(t, env, "", "clip.wav", "fake-audio")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTranscribeMissingFile(t *testing.T) {
	env := newTestEnv(t)
	env.withWhisper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))

	_, token := env.seedUser(t, "gh-1001", "alice", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no audio here"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/transcribe", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "missing file upload", errorDetail(t, resp))
}

func TestTranscribeBackendFailures(t *testing.T) {
	t.Run("backend error maps to 502", func(t *testing.T) {
		env := newTestEnv(t)
		env.withWhisper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}))

		_, token := env.seedUser(t, "gh-1001", "alice", false)

		resp := postAudio(t, env, token, "clip.wav", "fake-audio")
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("backend timeout maps to 504", func(t *testing.T) {
		env := newTestEnv(t)

		release := make(chan struct{})
		env.withWhisperTimeout(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}), 50*time.Millisecond)
		t.Cleanup(func() { close(release) })

		_, token := env.seedUser(t, "gh-1001", "alice", false)

		resp := postAudio(t, env, token, "clip.wav", "fake-audio")
		require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	})
}
