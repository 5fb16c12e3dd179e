package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/quietlane/voicegate/internal/server/github"
	httpapi "github.com/quietlane/voicegate/internal/server/http"
	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/internal/server/store/drivers/sqlite"
	"github.com/quietlane/voicegate/internal/server/whisper"
	"github.com/quietlane/voicegate/pkg/jwtx"
)

/*
 * Full-journey tests: the complete server wired together in process, with
 * stub GitHub and whisper backends standing in for the external services.
 */

const initialAdminGithubID = "9000001"

// fakeGitHub serves the OAuth token endpoint and the user API. The account
// it vends is swappable per test step.
type fakeGitHub struct {
	srv *httptest.Server

	accountID string
	login     string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	f := &fakeGitHub{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "gho_e2e", "token_type": "bearer"}`))
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         mustAtoi(t, f.accountID),
			"login":      f.login,
			"avatar_url": "https://avatars.example/" + f.login,
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func mustAtoi(t *testing.T, s string) int64 {
	t.Helper()
	n, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return n
}

type stack struct {
	store   *sqlite.Store
	codec   *jwtx.Codec
	gh      *fakeGitHub
	baseURL string
	client  *http.Client
}

// newStack wires the application the way app.New does, against in-memory
// storage and stub backends, and runs the startup bootstrap.
func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec("e2e-secret", "HS256", time.Hour)
	require.NoError(t, err)

	gh := newFakeGitHub(t)

	whisperBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "deploy the voice gate to prod"}`))
	}))
	t.Cleanup(whisperBackend.Close)
	whisperClient := whisper.NewClient(whisperBackend.URL, time.Second)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth := &service.AuthService{Codec: codec, Store: st}
	dictionary := &service.DictionaryService{Store: st}

	router := httpapi.NewRouter("voicegate", "e2e", auth, st, logger)
	router.UserService = &service.UserService{Store: st, InitialAdminGithubID: initialAdminGithubID}
	router.WhitelistService = &service.WhitelistService{Store: st}
	router.DictionaryService = dictionary
	router.TranscribeService = &service.TranscribeService{Whisper: whisperClient, Dictionary: dictionary}
	router.WhisperClient = whisperClient

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	ghClient := github.NewClient("e2e-client", "e2e-secret", srv.URL+"/auth/callback")
	ghClient.OAuth.Endpoint = oauth2.Endpoint{
		AuthURL:  gh.srv.URL + "/authorize",
		TokenURL: gh.srv.URL + "/token",
	}
	ghClient.APIBaseURL = gh.srv.URL

	router.LoginHandler = &httpapi.LoginHandler{
		GitHub: ghClient,
		Login:  &service.LoginService{Store: st, Codec: codec},
	}
	router.ApplyRoutes()

	bootstrap := &service.BootstrapService{
		Store:                      st,
		InitialAdminGithubID:       initialAdminGithubID,
		InitialAdminGithubUsername: "root",
	}
	require.NoError(t, bootstrap.EnsureInitialAdmin(ctx))

	return &stack{
		store:   st,
		codec:   codec,
		gh:      gh,
		baseURL: srv.URL,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// login runs the OAuth round trip for the given GitHub account and returns
// the access token, or the failed callback response.
func (s *stack) login(t *testing.T, accountID, username string) (string, *http.Response) {
	t.Helper()

	s.gh.accountID = accountID
	s.gh.login = username

	resp, err := s.client.Get(s.baseURL + "/auth/login")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	resp, err = s.client.Get(s.baseURL + "/auth/callback?code=e2e-code&state=" + state)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if resp.StatusCode != http.StatusOK {
		return "", resp
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken, resp
}

func (s *stack) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFullUserJourney(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// The startup bootstrap whitelisted the configured initial admin.
	entries, err := s.store.Whitelist().List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, initialAdminGithubID, entries[0].GithubID)

	// The initial admin signs in through GitHub. The account starts as a
	// member; flipping the flag is an operator step outside the API.
	adminToken, _ := s.login(t, initialAdminGithubID, "root")

	rootUser, err := s.store.Users().GetUserByGithubID(ctx, initialAdminGithubID)
	require.NoError(t, err)
	require.False(t, rootUser.IsAdmin)
	require.NoError(t, s.store.Users().SetAdmin(ctx, rootUser.ID, true))

	// An unlisted visitor cannot sign in at all.
	_, resp := s.login(t, "5550001", "mallory")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin whitelists them through the management API.
	resp = s.do(t, http.MethodPost, "/admin/api/whitelist", adminToken,
		map[string]string{"github_id": "5550001", "github_username": "morgan"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	userToken, _ := s.login(t, "5550001", "morgan")

	resp = s.do(t, http.MethodGet, "/api/protected", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// But the member cannot reach the management surface.
	resp = s.do(t, http.MethodGet, "/admin/api/users", userToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Dictionaries: one global entry from the admin, one personal.
	resp = s.do(t, http.MethodPost, "/admin/api/dictionary", adminToken,
		map[string]string{"pattern": "prod", "replacement": "production"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/dictionary", userToken,
		map[string]string{"pattern": "voice gate", "replacement": "VoiceGate"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Transcription applies both sets to the backend's transcript.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "standup.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/api/transcribe", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+userToken)

	tresp, err := s.client.Do(req)
	require.NoError(t, err)
	defer tresp.Body.Close()
	require.Equal(t, http.StatusOK, tresp.StatusCode)
	require.Equal(t, "deploy the VoiceGate to production",
		decode[map[string]string](t, tresp)["text"])
}

func TestRevocationJourney(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	adminToken, _ := s.login(t, initialAdminGithubID, "root")
	rootUser, err := s.store.Users().GetUserByGithubID(ctx, initialAdminGithubID)
	require.NoError(t, err)
	require.NoError(t, s.store.Users().SetAdmin(ctx, rootUser.ID, true))

	resp := s.do(t, http.MethodPost, "/admin/api/whitelist", adminToken,
		map[string]string{"github_id": "5550002", "github_username": "jamie"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	userToken, _ := s.login(t, "5550002", "jamie")

	resp = s.do(t, http.MethodGet, "/api/protected", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Revoke through the management API. The already-issued token dies on
	// the very next request.
	resp = s.do(t, http.MethodDelete, "/admin/api/whitelist/5550002", adminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/protected", userToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Relisting restores access for the same token.
	resp = s.do(t, http.MethodPost, "/admin/api/whitelist", adminToken,
		map[string]string{"github_id": "5550002", "github_username": "jamie"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/protected", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminSafetyRails(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	adminToken, _ := s.login(t, initialAdminGithubID, "root")
	rootUser, err := s.store.Users().GetUserByGithubID(ctx, initialAdminGithubID)
	require.NoError(t, err)
	require.NoError(t, s.store.Users().SetAdmin(ctx, rootUser.ID, true))

	// Bring in a second admin.
	resp := s.do(t, http.MethodPost, "/admin/api/whitelist", adminToken,
		map[string]string{"github_id": "5550003", "github_username": "sam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	secondToken, _ := s.login(t, "5550003", "sam")
	secondUser, err := s.store.Users().GetUserByGithubID(ctx, "5550003")
	require.NoError(t, err)

	resp = s.do(t, http.MethodPatch, pathID("/admin/api/users/", secondUser.ID), adminToken,
		map[string]bool{"is_admin": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// No admin can demote themselves.
	resp = s.do(t, http.MethodPatch, pathID("/admin/api/users/", secondUser.ID), secondToken,
		map[string]bool{"is_admin": false})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nobody can demote the initial admin.
	resp = s.do(t, http.MethodPatch, pathID("/admin/api/users/", rootUser.ID), secondToken,
		map[string]bool{"is_admin": false})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Admin accounts cannot be deleted while still admins.
	resp = s.do(t, http.MethodDelete, pathID("/admin/api/users/", secondUser.ID), adminToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Demote by the other admin, then deletion goes through.
	resp = s.do(t, http.MethodPatch, pathID("/admin/api/users/", secondUser.ID), adminToken,
		map[string]bool{"is_admin": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, pathID("/admin/api/users/", secondUser.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The deleted account's token is dead even though it still verifies.
	resp = s.do(t, http.MethodGet, "/api/protected", secondToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func pathID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
