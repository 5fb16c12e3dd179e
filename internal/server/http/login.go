package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/quietlane/voicegate/internal/server/github"
	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/pkg/cryptox"
	"github.com/quietlane/voicegate/pkg/httpx"
	"github.com/quietlane/voicegate/pkg/slogx"
)

// stateTTL bounds how long a login redirect may sit before the callback.
const stateTTL = 10 * time.Minute

// LoginHandler drives the GitHub OAuth round trip and hands the verified
// identity to the login service.
type LoginHandler struct {
	GitHub *github.Client
	Login  *service.LoginService

	states stateStore
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleLogin redirects the browser to GitHub's authorize page.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.states.put(state)

	http.Redirect(w, r, h.GitHub.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth flow: state check, code exchange,
// whitelist-gated find-or-create, token issue.
func (h *LoginHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	if oauthErr := r.URL.Query().Get("error"); oauthErr != "" {
		httpx.WriteError(w, http.StatusBadRequest, "OAuth error: "+oauthErr)
		return
	}

	if !h.states.take(r.URL.Query().Get("state")) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	identity, err := h.GitHub.ExchangeCode(ctx, code)
	if err != nil {
		l.Warn("github exchange failed", "error", err)
		httpx.WriteError(w, http.StatusBadRequest, "failed to authenticate with GitHub")
		return
	}

	_, token, err := h.Login.Login(ctx, identity.ID, identity.Username, identity.AvatarURL)
	if err != nil {
		if errors.Is(err, service.ErrNotWhitelisted) {
			httpx.WriteError(w, http.StatusForbidden, "user not in whitelist")
			return
		}
		l.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// stateStore tracks outstanding OAuth state values. It is process-local,
// which is fine for the single-instance deployments this server targets.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func (s *stateStore) put(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.states == nil {
		s.states = make(map[string]time.Time)
	}
	now := time.Now()
	for k, issued := range s.states {
		if now.Sub(issued) > stateTTL {
			delete(s.states, k)
		}
	}
	s.states[state] = now
}

// take consumes a state value, reporting whether it was outstanding and
// fresh. States are single-use.
func (s *stateStore) take(state string) bool {
	if state == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return time.Since(issued) <= stateTTL
}
