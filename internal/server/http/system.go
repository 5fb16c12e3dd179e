package http

import (
	"net/http"
	"time"

	"github.com/quietlane/voicegate/pkg/httpx"
)

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /{$}", r.handleRoot)
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
}

func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"app":    r.appName,
	})
}

// handleLivez reports process liveness only; no dependencies are touched.
func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": r.buildVersion,
		"uptime":  time.Since(r.startTime).String(),
	})
}

// handleReadyz reports whether the service can actually take traffic: the
// database must answer and the transcription backend should.
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"whisper":  "ok",
	}
	status := http.StatusOK

	if err := r.store.Ping(req.Context()); err != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	// Whisper being down degrades transcription but auth and management
	// still work, so it is reported without failing readiness.
	if r.WhisperClient != nil && !r.WhisperClient.Healthy(req.Context()) {
		checks["whisper"] = "unavailable"
	}

	httpx.WriteJSON(w, status, checks)
}

// handleProtected echoes the resolved identity. Useful as a minimal
// authenticated probe for clients and smoke tests.
func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	user, _ := UserFromContext(req.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":   user.ID,
		"github_id": user.GithubID,
		"is_admin":  user.IsAdmin,
	})
}

func (r *Router) handleAdminProbe(w http.ResponseWriter, req *http.Request) {
	user, _ := UserFromContext(req.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Admin access granted",
		"user_id":   user.ID,
		"github_id": user.GithubID,
	})
}
