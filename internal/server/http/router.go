package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/internal/server/whisper"
	"github.com/quietlane/voicegate/pkg/httpx"
	"github.com/quietlane/voicegate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	appName      string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	gate  *Gate

	LoginHandler      *LoginHandler
	UserService       *service.UserService
	WhitelistService  *service.WhitelistService
	DictionaryService *service.DictionaryService
	TranscribeService *service.TranscribeService
	WhisperClient     *whisper.Client
}

func NewRouter(
	appName, buildVersion string,
	auth *service.AuthService,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		appName:      appName,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gate:         &Gate{Auth: auth},
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerAuth()
	r.registerAPI()
	r.registerAdmin()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Login endpoints are public and strictly rate limited by IP.
	r.Mux.Handle("GET /auth/login",
		httpx.Chain(http.HandlerFunc(r.LoginHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /auth/callback",
		httpx.Chain(http.HandlerFunc(r.LoginHandler.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAPI() {
	r.Mux.Handle("GET /api/protected",
		httpx.Chain(http.HandlerFunc(r.handleProtected),
			r.gate.Require(),
		),
	)
	r.Mux.Handle("GET /api/admin",
		httpx.Chain(http.HandlerFunc(r.handleAdminProbe),
			r.gate.Require(),
			r.gate.RequireAdmin(),
		),
	)

	dict := &DictionaryHandler{Dictionary: r.DictionaryService}
	r.Mux.Handle("GET /api/dictionary",
		httpx.Chain(http.HandlerFunc(dict.HandleListUser), r.gate.Require()))
	r.Mux.Handle("POST /api/dictionary",
		httpx.Chain(http.HandlerFunc(dict.HandleCreateUser), r.gate.Require()))
	r.Mux.Handle("DELETE /api/dictionary/{id}",
		httpx.Chain(http.HandlerFunc(dict.HandleDeleteUser), r.gate.Require()))

	transcribe := &TranscribeHandler{Transcribe: r.TranscribeService}
	r.Mux.Handle("POST /api/transcribe",
		httpx.Chain(transcribe,
			r.gate.Require(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	users := &AdminUsersHandler{Users: r.UserService}
	r.Mux.Handle("GET /admin/api/users",
		httpx.Chain(http.HandlerFunc(users.HandleList),
			r.gate.Require(), r.gate.RequireAdmin()))
	r.Mux.Handle("PATCH /admin/api/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleUpdate),
			r.gate.Require(), r.gate.RequireAdmin()))
	r.Mux.Handle("DELETE /admin/api/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleDelete),
			r.gate.Require(), r.gate.RequireAdmin()))

	whitelist := &AdminWhitelistHandler{Whitelist: r.WhitelistService}
	r.Mux.Handle("GET /admin/api/whitelist",
		httpx.Chain(http.HandlerFunc(whitelist.HandleList),
			r.gate.Require(), r.gate.RequireAdmin()))
	r.Mux.Handle("POST /admin/api/whitelist",
		httpx.Chain(http.HandlerFunc(whitelist.HandleAdd),
			r.gate.Require(), r.gate.RequireAdmin()))
	r.Mux.Handle("DELETE /admin/api/whitelist/{githubID}",
		httpx.Chain(http.HandlerFunc(whitelist.HandleRemove),
			r.gate.Require(), r.gate.RequireAdmin()))

	dict := &DictionaryHandler{Dictionary: r.DictionaryService}
	r.Mux.Handle("GET /admin/api/dictionary",
		httpx.Chain(http.HandlerFunc(dict.HandleListGlobal),
			r.gate.Require(), r.gate.RequireAdmin()))
	r.Mux.Handle("POST /admin/api/dictionary",
		httpx.Chain(http.HandlerFunc(dict.HandleCreateGlobal),
			r.gate.Require(), r.gate.RequireAdmin()))
	r.Mux.Handle("DELETE /admin/api/dictionary/{id}",
		httpx.Chain(http.HandlerFunc(dict.HandleDeleteGlobal),
			r.gate.Require(), r.gate.RequireAdmin()))
}
