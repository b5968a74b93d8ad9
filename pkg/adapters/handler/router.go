package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/trimlink/pkg/auth"
	"github.com/wadjakorntonsri/trimlink/pkg/config"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

// Dependencies are the services the router dispatches to.
type Dependencies struct {
	Config    *config.Config
	Links     ports.LinkService
	Clicks    ports.ClickService
	Accounts  ports.AccountService
	Flow      ports.CreationFlow
	Recorder  ports.VisitRecorder
	Bucket    ports.Bucket
	Tokens    *auth.Tokens
	Limiter   *RateLimiter
	ClientIPs *ClientIPs // nil trusts no proxy headers
	Logger    *zap.Logger
}

// NewRouter creates and configures the main application router
func NewRouter(d Dependencies) http.Handler {
	h := NewHTTPHandler(d.Links, d.Clicks, d.Accounts, d.Flow, d.Recorder, d.ClientIPs, d.Logger)
	objects := NewObjectHandler(d.Bucket, d.Logger)
	gate := NewGate(d.Tokens)
	authHandler := NewAuthHandler(d.Config, d.Tokens, d.Accounts, gate, d.Logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /auth", authHandler.Page)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /auth/login", authHandler.LocalLogin)
	mux.HandleFunc("GET /storage/v1/object/public/{bucket}/{name}", objects.Serve)
	mux.HandleFunc("GET /api/v1/resolve/{code}", h.Resolve)

	var redirect http.Handler = http.HandlerFunc(h.Redirect)
	if d.Limiter != nil {
		redirect = d.Limiter.Limit(redirect)
	}
	mux.Handle("GET /{code}", redirect)

	// Protected Routes (API & Dashboard)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/me", h.Me)
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("GET /api/v1/links", h.List)
	protectedMux.HandleFunc("GET /api/v1/links/draft", h.Draft)
	protectedMux.HandleFunc("GET /api/v1/links/{id}", h.Get)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)
	protectedMux.HandleFunc("GET /api/v1/dashboard", h.Dashboard)
	protectedMux.HandleFunc("GET /dashboard", h.DashboardPage)
	protectedMux.HandleFunc("GET /link/{id}", h.LinkPage)

	protected := gate.Protect(protectedMux)
	mux.Handle("/api/v1/", protected)
	mux.Handle("GET /dashboard", protected)
	mux.Handle("GET /link/{id}", protected)

	return RequestLogger(d.Logger, mux)
}
