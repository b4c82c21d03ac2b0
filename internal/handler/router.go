package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chatly/chatweb/internal/flash"
	"github.com/chatly/chatweb/internal/middleware"
	"github.com/chatly/chatweb/internal/service"
	"github.com/chatly/chatweb/internal/session"
)

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Service        *service.AuthService
	Sessions       *session.Manager
	CookieSecret   string
	SecureCookies  bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the HTTP routes of the web front end.
func NewRouter(cfg RouterConfig) http.Handler {
	notices := flash.New(cfg.CookieSecret, cfg.SecureCookies)
	authHandler := NewAuthHandler(cfg.Service, cfg.Sessions, notices)
	identityHandler := NewIdentityHandler(cfg.Service, cfg.Sessions, notices, cfg.SecureCookies)
	chatsHandler := NewChatsHandler(notices)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Trace)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	r.Get("/login", authHandler.HandleLoginPage)
	r.Get("/register", authHandler.HandleRegisterPage)
	r.Post("/login/password-visibility", authHandler.HandleLoginPasswordVisibility)
	r.Post("/register/password-visibility", authHandler.HandleRegisterPasswordVisibility)
	r.Post("/logout", authHandler.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/auth/google", identityHandler.HandleGoogleStart)
		r.Get("/auth/google/callback", identityHandler.HandleGoogleCallback)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(cfg.Service, cfg.Sessions.ForRequest, "/login"))
		r.Get("/chats", chatsHandler.HandleChats)
	})

	return r
}
