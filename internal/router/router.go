package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dashgate/internal/config"
	"dashgate/internal/handler"
	"dashgate/internal/middleware"
	"dashgate/internal/nav"
	"dashgate/internal/service"
	"dashgate/internal/store"
)

// New builds the HTTP router. pages serves everything that is not part of
// the session API (the dashboard views behind the guards); a nil pages gets
// a plain 200 placeholder so the guard chain is exercisable on its own.
func New(cfg *config.Config, st *store.Store, api service.AuthAPI, tree []nav.Item, pages http.Handler) http.Handler {
	expiry := time.Duration(cfg.CookieExpiryDays) * 24 * time.Hour
	cookies := store.NewCookieMirror(cfg.TokenCookieName, expiry)

	authH := handler.NewAuthHandler(api, st, cookies, tree)
	healthH := handler.NewHealthHandler("0.1.0")

	sessionLoader := middleware.SessionLoader(st, cfg.SessionCookie, expiry)

	if pages == nil {
		pages = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Public
	r.Get("/v1/health", healthH.Health)
	r.Get("/v1/version", healthH.Version)

	// Session API
	r.Group(func(r chi.Router) {
		r.Use(sessionLoader)

		r.Post("/v1/auth/login", authH.Login)
		r.Post("/v1/auth/register", authH.Register)
		r.Post("/v1/auth/logout", authH.Logout)
		r.Get("/v1/me", authH.Me)
		r.Get("/v1/me/navigation", authH.Navigation)
		r.Put("/v1/me/company", authH.SetCompany)
		r.Put("/v1/me/companies", authH.SetCompanies)
	})

	// Dashboard pages behind the dual-layer guard: the edge guard decides
	// on the token cookie alone, the session guard re-validates with the
	// loaded session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.EdgeGuard(cfg.TokenCookieName))
		r.Use(sessionLoader)
		r.Use(middleware.SessionGuard)
		r.Handle("/*", pages)
	})

	return r
}
