package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"dashgate/internal/guard"
	"dashgate/internal/model"
	"dashgate/internal/store"
)

type contextKey string

const (
	ctxSession   contextKey = "session"
	ctxSessionID contextKey = "session_id"
)

// EdgeGuard is the pre-render route guard. It sees only the token cookie and
// redirects before any page code runs. The session guard re-validates with
// full state afterwards.
func EdgeGuard(tokenCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasToken := false
			if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
				hasToken = true
			}
			if redirect := guard.EdgeDecision(r.URL.Path, hasToken); redirect != nil {
				http.Redirect(w, r, redirect.Path, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionLoader resolves the session id cookie (minting one when absent),
// loads the persisted session, and injects both into the request context.
// Storage failures degrade to an empty session rather than a 500.
func SessionLoader(st *store.Store, sessionCookie string, expiry time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
				sid = c.Value
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    sid,
					Path:     "/",
					Expires:  time.Now().Add(expiry),
					MaxAge:   int(expiry / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sess, err := st.Load(r.Context(), sid)
			if err != nil {
				log.Printf("session %s: load: %v", sid, err)
				sess = &model.Session{}
			}

			ctx := context.WithValue(r.Context(), ctxSession, sess)
			ctx = context.WithValue(ctx, ctxSessionID, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionGuard is the authoritative in-context route guard. Must run after
// SessionLoader.
func SessionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if redirect := guard.SessionDecision(r.URL.Path, sess); redirect != nil {
			http.Redirect(w, r, redirect.Path, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the loaded session from context. Returns nil when
// no loader ran; model predicates treat nil as an absent session.
func SessionFromCtx(ctx context.Context) *model.Session {
	s, _ := ctx.Value(ctxSession).(*model.Session)
	return s
}

// SessionIDFromCtx returns the session id resolved by SessionLoader.
func SessionIDFromCtx(ctx context.Context) string {
	sid, _ := ctx.Value(ctxSessionID).(string)
	return sid
}
