package store

import (
	"net/http"
	"time"
)

const defaultCookieExpiry = 7 * 24 * time.Hour

// CookieMirror keeps a token cookie in sync with the session token so the
// edge guard can make routing decisions without loading the full session.
type CookieMirror struct {
	Name   string
	Expiry time.Duration
}

func NewCookieMirror(name string, expiry time.Duration) *CookieMirror {
	if name == "" {
		name = "token"
	}
	if expiry <= 0 {
		expiry = defaultCookieExpiry
	}
	return &CookieMirror{Name: name, Expiry: expiry}
}

// MirrorToken writes the token cookie. A nil writer means there is no
// browser-facing response in flight; the call is a no-op.
func (c *CookieMirror) MirrorToken(w http.ResponseWriter, token string) {
	if w == nil || token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(c.Expiry),
		MaxAge:   int(c.Expiry / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken expires the token cookie. No-op on a nil writer.
func (c *CookieMirror) ClearToken(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
