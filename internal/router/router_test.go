package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"dashgate/internal/config"
	"dashgate/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		TokenCookieName:  "token",
		SessionCookie:    "sid",
		CookieExpiryDays: 7,
	}
}

func TestSessionRoutesRegistered(t *testing.T) {
	h := New(testConfig(), store.New(store.NewMemoryBackend()), nil, nil, nil)
	routes, ok := h.(chi.Routes)
	if !ok {
		t.Fatalf("router does not implement chi.Routes")
	}

	registered := map[string]bool{}
	if err := chi.Walk(routes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[fmt.Sprintf("%s %s", method, route)] = true
		return nil
	}); err != nil {
		t.Fatalf("walk routes: %v", err)
	}

	for _, route := range []string{
		"GET /v1/health",
		"POST /v1/auth/login",
		"POST /v1/auth/register",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/me/navigation",
		"PUT /v1/me/company",
		"PUT /v1/me/companies",
	} {
		if !registered[route] {
			t.Fatalf("missing route %s", route)
		}
	}
}

func TestGuardedPageRedirectsUnauthenticated(t *testing.T) {
	h := New(testConfig(), store.New(store.NewMemoryBackend()), nil, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/abc-123/overview", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	want := "/auth/sign-in?callbackUrl=%2Fdashboard%2Fabc-123%2Foverview"
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("location = %q, want %q", got, want)
	}
}

func TestPublicPagePassesThrough(t *testing.T) {
	h := New(testConfig(), store.New(store.NewMemoryBackend()), nil, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/terms", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
