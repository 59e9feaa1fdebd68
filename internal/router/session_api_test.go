package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dashgate/internal/config"
	"dashgate/internal/model"
	"dashgate/internal/nav"
	"dashgate/internal/service"
	"dashgate/internal/store"
)

type stubAuthAPI struct {
	creds    *service.Credentials
	loginErr error
}

func (s *stubAuthAPI) Login(_ context.Context, _, _ string) (*service.Credentials, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.creds, nil
}

func (s *stubAuthAPI) Register(_ context.Context, _, _, _, _ string) (*service.Credentials, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.creds, nil
}

func (s *stubAuthAPI) Logout(_ context.Context, _ string) error { return nil }

func testRouter(api service.AuthAPI, st *store.Store, tree []nav.Item) http.Handler {
	cfg := &config.Config{
		TokenCookieName:  "token",
		SessionCookie:    "sid",
		CookieExpiryDays: 7,
	}
	return New(cfg, st, api, tree, nil)
}

func withSession(req *http.Request, sid string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	return req
}

func seedSession(t *testing.T, st *store.Store, sid string, sess *model.Session) {
	t.Helper()
	if err := st.Persist(context.Background(), sid, sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestLoginEndpointSetsCookiesAndRedirect(t *testing.T) {
	api := &stubAuthAPI{creds: &service.Credentials{
		User:  model.User{ID: "u-1", Name: "Ada", Email: "ada@acme.test", Role: model.Role{Name: "user"}},
		Token: "tok-1",
	}}
	st := store.New(store.NewMemoryBackend())
	h := testRouter(api, st, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"ada@acme.test","password":"pw"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		User     model.User `json:"user"`
		Redirect string     `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Redirect != "/select-company" {
		t.Fatalf("redirect = %q, want /select-company", body.Redirect)
	}
	if body.User.ID != "u-1" {
		t.Fatalf("user = %+v", body.User)
	}

	var tokenMirrored bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.Value == "tok-1" {
			tokenMirrored = true
		}
	}
	if !tokenMirrored {
		t.Fatalf("token cookie not mirrored: %+v", rec.Result().Cookies())
	}
}

func TestLoginEndpointSurfacesUpstreamMessage(t *testing.T) {
	api := &stubAuthAPI{loginErr: errors.New("Invalid credentials")}
	st := store.New(store.NewMemoryBackend())
	h := testRouter(api, st, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"ada@acme.test","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Fatalf("body should carry the upstream message: %s", rec.Body.String())
	}
}

func TestMeRequiresAuthentication(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	h := testRouter(&stubAuthAPI{}, st, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMeReturnsSessionState(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	m := model.CompanyMembership{Company: model.Company{ID: "c-1", Name: "Acme"}, Role: model.Role{Name: "owner"}}
	seedSession(t, st, "sid-1", &model.Session{
		User:           &model.User{ID: "u-1", Role: model.Role{Name: "user"}},
		Token:          "tok",
		CurrentCompany: &m,
		Companies:      []model.CompanyMembership{m},
	})
	h := testRouter(&stubAuthAPI{}, st, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/v1/me", nil), "sid-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		IsAdmin               bool `json:"isAdmin"`
		NeedsCompanySelection bool `json:"needsCompanySelection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.IsAdmin || body.NeedsCompanySelection {
		t.Fatalf("unexpected state: %+v", body)
	}
}

func TestNavigationEndpointFiltersTree(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	m := model.CompanyMembership{Company: model.Company{ID: "c-9"}, Role: model.Role{Name: "user"}}
	seedSession(t, st, "sid-1", &model.Session{
		User:           &model.User{ID: "u-1", Role: model.Role{Name: "user"}},
		Token:          "tok",
		CurrentCompany: &m,
	})
	tree := []nav.Item{
		{Title: "Overview", URL: "/dashboard/[companyId]/overview", Access: &nav.Access{RequireOrg: true}},
		{Title: "Admin", URL: "/dashboard/[companyId]/admin", Access: &nav.Access{Role: "admin"}},
	}
	h := testRouter(&stubAuthAPI{}, st, tree)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/v1/me/navigation", nil), "sid-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Items []nav.Item `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].URL != "/dashboard/c-9/overview" {
		t.Fatalf("unexpected items: %+v", body.Items)
	}
}

func TestSetCompanyEndpointReturnsDashboardRedirect(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	seedSession(t, st, "sid-1", &model.Session{
		User:  &model.User{ID: "u-1", Role: model.Role{Name: "user"}},
		Token: "tok",
	})
	h := testRouter(&stubAuthAPI{}, st, nil)

	req := withSession(httptest.NewRequest(http.MethodPut, "/v1/me/company",
		strings.NewReader(`{"membership":{"company":{"id":"c-3","name":"Acme"},"role":{"id":"r-1","name":"admin"}}}`)), "sid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/dashboard/c-3"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	restored, err := st.Load(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.CompanyID() != "c-3" {
		t.Fatalf("company not persisted: %+v", restored.CurrentCompany)
	}
}

func TestLogoutEndpointClearsSession(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	seedSession(t, st, "sid-1", &model.Session{
		User:  &model.User{ID: "u-1"},
		Token: "tok",
	})
	h := testRouter(&stubAuthAPI{}, st, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), "sid-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/auth/sign-in"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	restored, err := st.Load(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.IsAuthenticated() {
		t.Fatalf("session should be cleared: %+v", restored)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("token cookie should be cleared: %+v", rec.Result().Cookies())
	}
}
