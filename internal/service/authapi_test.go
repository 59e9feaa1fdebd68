package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoginReturnsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"u-1","name":"Ada","email":"ada@acme.test","role":{"id":"r-1","name":"user"}}}`))
	}))
	defer srv.Close()

	creds, err := NewHTTPAuthAPI(srv.URL).Login(context.Background(), "ada@acme.test", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if creds.Token != "tok-1" || creds.User.ID != "u-1" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestLoginSurfacesStructuredMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPAuthAPI(srv.URL).Login(context.Background(), "ada@acme.test", "wrong")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("error = %q, want Invalid credentials", err.Error())
	}
}

func TestLoginSurfacesNestedErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"E_FORBIDDEN","message":"Account disabled"}}`))
	}))
	defer srv.Close()

	_, err := NewHTTPAuthAPI(srv.URL).Login(context.Background(), "ada@acme.test", "pw")
	if err == nil || err.Error() != "Account disabled" {
		t.Fatalf("error = %v, want Account disabled", err)
	}
}

func TestLoginFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":500}`))
	}))
	defer srv.Close()

	_, err := NewHTTPAuthAPI(srv.URL).Login(context.Background(), "ada@acme.test", "pw")
	if err == nil || err.Error() != genericAuthError {
		t.Fatalf("error = %v, want %q", err, genericAuthError)
	}
}

func TestRegisterSendsOptionalRole(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = w.Write([]byte(`{"token":"tok-2","user":{"id":"u-2","name":"Bob","email":"bob@acme.test","role":{"id":"r-9","name":"user"}}}`))
	}))
	defer srv.Close()

	if _, err := NewHTTPAuthAPI(srv.URL).Register(context.Background(), "Bob", "bob@acme.test", "pw", "r-9"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(gotBody, `"roleId":"r-9"`) || !strings.Contains(gotBody, `"email":"bob@acme.test"`) {
		t.Fatalf("request body missing fields: %s", gotBody)
	}
}

func TestLogoutReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewHTTPAuthAPI(srv.URL).Logout(context.Background(), "tok"); err == nil {
		t.Fatalf("expected logout error on 502")
	}
}
