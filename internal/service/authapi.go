package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dashgate/internal/model"
)

// genericAuthError is the last-resort message when the upstream response
// carries nothing usable.
const genericAuthError = "something went wrong"

// Credentials is what the upstream auth service returns on a successful
// login or registration.
type Credentials struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// AuthAPI is the upstream auth service contract. Company membership lookup
// lives in a separate service and is not part of this interface.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, name, email, password, roleID string) (*Credentials, error)
	Logout(ctx context.Context, token string) error
}

// HTTPAuthAPI talks to the upstream auth service over JSON/HTTP.
type HTTPAuthAPI struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAuthAPI(baseURL string) *HTTPAuthAPI {
	return &HTTPAuthAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *HTTPAuthAPI) Login(ctx context.Context, email, password string) (*Credentials, error) {
	return a.postCredentials(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (a *HTTPAuthAPI) Register(ctx context.Context, name, email, password, roleID string) (*Credentials, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}
	if roleID != "" {
		body["roleId"] = roleID
	}
	return a.postCredentials(ctx, "/auth/register", body)
}

func (a *HTTPAuthAPI) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("logout returned %d", resp.StatusCode)
	}
	return nil
}

func (a *HTTPAuthAPI) postCredentials(ctx context.Context, path string, body map[string]string) (*Credentials, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s", genericAuthError)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s", genericAuthError)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		// Transport failure: surface the raw error text.
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s", genericAuthError)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s", extractMessage(raw))
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil || creds.Token == "" || creds.User.ID == "" {
		return nil, fmt.Errorf("%s", genericAuthError)
	}
	return &creds, nil
}

// extractMessage pulls a human-readable message out of an error response
// body, preferring a structured message field over anything else.
func extractMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error.Message != "" {
			return body.Error.Message
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" && len(msg) <= 200 && !strings.HasPrefix(msg, "{") {
		return msg
	}
	return genericAuthError
}
