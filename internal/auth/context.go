// Package auth owns the in-memory session state and the operations that
// mutate it. State setters never navigate by themselves; they return a
// redirect intent and leave performing it to the transport layer.
package auth

import (
	"context"
	"log"
	"net/http"
	"sync"

	"dashgate/internal/guard"
	"dashgate/internal/model"
	"dashgate/internal/service"
	"dashgate/internal/store"
)

// State is the lifecycle phase of a session context.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateUnauthenticated
	StateAuthenticatedNoCompany
	StateAuthenticatedWithCompany
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticatedNoCompany:
		return "authenticated-no-company"
	case StateAuthenticatedWithCompany:
		return "authenticated-with-company"
	default:
		return "unknown"
	}
}

// Context holds one session's state and coordinates the upstream auth
// service, the persisted store, and the token cookie mirror. Mutations are
// serialized on a mutex; overlapping operations resolve last-write-wins, and
// each operation persists inside its critical section so storage never lags
// a later read.
type Context struct {
	mu      sync.Mutex
	state   State
	sess    *model.Session
	api     service.AuthAPI
	store   *store.Store
	cookies *store.CookieMirror
	sid     string
}

func NewContext(api service.AuthAPI, st *store.Store, cookies *store.CookieMirror, sid string) *Context {
	return &Context{
		state:   StateUninitialized,
		sess:    &model.Session{},
		api:     api,
		store:   st,
		cookies: cookies,
		sid:     sid,
	}
}

// Activate restores session state from storage and classifies it. Safe to
// call more than once; each call re-reads storage.
func (c *Context) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateLoading
	sess, err := c.store.Load(ctx, c.sid)
	if err != nil {
		// Storage unavailability degrades to an unauthenticated session
		// rather than blocking activation.
		log.Printf("session %s: load failed: %v", c.sid, err)
		sess = &model.Session{}
	}
	c.sess = sess
	c.state = classify(sess)
	return nil
}

// State returns the current lifecycle phase.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a snapshot of the current session. The caller may read it
// freely; mutations go through the Context operations.
func (c *Context) Session() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.sess)
}

// Login verifies credentials upstream and, on success, installs user+token,
// persists them, mirrors the token cookie, and intends navigation to the
// company-selection surface. On failure the session is untouched and the
// returned error carries the upstream's message.
func (c *Context) Login(ctx context.Context, w http.ResponseWriter, email, password string) (*guard.Redirect, error) {
	creds, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.install(ctx, w, creds), nil
}

// Register mirrors Login's contract, with an optional role identifier passed
// through to the upstream service.
func (c *Context) Register(ctx context.Context, w http.ResponseWriter, name, email, password, roleID string) (*guard.Redirect, error) {
	creds, err := c.api.Register(ctx, name, email, password, roleID)
	if err != nil {
		return nil, err
	}
	return c.install(ctx, w, creds), nil
}

func (c *Context) install(ctx context.Context, w http.ResponseWriter, creds *service.Credentials) *guard.Redirect {
	c.mu.Lock()
	defer c.mu.Unlock()

	user := creds.User
	c.sess = &model.Session{User: &user, Token: creds.Token}
	c.state = StateAuthenticatedNoCompany

	if err := c.store.Persist(ctx, c.sid, c.sess); err != nil {
		log.Printf("session %s: persist after login: %v", c.sid, err)
	}
	c.cookies.MirrorToken(w, creds.Token)

	return &guard.Redirect{Path: guard.SelectCompanyPath}
}

// Logout tears the session down locally no matter what the upstream says.
// The remote call is best-effort; its error is logged and swallowed.
func (c *Context) Logout(ctx context.Context, w http.ResponseWriter) *guard.Redirect {
	c.mu.Lock()
	token := c.sess.Token
	c.mu.Unlock()

	if token != "" {
		if err := c.api.Logout(ctx, token); err != nil {
			log.Printf("session %s: remote logout: %v", c.sid, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = &model.Session{}
	c.state = StateUnauthenticated
	if err := c.store.Clear(ctx, c.sid); err != nil {
		log.Printf("session %s: clear: %v", c.sid, err)
	}
	c.cookies.ClearToken(w)

	return &guard.Redirect{Path: guard.SignInPath}
}

// SetCurrentCompany selects (or clears) the active company. A concrete
// company intends navigation to its default dashboard; clearing intends the
// company-selection surface.
func (c *Context) SetCurrentCompany(ctx context.Context, m *model.CompanyMembership) (*guard.Redirect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.CurrentCompany = m
	if err := c.store.Persist(ctx, c.sid, c.sess); err != nil {
		return nil, err
	}
	c.state = classify(c.sess)

	if m != nil {
		return &guard.Redirect{Path: guard.DashboardPath(m.Company.ID)}, nil
	}
	return &guard.Redirect{Path: guard.SelectCompanyPath}, nil
}

// SetCompanies replaces the full membership list, used after creating a new
// workspace or refreshing memberships.
func (c *Context) SetCompanies(ctx context.Context, list []model.CompanyMembership) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.Companies = list
	return c.store.Persist(ctx, c.sid, c.sess)
}

func classify(sess *model.Session) State {
	switch {
	case !sess.IsAuthenticated():
		return StateUnauthenticated
	case sess.CurrentCompany == nil:
		return StateAuthenticatedNoCompany
	default:
		return StateAuthenticatedWithCompany
	}
}

func snapshot(sess *model.Session) *model.Session {
	if sess == nil {
		return &model.Session{}
	}
	out := &model.Session{Token: sess.Token}
	if sess.User != nil {
		u := *sess.User
		out.User = &u
	}
	if sess.CurrentCompany != nil {
		m := *sess.CurrentCompany
		out.CurrentCompany = &m
	}
	if len(sess.Companies) > 0 {
		out.Companies = append([]model.CompanyMembership(nil), sess.Companies...)
	}
	return out
}
