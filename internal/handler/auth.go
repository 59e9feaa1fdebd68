package handler

import (
	"net/http"

	"dashgate/internal/auth"
	"dashgate/internal/middleware"
	"dashgate/internal/model"
	"dashgate/internal/nav"
	"dashgate/internal/service"
	"dashgate/internal/store"
)

// AuthHandler exposes the session operations over JSON. Redirect intents are
// returned in the body as a redirect field; the front end performs them.
type AuthHandler struct {
	api     service.AuthAPI
	store   *store.Store
	cookies *store.CookieMirror
	tree    []nav.Item
}

func NewAuthHandler(api service.AuthAPI, st *store.Store, cookies *store.CookieMirror, tree []nav.Item) *AuthHandler {
	return &AuthHandler{api: api, store: st, cookies: cookies, tree: tree}
}

// sessionContext builds the activated auth context for this request's
// session id.
func (h *AuthHandler) sessionContext(r *http.Request) *auth.Context {
	c := auth.NewContext(h.api, h.store, h.cookies, middleware.SessionIDFromCtx(r.Context()))
	_ = c.Activate(r.Context())
	return c
}

// POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}

	c := h.sessionContext(r)
	redirect, err := c.Login(r.Context(), w, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     c.Session().User,
		"redirect": redirect.Path,
	})
}

// POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		RoleID   string `json:"roleId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}

	c := h.sessionContext(r)
	redirect, err := c.Register(r.Context(), w, req.Name, req.Email, req.Password, req.RoleID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "E_REGISTER_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":     c.Session().User,
		"redirect": redirect.Path,
	})
}

// POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	c := h.sessionContext(r)
	redirect := c.Logout(r.Context(), w)
	writeJSON(w, http.StatusOK, map[string]any{"redirect": redirect.Path})
}

// GET /v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":                  sess.User,
		"currentCompany":        sess.CurrentCompany,
		"companies":             sess.Companies,
		"needsCompanySelection": sess.NeedsCompanySelection(),
		"isAdmin":               sess.IsAdmin(),
	})
}

// GET /v1/me/navigation
func (h *AuthHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "not authenticated")
		return
	}
	items := nav.Filter(h.tree, nav.ContextFromSession(sess))
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// PUT /v1/me/company
func (h *AuthHandler) SetCompany(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "not authenticated")
		return
	}

	var req struct {
		Membership *model.CompanyMembership `json:"membership"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	if req.Membership != nil && req.Membership.Company.ID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "membership requires a company id")
		return
	}

	c := h.sessionContext(r)
	redirect, err := c.SetCurrentCompany(r.Context(), req.Membership)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"redirect": redirect.Path})
}

// PUT /v1/me/companies
func (h *AuthHandler) SetCompanies(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "not authenticated")
		return
	}

	var req struct {
		Companies []model.CompanyMembership `json:"companies"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}

	c := h.sessionContext(r)
	if err := c.SetCompanies(r.Context(), req.Companies); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
