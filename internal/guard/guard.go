// Package guard decides where a request may go based on the current path and
// whatever session evidence is available. The edge layer sees only the token
// cookie; the session layer sees the full loaded session. Both share one path
// classifier so they converge on the same terminal state for any input.
package guard

import (
	"net/url"
	"strings"

	"dashgate/internal/model"
)

const (
	SignInPath        = "/auth/sign-in"
	SelectCompanyPath = "/select-company"
	CallbackParam     = "callbackUrl"

	dashboardPrefix = "/dashboard/"
)

// Redirect is a navigation intent. A nil *Redirect means pass through.
type Redirect struct {
	Path string
}

// PathKind classifies a request path for guarding purposes.
type PathKind int

const (
	// PathStatic covers build artifacts, API routes, and anything with a
	// file extension. Never evaluated.
	PathStatic PathKind = iota
	// PathPublic needs no session at all.
	PathPublic
	// PathAuth is the sign-in/registration surface.
	PathAuth
	// PathProtected requires an authenticated session.
	PathProtected
)

// Classify maps a request path to its guarding category.
func Classify(path string) PathKind {
	if path == "" {
		return PathPublic
	}
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/assets/") {
		return PathStatic
	}
	if last := path[strings.LastIndexByte(path, '/')+1:]; strings.ContainsRune(last, '.') {
		return PathStatic
	}
	if path == "/" || path == "/terms" || strings.HasPrefix(path, "/terms/") ||
		path == "/privacy" || strings.HasPrefix(path, "/privacy/") {
		return PathPublic
	}
	if path == "/auth" || strings.HasPrefix(path, "/auth/") {
		return PathAuth
	}
	return PathProtected
}

// CompanyIDFromPath extracts the company identifier embedded in a dashboard
// path (/dashboard/{companyId}/...). The reserved select-company segment is
// never a company id. Returns "" when the path embeds none.
func CompanyIDFromPath(path string) string {
	if !strings.HasPrefix(path, dashboardPrefix) {
		return ""
	}
	rest := path[len(dashboardPrefix):]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" || rest == "select-company" {
		return ""
	}
	return rest
}

// DashboardPath is the canonical default view for a company.
func DashboardPath(companyID string) string {
	return dashboardPrefix + companyID
}

// SignInRedirect points at the sign-in surface, preserving the original path
// as a callback parameter.
func SignInRedirect(path string) *Redirect {
	return &Redirect{Path: SignInPath + "?" + CallbackParam + "=" + url.QueryEscape(path)}
}

// EdgeDecision is the pre-render guard. It sees only token presence (from the
// cookie mirror) and approximates the authoritative session decision.
func EdgeDecision(path string, hasToken bool) *Redirect {
	switch Classify(path) {
	case PathStatic, PathPublic:
		return nil
	case PathAuth:
		if hasToken {
			return &Redirect{Path: SelectCompanyPath}
		}
		return nil
	default:
		if !hasToken {
			return SignInRedirect(path)
		}
		return nil
	}
}

// SessionDecision is the authoritative guard, re-validating with the full
// session once it is loaded.
func SessionDecision(path string, sess *model.Session) *Redirect {
	switch Classify(path) {
	case PathStatic, PathPublic:
		return nil
	case PathAuth:
		if sess.IsAuthenticated() {
			return &Redirect{Path: SelectCompanyPath}
		}
		return nil
	}

	if !sess.IsAuthenticated() {
		return SignInRedirect(path)
	}
	if sess.NeedsCompanySelection() {
		if path == SelectCompanyPath || strings.HasPrefix(path, SelectCompanyPath+"/") {
			return nil
		}
		return &Redirect{Path: SelectCompanyPath}
	}

	// A deep link carrying a different company id is reconciled to the
	// session's own company rather than honored.
	if pathCompany := CompanyIDFromPath(path); pathCompany != "" && pathCompany != sess.CompanyID() {
		canonical := dashboardPrefix + sess.CompanyID() + strings.TrimPrefix(path, dashboardPrefix+pathCompany)
		return &Redirect{Path: canonical}
	}
	return nil
}
