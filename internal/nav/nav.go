// Package nav filters a declarative navigation tree down to what the current
// session may see.
package nav

import (
	"strings"

	"dashgate/internal/model"
)

// companyToken is the placeholder substituted with the active company id.
const companyToken = "[companyId]"

// Access declares the conditions under which an item is visible. Absent
// fields impose no condition.
type Access struct {
	RequireOrg bool   `yaml:"requireOrg,omitempty" json:"requireOrg,omitempty"`
	Role       string `yaml:"role,omitempty" json:"role,omitempty"`
	Permission string `yaml:"permission,omitempty" json:"permission,omitempty"`
	Plan       string `yaml:"plan,omitempty" json:"plan,omitempty"`
	Feature    string `yaml:"feature,omitempty" json:"feature,omitempty"`
}

// Item is one node of the static navigation tree.
type Item struct {
	Title  string  `yaml:"title" json:"title"`
	URL    string  `yaml:"url,omitempty" json:"url,omitempty"`
	Icon   string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Access *Access `yaml:"access,omitempty" json:"access,omitempty"`
	Items  []Item  `yaml:"items,omitempty" json:"items,omitempty"`
}

// Context carries the session facts the filter decides on.
type Context struct {
	IsAdmin     bool
	SessionRole string
	CurrentRole string
	HasCompany  bool
	CompanyID   string
}

// ContextFromSession derives a filter context from a session snapshot.
func ContextFromSession(sess *model.Session) Context {
	return Context{
		IsAdmin:     sess.IsAdmin(),
		SessionRole: sess.SessionRole(),
		CurrentRole: sess.CurrentRole(),
		HasCompany:  sess != nil && sess.CurrentCompany != nil,
		CompanyID:   sess.CompanyID(),
	}
}

// Filter returns the subtree visible to the context, with company tokens in
// URLs substituted. The input is never mutated. Items without access
// declarations pass through unchanged, so filtering an unrestricted tree is
// the identity and Filter is idempotent.
func Filter(items []Item, ctx Context) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !visible(item.Access, ctx) {
			continue
		}
		kept := item
		kept.URL = substitute(item.URL, ctx.CompanyID)
		// A parent left childless by filtering still renders.
		kept.Items = Filter(item.Items, ctx)
		out = append(out, kept)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// visible evaluates the access conditions in declaration order; the first
// failing condition hides the item.
func visible(a *Access, ctx Context) bool {
	if a == nil {
		return true
	}
	if a.RequireOrg && !ctx.HasCompany {
		return false
	}
	if a.Role != "" && !ctx.IsAdmin {
		if !ctx.HasCompany {
			return false
		}
		if !strings.EqualFold(ctx.SessionRole, a.Role) && !strings.EqualFold(ctx.CurrentRole, a.Role) {
			return false
		}
	}
	// Permission-scoped items have no grant path for non-admins.
	if a.Permission != "" && !ctx.IsAdmin {
		return false
	}
	// Plan and feature gates are not enforced.
	return true
}

func substitute(url, companyID string) string {
	if companyID == "" {
		return url
	}
	return strings.ReplaceAll(url, companyToken, companyID)
}
