package model

import "strings"

// Role names with built-in meaning for authorization checks. Role IDs are
// opaque backend identifiers; decisions are made on names only.
const (
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CompanyMembership pairs a company the user belongs to with the role the
// user holds inside it.
type CompanyMembership struct {
	Company Company `json:"company"`
	Role    Role    `json:"role"`
}

// Session is the in-memory authentication + active-company state. The zero
// value is a valid unauthenticated session. All predicate methods tolerate a
// nil receiver and report false rather than panic.
type Session struct {
	User           *User               `json:"user,omitempty"`
	Token          string              `json:"token,omitempty"`
	CurrentCompany *CompanyMembership  `json:"currentCompany,omitempty"`
	Companies      []CompanyMembership `json:"companies,omitempty"`
}

// IsAuthenticated reports whether both a user and a token are present.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.User != nil && s.Token != ""
}

// NeedsCompanySelection reports whether the session is authenticated but no
// company has been chosen yet.
func (s *Session) NeedsCompanySelection() bool {
	return s.IsAuthenticated() && s.CurrentCompany == nil
}

// SessionRole returns the user-level role name, or "" when absent.
func (s *Session) SessionRole() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Role.Name
}

// CurrentRole returns the role name within the current company, or "" when no
// company is selected.
func (s *Session) CurrentRole() string {
	if s == nil || s.CurrentCompany == nil {
		return ""
	}
	return s.CurrentCompany.Role.Name
}

// HasRole reports whether the effective role matches: the session-level role
// or the current-company role, whichever equals the given name.
func (s *Session) HasRole(role string) bool {
	if s == nil || role == "" {
		return false
	}
	return strings.EqualFold(s.SessionRole(), role) || strings.EqualFold(s.CurrentRole(), role)
}

// IsAdmin reports whether the effective role is admin or owner.
func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin) || s.HasRole(RoleOwner)
}

// IsCompanyOwner reports whether the effective role is owner.
func (s *Session) IsCompanyOwner() bool {
	return s.HasRole(RoleOwner)
}

// HasPermission reports whether the session may perform the named permission.
// There is no permission grant store in this layer: admins and owners hold
// every permission, everyone else holds none.
func (s *Session) HasPermission(name string) bool {
	if s == nil || name == "" {
		return false
	}
	return s.IsAdmin()
}

// CompanyID returns the current company's identifier, or "" when none is
// selected.
func (s *Session) CompanyID() string {
	if s == nil || s.CurrentCompany == nil {
		return ""
	}
	return s.CurrentCompany.Company.ID
}
