package domain

import "strings"

// Role is a user's administrative role.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleEditor    Role = "editor"
	RoleFinance   Role = "finance"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Roles returns every role in display order.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleEditor, RoleFinance, RoleAdmin}
}

// Permission is a named capability.
type Permission string

func (p Permission) String() string { return string(p) }

const (
	PermPurchase             Permission = "canPurchase"
	PermViewAnalytics        Permission = "canViewAnalytics"
	PermEditArtists          Permission = "canEditArtists"
	PermEditEvents           Permission = "canEditEvents"
	PermPublishNews          Permission = "canPublishNews"
	PermManageHomepage       Permission = "canManageHomepage"
	PermManageMedia          Permission = "canManageMedia"
	PermManageUsers          Permission = "canManageUsers"
	PermExportRevenue        Permission = "canExportRevenue"
	PermSuspendAccounts      Permission = "canSuspendAccounts"
	PermViewFinance          Permission = "canViewFinance"
	PermManageCMS            Permission = "canManageCMS"
	PermModerateContent      Permission = "canModerateContent"
	PermViewAuditLog         Permission = "canViewAuditLog"
	PermViewAdminDashboard   Permission = "canViewAdminDashboard"
	PermViewFinanceDashboard Permission = "canViewFinanceDashboard"
)

// AllPermissions lists every permission in canonical order.
func AllPermissions() []Permission {
	return []Permission{
		PermPurchase, PermViewAnalytics, PermEditArtists, PermEditEvents,
		PermPublishNews, PermManageHomepage, PermManageMedia, PermManageUsers,
		PermExportRevenue, PermSuspendAccounts, PermViewFinance, PermManageCMS,
		PermModerateContent, PermViewAuditLog, PermViewAdminDashboard, PermViewFinanceDashboard,
	}
}

// PermissionSet maps every permission to a grant flag.
type PermissionSet map[Permission]bool

// Granted returns the granted permissions in canonical order.
func (s PermissionSet) Granted() []Permission {
	var out []Permission
	for _, p := range AllPermissions() {
		if s[p] {
			out = append(out, p)
		}
	}
	return out
}

func grant(perms ...Permission) PermissionSet {
	set := make(PermissionSet, 16)
	for _, p := range AllPermissions() {
		set[p] = false
	}
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// rolePermissions is read-only after init; PermissionsFor hands out copies.
var rolePermissions = map[Role]PermissionSet{
	RoleUser: grant(PermPurchase),
	RoleModerator: grant(
		PermPurchase,
		PermModerateContent,
		PermViewAuditLog,
	),
	RoleEditor: grant(
		PermPurchase,
		PermEditArtists,
		PermEditEvents,
		PermPublishNews,
		PermManageHomepage,
		PermManageMedia,
		PermManageCMS,
	),
	RoleFinance: grant(
		PermViewAnalytics,
		PermExportRevenue,
		PermViewFinance,
		PermViewFinanceDashboard,
		PermViewAuditLog,
	),
	RoleAdmin: grant(AllPermissions()...),
}

// PermissionsFor returns a copy of the role's permission set. Unknown roles
// get the user set.
func PermissionsFor(role Role) PermissionSet {
	src, ok := rolePermissions[role]
	if !ok {
		src = rolePermissions[RoleUser]
	}
	out := make(PermissionSet, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	src, ok := rolePermissions[role]
	if !ok {
		src = rolePermissions[RoleUser]
	}
	return src[perm]
}

// HasAny reports whether role grants at least one of perms. False for an
// empty list.
func HasAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether role grants every perm. True for an empty list.
func HasAll(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// RoleLabel is display metadata for a role.
type RoleLabel struct {
	Role  Role
	Label string
}

var roleMeta = map[Role]string{
	RoleUser:      "User",
	RoleModerator: "Moderator",
	RoleEditor:    "Editor",
	RoleFinance:   "Finance",
	RoleAdmin:     "Admin",
}

// RoleMeta returns the display label for a role.
func RoleMeta(role Role) RoleLabel {
	label, ok := roleMeta[role]
	if !ok {
		return RoleLabel{Role: RoleUser, Label: roleMeta[RoleUser]}
	}
	return RoleLabel{Role: role, Label: label}
}

// routePermissions lists the permissions that open a route prefix. Any one of
// them is sufficient.
var routePermissions = map[string][]Permission{
	"/admin":             {PermViewAdminDashboard},
	"/admin/content":     {PermManageCMS, PermPublishNews, PermManageHomepage},
	"/admin/artists":     {PermEditArtists},
	"/admin/events":      {PermEditEvents},
	"/admin/store":       {PermEditEvents},
	"/admin/orders":      {PermViewAdminDashboard},
	"/admin/users":       {PermManageUsers},
	"/admin/roles":       {PermManageUsers},
	"/admin/finance":     {PermViewFinanceDashboard},
	"/admin/analytics":   {PermViewAdminDashboard},
	"/admin/settings":    {PermViewAdminDashboard},
	"/admin/logs":        {PermViewAuditLog},
	"/dashboard/admin":   {PermViewAdminDashboard},
	"/dashboard/finance": {PermViewFinanceDashboard},
}

// RouteRequirements returns the permissions guarding route, matched by the
// longest listed prefix. Nil means the route is unrestricted.
func RouteRequirements(route string) []Permission {
	route = strings.TrimRight(route, "/")
	best := ""
	for prefix := range routePermissions {
		if (route == prefix || strings.HasPrefix(route, prefix+"/")) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil
	}
	return append([]Permission(nil), routePermissions[best]...)
}

// CanAccessRoute reports whether role may open route.
func CanAccessRoute(role Role, route string) bool {
	reqs := RouteRequirements(route)
	if reqs == nil {
		return true
	}
	return HasAny(role, reqs...)
}
