package rbac

import "voice-agent-platform/internal/auth"

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin  = auth.RoleAdmin
	RoleEditor = auth.RoleEditor
	RoleViewer = auth.RoleViewer
)

// Route-level role sets.
var (
	ReadRoles  = []string{RoleAdmin, RoleEditor, RoleViewer}
	WriteRoles = []string{RoleAdmin, RoleEditor}
)
