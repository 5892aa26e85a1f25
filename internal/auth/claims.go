package auth

import "github.com/golang-jwt/jwt/v5"

// Role names carried by tokens. internal/rbac builds route policies on these.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// Claims are the only supported JWT claims shape for this service.
// Subject carries the login email; Role is one of the roles above.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}
