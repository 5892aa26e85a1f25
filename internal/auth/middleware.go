package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RequireAuth resolves the bearer token and injects identity into request context.
// It does not perform RBAC checks; those belong to internal/rbac.
// With auth disabled every request is treated as admin.
func RequireAuth(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id Identity
		if !a.Enabled() {
			id = Identity{Subject: "anonymous", Role: RoleAdmin}
		} else {
			raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
			if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
				return
			}
			resolved, err := a.Resolve(strings.TrimPrefix(raw, bearerPrefix))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
				return
			}
			id = resolved
		}

		ctx := WithIdentity(c.Request.Context(), id.Subject, id.Role)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("subject", id.Subject)
		c.Set("role", id.Role)

		c.Next()
	}
}
