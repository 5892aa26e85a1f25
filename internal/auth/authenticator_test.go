package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voice-agent-platform/internal/config"

	"github.com/gin-gonic/gin"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:        true,
		AdminToken:     "dev-admin-token",
		EditorToken:    "dev-editor-token",
		ViewerToken:    "dev-viewer-token",
		AdminEmail:     "admin@voicenexus.ai",
		AdminPassword:  "admin123",
		EditorEmail:    "operator@voicenexus.ai",
		EditorPassword: "operator123",
		ViewerEmail:    "viewer@voicenexus.ai",
		ViewerPassword: "viewer123",
		AccessTokenTTL: time.Hour,
	}
}

func TestLogin_StaticTokens(t *testing.T) {
	a, err := NewAuthenticator(testAuthConfig())
	if err != nil {
		t.Fatalf("authenticator: %v", err)
	}

	res, err := a.Login("  Operator@VoiceNexus.ai ", "operator123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken != "dev-editor-token" || res.Role != RoleEditor {
		t.Fatalf("unexpected login result: %+v", res)
	}

	if _, err := a.Login("operator@voicenexus.ai", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := a.Login("nobody@voicenexus.ai", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLogin_IssuesJWTWhenConfigured(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "jwt-secret"
	now := time.Unix(1700000000, 0).UTC()
	a, err := NewAuthenticator(cfg)
	if err != nil {
		t.Fatalf("authenticator: %v", err)
	}
	a.WithClock(func() time.Time { return now })

	res, err := a.Login("viewer@voicenexus.ai", "viewer123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken == "dev-viewer-token" || res.Role != RoleViewer {
		t.Fatalf("expected a signed token, got %+v", res)
	}

	id, err := a.Resolve(res.AccessToken)
	if err != nil {
		t.Fatalf("resolve jwt: %v", err)
	}
	if id.Role != RoleViewer || id.Subject != "viewer@voicenexus.ai" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	// Static tokens keep working alongside JWTs.
	if id, err := a.Resolve("dev-admin-token"); err != nil || id.Role != RoleAdmin {
		t.Fatalf("expected static admin token to resolve, got %+v %v", id, err)
	}
}

func TestResolve_RejectsUnknownToken(t *testing.T) {
	a, _ := NewAuthenticator(testAuthConfig())
	for _, tok := range []string{"", "  ", "dev-root-token"} {
		if _, err := a.Resolve(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func serveWithAuth(a *Authenticator, header string) (int, string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var role string
	r.GET("/x", RequireAuth(a), func(c *gin.Context) {
		role, _ = Role(c.Request.Context())
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code, role
}

func TestRequireAuth(t *testing.T) {
	a, _ := NewAuthenticator(testAuthConfig())

	if code, _ := serveWithAuth(a, ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", code)
	}
	if code, _ := serveWithAuth(a, "Basic abc"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer, got %d", code)
	}
	if code, _ := serveWithAuth(a, "Bearer nope"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", code)
	}
	if code, role := serveWithAuth(a, "Bearer dev-viewer-token"); code != http.StatusOK || role != RoleViewer {
		t.Fatalf("expected viewer identity, got %d %q", code, role)
	}
}

func TestRequireAuth_DisabledMeansAdmin(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Enabled = false
	a, _ := NewAuthenticator(cfg)
	if code, role := serveWithAuth(a, ""); code != http.StatusOK || role != RoleAdmin {
		t.Fatalf("expected admin with auth disabled, got %d %q", code, role)
	}
}
