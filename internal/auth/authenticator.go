package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"voice-agent-platform/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid bearer token")
)

// Identity is who a bearer token belongs to.
type Identity struct {
	Subject string
	Role    string
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

type account struct {
	email    string
	password string
	token    string
	role     string
}

// Authenticator resolves bearer tokens to roles and handles email/password login.
// Static per-role tokens are always accepted; JWTs only when a Manager is configured.
type Authenticator struct {
	enabled  bool
	accounts []account
	jwt      *Manager
	clock    func() time.Time
}

func NewAuthenticator(cfg config.AuthConfig) (*Authenticator, error) {
	accounts := []account{
		{email: cfg.AdminEmail, password: cfg.AdminPassword, token: cfg.AdminToken, role: RoleAdmin},
		{email: cfg.EditorEmail, password: cfg.EditorPassword, token: cfg.EditorToken, role: RoleEditor},
		{email: cfg.ViewerEmail, password: cfg.ViewerPassword, token: cfg.ViewerToken, role: RoleViewer},
	}
	a := &Authenticator{enabled: cfg.Enabled, accounts: accounts, clock: time.Now}
	if cfg.JWTSecret != "" {
		m, err := NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
		if err != nil {
			return nil, err
		}
		a.jwt = m
	}
	return a, nil
}

// WithClock replaces the time source; used by tests.
func (a *Authenticator) WithClock(clock func() time.Time) *Authenticator {
	a.clock = clock
	return a
}

func (a *Authenticator) Enabled() bool { return a.enabled }

// Login checks email (case-insensitive) and password. The returned token is a
// signed JWT when JWT is configured, otherwise the role's static token.
func (a *Authenticator) Login(email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, acc := range a.accounts {
		if acc.email == "" || strings.ToLower(acc.email) != email {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(acc.password), []byte(password)) != 1 {
			return LoginResult{}, ErrInvalidCredentials
		}
		if a.jwt == nil {
			return LoginResult{AccessToken: acc.token, Role: acc.role}, nil
		}
		tok, err := a.jwt.Issue(a.clock(), email, acc.role)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{AccessToken: tok, Role: acc.role}, nil
	}
	return LoginResult{}, ErrInvalidCredentials
}

// Resolve maps a bearer token to an identity.
func (a *Authenticator) Resolve(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	for _, acc := range a.accounts {
		if acc.token != "" && subtle.ConstantTimeCompare([]byte(acc.token), []byte(token)) == 1 {
			return Identity{Subject: acc.email, Role: acc.role}, nil
		}
	}
	if a.jwt != nil {
		claims, err := a.jwt.Verify(token, a.clock())
		if err == nil && IsKnownRole(claims.Role) {
			return Identity{Subject: claims.Subject, Role: claims.Role}, nil
		}
	}
	return Identity{}, ErrInvalidToken
}
