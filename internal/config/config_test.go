package config

import (
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:     AppConfig{Name: "orchestrator-api", Env: "local", Port: 8000},
		Storage: StorageConfig{Driver: "memory"},
		Redis:   RedisConfig{AudioCacheDriver: "memory"},
		Auth: AuthConfig{
			Enabled:     true,
			AdminToken:  "a",
			EditorToken: "e",
			ViewerToken: "v",
		},
		Providers: ProvidersConfig{
			GenerationTimeout: 12 * time.Second,
			SynthesisTimeout:  18 * time.Second,
			AudioCacheTTL:     20 * time.Minute,
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalMemoryDriver(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTokenTTL <= 0 {
		t.Fatalf("expected access ttl default")
	}
}

func TestValidate_ProductionRejectsMemoryDriver(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth.AdminToken = "prod-admin"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for memory storage in production")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth.AdminToken = "prod-admin"
	c.Storage = StorageConfig{Driver: "postgres", Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voice"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validLocal()
	c.Storage = StorageConfig{Driver: "postgres", Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voice"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Storage.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.Storage.SSLMode)
	}
}

func TestValidate_DistinctRoleTokens(t *testing.T) {
	c := validLocal()
	c.Auth.EditorToken = c.Auth.AdminToken
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for duplicate role tokens")
	}
}

func TestValidate_RedisCacheNeedsHost(t *testing.T) {
	c := validLocal()
	c.Redis.AudioCacheDriver = "redis"
	c.Redis.Port = 6379
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for redis cache without host")
	}
	c.Redis.Host = "localhost"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_SignatureValidationNeedsAuthToken(t *testing.T) {
	c := validLocal()
	c.Twilio.ValidateSignatures = true
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error without TWILIO_AUTH_TOKEN")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("APP_ENV", "local")
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", c.App.Port)
	}
	if c.Providers.GenerationTimeout != 12*time.Second || c.Providers.SynthesisTimeout != 18*time.Second {
		t.Fatalf("unexpected provider timeouts: %+v", c.Providers)
	}
	if c.Providers.AudioCacheTTL != 20*time.Minute {
		t.Fatalf("expected 20m audio ttl, got %s", c.Providers.AudioCacheTTL)
	}
}

func TestLoad_ReportsBadValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("APP_PORT", "http")
	t.Setenv("AUTH_ENABLED", "maybe")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse errors")
	}
}
