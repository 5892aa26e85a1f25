package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or the .env file loaded by cmd/api).
// No business logic should depend on raw environment variables.
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Twilio    TwilioConfig
	Providers ProvidersConfig
	Defaults  SettingsDefaults
}

type AppConfig struct {
	Name string
	Env  string
	Port int

	// PublicBaseURL is used to build webhook and audio URLs handed to Twilio.
	// When empty, URLs are derived from the inbound request host.
	PublicBaseURL string

	SeedDemoData bool
}

// StorageConfig selects the persistence driver.
// Driver "memory" keeps everything in process and is meant for local runs and tests.
type StorageConfig struct {
	Driver string

	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int

	// AudioCacheDriver is "memory" or "redis".
	AudioCacheDriver string
}

type AuthConfig struct {
	Enabled bool

	AdminToken  string
	EditorToken string
	ViewerToken string

	AdminEmail     string
	AdminPassword  string
	EditorEmail    string
	EditorPassword string
	ViewerEmail    string
	ViewerPassword string

	// JWT is optional. When JWTSecret is set, login issues signed tokens
	// in addition to accepting the static role tokens.
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

type TwilioConfig struct {
	AccountSID         string
	AuthToken          string
	ValidateSignatures bool
}

type ProvidersConfig struct {
	OpenAIBaseURL      string
	OpenAIDefaultModel string
	GenerationTimeout  time.Duration

	RimeBaseURL      string
	RimeModelID      string
	FallbackVoice    string
	SynthesisTimeout time.Duration
	AudioCacheTTL    time.Duration
}

// SettingsDefaults seed the platform settings row on first access.
type SettingsDefaults struct {
	OpenAIAPIKey     string
	DeepgramAPIKey   string
	TwilioAccountSID string
	RimeAPIKey       string

	EnableBargeInInterruption        bool
	PlayLatencyFillerPhraseOnTimeout bool
	AllowAutoRetryOnFailedCalls      bool
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Name = envOr("APP_NAME", "orchestrator-api")
	c.App.Env = envOr("APP_ENV", "local")
	c.App.Port, parseErrs = intOr(parseErrs, "APP_PORT", 8000)
	c.App.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")
	c.App.SeedDemoData, parseErrs = boolOr(parseErrs, "APP_SEED_DEMO_DATA", true)

	c.Storage.Driver = envOr("STORAGE_DRIVER", "postgres")
	c.Storage.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.Storage.Port, parseErrs = intOr(parseErrs, "DB_PORT", 5432)
	c.Storage.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.Storage.Password = os.Getenv("DB_PASSWORD")
	c.Storage.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.Storage.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port, parseErrs = intOr(parseErrs, "REDIS_PORT", 6379)
	c.Redis.AudioCacheDriver = envOr("AUDIO_CACHE_DRIVER", "memory")

	c.Auth.Enabled, parseErrs = boolOr(parseErrs, "AUTH_ENABLED", true)
	c.Auth.AdminToken = envOr("ADMIN_API_TOKEN", "dev-admin-token")
	c.Auth.EditorToken = envOr("EDITOR_API_TOKEN", "dev-editor-token")
	c.Auth.ViewerToken = envOr("VIEWER_API_TOKEN", "dev-viewer-token")
	c.Auth.AdminEmail = envOr("ADMIN_EMAIL", "admin@voicenexus.ai")
	c.Auth.AdminPassword = envOr("ADMIN_PASSWORD", "admin123")
	c.Auth.EditorEmail = envOr("EDITOR_EMAIL", "operator@voicenexus.ai")
	c.Auth.EditorPassword = envOr("EDITOR_PASSWORD", "operator123")
	c.Auth.ViewerEmail = envOr("VIEWER_EMAIL", "viewer@voicenexus.ai")
	c.Auth.ViewerPassword = envOr("VIEWER_PASSWORD", "viewer123")
	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.AccessTokenTTL, parseErrs = durationOr(parseErrs, "JWT_ACCESS_TTL", 12*time.Hour)

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.ValidateSignatures, parseErrs = boolOr(parseErrs, "TWILIO_VALIDATE_SIGNATURES", false)

	c.Providers.OpenAIBaseURL = strings.TrimRight(envOr("OPENAI_BASE_URL", "https://api.openai.com"), "/")
	c.Providers.OpenAIDefaultModel = envOr("OPENAI_DEFAULT_MODEL", "gpt-4.1-mini")
	c.Providers.GenerationTimeout, parseErrs = durationOr(parseErrs, "GENERATION_TIMEOUT", 12*time.Second)
	c.Providers.RimeBaseURL = strings.TrimRight(envOr("RIME_BASE_URL", "https://users.rime.ai"), "/")
	c.Providers.RimeModelID = envOr("RIME_MODEL_ID", "arcana")
	c.Providers.FallbackVoice = envOr("RIME_FALLBACK_VOICE", "serena")
	c.Providers.SynthesisTimeout, parseErrs = durationOr(parseErrs, "SYNTHESIS_TIMEOUT", 18*time.Second)
	c.Providers.AudioCacheTTL, parseErrs = durationOr(parseErrs, "AUDIO_CACHE_TTL", 20*time.Minute)

	c.Defaults.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	c.Defaults.DeepgramAPIKey = strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY"))
	c.Defaults.TwilioAccountSID = c.Twilio.AccountSID
	c.Defaults.RimeAPIKey = strings.TrimSpace(os.Getenv("RIME_API_KEY"))
	c.Defaults.EnableBargeInInterruption, parseErrs = boolOr(parseErrs, "DEFAULT_ENABLE_BARGE_IN", true)
	c.Defaults.PlayLatencyFillerPhraseOnTimeout, parseErrs = boolOr(parseErrs, "DEFAULT_PLAY_LATENCY_FILLER", true)
	c.Defaults.AllowAutoRetryOnFailedCalls, parseErrs = boolOr(parseErrs, "DEFAULT_ALLOW_AUTO_RETRY", false)

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the config and fills env-dependent defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	switch c.Storage.Driver {
	case "memory":
		if c.IsProduction() {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in production"))
		}
	case "postgres":
		errs = append(errs, c.validatePostgres()...)
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be one of postgres, memory, got %q", c.Storage.Driver))
	}

	switch c.Redis.AudioCacheDriver {
	case "memory":
	case "redis":
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when AUDIO_CACHE_DRIVER=redis"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("AUDIO_CACHE_DRIVER must be one of memory, redis, got %q", c.Redis.AudioCacheDriver))
	}

	if c.Auth.Enabled {
		if c.Auth.AdminToken == "" || c.Auth.EditorToken == "" || c.Auth.ViewerToken == "" {
			errs = append(errs, errors.New("ADMIN_API_TOKEN, EDITOR_API_TOKEN and VIEWER_API_TOKEN are required when auth is enabled"))
		} else if c.Auth.AdminToken == c.Auth.EditorToken || c.Auth.AdminToken == c.Auth.ViewerToken || c.Auth.EditorToken == c.Auth.ViewerToken {
			errs = append(errs, errors.New("role API tokens must be distinct"))
		}
		if c.IsProduction() && strings.HasPrefix(c.Auth.AdminToken, "dev-") {
			errs = append(errs, errors.New("ADMIN_API_TOKEN must be overridden in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 12 * time.Hour
	}

	if c.Twilio.ValidateSignatures && c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required when TWILIO_VALIDATE_SIGNATURES=true"))
	}

	if c.Providers.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.Providers.SynthesisTimeout <= 0 {
		errs = append(errs, errors.New("SYNTHESIS_TIMEOUT must be positive"))
	}
	if c.Providers.AudioCacheTTL <= 0 {
		errs = append(errs, errors.New("AUDIO_CACHE_TTL must be positive"))
	}

	return joinErrors(errs)
}

func (c *Config) validatePostgres() []error {
	var errs []error
	if c.Storage.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Storage.Port <= 0 || c.Storage.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.Storage.Port))
	}
	if c.Storage.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.Storage.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.Storage.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.Storage.SSLMode = "disable"
		}
	}
	if c.Storage.SSLMode != "" && !isValidSSLMode(c.Storage.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.Storage.SSLMode))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Name,
		c.Storage.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intOr(errs []error, key string, def int) (int, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, append(errs, fmt.Errorf("%s must be an integer, got %q", key, v))
	}
	return n, errs
}

func boolOr(errs []error, key string, def bool) (bool, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, errs
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, append(errs, fmt.Errorf("%s must be a boolean, got %q", key, v))
	}
	return b, errs
}

func durationOr(errs []error, key string, def time.Duration) (time.Duration, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, append(errs, fmt.Errorf("%s must be a duration, got %q", key, v))
	}
	return d, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
