package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"video_xapi_tracker/internal/domain/lrs"
	"video_xapi_tracker/internal/infra/secrets"

	"github.com/joho/godotenv"
)

// LRSConfig holds connection settings for the Learning Record Store.
type LRSConfig struct {
	Endpoint   string
	Username   string
	Password   string
	AuthMethod string
}

// IsConfigured reports whether enough settings are present to attempt
// synchronous delivery. An unconfigured LRS still accepts queued writes.
func (c LRSConfig) IsConfigured() bool {
	return c.Endpoint != "" && c.Username != "" && c.Password != ""
}

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL string
	ListenAddr  string

	// BaseURL is the deployment's public URL; statement IRIs and account
	// identities are derived from it.
	BaseURL      string
	PlatformName string

	LogLevel    string
	Environment string

	LRS          LRSConfig
	XAPIEnabled  bool
	QueueEnabled bool

	QueueBatchSize     int
	QueueMaxRetries    int
	QueueRetentionDays int
	LRSTimeoutSeconds  int

	CronSpecQueue   string // queue drain schedule
	CronSpecCleanup string // retention cleanup schedule
}

// Load reads configuration from environment variables and .env file (if
// present). Credentials may be supplied encrypted (LRS_USERNAME_ENC /
// LRS_PASSWORD_ENC) in which case APP_SECRET must be set; encrypted values
// always go through the codec, plaintext fallbacks never do.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.BaseURL = strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL is not set")
	}

	cfg.ListenAddr = envOrDefault("LISTEN_ADDR", ":8080")
	cfg.PlatformName = envOrDefault("PLATFORM_NAME", "VideoXAPI")
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOrDefault("ENVIRONMENT", "development"))

	if err := loadLRSCredentials(cfg); err != nil {
		return nil, err
	}
	cfg.LRS.Endpoint = os.Getenv("LRS_ENDPOINT")
	cfg.LRS.AuthMethod = envOrDefault("LRS_AUTH_METHOD", lrs.AuthBasic)

	cfg.XAPIEnabled = envBool("XAPI_ENABLED", true)
	cfg.QueueEnabled = envBool("QUEUE_ENABLED", true)

	var err error
	if cfg.QueueBatchSize, err = envInt("QUEUE_BATCH_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.QueueMaxRetries, err = envInt("QUEUE_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.QueueRetentionDays, err = envInt("QUEUE_RETENTION_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.LRSTimeoutSeconds, err = envInt("LRS_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}

	cfg.CronSpecQueue = envOrDefault("CRON_SPEC_QUEUE", "*/5 * * * *")
	cfg.CronSpecCleanup = envOrDefault("CRON_SPEC_CLEANUP", "0 3 * * *")

	return cfg, nil
}

func loadLRSCredentials(cfg *AppConfig) error {
	encUser := os.Getenv("LRS_USERNAME_ENC")
	encPass := os.Getenv("LRS_PASSWORD_ENC")

	if encUser == "" && encPass == "" {
		cfg.LRS.Username = os.Getenv("LRS_USERNAME")
		cfg.LRS.Password = os.Getenv("LRS_PASSWORD")
		return nil
	}

	codec, err := secrets.NewCodec(os.Getenv("APP_SECRET"))
	if err != nil {
		return fmt.Errorf("APP_SECRET is required to decrypt LRS credentials: %w", err)
	}
	if cfg.LRS.Username, err = codec.Decrypt(encUser); err != nil {
		return fmt.Errorf("invalid LRS_USERNAME_ENC: %w", err)
	}
	if cfg.LRS.Password, err = codec.Decrypt(encPass); err != nil {
		return fmt.Errorf("invalid LRS_PASSWORD_ENC: %w", err)
	}
	return nil
}

// ValidateLRS checks the LRS settings and returns a field -> message map;
// an empty map means the configuration is valid. These rules are
// preconditions for constructing a delivery client: the endpoint must be a
// syntactically valid HTTPS URL with a host, credentials must be present and
// the auth method must be a known value.
func ValidateLRS(cfg LRSConfig) map[string]string {
	errors := make(map[string]string)

	if cfg.Endpoint == "" {
		errors["endpoint"] = "LRS endpoint is required"
	} else if !validEndpointURL(cfg.Endpoint) {
		errors["endpoint"] = "invalid LRS endpoint URL: must be HTTPS with a host"
	}

	if cfg.Username == "" {
		errors["username"] = "LRS username is required"
	}
	if cfg.Password == "" {
		errors["password"] = "LRS password is required"
	}

	if cfg.AuthMethod != lrs.AuthBasic && cfg.AuthMethod != lrs.AuthOAuth {
		errors["auth_method"] = "invalid authentication method"
	}

	return errors
}

func validEndpointURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
