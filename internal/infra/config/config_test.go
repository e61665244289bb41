package config

import (
	"testing"

	"video_xapi_tracker/internal/infra/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLRS() LRSConfig {
	return LRSConfig{
		Endpoint:   "https://lrs.example.com/xapi",
		Username:   "user",
		Password:   "pass",
		AuthMethod: "basic",
	}
}

func TestValidateLRSAcceptsValidConfig(t *testing.T) {
	assert.Empty(t, ValidateLRS(validLRS()))
}

func TestValidateLRSRequiresEndpoint(t *testing.T) {
	cfg := validLRS()
	cfg.Endpoint = ""
	errs := ValidateLRS(cfg)
	assert.Contains(t, errs, "endpoint")
}

func TestValidateLRSRejectsNonHTTPS(t *testing.T) {
	cfg := validLRS()
	cfg.Endpoint = "http://lrs.example.com/xapi"
	assert.Contains(t, ValidateLRS(cfg), "endpoint")

	cfg.Endpoint = "https://"
	assert.Contains(t, ValidateLRS(cfg), "endpoint")

	cfg.Endpoint = "not a url"
	assert.Contains(t, ValidateLRS(cfg), "endpoint")
}

func TestValidateLRSRequiresCredentials(t *testing.T) {
	cfg := validLRS()
	cfg.Username = ""
	cfg.Password = ""
	errs := ValidateLRS(cfg)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}

func TestValidateLRSAuthMethods(t *testing.T) {
	cfg := validLRS()

	cfg.AuthMethod = "oauth" // legal config value, even though unimplemented
	assert.Empty(t, ValidateLRS(cfg))

	cfg.AuthMethod = "digest"
	assert.Contains(t, ValidateLRS(cfg), "auth_method")
}

func TestLRSConfigIsConfigured(t *testing.T) {
	assert.True(t, validLRS().IsConfigured())
	assert.False(t, LRSConfig{}.IsConfigured())

	cfg := validLRS()
	cfg.Password = ""
	assert.False(t, cfg.IsConfigured())
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/xapi")
	t.Setenv("BASE_URL", "https://lms.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://lms.example.com", cfg.BaseURL) // trailing slash stripped
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 50, cfg.QueueBatchSize)
	assert.Equal(t, 3, cfg.QueueMaxRetries)
	assert.Equal(t, 30, cfg.QueueRetentionDays)
	assert.Equal(t, 30, cfg.LRSTimeoutSeconds)
	assert.Equal(t, "basic", cfg.LRS.AuthMethod)
	assert.True(t, cfg.XAPIEnabled)
	assert.True(t, cfg.QueueEnabled)
	assert.Equal(t, "*/5 * * * *", cfg.CronSpecQueue)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_URL", "https://lms.example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRejectsInvalidInteger(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/xapi")
	t.Setenv("BASE_URL", "https://lms.example.com")
	t.Setenv("QUEUE_BATCH_SIZE", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUEUE_BATCH_SIZE")
}

func TestLoadDecryptsCredentials(t *testing.T) {
	codec, err := secrets.NewCodec("deployment-secret")
	require.NoError(t, err)

	encUser, err := codec.Encrypt("lrs-user")
	require.NoError(t, err)
	encPass, err := codec.Encrypt("lrs-pass")
	require.NoError(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/xapi")
	t.Setenv("BASE_URL", "https://lms.example.com")
	t.Setenv("APP_SECRET", "deployment-secret")
	t.Setenv("LRS_USERNAME_ENC", encUser)
	t.Setenv("LRS_PASSWORD_ENC", encPass)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "lrs-user", cfg.LRS.Username)
	assert.Equal(t, "lrs-pass", cfg.LRS.Password)
}

func TestLoadEncryptedCredentialsRequireSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/xapi")
	t.Setenv("BASE_URL", "https://lms.example.com")
	t.Setenv("APP_SECRET", "")
	t.Setenv("LRS_USERNAME_ENC", "c29tZXRoaW5n")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_SECRET")
}
