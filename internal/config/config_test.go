package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectora/internal/errs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  cors_origins: ["https://app.example.com"]
database:
  url: postgres://u:p@localhost:5432/vectora
auth:
  secret_key: from-file
  access_token_ttl: 10m
telegram:
  bot_token: "123:abc"
  init_data_max_age: 1h
`)
	t.Setenv(pathEnv, path)
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres://u:p@localhost:5432/vectora", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.Auth.SecretKey)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, time.Hour, cfg.Telegram.InitDataMaxAge)
	assert.Equal(t, "vectora", cfg.Auth.Issuer)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(pathEnv, writeConfig(t, "auth:\n  secret_key: s\ntelegram:\n  bot_token: t\n"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Telegram.InitDataMaxAge)
	assert.Equal(t, time.Minute, cfg.Telegram.ReminderEvery)
	assert.Equal(t, 60, cfg.Server.RateLimitPerMinute)
	assert.False(t, cfg.Email.Enabled())
}

func TestLoad_MissingBotTokenIsFatal(t *testing.T) {
	t.Setenv(pathEnv, writeConfig(t, "auth:\n  secret_key: s\n"))

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfigurationMissing)
}

func TestLoad_MissingSecretIsFatalOutsideDebug(t *testing.T) {
	t.Setenv(pathEnv, writeConfig(t, "telegram:\n  bot_token: t\n"))

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfigurationMissing)
}

func TestLoad_DebugGeneratesSecret(t *testing.T) {
	t.Setenv(pathEnv, writeConfig(t, "debug: true\ntelegram:\n  bot_token: t\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Auth.SecretKey)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv(pathEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_RefreshMustOutliveAccess(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Auth.SecretKey = "s"
	cfg.Telegram.BotToken = "t"
	cfg.Auth.RefreshTokenTTL = cfg.Auth.AccessTokenTTL

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestLoad_WebhookNeedsSecret(t *testing.T) {
	t.Setenv(pathEnv, writeConfig(t, "auth:\n  secret_key: s\ntelegram:\n  bot_token: t\n  webhook_url: https://example.com/hook\n"))

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "webhook_secret")

	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Telegram.WebhookSecret)
}
