// Package config loads process-wide settings once at startup: YAML file first,
// environment overrides second, defaults for whatever is still empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"vectora/internal/errs"
	"vectora/internal/utils"
)

const (
	defaultPath = "config/config.yaml"
	pathEnv     = "VECTORA_CONFIG"
)

type ServerConfig struct {
	Port               int      `yaml:"port" env:"PORT"`
	CORSOrigins        []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}

type DatabaseConfig struct {
	DSN         string `yaml:"url" env:"DATABASE_URL"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
}

type AuthConfig struct {
	SecretKey       string        `yaml:"secret_key" env:"SECRET_KEY"`
	Issuer          string        `yaml:"issuer" env:"JWT_ISSUER"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL"`
	// DevUserID is the identity handed out by the development bypass (devauth builds only).
	DevUserID int64 `yaml:"dev_user_id" env:"DEV_USER_ID"`
}

type TelegramConfig struct {
	BotToken       string        `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	InitDataMaxAge time.Duration `yaml:"init_data_max_age" env:"TELEGRAM_INIT_DATA_MAX_AGE"`
	AutoProvision  bool          `yaml:"auto_provision" env:"TELEGRAM_AUTO_PROVISION"`
	WebAppURL      string        `yaml:"webapp_url" env:"WEBAPP_URL"`
	// WebhookURL switches update delivery from long polling to a webhook served by the API.
	WebhookURL     string        `yaml:"webhook_url" env:"TELEGRAM_WEBHOOK_URL"`
	WebhookSecret  string        `yaml:"webhook_secret" env:"TELEGRAM_WEBHOOK_SECRET"`
	ReminderEvery  time.Duration `yaml:"reminder_interval" env:"REMINDER_INTERVAL"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"SMTP_FROM"`
}

// Enabled reports whether enough SMTP settings exist to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.FromEmail != ""
}

type Config struct {
	AppName  string         `yaml:"app_name" env:"APP_NAME"`
	Debug    bool           `yaml:"debug" env:"DEBUG"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`

	// PDFFontPath is an optional UTF-8 TTF for task exports.
	PDFFontPath string `yaml:"pdf_font_path" env:"PDF_FONT_PATH"`
}

// Load reads the file named by $VECTORA_CONFIG (or config/config.yaml), applies
// environment overrides and defaults, and validates the result.
// A missing default file is tolerated; a missing explicitly named file is not.
func Load() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(pathEnv))
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	cfg := &Config{}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) finalize() error {
	c.applyDefaults()

	// Debug builds get a throwaway signing key, so tokens die with the process.
	if c.Auth.SecretKey == "" && c.Debug {
		s, err := utils.RandomToken(32)
		if err != nil {
			return fmt.Errorf("generate dev secret: %w", err)
		}
		c.Auth.SecretKey = s
	}
	return c.Validate()
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "Vectora API"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:8000"}
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 60
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "postgres://postgres:postgres@db:5432/tasks?sslmode=disable"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "vectora"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 30 * time.Minute
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Telegram.InitDataMaxAge == 0 {
		c.Telegram.InitDataMaxAge = 24 * time.Hour
	}
	if c.Telegram.ReminderEvery == 0 {
		c.Telegram.ReminderEvery = time.Minute
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
}

// Validate reports the first fatal problem. Missing secrets wrap errs.ErrConfigurationMissing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return fmt.Errorf("%w: auth.secret_key (SECRET_KEY)", errs.ErrConfigurationMissing)
	}
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		return fmt.Errorf("%w: telegram.bot_token (TELEGRAM_BOT_TOKEN)", errs.ErrConfigurationMissing)
	}
	if c.Telegram.WebhookURL != "" && strings.TrimSpace(c.Telegram.WebhookSecret) == "" {
		return fmt.Errorf("%w: telegram.webhook_secret (TELEGRAM_WEBHOOK_SECRET)", errs.ErrConfigurationMissing)
	}
	if c.Auth.AccessTokenTTL < 0 || c.Auth.RefreshTokenTTL < 0 {
		return fmt.Errorf("%w: token ttl must be positive", errs.ErrInvalidInput)
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		return fmt.Errorf("%w: refresh_token_ttl must exceed access_token_ttl", errs.ErrInvalidInput)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", errs.ErrInvalidInput, c.Server.Port)
	}
	return nil
}
