package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the bot reads from the environment.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// DatabaseURL is a postgres DSN, or sqlite://<path> for local runs.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://agenda.db"`

	// RedisAddr empty means the in-memory cache is used instead.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramAPIURL string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`

	AdminUserID      int64  `env:"ADMIN_TELEGRAM_ID"`
	DefaultChannelID int64  `env:"DEFAULT_CHANNEL_ID"`
	Timezone         string `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	ReminderCron       string        `env:"REMINDER_CRON" envDefault:"0 12 * * *"`

	ExportSigningKey string        `env:"EXPORT_SIGNING_KEY"`
	ExportLinkTTL    time.Duration `env:"EXPORT_LINK_TTL" envDefault:"15m"`
	PublicBaseURL    string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	CORSOrigins      []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"https://*"`

	// InteractionsPerSecond bounds how fast a single user can press buttons.
	InteractionsPerSecond float64 `env:"INTERACTIONS_PER_SECOND" envDefault:"2"`
	InteractionBurst      int     `env:"INTERACTION_BURST" envDefault:"6"`
}

// Load reads an optional .env file and then parses the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// a missing .env file is not an error
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.AdminUserID == 0 {
		errs = append(errs, errors.New("ADMIN_TELEGRAM_ID is required"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err))
	}
	if c.SessionIdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	if !gronx.IsValid(c.ReminderCron) {
		errs = append(errs, fmt.Errorf("invalid REMINDER_CRON %q", c.ReminderCron))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether the bot runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
