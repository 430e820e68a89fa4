package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPPort        int           `env:"HTTP_PORT" env-default:"8080"`
	AssignmentURL   string        `env:"ASSIGNMENT_API_URL"`
	ContentURL      string        `env:"CONTENT_API_URL"`
	UserURL         string        `env:"USER_API_URL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`

	// Empty RedisURL keeps the cache in process.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"5m"`

	// MeCacheTTL bounds how long a resolved Authorization header is trusted.
	MeCacheTTL time.Duration `env:"ME_CACHE_TTL" env-default:"30s"`

	KafkaBrokers         []string      `env:"KAFKA_BROKERS" env-separator:","`
	ReminderTopic        string        `env:"REMINDER_TOPIC" env-default:"assignment-reminders"`
	ReminderInterval     time.Duration `env:"REMINDER_INTERVAL" env-default:"1m"`
	ReminderWindow       time.Duration `env:"REMINDER_WINDOW" env-default:"24h"`
	ReminderInstructorID int64         `env:"REMINDER_INSTRUCTOR_ID"`
	ServiceToken         string        `env:"SERVICE_TOKEN"`
}

func New() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig("./config/.env", &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	switch {
	case c.AssignmentURL == "":
		return fmt.Errorf("ASSIGNMENT_API_URL is required: %w", ErrInvalidConfig)
	case c.HTTPPort <= 0 || c.HTTPPort > 65535:
		return fmt.Errorf("HTTP_PORT %d out of range: %w", c.HTTPPort, ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("REQUEST_TIMEOUT must be positive: %w", ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("CACHE_TTL must be positive: %w", ErrInvalidConfig)
	}
	// Content and users default to the assignment host.
	if c.ContentURL == "" {
		c.ContentURL = c.AssignmentURL
	}
	if c.UserURL == "" {
		c.UserURL = c.AssignmentURL
	}
	return nil
}

// ValidateReminder checks the extra settings of the reminder worker.
func (c *Config) ValidateReminder() error {
	switch {
	case len(c.KafkaBrokers) == 0:
		return fmt.Errorf("KAFKA_BROKERS is required: %w", ErrInvalidConfig)
	case c.ServiceToken == "":
		return fmt.Errorf("SERVICE_TOKEN is required: %w", ErrInvalidConfig)
	case c.ReminderInstructorID <= 0:
		return fmt.Errorf("REMINDER_INSTRUCTOR_ID is required: %w", ErrInvalidConfig)
	case c.ReminderInterval <= 0 || c.ReminderWindow <= 0:
		return fmt.Errorf("REMINDER_INTERVAL and REMINDER_WINDOW must be positive: %w", ErrInvalidConfig)
	}
	return nil
}
