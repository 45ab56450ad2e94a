// Package config loads settings from the environment and an optional file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"inventoritoko/pkg/logger"
)

// Config holds every runtime setting of the CLI and the stub backend.
type Config struct {
	APIBaseURL      string
	APITimeout      time.Duration
	TokenDBPath     string
	DisplayTimezone *time.Location
	Log             logger.Config
	Stub            StubConfig
}

// StubConfig configures the local stub backend.
type StubConfig struct {
	Addr        string
	DBDriver    string
	DBDSN       string
	JWTSecret   string
	RabbitMQURL string
	SMTP        SMTPConfig
}

// SMTPConfig is used for password reset mails. Mail is disabled when Host is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE_URL", "http://0.0.0.0:4000/")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("TOKEN_DB_PATH", "auth_prefs.db")
	v.SetDefault("DISPLAY_TIMEZONE", "Local")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FILE_ENABLE", false)
	v.SetDefault("LOG_FILENAME", "inventoritoko.log")
	v.SetDefault("STUB_ADDR", ":4000")
	v.SetDefault("STUB_DB_DRIVER", "sqlite")
	v.SetDefault("STUB_DB_DSN", "file:inventoritoko?mode=memory&cache=shared")
	v.SetDefault("JWT_SECRET", "inventoritoko_dev_secret")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@inventoritoko.local")
}

// Load reads the environment (and the config file when one was set on v).
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	loc, err := time.LoadLocation(v.GetString("DISPLAY_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	timeout := v.GetDuration("API_TIMEOUT")
	if timeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive, got %q", v.GetString("API_TIMEOUT"))
	}
	base := strings.TrimSpace(v.GetString("API_BASE_URL"))
	if base == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return &Config{
		APIBaseURL:      base,
		APITimeout:      timeout,
		TokenDBPath:     v.GetString("TOKEN_DB_PATH"),
		DisplayTimezone: loc,
		Log: logger.Config{
			Mode:       v.GetString("LOG_MODE"),
			Level:      v.GetString("LOG_LEVEL"),
			FileEnable: v.GetBool("LOG_FILE_ENABLE"),
			Filename:   v.GetString("LOG_FILENAME"),
		},
		Stub: StubConfig{
			Addr:        v.GetString("STUB_ADDR"),
			DBDriver:    v.GetString("STUB_DB_DRIVER"),
			DBDSN:       v.GetString("STUB_DB_DSN"),
			JWTSecret:   v.GetString("JWT_SECRET"),
			RabbitMQURL: v.GetString("RABBITMQ_URL"),
			SMTP: SMTPConfig{
				Host:     v.GetString("SMTP_HOST"),
				Port:     v.GetInt("SMTP_PORT"),
				User:     v.GetString("SMTP_USER"),
				Password: v.GetString("SMTP_PASSWORD"),
				From:     v.GetString("SMTP_FROM"),
			},
		},
	}, nil
}
