package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	WebhookSecret string `env:"TG_WEBHOOK_SECRET"`
	BotToken      string `env:"TG_BOT_TOKEN,required"`
	Port          string `env:"PORT" envDefault:"8080"`
	MetricsAddr   string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	SheetID         string `env:"GOOGLE_SHEET_ID,required"`
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"credentials.json"`
	SheetRange      string `env:"SHEET_RANGE" envDefault:"Sheet1!A:C"`

	DBFilename string `env:"DB_FILENAME" envDefault:"db/database.sqlite3"`
	DBDSN      string `env:"DB_DSN"`

	Timezone        string `env:"APP_TIMEZONE" envDefault:"UTC"`
	EnableTelemetry bool   `env:"ENABLE_TELEMETRY" envDefault:"false"`

	location *time.Location
}

// Location returns the timezone used for spreadsheet row timestamps.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, falling back to UTC", cfg.Timezone)
		loc = time.UTC
	}
	cfg.location = loc

	log.Printf("Config loaded. Port: %s, LogLevel: %s", cfg.Port, cfg.LogLevel)
	return cfg, nil
}
