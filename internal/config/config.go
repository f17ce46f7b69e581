package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Env             string        `koanf:"env"`
	HTTPAddr        string        `koanf:"http_addr"`
	Storage         string        `koanf:"storage"`
	DBDriver        string        `koanf:"db_driver"`
	DBDSN           string        `koanf:"db_dsn"`
	PollEnabled     bool          `koanf:"poll_enabled"`
	PollInterval    time.Duration `koanf:"poll_interval"`
	SlackWebhookURL string        `koanf:"slack_webhook_url"`
	SlackTimeout    time.Duration `koanf:"slack_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Load layers defaults, an optional YAML file, then REMINDERS_* environment
// variables (REMINDERS_HTTP_ADDR=:9090 overrides http_addr, and so on).
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"env":               "dev",
		"http_addr":         ":8080",
		"storage":           "memory",
		"db_driver":         "pgx",
		"db_dsn":            "",
		"poll_enabled":      true,
		"poll_interval":     "1m",
		"slack_webhook_url": "",
		"slack_timeout":     "10s",
		"shutdown_timeout":  "5s",
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("REMINDERS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "REMINDERS_"))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
