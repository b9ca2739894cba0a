// Package config provides runtime configuration values for the service.
//
// Values come from an optional YAML file named by CONFIG_FILE, then from the
// environment. A non-empty environment variable always wins.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration knobs for the HTTP server, storage, auth and mail.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"-"`
	LogLevel        string        `yaml:"log_level"`

	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`

	AuthMode   string `yaml:"auth_mode"`
	AuthURL    string `yaml:"auth_url"`
	AuthAPIKey string `yaml:"auth_api_key"`

	MailFunctionURL string `yaml:"mail_function_url"`
	MailAPIKey      string `yaml:"mail_api_key"`
	MailWorkers     int    `yaml:"mail_workers"`
	MailHighWater   int    `yaml:"mail_queue_high_watermark"`

	// ShutdownTimeoutSec mirrors ShutdownTimeout for the file form.
	ShutdownTimeoutSec int `yaml:"shutdown_timeout"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func defaults() Config {
	return Config{
		HTTPAddr:           ":8080",
		ShutdownTimeoutSec: 15,
		LogLevel:           "info",
		DBDriver:           "memory",
		AuthMode:           "header",
		MailWorkers:        2,
		MailHighWater:      1000,
	}
}

// Load collects configuration from CONFIG_FILE (if set) and the environment.
func Load() (Config, error) {
	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.ShutdownTimeout = durenvs("SHUTDOWN_TIMEOUT", c.ShutdownTimeoutSec)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.DBDriver = getenv("DB_DRIVER", c.DBDriver)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.AuthMode = getenv("AUTH_MODE", c.AuthMode)
	c.AuthURL = getenv("AUTH_URL", c.AuthURL)
	c.AuthAPIKey = getenv("AUTH_API_KEY", c.AuthAPIKey)
	c.MailFunctionURL = getenv("MAIL_FUNCTION_URL", c.MailFunctionURL)
	c.MailAPIKey = getenv("MAIL_API_KEY", c.MailAPIKey)
	c.MailWorkers = atoienv("MAIL_WORKERS", c.MailWorkers)
	c.MailHighWater = atoienv("MAIL_QUEUE_HIGH_WATERMARK", c.MailHighWater)

	return c, c.validate()
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.AuthMode {
	case "header":
	case "remote":
		if c.AuthURL == "" {
			return fmt.Errorf("AUTH_URL is required for AUTH_MODE=remote")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}
