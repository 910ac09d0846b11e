// Package config loads settings from the environment (HOSPITAL_ prefix),
// with a .env file in the working directory read first.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "HOSPITAL"

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	APIBaseURL     string        `mapstructure:"API_BASE_URL"`
	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`
	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	SessionDir     string        `mapstructure:"SESSION_DIR"`
	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	TabID          string        `mapstructure:"TAB_ID"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	StubPort       string        `mapstructure:"STUB_PORT"`
}

var keys = []string{
	"ENV", "API_BASE_URL", "HTTP_TIMEOUT", "SESSION_BACKEND", "SESSION_DIR", "SESSION_SECRET",
	"SESSION_TTL", "TAB_ID", "REDIS_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "STUB_PORT",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("API_BASE_URL", "http://localhost:8181")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("SESSION_BACKEND", BackendFile)
	v.SetDefault("SESSION_DIR", defaultSessionDir())
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("STUB_PORT", "8181")

	for _, k := range keys {
		v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "hospital-portal", "sessions")
	}
	return filepath.Join(os.TempDir(), "hospital-portal-sessions")
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s_API_BASE_URL must be an http(s) URL, got %q", EnvPrefix, c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s_HTTP_TIMEOUT must be positive", EnvPrefix)
	}
	switch c.SessionBackend {
	case BackendFile:
		if c.SessionDir == "" {
			return fmt.Errorf("%s_SESSION_DIR is required for the file session backend", EnvPrefix)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%s_REDIS_URL is required for the redis session backend", EnvPrefix)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%s_SESSION_BACKEND must be file, redis or memory, got %q", EnvPrefix, c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%s_SESSION_TTL must be positive", EnvPrefix)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%s_RATE_LIMIT_RPS and %s_RATE_LIMIT_BURST must be positive", EnvPrefix, EnvPrefix)
	}
	if c.IsProduction() && c.SessionBackend == BackendFile && c.SessionSecret == "" {
		return fmt.Errorf("%s_SESSION_SECRET is required in production", EnvPrefix)
	}
	return nil
}
