package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOSPITAL_SESSION_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8181" {
		t.Errorf("expected default base URL, got %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.SessionBackend != BackendFile || cfg.SessionTTL != 12*time.Hour {
		t.Errorf("session defaults: %s %s", cfg.SessionBackend, cfg.SessionTTL)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit defaults: %v %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected warn, got %s", cfg.LogLevel)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HOSPITAL_API_BASE_URL", "https://api.example.org/")
	t.Setenv("HOSPITAL_HTTP_TIMEOUT", "5s")
	t.Setenv("HOSPITAL_SESSION_BACKEND", "memory")
	t.Setenv("HOSPITAL_TAB_ID", "tab-1")
	t.Setenv("HOSPITAL_RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.org" {
		t.Errorf("got %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 5*time.Second || cfg.SessionBackend != BackendMemory || cfg.TabID != "tab-1" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("got rps %v", cfg.RateLimitRPS)
	}
}

func TestLoad_RedisNeedsURL(t *testing.T) {
	t.Setenv("HOSPITAL_SESSION_BACKEND", "redis")
	t.Setenv("HOSPITAL_REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when REDIS_URL is missing")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Env: "development", APIBaseURL: "http://localhost:8181", HTTPTimeout: time.Second,
			SessionBackend: BackendFile, SessionDir: "/tmp/s", SessionTTL: time.Hour,
			RateLimitRPS: 1, RateLimitBurst: 1,
		}
	}
	tests := []struct {
		name string
		edit func(*Config)
		ok   bool
	}{
		{"valid", func(c *Config) {}, true},
		{"bad url", func(c *Config) { c.APIBaseURL = "localhost" }, false},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, false},
		{"unknown backend", func(c *Config) { c.SessionBackend = "cookie" }, false},
		{"no session dir", func(c *Config) { c.SessionDir = "" }, false},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, false},
		{"production without secret", func(c *Config) { c.Env = "production" }, false},
		{"production with secret", func(c *Config) { c.Env = "production"; c.SessionSecret = "s" }, true},
		{"memory needs no dir", func(c *Config) { c.SessionBackend = BackendMemory; c.SessionDir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.edit(&c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
