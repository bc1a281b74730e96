package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("Expected default model gemini-2.0-flash, got %s", cfg.GeminiModel)
	}
	if cfg.DBPath != "file:oracle?mode=memory&cache=shared" {
		t.Errorf("Expected in-memory default DSN, got %s", cfg.DBPath)
	}
	if cfg.Stream.WordDelay != 10*time.Millisecond {
		t.Errorf("Expected 10ms word delay, got %v", cfg.Stream.WordDelay)
	}
	if cfg.Stream.BlockDelay != 100*time.Millisecond {
		t.Errorf("Expected 100ms block delay, got %v", cfg.Stream.BlockDelay)
	}
	if cfg.SessionTTL != 60*time.Minute {
		t.Errorf("Expected 60m session TTL, got %v", cfg.SessionTTL)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error for missing GEMINI_API_KEY, got nil")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("STREAM_WORD_DELAY", "25ms")
	t.Setenv("RATE_LIMIT_REQUESTS", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.Stream.WordDelay != 25*time.Millisecond {
		t.Errorf("Expected 25ms word delay, got %v", cfg.Stream.WordDelay)
	}
	if cfg.RateLimit.RequestsPerWindow != 42 {
		t.Errorf("Expected 42 requests per window, got %d", cfg.RateLimit.RequestsPerWindow)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:           "8080",
			DBPath:         ":memory:",
			GeminiAPIKey:   "key",
			GeminiModel:    "gemini-2.0-flash",
			MaxUploadBytes: 1,
			RateLimit:      RateLimitConfig{RequestsPerWindow: 1},
			ConversationLog: ConversationLogConfig{
				Dir:        "./logs",
				GlobalPath: "./logs/all.ndjson",
				QueueSize:  1,
			},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("Expected valid base config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.GeminiAPIKey = "" }},
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"negative word delay", func(c *Config) { c.Stream.WordDelay = -time.Millisecond }},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:5173", true},
		{"https://oracle.example.com", false},
	}

	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.frontendURL}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q): expected %v, got %v", tt.frontendURL, tt.want, got)
		}
	}
}
