package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"SESSIONS_BACKEND", "SESSIONS_DIR", "SESSIONS_KEY", "REDIS_ADDR", "REDIS_PREFIX", "LOG_QUIET", "PUSHGATEWAY_URL"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_STATE_HOME", "/tmp/state")

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.Dir != filepath.Join("/tmp/state", "whiteboard") {
		t.Errorf("Dir = %q", cfg.Dir)
	}
	if cfg.Key != "whiteboard_sessions" {
		t.Errorf("Key = %q, want whiteboard_sessions", cfg.Key)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.Quiet {
		t.Error("Quiet = true, want false")
	}
	if cfg.PushgatewayURL != "" {
		t.Errorf("PushgatewayURL = %q, want empty", cfg.PushgatewayURL)
	}
}

func TestFromEnv_FromEnv(t *testing.T) {
	t.Setenv("SESSIONS_BACKEND", "redis")
	t.Setenv("SESSIONS_KEY", "board_a")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_PREFIX", "wb:")
	t.Setenv("LOG_QUIET", "true")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Backend != BackendRedis || cfg.Key != "board_a" || cfg.RedisAddr != "redis:6380" || cfg.RedisPrefix != "wb:" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.Quiet {
		t.Error("Quiet = false, want true")
	}
	if cfg.PushgatewayURL != "http://pushgateway:9091" {
		t.Errorf("PushgatewayURL = %q", cfg.PushgatewayURL)
	}
}

func TestFromEnv_InvalidBoolIgnored(t *testing.T) {
	t.Setenv("SESSIONS_BACKEND", "")
	t.Setenv("LOG_QUIET", "loud")

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Quiet {
		t.Error("expected unparseable LOG_QUIET to fall back to false")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default ok", func(c *Config) {}, ""},
		{"memory ok", func(c *Config) { c.Backend = BackendMemory; c.Dir = "" }, ""},
		{"unknown backend", func(c *Config) { c.Backend = "sqlite" }, "unknown backend"},
		{"empty key", func(c *Config) { c.Key = "" }, "SESSIONS_KEY"},
		{"file without dir", func(c *Config) { c.Dir = "" }, "SESSIONS_DIR"},
		{"redis without addr", func(c *Config) { c.Backend = BackendRedis; c.RedisAddr = "" }, "REDIS_ADDR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Dir = "/tmp/whiteboard"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}
