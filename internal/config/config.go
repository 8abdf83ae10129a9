// Package config loads the sessions tool configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/whisper/recent-sessions/internal/kv"
	"github.com/whisper/recent-sessions/internal/recent"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds everything needed to open the session store.
type Config struct {
	Backend        string // file | redis | memory
	Dir            string // file backend state directory
	Key            string // storage key for the session list
	RedisAddr      string
	RedisPrefix    string
	Quiet          bool   // discard diagnostic logs
	PushgatewayURL string // push run metrics here when set
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Backend:     BackendFile,
		Dir:         defaultStateDir(),
		Key:         recent.Key,
		RedisAddr:   "localhost:6379",
		RedisPrefix: kv.DefaultRedisPrefix,
	}
}

// FromEnv applies environment overrides to Default without validating, so
// callers can layer flags on top before calling Validate.
func FromEnv() Config {
	cfg := Default()
	cfg.Backend = envStr("SESSIONS_BACKEND", cfg.Backend)
	cfg.Dir = envStr("SESSIONS_DIR", cfg.Dir)
	cfg.Key = envStr("SESSIONS_KEY", cfg.Key)
	cfg.RedisAddr = envStr("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPrefix = envStr("REDIS_PREFIX", cfg.RedisPrefix)
	cfg.Quiet = envBool("LOG_QUIET", cfg.Quiet)
	cfg.PushgatewayURL = envStr("PUSHGATEWAY_URL", cfg.PushgatewayURL)
	return cfg
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("config: SESSIONS_KEY must not be empty")
	}
	switch c.Backend {
	case BackendFile:
		if c.Dir == "" {
			return fmt.Errorf("config: SESSIONS_DIR must not be empty for the file backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR must not be empty for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown backend %q (want file, redis or memory)", c.Backend)
	}
	return nil
}

func defaultStateDir() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return filepath.Join(v, "whiteboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "whiteboard")
	}
	return filepath.Join(home, ".local", "state", "whiteboard")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
