// Command sessions maintains the list of recently used whiteboard sessions.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/whisper/recent-sessions/internal/config"
	"github.com/whisper/recent-sessions/internal/kv"
	"github.com/whisper/recent-sessions/internal/metrics"
	"github.com/whisper/recent-sessions/internal/recent"
)

// app carries the opened store between cobra hooks and commands.
type app struct {
	cfg     config.Config
	store   *recent.Store
	closeFn func() error
}

func main() {
	a := &app{}
	rootCmd := newRootCmd(a)
	err := rootCmd.Execute()
	if a.closeFn != nil {
		if cerr := a.closeFn(); cerr != nil {
			log.Printf("[sessions] close store: %v", cerr)
		}
	}
	if a.cfg.PushgatewayURL != "" {
		if perr := metrics.Push(a.cfg.PushgatewayURL, "sessions"); perr != nil {
			log.Printf("[sessions] push metrics: %v", perr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// storeAnnotation marks commands that read or write the session list. The
// backend is only opened for those, so help and completion work without it.
const storeAnnotation = "sessions/store"

func usesStore() map[string]string {
	return map[string]string{storeAnnotation: "true"}
}

func newRootCmd(a *app) *cobra.Command {
	env := config.FromEnv()
	var (
		backend   string
		dir       string
		redisAddr string
	)

	rootCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Track recently used whiteboard sessions",
		Long: `sessions keeps a most-recently-used list of whiteboard session IDs.

Sessions not touched for 7 days are dropped the next time the list is
written, and are hidden from "sessions list" immediately.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil || cmd.Annotations[storeAnnotation] == "" {
				return nil
			}

			cfg := env
			cfg.Backend = backend
			cfg.Dir = dir
			cfg.RedisAddr = redisAddr
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Quiet {
				log.SetOutput(io.Discard)
			}

			backendStore, closeFn, err := openBackend(cfg)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.closeFn = closeFn
			a.store = recent.NewStore(backendStore, recent.WithKey(cfg.Key))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&backend, "backend", env.Backend, "storage backend: file, redis or memory (env SESSIONS_BACKEND)")
	flags.StringVar(&dir, "dir", env.Dir, "state directory for the file backend (env SESSIONS_DIR)")
	flags.StringVar(&redisAddr, "redis-addr", env.RedisAddr, "redis address for the redis backend (env REDIS_ADDR)")

	rootCmd.AddCommand(
		touchCmd(a),
		newCmd(a),
		listCmd(a),
		dumpCmd(a),
		removeCmd(a),
		clearCmd(a),
		statsCmd(a),
	)
	return rootCmd
}

// openBackend constructs the key-value store selected by cfg. The returned
// close function may be nil.
func openBackend(cfg config.Config) (kv.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		store, err := kv.NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[sessions] using redis backend addr=%s prefix=%s", cfg.RedisAddr, cfg.RedisPrefix)
		return store, store.Close, nil
	case config.BackendMemory:
		log.Printf("[sessions] using memory backend, changes are not kept")
		return kv.NewMemoryStore(), nil, nil
	default:
		store, err := kv.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}
