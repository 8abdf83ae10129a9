// Package kv defines the host key-value facility the session list is stored
// in, plus the backends a host can pick from:
//
//	FileStore:   one file per key under a state directory (default)
//	RedisStore:  plain GET/SET against a Redis instance
//	MemoryStore: process-local map, for tests and dry runs
//
// Values are opaque strings. A missing key is reported through the ok
// return value, never as an error.
package kv

import "context"

// Store is a string-keyed persistent store with synchronous get/set.
type Store interface {
	// Get returns the value stored at key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored at key.
	Set(ctx context.Context, key, value string) error
}
