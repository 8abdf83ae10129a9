// Package recent keeps a most-recently-used list of whiteboard session IDs
// in a key-value store. The whole list lives under a single key as a JSON
// array, newest first:
//
//	Key:   whiteboard_sessions
//	Value: [{"sessionId":"<id>","lastAccessed":<unix ms>}, ...]
//
// Records older than TTL are dropped whenever the list is rewritten by
// Upsert, and filtered out (without a rewrite) by ListRecent.
package recent
