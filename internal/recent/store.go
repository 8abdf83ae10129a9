package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/whisper/recent-sessions/internal/kv"
	"github.com/whisper/recent-sessions/internal/metrics"
)

const (
	// Key is the storage key holding the encoded session list.
	Key = "whiteboard_sessions"

	// TTL is how long a record stays recent after its last access.
	TTL = 7 * 24 * time.Hour
)

// ErrEmptySessionID is returned when an operation is given an empty ID.
var ErrEmptySessionID = errors.New("recent: empty session id")

// Record is one entry of the session list.
type Record struct {
	SessionID    string `json:"sessionId"`
	LastAccessed int64  `json:"lastAccessed"` // unix milliseconds
}

// Expired reports whether the record is at least TTL old at nowMs.
func (r Record) Expired(nowMs int64) bool {
	return nowMs-r.LastAccessed >= TTL.Milliseconds()
}

// Store reads and writes the session list. It holds no lock: concurrent
// upserts against the same backing store race, and the last write wins.
type Store struct {
	kv  kv.Store
	key string
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session list store on top of the given key-value store.
func NewStore(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:  store,
		key: Key,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the stored list, including records that have expired since
// the last write. A missing or undecodable value yields an empty list; only
// storage errors are returned.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	metrics.OperationsTotal.WithLabelValues("load").Inc()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("recent: load: %w", err)
	}
	if !ok || raw == "" {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// Corrupt state must never break the caller; start over.
		log.Printf("[recent] discarding undecodable value at key=%s: %v", s.key, err)
		metrics.CorruptLoadsTotal.Inc()
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Persist replaces the stored list with records.
func (s *Store) Persist(ctx context.Context, records []Record) error {
	metrics.OperationsTotal.WithLabelValues("persist").Inc()

	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("recent: marshal: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("persist").Inc()
		return fmt.Errorf("recent: persist: %w", err)
	}
	metrics.ListSize.Set(float64(len(records)))
	return nil
}

// Upsert moves sessionID to the front of the list with the current time,
// dropping any older entry for it and every expired record.
func (s *Store) Upsert(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	metrics.OperationsTotal.WithLabelValues("upsert").Inc()

	now := s.now().UnixMilli()
	records, err := s.Load(ctx)
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(records)+1)
	kept = append(kept, Record{SessionID: sessionID, LastAccessed: now})
	pruned := 0
	for _, r := range records {
		if r.Expired(now) {
			pruned++
			continue
		}
		if r.SessionID == sessionID {
			continue
		}
		kept = append(kept, r)
	}
	if pruned > 0 {
		metrics.PrunedTotal.Add(float64(pruned))
	}

	return s.Persist(ctx, kept)
}

// ListRecent returns the records accessed within TTL, newest first. The
// stored list is left as is; expired records are only removed by Upsert.
func (s *Store) ListRecent(ctx context.Context) ([]Record, error) {
	metrics.OperationsTotal.WithLabelValues("list").Inc()

	now := s.now().UnixMilli()
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	recent := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Expired(now) {
			recent = append(recent, r)
		}
	}
	return recent, nil
}

// Remove drops the record for sessionID. Other records are kept as stored,
// expired or not. Nothing is written when sessionID is not in the list.
func (s *Store) Remove(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	metrics.OperationsTotal.WithLabelValues("remove").Inc()

	records, err := s.Load(ctx)
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.SessionID != sessionID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.Persist(ctx, kept)
}

// Clear replaces the stored list with an empty one.
func (s *Store) Clear(ctx context.Context) error {
	return s.Persist(ctx, []Record{})
}
