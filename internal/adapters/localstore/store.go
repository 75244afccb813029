// Package localstore is the local persistence tier: one JSON file under a
// fixed namespaced key, mirroring the durable cache the tracker keeps
// beside the remote store.
//
// Everything here is best-effort. Load treats unreadable or malformed
// content as absent and discards the bad file; Save logs and drops on
// failure. No call ever propagates an error to the tracker.
package localstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/pkg/logger"
)

// CacheKey names the snapshot file. Versioned so an incompatible future
// shape can roll the key instead of fighting old payloads.
const CacheKey = "focusforge-state-v1.json"

const filePermission = 0o600

// Store reads and writes the cached snapshot.
type Store struct {
	path   string
	logger logger.Logger
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithPath overrides the cache file location.
func WithPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store. The default location is CacheKey under the user
// cache directory, falling back to the working directory when the user
// cache directory is unavailable.
func New(opts ...Option) *Store {
	s := &Store{
		path:   defaultPath(),
		logger: logger.Get().Named("localstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return CacheKey
	}
	return filepath.Join(dir, "focusforge", CacheKey)
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the snapshot. Best-effort: failures are logged and dropped,
// and the write goes through a temp file rename so a crash mid-write
// cannot leave a truncated cache.
func (s *Store) Save(snap progress.Snapshot) {
	ctx := context.Background()

	raw, err := snap.Encode()
	if err != nil {
		s.logger.Warn(ctx, "cache encode failed", logger.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn(ctx, "cache dir unavailable", logger.Error(err))
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, filePermission); err != nil {
		s.logger.Warn(ctx, "cache write failed", logger.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn(ctx, "cache rename failed", logger.Error(err))
		_ = os.Remove(tmp)
	}
}

// Load reads the cached snapshot. Returns ok=false when the cache is
// absent, unreadable, or malformed; malformed content is discarded so
// the same bad payload is never parsed twice.
func (s *Store) Load() (progress.Snapshot, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return progress.DefaultSnapshot(), false
	}
	snap, err := progress.DecodeSnapshot(raw)
	if err != nil {
		s.logger.Warn(context.Background(), "discarding malformed cache", logger.Error(err))
		_ = os.Remove(s.path)
		return progress.DefaultSnapshot(), false
	}
	return snap, true
}

// Clear removes the cached snapshot.
func (s *Store) Clear() {
	_ = os.Remove(s.path)
}
