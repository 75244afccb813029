// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, optional file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration for both the server and the
// tracker client. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the server HTTP listen address, e.g. ":4173".
	Addr string `koanf:"addr"`

	// DBPath locates the server's sqlite database file.
	DBPath string `koanf:"db_path"`

	// SessionTTLHours bounds how long an issued session token stays valid.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// ServerURL is the base URL the tracker client talks to.
	ServerURL string `koanf:"server_url"`

	// CachePath locates the tracker's local snapshot cache file.
	// Empty selects a default under the user cache directory.
	CachePath string `koanf:"cache_path"`

	// TickIntervalMS is the tracker tick cadence in milliseconds.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// IdleThresholdSec is how long hidden visibility must last before an
	// idle episode opens.
	IdleThresholdSec int `koanf:"idle_threshold_sec"`

	// PointsPerFocusSecond is the accrual rate for focused ticks.
	PointsPerFocusSecond float64 `koanf:"points_per_focus_second"`

	// FlushEverySeconds bounds data loss on ungraceful termination.
	FlushEverySeconds int `koanf:"flush_every_seconds"`

	// RemoteTimeoutMS caps each remote persistence call.
	RemoteTimeoutMS int `koanf:"remote_timeout_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":4173",
		DBPath:               "focusforge.db",
		SessionTTLHours:      24 * 7,
		ServerURL:            "http://localhost:4173",
		CachePath:            "",
		TickIntervalMS:       1000,
		IdleThresholdSec:     60,
		PointsPerFocusSecond: 0.5,
		FlushEverySeconds:    10,
		RemoteTimeoutMS:      5000,
	}
}
