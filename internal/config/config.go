// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for storefront-go. Values pass through a
// four-layer override chain: defaults -> config file -> environment -> CLI
// flags.
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Auth    AuthConfig    `toml:"auth"`
	Session SessionConfig `toml:"session"`
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig controls how the storefront API is reached.
type APIConfig struct {
	BaseURL           string  `toml:"base_url"`
	Timeout           string  `toml:"timeout"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// TimeoutDuration returns Timeout parsed. Callers run Validate first; an
// unparseable value yields zero, which the API client replaces with its
// own default.
func (a APIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0
	}

	return d
}

// AuthConfig controls credential refresh and the at-rest token cipher.
type AuthConfig struct {
	RefreshPath     string `toml:"refresh_path"`
	RefreshStatuses []int  `toml:"refresh_statuses"`
	EncryptionKey   string `toml:"encryption_key" json:"-"`
}

// SessionConfig controls where the signed-in session is kept. An empty Dir
// selects the per-login-session runtime directory.
type SessionConfig struct {
	Dir string `toml:"dir"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	APIURL     *string // --api-url flag
	LogLevel   *string // derived from --verbose / --debug / --quiet
}
