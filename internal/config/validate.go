package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Validation range constants.
const (
	minTimeout = 1 * time.Second
	maxTimeout = 5 * time.Minute
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"auto", "text", "json"}
)

// Validate checks all configuration values and returns all errors found,
// so users can fix every issue in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateAPI(&cfg.API)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateAPI(a *APIConfig) []error {
	var errs []error

	u, err := url.Parse(a.BaseURL)

	switch {
	case a.BaseURL == "":
		errs = append(errs, errors.New("api.base_url: must not be empty"))
	case err != nil:
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("api.base_url: missing host in %q", a.BaseURL))
	}

	if d, err := time.ParseDuration(a.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("api.timeout: invalid duration %q: %w", a.Timeout, err))
	} else if d < minTimeout || d > maxTimeout {
		errs = append(errs, fmt.Errorf("api.timeout: must be between %s and %s, got %s", minTimeout, maxTimeout, d))
	}

	if a.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("api.requests_per_second: must be >= 0, got %g", a.RequestsPerSecond))
	}

	return errs
}

func validateAuth(a *AuthConfig) []error {
	var errs []error

	if !strings.HasPrefix(a.RefreshPath, "/") {
		errs = append(errs, fmt.Errorf("auth.refresh_path: must start with \"/\", got %q", a.RefreshPath))
	}

	if len(a.RefreshStatuses) == 0 {
		errs = append(errs, errors.New("auth.refresh_statuses: must list at least one status"))
	}

	for _, code := range a.RefreshStatuses {
		if code < http.StatusBadRequest || code >= http.StatusInternalServerError {
			errs = append(errs, fmt.Errorf("auth.refresh_statuses: %d is not a 4xx status", code))
		}
	}

	if a.EncryptionKey == "" {
		errs = append(errs, errors.New("auth.encryption_key: must not be empty"))
	}

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !slices.Contains(validLogLevels, l.LogLevel) {
		errs = append(errs, fmt.Errorf("logging.log_level: must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), l.LogLevel))
	}

	if !slices.Contains(validLogFormats, l.LogFormat) {
		errs = append(errs, fmt.Errorf("logging.log_format: must be one of %s, got %q",
			strings.Join(validLogFormats, ", "), l.LogFormat))
	}

	return errs
}
