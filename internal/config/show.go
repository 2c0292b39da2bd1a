package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RenderEffective writes the resolved configuration as a human-readable
// summary to w. This powers the "config show" command. The encryption key
// is never printed.
func RenderEffective(cfg *Config, path string, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration (file: %s)\n\n", path)

	renderAPISection(ew, &cfg.API)
	renderAuthSection(ew, &cfg.Auth)
	renderSessionSection(ew, &cfg.Session)
	renderLoggingSection(ew, &cfg.Logging)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAPISection(ew *errWriter, a *APIConfig) {
	ew.printf("[api]\n")
	ew.printf("  base_url            = %q\n", a.BaseURL)
	ew.printf("  timeout             = %q\n", a.Timeout)
	ew.printf("  user_agent          = %q\n", a.UserAgent)
	ew.printf("  requests_per_second = %g\n", a.RequestsPerSecond)
	ew.printf("\n")
}

func renderAuthSection(ew *errWriter, a *AuthConfig) {
	key := "(custom)"
	if a.EncryptionKey == DefaultEncryptionKey {
		key = "(default)"
	}

	ew.printf("[auth]\n")
	ew.printf("  refresh_path     = %q\n", a.RefreshPath)
	ew.printf("  refresh_statuses = [%s]\n", joinInts(a.RefreshStatuses))
	ew.printf("  encryption_key   = %s\n", key)
	ew.printf("\n")
}

func renderSessionSection(ew *errWriter, s *SessionConfig) {
	ew.printf("[session]\n")

	if s.Dir != "" {
		ew.printf("  dir = %q\n", s.Dir)
	} else {
		ew.printf("  dir = (runtime directory)\n")
	}

	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", l.LogLevel)
	ew.printf("  log_format = %q\n", l.LogFormat)
}

func joinInts(items []int) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = strconv.Itoa(item)
	}

	return strings.Join(parts, ", ")
}
