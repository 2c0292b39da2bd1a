package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url: must not be empty"},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://x" }, "scheme must be http or https"},
		{"missing host", func(c *Config) { c.API.BaseURL = "http://" }, "missing host"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "api.timeout: invalid duration"},
		{"timeout too short", func(c *Config) { c.API.Timeout = "10ms" }, "api.timeout: must be between"},
		{"negative rate", func(c *Config) { c.API.RequestsPerSecond = -1 }, "api.requests_per_second"},
		{"relative refresh path", func(c *Config) { c.Auth.RefreshPath = "v1/auth/refresh" }, "auth.refresh_path"},
		{"no refresh statuses", func(c *Config) { c.Auth.RefreshStatuses = nil }, "at least one status"},
		{"non-4xx refresh status", func(c *Config) { c.Auth.RefreshStatuses = []int{401, 500} }, "500 is not a 4xx status"},
		{"empty key", func(c *Config) { c.Auth.EncryptionKey = "" }, "auth.encryption_key"},
		{"bad log level", func(c *Config) { c.Logging.LogLevel = "trace" }, "logging.log_level"},
		{"bad log format", func(c *Config) { c.Logging.LogFormat = "xml" }, "logging.log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "never"
	cfg.Logging.LogFormat = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.timeout")
	assert.Contains(t, err.Error(), "logging.log_format")
}
