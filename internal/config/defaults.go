package config

// Default values for configuration options. These are "layer 0" of the
// override chain.
const (
	defaultBaseURL     = "http://localhost:8080"
	defaultTimeout     = "10s"
	defaultUserAgent   = "storefront-go/0.1"
	defaultRefreshPath = "/v1/auth/refresh"
	defaultLogLevel    = "warn"
	defaultLogFormat   = "auto"

	// DefaultEncryptionKey seals the access token at rest when no key is
	// configured. It ships with the binary, so it only obfuscates.
	DefaultEncryptionKey = "storefront-go/session-token/v1"
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset fields keep their defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   defaultBaseURL,
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		Auth: AuthConfig{
			RefreshPath:     defaultRefreshPath,
			RefreshStatuses: []int{401},
			EncryptionKey:   DefaultEncryptionKey,
		},
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}
