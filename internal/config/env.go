package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig        = "STOREFRONT_CONFIG"
	EnvAPIURL        = "STOREFRONT_API_URL"
	EnvEncryptionKey = "STOREFRONT_ENCRYPTION_KEY"
	EnvSessionDir    = "STOREFRONT_SESSION_DIR"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath    string // STOREFRONT_CONFIG: override config file path
	APIURL        string // STOREFRONT_API_URL: API base URL
	EncryptionKey string // STOREFRONT_ENCRYPTION_KEY: token cipher passphrase
	SessionDir    string // STOREFRONT_SESSION_DIR: session directory
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:    os.Getenv(EnvConfig),
		APIURL:        os.Getenv(EnvAPIURL),
		EncryptionKey: os.Getenv(EnvEncryptionKey),
		SessionDir:    os.Getenv(EnvSessionDir),
	}
}
