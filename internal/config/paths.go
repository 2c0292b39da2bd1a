package config

import (
	"os"
	"path/filepath"
)

const (
	appName        = "storefront-go"
	configFileName = "config.toml"
)

// AppName returns the directory name shared by the config and session paths.
func AppName() string {
	return appName
}

// DefaultConfigDir returns <user config dir>/storefront-go: $XDG_CONFIG_HOME
// or ~/.config on Linux, ~/Library/Application Support on macOS, %AppData%
// on Windows. Returns "" when no home directory can be determined.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, appName)
}

// DefaultConfigPath returns the full path to the default config file.
// This is the fallback when neither STOREFRONT_CONFIG nor --config is set.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}
