package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// configFilePermissions is the permission mode for config files. The file
// may hold an encryption key, so it is owner-only.
const configFilePermissions = 0o600

// configDirPermissions is the standard permission mode for config directories.
const configDirPermissions = 0o755

// ErrConfigExists is returned by InitFile when the file is already present.
var ErrConfigExists = errors.New("config file already exists")

// configTemplate is the config file written by "config init". Every setting
// is present as a commented-out default so users can discover the options.
const configTemplate = `# storefront-go configuration

[api]
# base_url = "http://localhost:8080"
# timeout = "10s"
# user_agent = "storefront-go/0.1"
# Client-side request limit; 0 disables it
# requests_per_second = 0

[auth]
# refresh_path = "/v1/auth/refresh"
# Response codes that mean "access token rejected"
# refresh_statuses = [401]
# Passphrase sealing the access token in the session directory
# encryption_key = ""

[session]
# Defaults to $XDG_RUNTIME_DIR/storefront-go
# dir = ""

[logging]
# debug, info, warn, error
# log_level = "warn"
# auto, text, json
# log_format = "auto"
`

// InitFile writes the commented template to path. It refuses to overwrite
// an existing file.
func InitFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	}

	return atomicWriteFile(path, []byte(configTemplate))
}

// SetKey sets key = value inside [section] of the config file at path,
// creating the file from the template when absent. The edit is line-based so
// comments and layout are preserved. The result is validated before it is
// written.
func SetKey(path, section, key, value string) error {
	if !slices.Contains(knownKeys[section], key) {
		return fmt.Errorf("unknown config key %q", section+"."+key)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = []byte(configTemplate)
	} else if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	line := key + " = " + formatTOMLValue(value)
	lines := strings.Split(string(data), "\n")

	header := findSectionHeader(lines, section)
	if header < 0 {
		lines = appendSection(lines, section, line)
	} else {
		lines = setKeyInSection(lines, header, key, line)
	}

	content := strings.Join(lines, "\n")

	cfg := DefaultConfig()

	md, err := toml.Decode(content, cfg)
	if err != nil {
		return fmt.Errorf("invalid value for %s.%s: %w", section, key, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return err
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	return atomicWriteFile(path, []byte(content))
}

// findSectionHeader returns the line index of "[section]", or -1.
func findSectionHeader(lines []string, section string) int {
	want := "[" + section + "]"

	for i, l := range lines {
		if strings.TrimSpace(l) == want {
			return i
		}
	}

	return -1
}

// findSectionEnd returns the index one past the last line belonging to the
// section that starts at header.
func findSectionEnd(lines []string, header int) int {
	for i := header + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "[") {
			return i
		}
	}

	return len(lines)
}

// setKeyInSection replaces an existing assignment of key within the section
// or inserts newLine directly after the header.
func setKeyInSection(lines []string, header int, key, newLine string) []string {
	end := findSectionEnd(lines, header)

	for i := header + 1; i < end; i++ {
		name, _, ok := strings.Cut(strings.TrimSpace(lines[i]), "=")
		if ok && strings.TrimSpace(name) == key {
			lines[i] = newLine

			return lines
		}
	}

	return slices.Insert(lines, header+1, newLine)
}

func appendSection(lines []string, section, newLine string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	return append(lines, "", "["+section+"]", newLine, "")
}

// formatTOMLValue formats a value for TOML output. Booleans, numbers and
// arrays are written bare; everything else is a quoted string.
func formatTOMLValue(value string) string {
	if value == "true" || value == "false" || strings.HasPrefix(value, "[") {
		return value
	}

	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}

	return strconv.Quote(value)
}

// atomicWriteFile writes data to a temporary file in the same directory as
// path, then renames it to the target path. Parent directories are created
// as needed.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
