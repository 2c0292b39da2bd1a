// Package testutil provides shared test environment helpers for E2E tests.
// E2E tests cannot import internal/, so everything they share lives here.
package testutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by the E2E suite.
const (
	EnvE2EURL        = "STOREFRONT_E2E_URL"
	EnvAllowedHosts  = "STOREFRONT_ALLOWED_TEST_HOSTS"
	EnvAdminEmail    = "STOREFRONT_E2E_ADMIN_EMAIL"
	EnvAdminPassword = "STOREFRONT_E2E_ADMIN_PASSWORD"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "WARNING: ignoring %s: %v\n", envPath, err)
	}
}

// ValidateAllowlist crashes the process unless the host of baseURL is listed
// in STOREFRONT_ALLOWED_TEST_HOSTS. E2E tests create and delete catalog data,
// so they must never run against a server nobody opted in.
func ValidateAllowlist(baseURL string) {
	allowlist := os.Getenv(EnvAllowedHosts)
	if allowlist == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", EnvAllowedHosts)
		fmt.Fprintln(os.Stderr, "Set it in .env or as an environment variable.")
		fmt.Fprintf(os.Stderr, "Example: %s=localhost:8080\n", EnvAllowedHosts)
		os.Exit(1)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s=%q is not a valid URL\n", EnvE2EURL, baseURL)
		os.Exit(1)
	}

	for _, a := range strings.Split(allowlist, ",") {
		if strings.TrimSpace(a) == u.Host {
			return
		}
	}

	fmt.Fprintf(os.Stderr, "FATAL: host %q is not in %s=%q\n", u.Host, EnvAllowedHosts, allowlist)
	os.Exit(1)
}

// RequireEnv returns the value of name, crashing when it is unset.
func RequireEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", name)
		os.Exit(1)
	}

	return v
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
