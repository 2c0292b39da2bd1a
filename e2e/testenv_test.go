//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonimelisma/storefront-go/testutil"
)

// setupIsolation points the CLI at a throwaway config file and session
// directory so no production session or config can leak into the run.
// Returns a cleanup function that removes the temp root.
func setupIsolation() func() {
	os.Unsetenv("STOREFRONT_CONFIG")
	os.Unsetenv("STOREFRONT_SESSION_DIR")
	os.Unsetenv("STOREFRONT_ENCRYPTION_KEY")

	tempRoot, err := os.MkdirTemp("", "storefront-e2e-isolation-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: creating isolation temp dir: %v\n", err)
		os.Exit(1)
	}

	os.Setenv("STOREFRONT_CONFIG", filepath.Join(tempRoot, "config.toml"))
	os.Setenv("STOREFRONT_API_URL", baseURL)

	verifyIsolation(tempRoot)

	fmt.Fprintf(os.Stderr, "E2E isolation: root=%s api=%s\n", tempRoot, baseURL)

	return func() {
		os.RemoveAll(tempRoot)
	}
}

// verifyIsolation hard-crashes the process if a production path could leak
// into test execution. Runs BEFORE m.Run() so no tests execute if isolation
// is broken.
func verifyIsolation(tempRoot string) {
	crash := func(msg string) {
		fmt.Fprintf(os.Stderr, "FATAL: isolation check failed: %s\n", msg)
		os.Exit(1)
	}

	if !strings.HasPrefix(os.Getenv("STOREFRONT_CONFIG"), tempRoot) {
		crash("STOREFRONT_CONFIG not overridden to temp dir")
	}

	if os.Getenv("STOREFRONT_ENCRYPTION_KEY") != "" {
		crash("STOREFRONT_ENCRYPTION_KEY is set, would reuse a production cipher key")
	}
}

// loadEnv reads .env from the module root and validates the target server.
func loadEnv() {
	testutil.LoadDotEnv(filepath.Join(testutil.FindModuleRoot(".."), ".env"))

	baseURL = testutil.RequireEnv(testutil.EnvE2EURL)
	testutil.ValidateAllowlist(baseURL)
}
