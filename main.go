package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tonimelisma/storefront-go/internal/api"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		exitOnError(err)
	}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}

	os.Exit(1)
}

// errorHint suggests a next step for errors the user can act on.
func errorHint(err error) string {
	switch {
	case errors.Is(err, api.ErrSessionExpired), errors.Is(err, errNotLoggedIn):
		return "run 'storefront login' to sign in again"
	case errors.Is(err, api.ErrForbidden), errors.Is(err, errAdminOnly):
		return "this action needs an ADMIN account"
	case errors.Is(err, api.ErrTimeout), errors.Is(err, api.ErrRefreshWaitTimeout):
		return "the server is slow to respond; raise [api] timeout in the config file"
	default:
		return ""
	}
}
