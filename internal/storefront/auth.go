package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tonimelisma/storefront-go/internal/model"
)

// Auth endpoints.
const (
	loginPath    = "/v1/auth/login"
	registerPath = "/v1/auth/register"
	logoutPath   = "/v1/auth/logout"
)

// Auth signs users in and out. Successful logins and registrations are
// recorded in the session.
type Auth struct {
	r       Requester
	session Session
	logger  *slog.Logger
}

// Login authenticates with email and password.
func (a *Auth) Login(ctx context.Context, form model.LoginForm) (*model.Auth, error) {
	return a.authenticate(ctx, loginPath, form)
}

// Register creates a customer account and signs it in.
func (a *Auth) Register(ctx context.Context, form model.RegisterForm) (*model.Auth, error) {
	return a.authenticate(ctx, registerPath, form)
}

func (a *Auth) authenticate(ctx context.Context, path string, form any) (*model.Auth, error) {
	resp, err := a.r.Post(ctx, path, form, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: %s: %w", path, err)
	}

	auth, err := decode[model.Auth](resp, path)
	if err != nil {
		return nil, err
	}

	if auth.AccessToken == "" {
		return nil, fmt.Errorf("storefront: %s: response has no access token", path)
	}

	if a.session != nil {
		id := strconv.FormatInt(auth.UserDetails.ID, 10)
		a.session.Login(id, &auth.UserDetails, auth.AccessToken)
	}

	a.logger.Info("signed in",
		slog.Int64("user_id", auth.UserDetails.ID),
		slog.String("role", string(auth.UserDetails.Role)),
	)

	return auth, nil
}

// Logout invalidates the server-side session and clears the local one. The
// local session is cleared even when the server call fails.
func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.r.Post(ctx, logoutPath, nil, nil)

	if a.session != nil {
		a.session.Logout()
	}

	if err != nil {
		a.logger.Warn("server logout failed", slog.String("error", err.Error()))

		return fmt.Errorf("storefront: logout: %w", err)
	}

	return nil
}
