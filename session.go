package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/tonimelisma/storefront-go/internal/api"
	"github.com/tonimelisma/storefront-go/internal/config"
	"github.com/tonimelisma/storefront-go/internal/credstore"
	"github.com/tonimelisma/storefront-go/internal/model"
	"github.com/tonimelisma/storefront-go/internal/refresh"
	"github.com/tonimelisma/storefront-go/internal/sessionfile"
	"github.com/tonimelisma/storefront-go/internal/storefront"
)

var (
	errNotLoggedIn = errors.New("not logged in, run 'storefront login' first")
	errAdminOnly   = errors.New("this command requires an ADMIN account")
)

// Session bundles everything a command needs to talk to the API as the
// signed-in user. The credential store and the cookie jar both live in the
// session directory, so a refresh in one invocation is seen by the next.
type Session struct {
	Dir    *sessionfile.Dir
	Store  *credstore.Store
	Jar    *sessionfile.Jar
	Client *api.Client
	API    *storefront.Services
	Logger *slog.Logger
}

// NewSession wires the credential store, cookie jar, refresh transport and
// authenticated client from cfg.
func NewSession(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	path := cfg.Session.Dir
	if path == "" {
		path = sessionfile.DefaultPath(config.AppName())
	}

	dir := sessionfile.Open(path)
	if err := dir.Check(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cipher, err := credstore.NewCipher(cfg.Auth.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("creating token cipher: %w", err)
	}

	store := credstore.New(cipher, dir, logger)

	jar, err := sessionfile.NewJar(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening cookie jar: %w", err)
	}

	timeout := cfg.API.TimeoutDuration()

	// The refresh exchange gets its own client so it never passes through
	// the pipeline it serves. Both share the jar holding the session cookie.
	refresher := refresh.New(cfg.API.BaseURL, cfg.Auth.RefreshPath,
		&http.Client{Jar: jar, Timeout: timeout}, logger)

	client := api.NewClient(api.Config{
		BaseURL:           cfg.API.BaseURL,
		HTTPClient:        &http.Client{Jar: jar, Timeout: timeout},
		Store:             store,
		Refresher:         refresher,
		Logger:            logger,
		UserAgent:         cfg.API.UserAgent,
		RefreshStatuses:   cfg.Auth.RefreshStatuses,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})

	logger.Debug("session opened",
		slog.String("dir", dir.Path()),
		slog.String("base_url", cfg.API.BaseURL),
		slog.Bool("authenticated", store.IsAuthenticated()),
	)

	return &Session{
		Dir:    dir,
		Store:  store,
		Jar:    jar,
		Client: client,
		API:    storefront.New(client, store, logger),
		Logger: logger,
	}, nil
}

// openSession builds a Session from the resolved config.
func openSession() (*Session, error) {
	if resolvedCfg == nil {
		return nil, errors.New("no configuration loaded")
	}

	return NewSession(resolvedCfg, buildLogger())
}

// requireLogin fails fast when nobody is signed in.
func (s *Session) requireLogin() error {
	if !s.Store.IsAuthenticated() {
		return errNotLoggedIn
	}

	return nil
}

// requireAdmin refuses admin-only commands before any request is sent. The
// server enforces the same rule; this only saves a round trip.
func (s *Session) requireAdmin() error {
	if err := s.requireLogin(); err != nil {
		return err
	}

	if s.Store.Role() != string(model.RoleAdmin) {
		return errAdminOnly
	}

	return nil
}
