// Package storefront provides typed access to the storefront REST API on top
// of the authenticated request pipeline.
package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tonimelisma/storefront-go/internal/api"
	"github.com/tonimelisma/storefront-go/internal/model"
)

// Requester issues API calls. *api.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, header http.Header) (*api.Response, error)
	Post(ctx context.Context, path string, body any, header http.Header) (*api.Response, error)
	Put(ctx context.Context, path string, body any, header http.Header) (*api.Response, error)
	Delete(ctx context.Context, path string, header http.Header) (*api.Response, error)
}

// Session receives the outcome of login, registration and logout.
// *credstore.Store satisfies it.
type Session interface {
	Login(identityID string, detail *model.UserDetail, rawAccessToken string)
	Logout()
}

// Services groups the per-resource API wrappers.
type Services struct {
	Auth       *Auth
	Products   *Products
	Categories *Categories
	Ratings    *Ratings
	Users      *Users
}

// New creates all services over r. session may be nil when the caller never
// signs in or out.
func New(r Requester, session Session, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}

	return &Services{
		Auth:       &Auth{r: r, session: session, logger: logger},
		Products:   &Products{r: r},
		Categories: &Categories{r: r},
		Ratings:    &Ratings{r: r},
		Users:      &Users{r: r},
	}
}

// getJSON fetches path and decodes the response into a new T.
func getJSON[T any](ctx context.Context, r Requester, path string) (*T, error) {
	resp, err := r.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: %s: %w", path, err)
	}

	return decode[T](resp, path)
}

func decode[T any](resp *api.Response, path string) (*T, error) {
	var v T
	if err := resp.Decode(&v); err != nil {
		return nil, fmt.Errorf("storefront: %s: %w", path, err)
	}

	return &v, nil
}
