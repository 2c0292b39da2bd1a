// Package refresh exchanges the long-lived session proof for a new access
// token. The proof travels as a cookie in the shared jar; this package never
// sends the (possibly expired) access token, so it keeps working precisely
// when the pipeline's credential has stopped working.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultPath is the refresh endpoint relative to the API base URL.
const DefaultPath = "/v1/auth/refresh"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// ErrNoToken is returned when the refresh endpoint answers 2xx without an
// access token.
var ErrNoToken = errors.New("refresh: response contained no access token")

// StatusError is returned when the refresh endpoint answers non-2xx, which
// means the session proof is missing, expired or revoked.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("refresh: HTTP %d: %s", e.StatusCode, e.Body)
}

// response is the refresh endpoint's JSON body.
type response struct {
	AccessToken string `json:"accessToken"`
}

// Transport performs the refresh exchange on its own http.Client.
type Transport struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Transport for baseURL+path. httpClient must carry the cookie
// jar that received the session cookie at login; it must not be the
// pipeline's client.
func New(baseURL, path string, httpClient *http.Client, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if path == "" {
		path = DefaultPath
	}

	return &Transport{
		url:        strings.TrimSuffix(baseURL, "/") + path,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Refresh performs one GET against the refresh endpoint and returns the new
// bearer token.
func (t *Transport) Refresh(ctx context.Context) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("refresh: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	t.logger.Debug("refreshing access token", slog.String("url", t.url))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("refresh request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			body = []byte("(failed to read response body)")
		}

		t.logger.Warn("refresh rejected", slog.Int("status", resp.StatusCode))

		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("refresh: decoding response: %w", err)
	}

	if r.AccessToken == "" {
		return nil, ErrNoToken
	}

	t.logger.Info("access token refreshed")

	return &oauth2.Token{AccessToken: r.AccessToken, TokenType: "Bearer"}, nil
}
