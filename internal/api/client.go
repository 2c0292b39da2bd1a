package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/tonimelisma/storefront-go/internal/model"
)

// Client defaults.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "storefront-go/0.1"
	requestIDHeader  = "X-Request-ID"
	contentTypeJSON  = "application/json"
)

// CredentialStore is the slice of the credential store the pipeline needs.
// Defined at the consumer; *credstore.Store satisfies it.
type CredentialStore interface {
	AccessToken() string
	Identity() (string, *model.UserDetail, bool)
	Login(identityID string, detail *model.UserDetail, rawAccessToken string)
	Logout()
}

// Refresher obtains a new access token from the session held by the
// refresh transport. *refresh.Transport satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// Config configures a Client. Only BaseURL, Store and Refresher are
// required.
type Config struct {
	BaseURL string

	// HTTPClient carries the cookie jar and the request timeout. Its
	// transport is wrapped, never modified in place. A zero Timeout is
	// replaced by DefaultTimeout.
	HTTPClient *http.Client

	Store     CredentialStore
	Refresher Refresher
	Logger    *slog.Logger

	UserAgent string

	// RefreshStatuses are the response codes that mean "the access token
	// was rejected". Defaults to 401 only.
	RefreshStatuses []int

	// RequestsPerSecond limits outbound requests. Zero disables the limit.
	RequestsPerSecond float64
}

// Response is a successful (2xx) API response with its body fully read.
type Response struct {
	Status int
	Data   []byte
	Header http.Header
}

// Decode unmarshals the response body into v. An empty body leaves v
// untouched.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("api: decoding response: %w", err)
	}

	return nil
}

// Client is the authenticated HTTP client. It is safe for concurrent use;
// share one per credential store.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	store           CredentialStore
	refresher       Refresher
	logger          *slog.Logger
	userAgent       string
	refreshStatuses map[int]bool

	// queueWait bounds how long a call waits for someone else's refresh.
	queueWait time.Duration

	// onDispatch observes every request as it enters the dispatch
	// transport. Tests override it to record submission order.
	onDispatch func(*http.Request)

	mu         sync.Mutex
	refreshing bool
	pending    []*pendingRequest
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	statuses := cfg.RefreshStatuses
	if len(statuses) == 0 {
		statuses = []int{http.StatusUnauthorized}
	}

	c := &Client{
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		store:           cfg.Store,
		refresher:       cfg.Refresher,
		logger:          logger,
		userAgent:       userAgent,
		refreshStatuses: make(map[int]bool, len(statuses)),
	}

	for _, code := range statuses {
		c.refreshStatuses[code] = true
	}

	c.onDispatch = func(req *http.Request) {
		c.logger.Debug("dispatching request",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("request_id", req.Header.Get(requestIDHeader)),
		)
	}

	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	}

	if hc.Timeout <= 0 {
		hc.Timeout = DefaultTimeout
	}

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	dt := &dispatchTransport{base: base, observe: func(req *http.Request) { c.onDispatch(req) }}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		dt.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	hc.Transport = dt
	c.httpClient = &hc
	c.queueWait = hc.Timeout

	return c
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, header)
}

// Post issues a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, header)
}

// Put issues a PUT request with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, header)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, header)
}

// Do executes a request against the API. path is appended to the base URL.
// A nil body sends no body; []byte and json.RawMessage are sent as-is;
// anything else is encoded as JSON.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	req, err := newRequest(method, path, body, header)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, req)
}

// request is one logical API call. It survives replays: the body is
// buffered and the request ID is fixed at creation.
type request struct {
	method string
	path   string
	body   []byte
	header http.Header
	id     string

	retried   bool
	sentToken string
}

func newRequest(method, path string, body any, header http.Header) (*request, error) {
	req := &request{
		method: method,
		path:   path,
		header: header.Clone(),
		id:     uuid.NewString(),
	}

	switch b := body.(type) {
	case nil:
	case []byte:
		req.body = b
	case json.RawMessage:
		req.body = b
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encoding %s %s body: %w", method, path, err)
		}

		req.body = data
	}

	return req, nil
}

// do sends req with the current token and hands authorization failures to
// the refresh coordinator.
func (c *Client) do(ctx context.Context, req *request) (*Response, error) {
	resp, err := c.send(ctx, req, c.store.AccessToken())
	if err == nil {
		return resp, nil
	}

	if !c.isAuthDenied(err) {
		return nil, err
	}

	if req.retried {
		c.logger.Warn("authorization denied after retry",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", StatusCode(err)),
		)

		return nil, err
	}

	return c.recoverAuth(ctx, req)
}

// send performs one HTTP exchange. Non-2xx responses become *APIError.
func (c *Client) send(ctx context.Context, req *request, token string) (*Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	for k, vs := range req.header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}

	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(requestIDHeader, req.id)

	if req.body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}

	if token != "" {
		(&oauth2.Token{AccessToken: token}).SetAuthHeader(httpReq)
	}

	req.sentToken = token

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("api: request canceled: %w", ctx.Err())
		}

		if isTimeout(err) {
			c.logger.Warn("request timed out",
				slog.String("method", req.method),
				slog.String("path", req.path),
				slog.Duration("timeout", c.httpClient.Timeout),
			)

			return nil, fmt.Errorf("%w: %s %s: %w", ErrTimeout, req.method, req.path, err)
		}

		return nil, fmt.Errorf("api: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: reading %s %s: %w", ErrTimeout, req.method, req.path, err)
		}

		return nil, fmt.Errorf("api: reading %s %s response: %w", req.method, req.path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", resp.StatusCode),
			slog.Bool("retried", req.retried),
		)

		return &Response{Status: resp.StatusCode, Data: data, Header: resp.Header}, nil
	}

	reqID := resp.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = req.id
	}

	c.logger.Debug("request failed",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", reqID),
	)

	return nil, &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  reqID,
		Data:       data,
		Err:        classifyStatus(resp.StatusCode),
	}
}

func (c *Client) isAuthDenied(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return c.refreshStatuses[apiErr.StatusCode]
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
