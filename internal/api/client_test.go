package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tonimelisma/storefront-go/internal/model"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeStore is an in-memory CredentialStore that records mutations.
type fakeStore struct {
	mu      sync.Mutex
	id      string
	detail  *model.UserDetail
	token   string
	logins  int
	logouts int
}

func newFakeStore(token string) *fakeStore {
	s := &fakeStore{token: token}
	if token != "" {
		s.id = "user1"
		s.detail = &model.UserDetail{User: model.User{ID: 1, Email: "example@mail.com", Role: model.RoleAdmin}}
	}

	return s
}

func (s *fakeStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token
}

func (s *fakeStore) Identity() (string, *model.UserDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id, s.detail, s.id != ""
}

func (s *fakeStore) Login(id string, detail *model.UserDetail, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id, s.detail, s.token = id, detail, token
	s.logins++
}

func (s *fakeStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id, s.detail, s.token = "", nil, ""
	s.logouts++
}

func (s *fakeStore) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

func (s *fakeStore) counts() (logins, logouts int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logins, s.logouts
}

// fakeRefresher returns token or err. When release is set, it blocks until
// release is closed; started receives one value per call.
type fakeRefresher struct {
	token   string
	err     error
	started chan struct{}
	release chan struct{}

	calls  atomic.Int32
	ctxErr atomic.Value
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*oauth2.Token, error) {
	f.calls.Add(1)

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}

	if f.release != nil {
		<-f.release
	}

	f.ctxErr.Store(fmtCtxErr(ctx.Err()))

	if f.err != nil {
		return nil, f.err
	}

	return &oauth2.Token{AccessToken: f.token, TokenType: "Bearer"}, nil
}

func fmtCtxErr(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// tokenServer answers 200 with the request path for the valid bearer token
// and 401 for anything else. It counts hits per path.
type tokenServer struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newTokenServer(t *testing.T, validToken string) *tokenServer {
	t.Helper()

	ts := &tokenServer{hits: make(map[string]int)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits[r.URL.Path]++
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (ts *tokenServer) hitsFor(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.hits[path]
}

func newTestClient(t *testing.T, srv *httptest.Server, store CredentialStore, ref Refresher) *Client {
	t.Helper()

	return NewClient(Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Store:      store,
		Refresher:  ref,
		Logger:     testLogger(t),
	})
}

func TestDo_AttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "yes", r.Header.Get("X-Custom"))

		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, newFakeStore("valid-token"), &fakeRefresher{})

	resp, err := c.Get(context.Background(), "/v1/products/7", http.Header{"X-Custom": {"yes"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	var got struct{ ID int }
	require.NoError(t, resp.Decode(&got))
	assert.Equal(t, 7, got.ID)
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.False(t, present)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, newFakeStore(""), &fakeRefresher{})

	resp, err := c.Get(context.Background(), "/v1/products", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.NoError(t, resp.Decode(&struct{}{}))
}

func TestDo_EncodesJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, string(body))

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, newFakeStore(""), &fakeRefresher{})

	resp, err := c.Post(context.Background(), "/v1/auth/login", model.LoginForm{Email: "a@b.c", Password: "pw"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestDo_RawBodySentAsIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"raw":true}`, string(body))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, newFakeStore(""), &fakeRefresher{})

	_, err := c.Put(context.Background(), "/x", json.RawMessage(`{"raw":true}`), nil)
	require.NoError(t, err)
}

func TestDo_UnencodableBody(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0", Store: newFakeStore(""), Refresher: &fakeRefresher{}})

	_, err := c.Post(context.Background(), "/x", make(chan int), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding POST /x body")
}

func TestDo_ServerErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Request-ID", "srv-id")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	ref := &fakeRefresher{token: "new-token"}
	c := newTestClient(t, srv, newFakeStore("valid-token"), ref)

	_, err := c.Get(context.Background(), "/v1/products", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "srv-id", apiErr.RequestID)
	assert.JSONEq(t, `{"message":"boom"}`, string(apiErr.Data))
	assert.Zero(t, ref.calls.Load())
}

func TestDo_ForbiddenNotRefreshedByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ref := &fakeRefresher{token: "new-token"}
	c := newTestClient(t, srv, newFakeStore("valid-token"), ref)

	_, err := c.Delete(context.Background(), "/v1/users/3", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, ref.calls.Load())
}

func TestDo_ConfiguredRefreshStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new-token" {
			w.WriteHeader(http.StatusForbidden)

			return
		}
	}))
	defer srv.Close()

	ref := &fakeRefresher{token: "new-token"}
	c := NewClient(Config{
		BaseURL:         srv.URL,
		HTTPClient:      srv.Client(),
		Store:           newFakeStore("old-token"),
		Refresher:       ref,
		Logger:          testLogger(t),
		RefreshStatuses: []int{http.StatusUnauthorized, http.StatusForbidden},
	})

	_, err := c.Get(context.Background(), "/v1/users", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ref.calls.Load())
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	hc := srv.Client()
	hc.Timeout = 50 * time.Millisecond

	ref := &fakeRefresher{token: "new-token"}
	c := NewClient(Config{BaseURL: srv.URL, HTTPClient: hc, Store: newFakeStore("valid-token"), Refresher: ref, Logger: testLogger(t)})

	_, err := c.Get(context.Background(), "/slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, ref.calls.Load())
}

func TestDo_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, srv, newFakeStore(""), &fakeRefresher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://example.test", Store: newFakeStore(""), Refresher: &fakeRefresher{}})

	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, DefaultTimeout, c.queueWait)
	assert.True(t, c.refreshStatuses[http.StatusUnauthorized])
	assert.False(t, c.refreshStatuses[http.StatusForbidden])

	dt, ok := c.httpClient.Transport.(*dispatchTransport)
	require.True(t, ok)
	assert.Nil(t, dt.limiter)
}

func TestNewClient_DoesNotMutateCallerClient(t *testing.T) {
	hc := &http.Client{Timeout: 3 * time.Second}

	c := NewClient(Config{BaseURL: "http://example.test", HTTPClient: hc, Store: newFakeStore(""), Refresher: &fakeRefresher{}})

	assert.Nil(t, hc.Transport)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestNewClient_RateLimit(t *testing.T) {
	c := NewClient(Config{
		BaseURL:           "http://example.test",
		Store:             newFakeStore(""),
		Refresher:         &fakeRefresher{},
		RequestsPerSecond: 5,
	})

	dt, ok := c.httpClient.Transport.(*dispatchTransport)
	require.True(t, ok)
	require.NotNil(t, dt.limiter)
	assert.InDelta(t, 5.0, float64(dt.limiter.Limit()), 0.001)
	assert.Equal(t, 5, dt.limiter.Burst())
}
