package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

type submitKey struct{}

// withSubmitSignal returns a context whose requests call fn once they enter
// the dispatch transport. fn must be safe to call more than once.
func withSubmitSignal(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, submitKey{}, fn)
}

// dispatchTransport is the client's outermost RoundTripper. Entering it is
// what "submitted" means for replay ordering.
type dispatchTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
	observe func(*http.Request)
}

func (t *dispatchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.observe != nil {
		t.observe(req)
	}

	if signal, ok := req.Context().Value(submitKey{}).(func()); ok {
		signal()
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			if req.Body != nil {
				req.Body.Close()
			}

			return nil, fmt.Errorf("api: rate limit: %w", err)
		}
	}

	return t.base.RoundTrip(req)
}
