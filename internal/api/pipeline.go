package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// pendingRequest is a call that was denied while a refresh was in flight.
// done is buffered so the settler never blocks on a caller that gave up.
type pendingRequest struct {
	ctx       context.Context
	req       *request
	done      chan pendingResult
	abandoned atomic.Bool
}

type pendingResult struct {
	resp *Response
	err  error
}

// recoverAuth handles an authorization denial for a request that has not
// been retried yet. Exactly one caller runs the refresh; the rest queue.
func (c *Client) recoverAuth(ctx context.Context, req *request) (*Response, error) {
	c.mu.Lock()

	// Another caller already installed a newer token after this request
	// went out. Replay with it instead of refreshing again.
	if current := c.store.AccessToken(); current != "" && current != req.sentToken {
		c.mu.Unlock()

		c.logger.Debug("replaying with newer token",
			slog.String("method", req.method),
			slog.String("path", req.path),
		)

		return c.replay(ctx, req, current)
	}

	if c.refreshing {
		p := &pendingRequest{ctx: ctx, req: req, done: make(chan pendingResult, 1)}
		c.pending = append(c.pending, p)
		position := len(c.pending)
		c.mu.Unlock()

		c.logger.Debug("queued behind credential refresh",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("position", position),
		)

		return c.await(ctx, p)
	}

	c.refreshing = true
	c.mu.Unlock()

	req.retried = true

	return c.refreshAndReplay(ctx, req)
}

// refreshAndReplay runs the refresh on behalf of every caller denied while
// it is in flight, then settles the queue and replays the trigger.
func (c *Client) refreshAndReplay(ctx context.Context, req *request) (*Response, error) {
	c.logger.Info("access token rejected, refreshing credentials",
		slog.String("method", req.method),
		slog.String("path", req.path),
	)

	start := time.Now()

	tok, err := c.refresher.Refresh(context.WithoutCancel(ctx))
	if err != nil {
		return nil, c.failRefresh(err)
	}

	if id, detail, ok := c.store.Identity(); ok {
		c.store.Login(id, detail, tok.AccessToken)
	} else {
		c.logger.Warn("refreshed credentials without a signed-in identity, token not stored")
	}

	queue := c.settle()

	c.logger.Info("credentials refreshed",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("queued", len(queue)),
	)

	c.dispatch(queue, tok.AccessToken)

	return c.replay(ctx, req, tok.AccessToken)
}

// failRefresh logs the store out and rejects every queued call with the
// same error the trigger gets.
func (c *Client) failRefresh(cause error) error {
	err := fmt.Errorf("%w: %w", ErrSessionExpired, cause)

	c.store.Logout()
	queue := c.settle()

	for _, p := range queue {
		p.done <- pendingResult{err: err}
	}

	c.logger.Warn("credential refresh failed, signed out",
		slog.Int("rejected", len(queue)+1),
		slog.String("error", cause.Error()),
	)

	return err
}

// settle returns the state machine to idle and takes ownership of the queue.
func (c *Client) settle() []*pendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.pending
	c.pending = nil
	c.refreshing = false

	return queue
}

// dispatch replays queued calls in queue order. Each replay runs on its own
// goroutine; the next one starts only after the previous has entered the
// dispatch transport.
func (c *Client) dispatch(queue []*pendingRequest, token string) {
	for _, p := range queue {
		if p.abandoned.Load() {
			c.logger.Debug("skipping abandoned replay",
				slog.String("method", p.req.method),
				slog.String("path", p.req.path),
			)

			continue
		}

		submitted := make(chan struct{})
		signal := sync.OnceFunc(func() { close(submitted) })

		go func() {
			defer signal()

			resp, err := c.replay(withSubmitSignal(p.ctx, signal), p.req, token)
			p.done <- pendingResult{resp: resp, err: err}
		}()

		<-submitted
	}
}

func (c *Client) replay(ctx context.Context, req *request, token string) (*Response, error) {
	req.retried = true

	resp, err := c.send(ctx, req, token)
	if err != nil && c.isAuthDenied(err) {
		c.logger.Warn("authorization denied after retry",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", StatusCode(err)),
		)
	}

	return resp, err
}

// await blocks a queued call until the settler delivers its outcome, its
// context ends, or the queue wait expires.
func (c *Client) await(ctx context.Context, p *pendingRequest) (*Response, error) {
	timer := time.NewTimer(c.queueWait)
	defer timer.Stop()

	select {
	case r := <-p.done:
		return r.resp, r.err
	case <-ctx.Done():
		p.abandoned.Store(true)

		return nil, fmt.Errorf("api: waiting for credential refresh: %w", ctx.Err())
	case <-timer.C:
		p.abandoned.Store(true)

		return nil, fmt.Errorf("%w: %s %s after %s", ErrRefreshWaitTimeout, p.req.method, p.req.path, c.queueWait)
	}
}
