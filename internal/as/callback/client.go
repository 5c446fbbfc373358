// Package callback delivers requests to the attribute source's business
// service and keeps the node's own callback URLs.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxElapsed      = 2 * time.Minute
	maxResponseBytes       = 10 << 20
)

// ErrInFlight is returned when a delivery for the same key is still running.
var ErrInFlight = errors.New("callback already in flight")

// Response is the final answer from a callback target.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client POSTs JSON with retries. Network errors and 5xx responses are
// retried with exponential backoff; any other status is final.
type Client struct {
	http            *http.Client
	tokens          *TokenIssuer
	logger          *slog.Logger
	initialInterval time.Duration
	maxElapsed      time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenIssuer attaches a bearer token to every callback.
func WithTokenIssuer(tokens *TokenIssuer) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithBackoff sets the first retry delay and the total retry budget.
func WithBackoff(initial, maxElapsed time.Duration) Option {
	return func(c *Client) {
		if initial > 0 {
			c.initialInterval = initial
		}
		if maxElapsed > 0 {
			c.maxElapsed = maxElapsed
		}
	}
}

// WithLogger sets the logger used for retry notifications.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:            &http.Client{Timeout: 30 * time.Second},
		logger:          slog.Default(),
		initialInterval: defaultInitialInterval,
		maxElapsed:      defaultMaxElapsed,
		inflight:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post delivers body to url, retrying under key. Only one delivery per key
// runs at a time.
func (c *Client) Post(ctx context.Context, key, url string, body any) (*Response, error) {
	if !c.acquire(key) {
		return nil, ErrInFlight
	}
	defer c.release(key)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal callback body: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxElapsedTime = c.maxElapsed

	attempt := 0
	op := func() (*Response, error) {
		attempt++
		resp, err := c.do(ctx, key, url, payload)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("callback returned status %d", resp.StatusCode)
		}
		return resp, nil
	}
	notify := func(err error, next time.Duration) {
		c.logger.WarnContext(ctx, "callback attempt failed, retrying",
			"key", key,
			"attempt", attempt,
			"next_retry_in", next.String(),
			"error", err,
		)
	}
	resp, err := backoff.RetryNotifyWithData(op, backoff.WithContext(b, ctx), notify)
	if err != nil {
		return nil, fmt.Errorf("callback to %s: %w", url, err)
	}
	return resp, nil
}

// Notify sends body once without retries.
func (c *Client) Notify(ctx context.Context, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	resp, err := c.do(ctx, "", url, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, key, url string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build callback request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Issue(key)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("issue callback token: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read callback response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Client) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}
