// Package backend talks to the ledger REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/notexe/ledger-reminders/internal/config"
	"go.uber.org/zap"
)

// Client is a JSON client for the ledger API. It attaches the bearer
// token, busts GET caches, maps error statuses and tracks connectivity.
type Client struct {
	client  *http.Client
	baseURL string
	retry   config.RetryConfig
	logger  *zap.Logger
	now     func() time.Time

	mu             sync.Mutex
	token          string
	onUnauthorized func()
	onConnectivity func(online bool)

	online atomic.Bool
}

// NewClient creates a client for the API rooted at cfg.BaseURL.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retry:   retry,
		logger:  logger.Named("backend"),
		now:     time.Now,
		token:   cfg.Token,
	}
	c.online.Store(true)
	return c
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken replaces the session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OnUnauthorized registers a hook run after the session is dropped.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// OnConnectivityChange registers a hook run when the server becomes
// reachable or unreachable.
func (c *Client) OnConnectivityChange(fn func(online bool)) {
	c.mu.Lock()
	c.onConnectivity = fn
	c.mu.Unlock()
}

// Online reports whether the last request reached the server.
func (c *Client) Online() bool {
	return c.online.Load()
}

// do sends a request with the retry policy and decodes the JSON reply
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.checkSession(); err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.send(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		// POST is not idempotent; a retried create could duplicate the reminder.
		if ctx.Err() != nil || method == http.MethodPost || !retryable(err) {
			return backoff.Permanent(err)
		}
		if attempt < c.retry.MaxAttempts {
			c.logger.Debug("retrying request", zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}

	err := backoff.Retry(op, c.policy(ctx))
	if ctx.Err() == nil {
		c.setOnline(!errors.Is(err, ErrUnavailable))
	}
	return err
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.retry.InitialIntervalMS > 0 {
		b.InitialInterval = time.Duration(c.retry.InitialIntervalMS) * time.Millisecond
	}
	if c.retry.MaxIntervalMS > 0 {
		b.MaxInterval = time.Duration(c.retry.MaxIntervalMS) * time.Millisecond
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retry.MaxAttempts-1)), ctx)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodGet {
		q := req.URL.Query()
		q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %w", ErrUnavailable, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newError(resp.StatusCode, respBody)
		if apiErr.Status == http.StatusUnauthorized {
			c.dropSession()
		}
		c.logger.Warn(apiErr.Message(), zap.String("method", method), zap.String("path", path), zap.Int("status", apiErr.Status))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) setOnline(online bool) {
	if c.online.Swap(online) == online {
		return
	}

	c.mu.Lock()
	fn := c.onConnectivity
	c.mu.Unlock()

	if online {
		c.logger.Info("server reachable again")
	} else {
		c.logger.Warn("server unreachable")
	}
	if fn != nil {
		fn(online)
	}
}

// dropSession forgets the token, as the web client clears its storage.
func (c *Client) dropSession() {
	c.mu.Lock()
	c.token = ""
	fn := c.onUnauthorized
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}
